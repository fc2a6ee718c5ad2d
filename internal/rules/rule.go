// Package rules provides the mapping rule model and parameter normalization
// for the mapping engine.
package rules

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/vyrodovalexey/avamap/internal/value"
)

// RootTarget is the target that merges an object result into the enclosing
// result instead of storing it under a key.
const RootTarget = "$root"

// Rule declares one mapping from a source path to a target key.
type Rule struct {
	// Source is the path resolved against the input. An empty path addresses the input itself.
	Source string `yaml:"source" json:"source"`

	// Target is the result key, or RootTarget.
	Target string `yaml:"target" json:"target"`

	// Conversion is the ordered operator chain. Nil means no chain: the
	// resolved value is emitted in its native form.
	Conversion []string `yaml:"conversion,omitempty" json:"conversion,omitempty"`

	// ConversionParams holds per-operator parameters keyed by operator name.
	ConversionParams map[string]value.Value `yaml:"conversion_params,omitempty" json:"conversion_params,omitempty"`
}

// HasConversion reports whether the rule declares an operator chain.
func (r Rule) HasConversion() bool {
	return r.Conversion != nil
}

// IsRootMerge reports whether the rule merges into the enclosing result.
func (r Rule) IsRootMerge() bool {
	return r.Target == RootTarget
}

// Param returns the parameter configured for the named operator.
func (r Rule) Param(operator string) Param {
	v, ok := r.ConversionParams[operator]
	if !ok {
		return Param{}
	}
	return NewParam(v)
}

// ToValue converts the rule back into its document form.
func (r Rule) ToValue() value.Value {
	obj := value.NewObject()
	obj.Set("source", value.String(r.Source))
	obj.Set("target", value.String(r.Target))
	if r.Conversion != nil {
		ops := make([]value.Value, 0, len(r.Conversion))
		for _, op := range r.Conversion {
			ops = append(ops, value.String(op))
		}
		obj.Set("conversion", value.Array(ops...))
	}
	if len(r.ConversionParams) > 0 {
		params := value.NewObject()
		for _, name := range sortedKeys(r.ConversionParams) {
			params.Set(name, r.ConversionParams[name])
		}
		obj.Set("conversion_params", value.FromObject(params))
	}
	return value.FromObject(obj)
}

// UnmarshalJSON implements json.Unmarshaler with the same leniency as FromValue.
func (r *Rule) UnmarshalJSON(data []byte) error {
	v, err := value.ParseJSON(data)
	if err != nil {
		return err
	}
	rule, err := decodeRule(v, "")
	if err != nil {
		return err
	}
	*r = rule
	return nil
}

// MarshalJSON implements json.Marshaler.
func (r Rule) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ToValue())
}

// UnmarshalYAML implements yaml.Unmarshaler with the same leniency as FromValue.
func (r *Rule) UnmarshalYAML(node *yaml.Node) error {
	var v value.Value
	if err := v.UnmarshalYAML(node); err != nil {
		return err
	}
	rule, err := decodeRule(v, "")
	if err != nil {
		return err
	}
	*r = rule
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (r Rule) MarshalYAML() (interface{}, error) {
	return r.ToValue().MarshalYAML()
}
