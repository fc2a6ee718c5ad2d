package config

import (
	"fmt"
	"strings"

	"github.com/vyrodovalexey/avamap/internal/numfmt"
	"github.com/vyrodovalexey/avamap/internal/rules"
)

var (
	validLogLevels  = []string{"debug", "info", "warn", "error", "dpanic", "panic", "fatal"}
	validLogFormats = []string{"json", "console"}
	validLogOutputs = []string{"stdout", "stderr"}
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Path    string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, e[i].Error())
	}
	return sb.String()
}

// HasErrors returns true if there are validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator validates RuleSet documents.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{
		errors: make(ValidationErrors, 0),
	}
}

// ValidateConfig validates a RuleSet document.
func ValidateConfig(config *Config) error {
	return NewValidator().Validate(config)
}

// Validate validates the document and returns ValidationErrors when it is
// not usable. Rules are checked for shape only; operator names and
// parameters are resolved at transform time.
func (v *Validator) Validate(config *Config) error {
	v.errors = make(ValidationErrors, 0)

	if config == nil {
		v.addError("", "configuration is nil")
		return v.errors
	}

	v.validateRoot(config)
	v.validateMetadata(&config.Metadata)
	v.validateLogging(&config.Spec.Logging, "spec.logging")
	v.validateEngine(&config.Spec.Engine, "spec.engine")
	v.validateRules(config.Spec.Rules, "spec.rules")

	if v.errors.HasErrors() {
		return v.errors
	}
	return nil
}

// validateRoot validates root-level fields.
func (v *Validator) validateRoot(config *Config) {
	if config.APIVersion == "" {
		v.addError("apiVersion", "apiVersion is required")
	} else if !strings.HasPrefix(config.APIVersion, APIVersionPrefix) {
		v.addError("apiVersion", fmt.Sprintf("apiVersion must start with '%s'", APIVersionPrefix))
	}

	if config.Kind == "" {
		v.addError("kind", "kind is required")
	} else if config.Kind != Kind {
		v.addError("kind", fmt.Sprintf("kind must be '%s'", Kind))
	}
}

// validateMetadata validates metadata fields.
func (v *Validator) validateMetadata(metadata *Metadata) {
	if metadata.Name == "" {
		v.addError("metadata.name", "name is required")
	}
}

func (v *Validator) validateLogging(logging *LoggingConfig, path string) {
	if logging.Level != "" && !containsFold(validLogLevels, logging.Level) {
		v.addError(path+".level", fmt.Sprintf("unknown level %q", logging.Level))
	}
	if logging.Format != "" && !containsFold(validLogFormats, logging.Format) {
		v.addError(path+".format", fmt.Sprintf("format must be one of %s", strings.Join(validLogFormats, ", ")))
	}
	if logging.Output != "" && !containsFold(validLogOutputs, logging.Output) {
		v.addError(path+".output", fmt.Sprintf("output must be one of %s", strings.Join(validLogOutputs, ", ")))
	}
}

func (v *Validator) validateEngine(engine *EngineConfig, path string) {
	if engine.RegexCacheSize < 0 {
		v.addError(path+".regexCacheSize", "regexCacheSize must not be negative")
	}
	if engine.RegexTimeout < 0 {
		v.addError(path+".regexTimeout", "regexTimeout must not be negative")
	}
	if _, err := numfmt.Lookup(engine.Culture); err != nil {
		v.addError(path+".culture", fmt.Sprintf("unknown culture %q", engine.Culture))
	}
}

// validateRules checks that every rule names a target. An empty source is
// valid and addresses the whole input.
func (v *Validator) validateRules(rs []rules.Rule, path string) {
	for i := range rs {
		rulePath := fmt.Sprintf("%s[%d]", path, i)
		if strings.TrimSpace(rs[i].Target) == "" {
			v.addError(rulePath+".target", "target is required")
		}
		for _, op := range rs[i].Conversion {
			if strings.TrimSpace(op) == "" {
				v.addError(rulePath+".conversion", "operator names must not be blank")
				break
			}
		}
	}
}

// addError adds a validation error.
func (v *Validator) addError(path, message string) {
	v.errors = append(v.errors, ValidationError{Path: path, Message: message})
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}
