package value

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML implements yaml.Unmarshaler, keeping mapping order.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := fromYAMLNode(node)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (v Value) MarshalYAML() (interface{}, error) {
	return toYAMLNode(v), nil
}

// ParseYAML parses a YAML document into a Value.
func ParseYAML(data []byte) (Value, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return Null(), fmt.Errorf("failed to parse YAML: %w", err)
	}
	return fromYAMLNode(&node)
}

func fromYAMLNode(node *yaml.Node) (Value, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return Null(), nil
		}
		return fromYAMLNode(node.Content[0])
	case yaml.AliasNode:
		if node.Alias == nil {
			return Null(), nil
		}
		return fromYAMLNode(node.Alias)
	case yaml.MappingNode:
		obj := NewObject()
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode, valNode := node.Content[i], node.Content[i+1]
			if keyNode.Kind != yaml.ScalarNode {
				return Null(), fmt.Errorf("line %d: mapping key must be a scalar", keyNode.Line)
			}
			item, err := fromYAMLNode(valNode)
			if err != nil {
				return Null(), err
			}
			obj.Set(keyNode.Value, item)
		}
		return FromObject(obj), nil
	case yaml.SequenceNode:
		items := make([]Value, 0, len(node.Content))
		for _, child := range node.Content {
			item, err := fromYAMLNode(child)
			if err != nil {
				return Null(), err
			}
			items = append(items, item)
		}
		return Value{kind: KindArray, arr: items}, nil
	case yaml.ScalarNode:
		return fromYAMLScalar(node)
	default:
		return Null(), nil
	}
}

func fromYAMLScalar(node *yaml.Node) (Value, error) {
	switch node.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return Null(), err
		}
		return Bool(b), nil
	case "!!int":
		if isNumberLiteral(node.Value) {
			return Num(Number{lit: node.Value}), nil
		}
		var i int64
		if err := node.Decode(&i); err != nil {
			return Null(), err
		}
		return Int(i), nil
	case "!!float":
		if isNumberLiteral(node.Value) {
			return Num(Number{lit: node.Value}), nil
		}
		var f float64
		if err := node.Decode(&f); err != nil {
			return Null(), err
		}
		return Float(f), nil
	default:
		return String(node.Value), nil
	}
}

func toYAMLNode(v Value) *yaml.Node {
	switch v.kind {
	case KindBool:
		text := "false"
		if v.b {
			text = "true"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: text}
	case KindNumber:
		tag := "!!float"
		if _, ok := v.num.Int64(); ok && v.num.lit == v.num.Compact() {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: v.num.lit}
	case KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.s}
	case KindArray:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.arr {
			node.Content = append(node.Content, toYAMLNode(item))
		}
		return node
	case KindObject:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		v.obj.Range(func(k string, item Value) bool {
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				toYAMLNode(item))
			return true
		})
		return node
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}
