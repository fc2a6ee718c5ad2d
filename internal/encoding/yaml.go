package encoding

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/vyrodovalexey/avamap/internal/value"
)

// yamlCodec implements Codec for YAML encoding.
type yamlCodec struct{}

// NewYAMLCodec creates a new YAML codec.
func NewYAMLCodec() Codec {
	return &yamlCodec{}
}

// Encode encodes the value to YAML bytes.
func (c *yamlCodec) Encode(v value.Value) ([]byte, error) {
	metrics := GetEncodingMetrics()

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		metrics.RecordEncode(ContentTypeYAML, "error")
		metrics.RecordError(ContentTypeYAML, "encode")
		return nil, fmt.Errorf("%w: %w", ErrEncodingFailed, err)
	}
	if err := enc.Close(); err != nil {
		metrics.RecordEncode(ContentTypeYAML, "error")
		metrics.RecordError(ContentTypeYAML, "encode")
		return nil, fmt.Errorf("%w: %w", ErrEncodingFailed, err)
	}

	metrics.RecordEncode(ContentTypeYAML, "success")
	return buf.Bytes(), nil
}

// Decode decodes YAML bytes into a value.
func (c *yamlCodec) Decode(data []byte) (value.Value, error) {
	metrics := GetEncodingMetrics()

	if len(bytes.TrimSpace(data)) == 0 {
		metrics.RecordDecode(ContentTypeYAML, "error")
		return value.Null(), ErrEmptyPayload
	}

	v, err := value.ParseYAML(data)
	if err != nil {
		metrics.RecordDecode(ContentTypeYAML, "error")
		metrics.RecordError(ContentTypeYAML, "decode")
		return value.Null(), fmt.Errorf("%w: %w", ErrDecodingFailed, err)
	}

	metrics.RecordDecode(ContentTypeYAML, "success")
	return v, nil
}

// ContentType returns the YAML content type.
func (c *yamlCodec) ContentType() string {
	return ContentTypeYAML
}
