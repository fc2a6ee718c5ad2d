package encoding

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vyrodovalexey/avamap/internal/value"
)

// jsonCodec implements Codec for JSON encoding.
type jsonCodec struct {
	pretty bool
}

// NewJSONCodec creates a new JSON codec. Object keys keep their order and
// numbers keep their literal form.
func NewJSONCodec(pretty bool) Codec {
	return &jsonCodec{pretty: pretty}
}

// Encode encodes the value to JSON bytes.
func (c *jsonCodec) Encode(v value.Value) ([]byte, error) {
	metrics := GetEncodingMetrics()

	data, err := v.MarshalJSON()
	if err != nil {
		metrics.RecordEncode(ContentTypeJSON, "error")
		metrics.RecordError(ContentTypeJSON, "encode")
		return nil, fmt.Errorf("%w: %w", ErrEncodingFailed, err)
	}

	if c.pretty {
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			metrics.RecordEncode(ContentTypeJSON, "error")
			metrics.RecordError(ContentTypeJSON, "encode")
			return nil, fmt.Errorf("%w: %w", ErrEncodingFailed, err)
		}
		data = buf.Bytes()
	}

	metrics.RecordEncode(ContentTypeJSON, "success")
	return data, nil
}

// Decode decodes JSON bytes into a value.
func (c *jsonCodec) Decode(data []byte) (value.Value, error) {
	metrics := GetEncodingMetrics()

	if len(bytes.TrimSpace(data)) == 0 {
		metrics.RecordDecode(ContentTypeJSON, "error")
		return value.Null(), ErrEmptyPayload
	}

	v, err := value.ParseJSON(data)
	if err != nil {
		metrics.RecordDecode(ContentTypeJSON, "error")
		metrics.RecordError(ContentTypeJSON, "decode")
		return value.Null(), fmt.Errorf("%w: %w", ErrDecodingFailed, err)
	}

	metrics.RecordDecode(ContentTypeJSON, "success")
	return v, nil
}

// ContentType returns the JSON content type.
func (c *jsonCodec) ContentType() string {
	return ContentTypeJSON
}
