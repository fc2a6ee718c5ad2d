package encoding

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/vyrodovalexey/avamap/internal/value"
)

// msgpackCodec implements Codec for MessagePack encoding.
type msgpackCodec struct{}

// NewMsgpackCodec creates a new MessagePack codec. Maps are written in key
// order; integral literals travel as integers and other numbers as float64.
func NewMsgpackCodec() Codec {
	return &msgpackCodec{}
}

// Encode encodes the value to MessagePack bytes.
func (c *msgpackCodec) Encode(v value.Value) ([]byte, error) {
	metrics := GetEncodingMetrics()

	data, err := msgpack.Marshal(v)
	if err != nil {
		metrics.RecordEncode(ContentTypeMsgpack, "error")
		metrics.RecordError(ContentTypeMsgpack, "encode")
		return nil, fmt.Errorf("%w: %w", ErrEncodingFailed, err)
	}

	metrics.RecordEncode(ContentTypeMsgpack, "success")
	return data, nil
}

// Decode decodes MessagePack bytes into a value.
func (c *msgpackCodec) Decode(data []byte) (value.Value, error) {
	metrics := GetEncodingMetrics()

	if len(data) == 0 {
		metrics.RecordDecode(ContentTypeMsgpack, "error")
		return value.Null(), ErrEmptyPayload
	}

	var v value.Value
	if err := msgpack.Unmarshal(data, &v); err != nil {
		metrics.RecordDecode(ContentTypeMsgpack, "error")
		metrics.RecordError(ContentTypeMsgpack, "decode")
		return value.Null(), fmt.Errorf("%w: %w", ErrDecodingFailed, err)
	}

	metrics.RecordDecode(ContentTypeMsgpack, "success")
	return v, nil
}

// ContentType returns the MessagePack content type.
func (c *msgpackCodec) ContentType() string {
	return ContentTypeMsgpack
}
