package encoding

import (
	"errors"
	"sort"
	"strings"

	"github.com/vyrodovalexey/avamap/internal/observability"
	"github.com/vyrodovalexey/avamap/internal/value"
)

// Supported content types.
const (
	ContentTypeJSON    = "application/json"
	ContentTypeYAML    = "application/yaml"
	ContentTypeMsgpack = "application/msgpack"
)

// Common encoding errors.
var (
	// ErrUnsupportedContentType indicates that the content type is not supported.
	ErrUnsupportedContentType = errors.New("unsupported content type")

	// ErrEncodingFailed indicates that encoding failed.
	ErrEncodingFailed = errors.New("encoding failed")

	// ErrDecodingFailed indicates that decoding failed.
	ErrDecodingFailed = errors.New("decoding failed")

	// ErrEmptyPayload indicates that there was nothing to decode.
	ErrEmptyPayload = errors.New("empty payload")
)

// Encoder encodes values to bytes.
type Encoder interface {
	// Encode encodes the value to bytes.
	Encode(v value.Value) ([]byte, error)

	// ContentType returns the content type for this encoder.
	ContentType() string
}

// Decoder decodes bytes to values.
type Decoder interface {
	// Decode decodes the data into a value.
	Decode(data []byte) (value.Value, error)
}

// Codec combines Encoder and Decoder.
type Codec interface {
	Encoder
	Decoder
}

// CodecFactory creates codecs based on content type.
type CodecFactory interface {
	// GetCodec returns a codec for the given content type.
	GetCodec(contentType string) (Codec, error)

	// SupportedTypes returns the list of supported content types.
	SupportedTypes() []string
}

// codecFactory implements CodecFactory.
type codecFactory struct {
	logger observability.Logger
	codecs map[string]Codec
}

// NewCodecFactory creates a new CodecFactory with default codecs.
func NewCodecFactory(logger observability.Logger) CodecFactory {
	if logger == nil {
		logger = observability.NopLogger()
	}

	factory := &codecFactory{
		logger: logger,
		codecs: make(map[string]Codec),
	}

	jsonCodec := NewJSONCodec(false)
	factory.codecs[ContentTypeJSON] = jsonCodec
	factory.codecs["text/json"] = jsonCodec

	yamlCodec := NewYAMLCodec()
	factory.codecs[ContentTypeYAML] = yamlCodec
	factory.codecs["application/x-yaml"] = yamlCodec
	factory.codecs["text/yaml"] = yamlCodec

	msgpackCodec := NewMsgpackCodec()
	factory.codecs[ContentTypeMsgpack] = msgpackCodec
	factory.codecs["application/x-msgpack"] = msgpackCodec
	factory.codecs["application/vnd.msgpack"] = msgpackCodec

	return factory
}

// GetCodec returns a codec for the given content type.
func (f *codecFactory) GetCodec(contentType string) (Codec, error) {
	ct := normalizeContentType(contentType)

	codec, exists := f.codecs[ct]
	if !exists {
		f.logger.Debug("unsupported content type",
			observability.String("contentType", contentType))
		GetEncodingMetrics().RecordNegotiation(ct, "unsupported")
		return nil, ErrUnsupportedContentType
	}

	return codec, nil
}

// SupportedTypes returns the canonical content types, sorted.
func (f *codecFactory) SupportedTypes() []string {
	seen := make(map[string]bool)
	types := make([]string, 0, len(f.codecs))

	for _, codec := range f.codecs {
		ct := codec.ContentType()
		if !seen[ct] {
			types = append(types, ct)
			seen[ct] = true
		}
	}

	sort.Strings(types)
	return types
}

// normalizeContentType strips parameters and lower-cases a content type.
func normalizeContentType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}
