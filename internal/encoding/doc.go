// Package encoding provides content-type codecs for mapping values.
//
// The encoding package implements codecs for the payload formats the mapping
// engine reads and writes:
//
//   - JSON (application/json), preserving key order and number literals
//   - YAML (application/yaml)
//   - MessagePack (application/msgpack)
//
// It also provides content type negotiation based on Accept headers.
//
// # Example Usage
//
//	factory := encoding.NewCodecFactory(nil)
//	codec, err := factory.GetCodec("application/json")
//
//	// Decode a payload into a value
//	v, err := codec.Decode(data)
//
//	// Encode a value
//	data, err = codec.Encode(v)
//
//	// Content negotiation
//	negotiator := encoding.NewNegotiator(factory.SupportedTypes())
//	contentType := negotiator.Negotiate(acceptHeader)
//
// # Thread Safety
//
// All codecs and negotiators are safe for concurrent use.
package encoding
