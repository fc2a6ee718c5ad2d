// Package mapping provides the rule-driven transformation engine.
//
// An Engine owns a fixed, ordered rule list and a converter registry seeded
// with the built-in operators. Transform walks the rules against an input
// value and builds an ordered result object:
//
//   - a rule whose source path does not resolve contributes no key
//   - a resolved value runs through the rule's operator chain, which stops
//     as soon as an operator yields null
//   - a rule targeting "$root" merges an object result into the enclosing
//     result and discards anything else
//
// # Example Usage
//
//	rs, err := rules.ParseJSON(data)
//	if err != nil {
//	    return err
//	}
//	engine := mapping.New(rs, mapping.WithLogger(logger))
//	result, err := engine.Transform(ctx, input)
//
// # Extending
//
// RegisterConverter adds an operator or replaces a built-in one for later
// calls on the same engine. map_object and map_array re-enter the engine
// through Process, so nested rule lists see the same registry.
//
// # Thread Safety
//
// Transform and Process are safe for concurrent use. Registration is
// serialized by the registry and becomes visible to operator lookups that
// start after it returns.
package mapping
