package converter

import (
	"time"

	"github.com/vyrodovalexey/avamap/internal/numfmt"
)

// Built-in operator names.
const (
	OpCase       = "case"
	OpTrim       = "trim"
	OpReplace    = "replace"
	OpSubstring  = "substring"
	OpFormat     = "format"
	OpNumber     = "number"
	OpBoolean    = "boolean"
	OpDefault    = "default"
	OpJoin       = "join"
	OpPrepend    = "prepend"
	OpToArray    = "to_array"
	OpMapObject  = "map_object"
	OpMapArray   = "map_array"
	OpJoinFields = "join_fields"
)

// Defaults for built-in settings.
const (
	DefaultRegexCacheSize = 256
	DefaultRegexTimeout   = time.Second
)

// builtins carries the settings shared by the built-in operators.
type builtins struct {
	regexCacheSize int
	regexTimeout   time.Duration
	culture        numfmt.Culture
	regexes        *regexCache
}

// Option configures the built-in operators.
type Option func(*builtins)

// WithRegexCacheSize bounds the number of compiled replace patterns kept.
// Zero disables caching.
func WithRegexCacheSize(size int) Option {
	return func(b *builtins) {
		b.regexCacheSize = size
	}
}

// WithRegexTimeout bounds a single regex replace.
func WithRegexTimeout(timeout time.Duration) Option {
	return func(b *builtins) {
		b.regexTimeout = timeout
	}
}

// WithCulture sets the culture used by number and format when a rule does
// not name one.
func WithCulture(c numfmt.Culture) Option {
	return func(b *builtins) {
		b.culture = c
	}
}

func newBuiltins(opts ...Option) *builtins {
	b := &builtins{
		regexCacheSize: DefaultRegexCacheSize,
		regexTimeout:   DefaultRegexTimeout,
		culture:        numfmt.Invariant,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.regexes = newRegexCache(b.regexCacheSize, b.regexTimeout)
	return b
}

// RegisterBuiltins registers the default operator set into r. join_fields is
// not part of it; register JoinFields explicitly to enable it.
func RegisterBuiltins(r *Registry, opts ...Option) error {
	b := newBuiltins(opts...)

	funcs := map[string]Func{
		OpCase:      Case,
		OpTrim:      Trim,
		OpReplace:   b.replace,
		OpSubstring: Substring,
		OpFormat:    b.format,
		OpNumber:    b.number,
		OpBoolean:   Boolean,
		OpDefault:   Default,
		OpJoin:      Join,
		OpPrepend:   Prepend,
		OpToArray:   ToArray,
		OpMapObject: MapObject,
		OpMapArray:  MapArray,
	}
	for name, fn := range funcs {
		if err := r.Register(name, fn); err != nil {
			return err
		}
	}
	return nil
}

// NewBuiltinRegistry creates a registry seeded with the default operator set.
func NewBuiltinRegistry(opts ...Option) *Registry {
	r := NewRegistry()
	// Built-in names are non-empty and functions non-nil.
	_ = RegisterBuiltins(r, opts...)
	return r
}
