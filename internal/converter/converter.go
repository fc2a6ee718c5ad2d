// Package converter provides the converter catalog: a registry of named
// operators and the built-in operator set.
package converter

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/vyrodovalexey/avamap/internal/rules"
	"github.com/vyrodovalexey/avamap/internal/value"
)

// Registration errors.
var (
	// ErrEmptyName indicates a blank operator name.
	ErrEmptyName = errors.New("converter name must not be empty")

	// ErrNilFunc indicates a nil converter function.
	ErrNilFunc = errors.New("converter must not be nil")
)

// Processor runs a rule list against a value. The mapping engine implements
// it so container operators can recurse into nested rule sets.
type Processor interface {
	Process(ctx context.Context, input value.Value, rs []rules.Rule) (*value.Object, error)
}

// Func converts a value. A Null result stops the conversion chain. An error
// aborts the whole transformation and is reserved for malformed
// configuration; unconvertible input yields Null instead.
type Func func(ctx context.Context, v value.Value, param rules.Param, p Processor) (value.Value, error)

// Registry maps operator names to converters. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Func)}
}

// Register adds fn under name, replacing any previous converter with that name.
func (r *Registry) Register(name string, fn Func) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if fn == nil {
		return fmt.Errorf("%w: %q", ErrNilFunc, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
	return nil
}

// Lookup returns the converter registered under name.
func (r *Registry) Lookup(name string) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := &Registry{funcs: make(map[string]Func, len(r.funcs))}
	for name, fn := range r.funcs {
		out.funcs[name] = fn
	}
	return out
}
