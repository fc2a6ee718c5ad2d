package value

// Object is a string-keyed map that remembers insertion order.
// Objects are built with Set and then handed out read-only through FromObject.
type Object struct {
	keys []string
	vals map[string]Value
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{vals: make(map[string]Value)}
}

// Set stores v under key. An existing key keeps its position.
func (o *Object) Set(key string, v Value) {
	if o.vals == nil {
		o.vals = make(map[string]Value)
	}
	if _, exists := o.vals[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return Null(), false
	}
	v, ok := o.vals[key]
	return v, ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Len returns the number of entries.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

// Range calls fn for every entry in order until fn returns false.
func (o *Object) Range(fn func(key string, v Value) bool) {
	if o == nil {
		return
	}
	for _, k := range o.keys {
		if !fn(k, o.vals[k]) {
			return
		}
	}
}

// Merge copies every entry of src into o; entries of src win on collision.
func (o *Object) Merge(src *Object) {
	src.Range(func(k string, v Value) bool {
		o.Set(k, v)
		return true
	})
}

// Clone returns a shallow copy of o. Values are immutable, so it is a full copy
// for every practical purpose.
func (o *Object) Clone() *Object {
	c := &Object{
		keys: make([]string, 0, o.Len()),
		vals: make(map[string]Value, o.Len()),
	}
	c.Merge(o)
	return c
}

// Equal compares entries ignoring order.
func (o *Object) Equal(other *Object) bool {
	if o.Len() != other.Len() {
		return false
	}
	equal := true
	o.Range(func(k string, v Value) bool {
		ov, ok := other.Get(k)
		if !ok || !v.Equal(ov) {
			equal = false
		}
		return equal
	})
	return equal
}
