package schema

// Registry is the frozen, ordered feature-name list produced at training
// time. Every aligned vector has exactly len(Registry) columns in exactly
// this order. The registry is immutable once constructed.
type Registry struct {
	names []string
	index map[string]int
}

// NewRegistry copies names into a new registry. The caller's slice is not
// retained, so later mutation of it cannot affect the registry.
func NewRegistry(names []string) *Registry {
	r := &Registry{
		names: make([]string, len(names)),
		index: make(map[string]int, len(names)),
	}
	copy(r.names, names)
	for i, n := range r.names {
		r.index[n] = i
	}
	return r
}

// Len returns the number of feature columns.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.names)
}

// Names returns a copy of the ordered feature names.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// At returns the feature name at column i.
func (r *Registry) At(i int) string { return r.names[i] }

// Index returns the column position of name, or -1 if the registry does
// not contain it.
func (r *Registry) Index(name string) int {
	if i, ok := r.index[name]; ok {
		return i
	}
	return -1
}
