package differ

// Factory creates differs for the collections it supports.
type Factory interface {
	Supports(collection any) bool
	Create(opts ...Option) Differ
}

// DefaultFactory creates IterableDiffers for list-like collections.
type DefaultFactory struct{}

// Supports reports whether collection is list-like. See IsListLike.
func (DefaultFactory) Supports(collection any) bool {
	return IsListLike(collection)
}

// Create returns a new IterableDiffer.
func (DefaultFactory) Create(opts ...Option) Differ {
	return New(opts...)
}

// Registry is an ordered set of factories. The first factory that supports
// a collection wins.
type Registry struct {
	factories []Factory
}

// NewRegistry returns a registry consulting factories in order.
func NewRegistry(factories ...Factory) *Registry {
	return &Registry{factories: append([]Factory(nil), factories...)}
}

// DefaultRegistry returns a registry holding only DefaultFactory.
func DefaultRegistry() *Registry {
	return NewRegistry(DefaultFactory{})
}

// Extend returns a new registry in which factories are consulted before
// the factories of r. r is not modified.
func (r *Registry) Extend(factories ...Factory) *Registry {
	all := make([]Factory, 0, len(factories)+len(r.factories))
	all = append(all, factories...)
	all = append(all, r.factories...)
	return &Registry{factories: all}
}

// Find returns the first factory supporting collection.
func (r *Registry) Find(collection any) (Factory, error) {
	for _, f := range r.factories {
		if f.Supports(collection) {
			return f, nil
		}
	}
	return nil, &NoDifferError{Value: collection}
}

// Len returns the number of factories in the registry.
func (r *Registry) Len() int {
	return len(r.factories)
}
