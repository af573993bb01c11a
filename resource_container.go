package ecs

// resourceMap is the default ResourceContainer. Worlds are single-threaded, so it
// carries no lock.
type resourceMap struct {
	values map[string]any
}

func newResourceContainer() *resourceMap {
	return &resourceMap{values: make(map[string]any)}
}

func (r *resourceMap) Get(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

func (r *resourceMap) Set(name string, value any) {
	r.values[name] = value
}

func (r *resourceMap) Delete(name string) {
	delete(r.values, name)
}

func (r *resourceMap) Range(fn func(string, any) bool) {
	for k, v := range r.values {
		if !fn(k, v) {
			return
		}
	}
}

// Resource returns the resource stored under name if it holds a T.
func Resource[T any](w *World, name string) (T, bool) {
	v, ok := w.resources.Get(name)
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}

var _ ResourceContainer = (*resourceMap)(nil)
