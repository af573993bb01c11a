package ecs

// EntityRef is a handle on an entity under construction. Entities reached through a
// ref are disabled until Enable is called or the builder that received it returns.
type EntityRef struct {
	world  *World
	entity Entity
}

func (r EntityRef) Entity() Entity { return r.entity }

func (r EntityRef) World() *World { return r.world }

// Enable makes the entity visible to processors.
func (r EntityRef) Enable() Entity {
	r.world.entities.Enable(r.entity)
	return r.entity
}

// Has reports whether the referenced entity owns a component of type t.
func (r EntityRef) Has(t ComponentType) bool {
	return r.world.components.HasID(r.entity, t)
}

// Remove detaches the component of type t and reports whether there was one.
func (r EntityRef) Remove(t ComponentType) bool {
	return r.world.components.Remove(r.entity, t)
}

// With attaches v to the referenced entity and returns the ref for chaining.
func With[T any](r EntityRef, v T) EntityRef {
	Add(r.world, r.entity, v)
	return r
}

// BuilderFunc adapts a function to EntityBuilder.
type BuilderFunc func(ref EntityRef)

func (f BuilderFunc) Build(ref EntityRef) { f(ref) }

// Prefab returns a builder attaching a copy of each value. Values are routed by their
// dynamic type, so each must be a registered component type. Reference types inside a
// value are shared between every entity built from the prefab.
func Prefab(values ...any) EntityBuilder {
	snapshot := append([]any(nil), values...)
	return BuilderFunc(func(ref EntityRef) {
		for _, v := range snapshot {
			ref.world.components.AddValue(ref.entity, v)
		}
	})
}

var _ EntityBuilder = BuilderFunc(nil)
