package ecs

// AspectFunc adapts a plain predicate to the Aspect interface.
type AspectFunc func(m Membership, e Entity) bool

func (f AspectFunc) Check(m Membership, e Entity) bool {
	return f(m, e)
}

// All matches entities owning every listed component type.
func All(types ...ComponentType) Aspect {
	types = append([]ComponentType(nil), types...)
	return AspectFunc(func(m Membership, e Entity) bool {
		for _, t := range types {
			if !m.HasID(e, t) {
				return false
			}
		}
		return true
	})
}

// AnyOf matches entities owning at least one listed component type.
func AnyOf(types ...ComponentType) Aspect {
	types = append([]ComponentType(nil), types...)
	return AspectFunc(func(m Membership, e Entity) bool {
		for _, t := range types {
			if m.HasID(e, t) {
				return true
			}
		}
		return false
	})
}

// None matches entities owning none of the listed component types.
func None(types ...ComponentType) Aspect {
	return Not(AnyOf(types...))
}

// And matches entities accepted by every aspect.
func And(aspects ...Aspect) Aspect {
	aspects = append([]Aspect(nil), aspects...)
	return AspectFunc(func(m Membership, e Entity) bool {
		for _, a := range aspects {
			if !a.Check(m, e) {
				return false
			}
		}
		return true
	})
}

// Or matches entities accepted by at least one aspect.
func Or(aspects ...Aspect) Aspect {
	aspects = append([]Aspect(nil), aspects...)
	return AspectFunc(func(m Membership, e Entity) bool {
		for _, a := range aspects {
			if a.Check(m, e) {
				return true
			}
		}
		return false
	})
}

// Not inverts an aspect.
func Not(a Aspect) Aspect {
	return AspectFunc(func(m Membership, e Entity) bool {
		return !a.Check(m, e)
	})
}

// Everything matches every active entity.
func Everything() Aspect {
	return AspectFunc(func(Membership, Entity) bool { return true })
}
