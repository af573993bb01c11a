package ecs

// Typed component access through a world. Mutations on stale entities are contract
// violations; queries on them report absence. T must be registered in every case.

// Add attaches v to e. e must be alive and must not already own a T.
func Add[T any](w *World, e Entity, v T) {
	list := ListOf[T](w.components)
	w.mustAlive("add", e, list.typ)
	list.Add(e, v)
}

// Set overwrites e's T with v. e must own a T.
func Set[T any](w *World, e Entity, v T) {
	list := ListOf[T](w.components)
	w.mustAlive("set", e, list.typ)
	list.Set(e, v)
}

// Upsert attaches or overwrites e's T.
func Upsert[T any](w *World, e Entity, v T) {
	list := ListOf[T](w.components)
	w.mustAlive("upsert", e, list.typ)
	list.Upsert(e, v)
}

// Remove detaches e's T and reports whether it had one.
func Remove[T any](w *World, e Entity) bool {
	list := ListOf[T](w.components)
	if !w.entities.Exists(e) {
		return false
	}
	return list.Remove(e)
}

// Has reports whether e is alive and owns a T.
func Has[T any](w *World, e Entity) bool {
	list := ListOf[T](w.components)
	return w.entities.Exists(e) && list.Has(e)
}

// Get returns a copy of e's T.
func Get[T any](w *World, e Entity) (T, bool) {
	list := ListOf[T](w.components)
	if !w.entities.Exists(e) {
		var zero T
		return zero, false
	}
	return list.Get(e)
}

// Borrow returns a mutable reference to e's T. The reference is valid until the next
// Add of a T.
func Borrow[T any](w *World, e Entity) (*T, bool) {
	list := ListOf[T](w.components)
	if !w.entities.Exists(e) {
		return nil, false
	}
	return list.Borrow(e)
}

// MustBorrow is Borrow for callers that know e owns a T.
func MustBorrow[T any](w *World, e Entity) *T {
	list := ListOf[T](w.components)
	w.mustAlive("borrow", e, list.typ)
	return list.MustBorrow(e)
}

// Each visits every T in storage order until fn returns false.
func Each[T any](w *World, fn func(e Entity, v *T) bool) {
	ListOf[T](w.components).Each(fn)
}

func (w *World) mustAlive(op string, e Entity, t ComponentType) {
	if !w.entities.Exists(e) {
		violation(op, e, t, ErrStaleEntity)
	}
}
