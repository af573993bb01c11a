package ecs

import (
	"fmt"
	"reflect"

	"github.com/TomBebbington/ecs/ecs/storage"
)

// componentStore is the erased view of a ComponentList held by the ComponentManager.
type componentStore interface {
	Type() ComponentType
	Has(Entity) bool
	Remove(Entity) bool
	Len() int
	Clear()
	elemType() reflect.Type
	addAny(Entity, any)
	getAny(Entity) (any, bool)
}

// ComponentList stores every component of one type. Values live in a dense Bag; a
// sparse index maps entity indices to slots and freed slots are reused before the bag
// grows, so removal never moves another entity's component.
type ComponentList[T any] struct {
	typ    ComponentType
	bag    *storage.Bag[T]
	sparse []int32
	owners []Entity
	free   []int
}

func newComponentList[T any](capacity int, drop func(*T)) *ComponentList[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &ComponentList[T]{
		typ:    TypeOf[T](),
		bag:    storage.NewBagWithDrop(capacity, drop),
		owners: make([]Entity, 0, capacity),
	}
}

// Type returns the component type stored in the list.
func (l *ComponentList[T]) Type() ComponentType {
	return l.typ
}

// Len returns the number of entities owning a component in the list.
func (l *ComponentList[T]) Len() int {
	return l.bag.Len()
}

// Has reports whether e owns a component in the list.
func (l *ComponentList[T]) Has(e Entity) bool {
	_, ok := l.slotOf(e)
	return ok
}

// Add attaches v to e. Adding to an entity that already owns a component is a contract
// violation; use Set to overwrite.
func (l *ComponentList[T]) Add(e Entity, v T) {
	if l.Has(e) {
		violation("add", e, l.typ, ErrComponentExists)
	}
	l.reclaimStale(e)

	var slot int
	if n := len(l.free); n > 0 {
		slot = l.free[n-1]
		l.free = l.free[:n-1]
		l.bag.Put(slot, v)
		l.owners[slot] = e
	} else {
		slot = l.bag.Add(v)
		l.owners = append(l.owners, e)
	}

	for int(e.index) >= len(l.sparse) {
		l.sparse = append(l.sparse, -1)
	}
	l.sparse[e.index] = int32(slot)
}

// Set overwrites the component owned by e, dropping the previous value.
func (l *ComponentList[T]) Set(e Entity, v T) {
	slot, ok := l.slotOf(e)
	if !ok {
		violation("set", e, l.typ, ErrComponentMissing)
	}
	l.bag.Replace(slot, v)
}

// Upsert adds v to e or overwrites the component e already owns.
func (l *ComponentList[T]) Upsert(e Entity, v T) {
	if slot, ok := l.slotOf(e); ok {
		l.bag.Replace(slot, v)
		return
	}
	l.Add(e, v)
}

// Remove drops the component owned by e and frees its slot. It reports whether there was
// anything to remove.
func (l *ComponentList[T]) Remove(e Entity) bool {
	slot, ok := l.slotOf(e)
	if !ok {
		return false
	}
	l.release(e.index, slot)
	return true
}

// Get returns a copy of the component owned by e.
func (l *ComponentList[T]) Get(e Entity) (T, bool) {
	slot, ok := l.slotOf(e)
	if !ok {
		var zero T
		return zero, false
	}
	return l.bag.Get(slot), true
}

// Borrow returns a mutable reference to the component owned by e. The reference is
// invalidated when the list grows.
func (l *ComponentList[T]) Borrow(e Entity) (*T, bool) {
	slot, ok := l.slotOf(e)
	if !ok {
		return nil, false
	}
	return l.bag.Ref(slot), true
}

// MustBorrow is Borrow for callers whose aspect guarantees the component is present.
func (l *ComponentList[T]) MustBorrow(e Entity) *T {
	slot, ok := l.slotOf(e)
	if !ok {
		violation("borrow", e, l.typ, ErrComponentMissing)
	}
	return l.bag.Ref(slot)
}

// Each visits components in slot order until fn returns false.
func (l *ComponentList[T]) Each(fn func(e Entity, v *T) bool) {
	l.bag.Each(func(slot int, v *T) bool {
		return fn(l.owners[slot], v)
	})
}

// Clear drops every component in the list.
func (l *ComponentList[T]) Clear() {
	l.bag.Clear()
	l.owners = l.owners[:0]
	l.free = l.free[:0]
	for i := range l.sparse {
		l.sparse[i] = -1
	}
}

func (l *ComponentList[T]) slotOf(e Entity) (int, bool) {
	if int(e.index) >= len(l.sparse) {
		return -1, false
	}
	slot := l.sparse[e.index]
	if slot < 0 || l.owners[slot] != e {
		return -1, false
	}
	return int(slot), true
}

// reclaimStale frees a record left behind by an earlier owner of e's index.
func (l *ComponentList[T]) reclaimStale(e Entity) {
	if int(e.index) >= len(l.sparse) {
		return
	}
	if slot := l.sparse[e.index]; slot >= 0 {
		l.release(e.index, int(slot))
	}
}

func (l *ComponentList[T]) release(index uint32, slot int) {
	l.bag.Remove(slot)
	l.owners[slot] = Entity{}
	l.free = append(l.free, slot)
	l.sparse[index] = -1
}

func (l *ComponentList[T]) elemType() reflect.Type {
	return reflect.TypeFor[T]()
}

func (l *ComponentList[T]) addAny(e Entity, v any) {
	typed, ok := v.(T)
	if !ok {
		violation("add", e, l.typ, fmt.Errorf("%w: got %T", ErrComponentTypeMismatch, v))
	}
	l.Add(e, typed)
}

func (l *ComponentList[T]) getAny(e Entity) (any, bool) {
	v, ok := l.Get(e)
	if !ok {
		return nil, false
	}
	return v, true
}

var _ componentStore = (*ComponentList[struct{}])(nil)
