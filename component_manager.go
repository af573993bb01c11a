package ecs

import (
	"fmt"
	"reflect"
)

// ComponentOption customises the list created for a component type at registration.
type ComponentOption interface {
	applyComponent(*componentConfig)
}

type componentConfig struct {
	capacity int
	drop     any
}

type componentOptionFunc func(*componentConfig)

func (f componentOptionFunc) applyComponent(c *componentConfig) { f(c) }

// WithCapacity reserves room for n components of the registered type.
func WithCapacity(n int) ComponentOption {
	return componentOptionFunc(func(c *componentConfig) { c.capacity = n })
}

// WithDrop installs a hook run on every component value the list drops: on removal,
// on overwrite and when the list is cleared.
func WithDrop[T any](fn func(*T)) ComponentOption {
	return componentOptionFunc(func(c *componentConfig) { c.drop = fn })
}

// ComponentManager maps component types to their lists. It is the single source of
// truth for whether an entity owns a component.
type ComponentManager struct {
	stores          map[reflect.Type]componentStore
	order           []ComponentType
	defaultCapacity int
}

// NewComponentManager constructs an empty manager. defaultCapacity is reserved for
// every list registered without WithCapacity.
func NewComponentManager(defaultCapacity int) *ComponentManager {
	return &ComponentManager{
		stores:          make(map[reflect.Type]componentStore),
		defaultCapacity: defaultCapacity,
	}
}

// Register creates the list for T. Registering a type twice returns
// ErrComponentAlreadyRegistered.
func Register[T any](m *ComponentManager, opts ...ComponentOption) error {
	cfg := componentConfig{capacity: m.defaultCapacity}
	for _, opt := range opts {
		if opt != nil {
			opt.applyComponent(&cfg)
		}
	}

	var drop func(*T)
	if cfg.drop != nil {
		fn, ok := cfg.drop.(func(*T))
		if !ok {
			violation("register", Entity{}, TypeOf[T](), fmt.Errorf("%w: drop hook %T", ErrComponentTypeMismatch, cfg.drop))
		}
		drop = fn
	}
	return m.register(newComponentList[T](cfg.capacity, drop))
}

func (m *ComponentManager) register(store componentStore) error {
	t := store.Type()
	if _, ok := m.stores[t.rtype]; ok {
		return fmt.Errorf("%w: %s", ErrComponentAlreadyRegistered, t)
	}
	m.stores[t.rtype] = store
	m.order = append(m.order, t)
	return nil
}

// ListOf returns the list for T. T must be registered.
func ListOf[T any](m *ComponentManager) *ComponentList[T] {
	t := TypeOf[T]()
	store := m.lookup("list", Entity{}, t)
	list, ok := store.(*ComponentList[T])
	if !ok {
		violation("list", Entity{}, t, fmt.Errorf("%w: stored %s", ErrComponentTypeMismatch, store.elemType()))
	}
	return list
}

// Registered reports whether t has a list.
func (m *ComponentManager) Registered(t ComponentType) bool {
	_, ok := m.stores[t.rtype]
	return ok
}

// Types lists registered component types in registration order.
func (m *ComponentManager) Types() []ComponentType {
	return append([]ComponentType(nil), m.order...)
}

// HasID reports whether e owns a component of type t. t must be registered.
func (m *ComponentManager) HasID(e Entity, t ComponentType) bool {
	return m.lookup("has", e, t).Has(e)
}

// Remove drops e's component of type t, if any. t must be registered.
func (m *ComponentManager) Remove(e Entity, t ComponentType) bool {
	return m.lookup("remove", e, t).Remove(e)
}

// Len returns how many entities own a component of type t.
func (m *ComponentManager) Len(t ComponentType) int {
	return m.lookup("len", Entity{}, t).Len()
}

// ClearType drops every component of type t while keeping the type registered.
func (m *ComponentManager) ClearType(t ComponentType) {
	m.lookup("clear", Entity{}, t).Clear()
}

// ClearEntity removes e from every registered list.
func (m *ComponentManager) ClearEntity(e Entity) int {
	removed := 0
	for _, t := range m.order {
		if m.stores[t.rtype].Remove(e) {
			removed++
		}
	}
	return removed
}

// AddValue attaches v to e, routing on v's dynamic type. It backs type-erased callers
// such as Prefab; typed callers use Add.
func (m *ComponentManager) AddValue(e Entity, v any) {
	if v == nil {
		violation("add", e, ComponentType{}, fmt.Errorf("%w: nil value", ErrComponentTypeMismatch))
	}
	t := typeOfValue(v)
	m.lookup("add", e, t).addAny(e, v)
}

// Value returns e's component of type t as an interface value.
func (m *ComponentManager) Value(e Entity, t ComponentType) (any, bool) {
	return m.lookup("get", e, t).getAny(e)
}

func (m *ComponentManager) lookup(op string, e Entity, t ComponentType) componentStore {
	store, ok := m.stores[t.rtype]
	if !ok {
		violation(op, e, t, ErrComponentNotRegistered)
	}
	return store
}

var _ Membership = (*ComponentManager)(nil)
