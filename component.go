package ecs

import (
	"reflect"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// ComponentType identifies a component storage bucket. It is derived from the Go type
// and only meaningful within one process run. Two types with the same qualified name,
// such as types declared inside different functions, are distinct component types that
// share a Name and Key.
type ComponentType struct {
	rtype reflect.Type
	key   uint64
	name  string
}

// Key returns a hash of the type's name, suitable as a metrics or log label.
func (t ComponentType) Key() uint64 {
	return t.key
}

// Name returns the package-qualified type name.
func (t ComponentType) Name() string {
	return t.name
}

func (t ComponentType) String() string {
	return t.name
}

var componentTypes sync.Map // reflect.Type -> ComponentType

// TypeOf returns the component type for T.
func TypeOf[T any]() ComponentType {
	return typeOfReflect(reflect.TypeFor[T]())
}

func typeOfReflect(rt reflect.Type) ComponentType {
	if cached, ok := componentTypes.Load(rt); ok {
		return cached.(ComponentType)
	}
	name := qualifiedName(rt)
	t := ComponentType{rtype: rt, key: xxhash.Sum64String(name), name: name}
	actual, _ := componentTypes.LoadOrStore(rt, t)
	return actual.(ComponentType)
}

func qualifiedName(rt reflect.Type) string {
	if rt.Name() != "" && rt.PkgPath() != "" {
		return rt.PkgPath() + "." + rt.Name()
	}
	return rt.String()
}

func typeOfValue(v any) ComponentType {
	return typeOfReflect(reflect.TypeOf(v))
}
