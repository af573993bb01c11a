package ecs

import (
	"errors"
	"fmt"
)

var (
	// ErrComponentAlreadyRegistered indicates an attempt to register the same component twice.
	ErrComponentAlreadyRegistered = errors.New("ecs: component already registered")
	// ErrComponentNotRegistered signals lookup on an unknown component type.
	ErrComponentNotRegistered = errors.New("ecs: component not registered")
	// ErrComponentExists is raised when adding a component the entity already owns.
	ErrComponentExists = errors.New("ecs: entity already has component")
	// ErrComponentMissing is raised when overwriting or requiring a component the entity lacks.
	ErrComponentMissing = errors.New("ecs: entity does not have component")
	// ErrComponentTypeMismatch signals a value whose type differs from the store's element type.
	ErrComponentTypeMismatch = errors.New("ecs: component type mismatch")
	// ErrStaleEntity signals use of an entity handle that was deleted or never created.
	ErrStaleEntity = errors.New("ecs: stale entity")
	// ErrNilProcessor is raised when registering a nil processor.
	ErrNilProcessor = errors.New("ecs: nil processor")
	// ErrNilAspect is raised when registering a processor without an aspect.
	ErrNilAspect = errors.New("ecs: nil aspect")
	// ErrUnknownProcessor signals a processor handle that does not belong to the manager.
	ErrUnknownProcessor = errors.New("ecs: unknown processor")
	// ErrReentrantUpdate is raised when a processor calls World.Update.
	ErrReentrantUpdate = errors.New("ecs: update called during update")
	// ErrInvalidDelta is raised for negative or NaN tick deltas.
	ErrInvalidDelta = errors.New("ecs: invalid delta")
	// ErrInvalidConfig is returned when a configuration fails validation.
	ErrInvalidConfig = errors.New("ecs: invalid config")
)

// ContractError reports a programming error against the runtime. The runtime never
// recovers from one: operations raise it with panic so the failure surfaces at the call
// site that broke the contract.
type ContractError struct {
	Op        string
	Entity    Entity
	Component ComponentType
	Err       error
}

func (e *ContractError) Error() string {
	switch {
	case !e.Entity.IsZero() && e.Component.name != "":
		return fmt.Sprintf("%v: %s %s on %v", e.Err, e.Op, e.Component, e.Entity)
	case e.Component.name != "":
		return fmt.Sprintf("%v: %s %s", e.Err, e.Op, e.Component)
	case !e.Entity.IsZero():
		return fmt.Sprintf("%v: %s on %v", e.Err, e.Op, e.Entity)
	default:
		return fmt.Sprintf("%v: %s", e.Err, e.Op)
	}
}

func (e *ContractError) Unwrap() error {
	return e.Err
}

func violation(op string, e Entity, t ComponentType, err error) {
	panic(&ContractError{Op: op, Entity: e, Component: t, Err: err})
}
