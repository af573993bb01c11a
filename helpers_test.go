package ecs_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TomBebbington/ecs"
)

type Position struct {
	X, Y float64
}

type Velocity struct {
	X, Y float64
}

type Health int

type Frozen struct{}

// requireContractViolation runs fn and asserts it panics with a *ecs.ContractError
// wrapping target.
func requireContractViolation(t *testing.T, target error, fn func()) *ecs.ContractError {
	t.Helper()
	var contract *ecs.ContractError
	func() {
		defer func() {
			r := recover()
			require.NotNil(t, r, "expected a contract violation")
			err, ok := r.(error)
			require.True(t, ok, "panic value %v is not an error", r)
			require.ErrorIs(t, err, target)
			require.ErrorAs(t, err, &contract)
		}()
		fn()
	}()
	return contract
}

func newTestWorld(t *testing.T, opts ...ecs.WorldOption) *ecs.World {
	t.Helper()
	w := ecs.NewWorld(opts...)
	require.NoError(t, ecs.RegisterComponent[Position](w))
	require.NoError(t, ecs.RegisterComponent[Velocity](w))
	require.NoError(t, ecs.RegisterComponent[Health](w))
	require.NoError(t, ecs.RegisterComponent[Frozen](w))
	return w
}
