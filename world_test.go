package ecs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TomBebbington/ecs"
)

func TestWorldMovementScenario(t *testing.T) {
	w := newTestWorld(t)
	e := w.Create()
	ecs.Add(w, e, Position{X: 1, Y: -2})
	ecs.Add(w, e, Velocity{X: 3, Y: 2})
	w.RegisterProcessor(movement{}, ecs.All(ecs.TypeOf[Position](), ecs.TypeOf[Velocity]()))

	w.Update(1.0)

	p, ok := ecs.Get[Position](w, e)
	require.True(t, ok)
	assert.Equal(t, Position{X: 4, Y: 0}, p)
}

func TestWorldBatchBuildScenario(t *testing.T) {
	w := newTestWorld(t)
	entities := w.BuildEntities(10, ecs.BuilderFunc(func(ref ecs.EntityRef) {
		ecs.With(ecs.With(ref, Position{}), Velocity{X: 1, Y: 1})
	}))
	require.Len(t, entities, 10)
	w.RegisterProcessor(movement{}, ecs.All(ecs.TypeOf[Position](), ecs.TypeOf[Velocity]()))

	w.Update(1.0)

	for _, e := range entities {
		p, ok := ecs.Get[Position](w, e)
		require.True(t, ok)
		assert.Equal(t, Position{X: 1, Y: 1}, p)
	}
}

func TestWorldDeleteScenario(t *testing.T) {
	w := newTestWorld(t)
	e := w.Create()
	ecs.Add(w, e, Position{})
	ecs.Add(w, e, Velocity{})

	require.True(t, w.DeleteEntity(e))
	assert.False(t, ecs.Has[Position](w, e))
	assert.False(t, ecs.Has[Velocity](w, e))
	assert.False(t, w.DeleteEntity(e))

	reused := w.Create()
	require.Equal(t, e.Index(), reused.Index())
	assert.False(t, ecs.Has[Position](w, reused))
	assert.False(t, ecs.Has[Velocity](w, reused))
	assert.False(t, w.Components().HasID(reused, ecs.TypeOf[Position]()))

	ecs.Add(w, reused, Position{X: 9})
	assert.True(t, ecs.Has[Position](w, reused))
	assert.False(t, ecs.Has[Position](w, e), "stale handle stays empty")
}

func TestWorldStaleEntityAccess(t *testing.T) {
	w := newTestWorld(t)
	e := w.Create()
	ecs.Add(w, e, Health(1))
	w.DeleteEntity(e)

	violation := requireContractViolation(t, ecs.ErrStaleEntity, func() {
		ecs.Add(w, e, Position{})
	})
	assert.Equal(t, e, violation.Entity)
	assert.Equal(t, "add", violation.Op)
	requireContractViolation(t, ecs.ErrStaleEntity, func() { ecs.Set(w, e, Health(2)) })
	requireContractViolation(t, ecs.ErrStaleEntity, func() { ecs.Upsert(w, e, Health(2)) })
	requireContractViolation(t, ecs.ErrStaleEntity, func() { ecs.MustBorrow[Health](w, e) })

	_, ok := ecs.Get[Health](w, e)
	assert.False(t, ok)
	ref, ok := ecs.Borrow[Health](w, e)
	assert.False(t, ok)
	assert.Nil(t, ref)
	assert.False(t, ecs.Remove[Health](w, e))
}

func TestWorldNewEntityStartsDisabled(t *testing.T) {
	w := newTestWorld(t)
	ref := w.NewEntity()
	ecs.With(ref, Position{})

	h := w.RegisterProcessor(ecs.EachEntity(func(*ecs.World, ecs.Entity, float64) {}), ecs.Everything())
	w.Update(1)
	assert.Empty(t, w.Processors().Matched(h))
	assert.True(t, w.Alive(ref.Entity()))
	assert.False(t, w.Active(ref.Entity()))

	ref.Enable()
	w.Update(1)
	assert.Equal(t, []ecs.Entity{ref.Entity()}, w.Processors().Matched(h))
	assert.Same(t, w, ref.World())
}

func TestWorldBuildEntitiesAllocatesBeforeBuilding(t *testing.T) {
	w := newTestWorld(t)
	var activeDuringBuild []int
	w.BuildEntities(3, ecs.BuilderFunc(func(ref ecs.EntityRef) {
		activeDuringBuild = append(activeDuringBuild, ref.World().Entities().ActiveCount())
		assert.Equal(t, 3, ref.World().Entities().Count())
	}))

	assert.Equal(t, []int{0, 0, 0}, activeDuringBuild)
	assert.Equal(t, 3, w.Entities().ActiveCount())
	assert.Nil(t, w.BuildEntities(0, nil))
}

func TestWorldPrefab(t *testing.T) {
	w := newTestWorld(t)
	prefab := ecs.Prefab(Position{X: 1}, Health(5))

	a := w.BuildEntity(prefab)
	b := w.BuildEntity(prefab)
	ecs.MustBorrow[Position](w, a).X = 10

	pb, _ := ecs.Get[Position](w, b)
	assert.Equal(t, 1.0, pb.X, "prefab values are copied per entity")
	hb, _ := ecs.Get[Health](w, b)
	assert.Equal(t, Health(5), hb)
	assert.True(t, w.Active(a))
}

func TestWorldUpdateViolations(t *testing.T) {
	w := newTestWorld(t)
	requireContractViolation(t, ecs.ErrInvalidDelta, func() { w.Update(-1) })

	w.RegisterProcessor(ecs.ProcessorFunc(func(w *ecs.World, _ []ecs.Entity, _ float64) {
		w.Update(1)
	}), ecs.Everything())
	requireContractViolation(t, ecs.ErrReentrantUpdate, func() { w.Update(1) })
}

func TestWorldUnregisteredComponent(t *testing.T) {
	w := ecs.NewWorld()
	e := w.Create()
	requireContractViolation(t, ecs.ErrComponentNotRegistered, func() {
		ecs.Add(w, e, Position{})
	})
	requireContractViolation(t, ecs.ErrComponentNotRegistered, func() {
		ecs.Has[Position](w, e)
	})

	require.NoError(t, ecs.RegisterComponent[Position](w))
	require.ErrorIs(t, ecs.RegisterComponent[Position](w), ecs.ErrComponentAlreadyRegistered)
}

func TestWorldEach(t *testing.T) {
	w := newTestWorld(t)
	for i := range 4 {
		ecs.Add(w, w.Create(), Health(i))
	}
	total := Health(0)
	ecs.Each(w, func(_ ecs.Entity, h *Health) bool {
		total += *h
		return true
	})
	assert.Equal(t, Health(6), total)
}

func TestWorldResources(t *testing.T) {
	w := ecs.NewWorld()
	w.Resources().Set("clock", 123)

	value, ok := ecs.Resource[int](w, "clock")
	require.True(t, ok)
	assert.Equal(t, 123, value)
	_, ok = ecs.Resource[string](w, "clock")
	assert.False(t, ok, "wrong type reports absence")

	seen := 0
	w.Resources().Range(func(string, any) bool {
		seen++
		return true
	})
	assert.Equal(t, 1, seen)

	w.Resources().Delete("clock")
	_, ok = w.Resources().Get("clock")
	assert.False(t, ok)
}

func TestWorldIDsAreUnique(t *testing.T) {
	a, b := ecs.NewWorld(), ecs.NewWorld()
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestWorldWithInvalidConfig(t *testing.T) {
	requireContractViolation(t, ecs.ErrInvalidConfig, func() {
		ecs.NewWorld(ecs.WithConfig(&ecs.Config{Visibility: "later"}))
	})
	requireContractViolation(t, ecs.ErrInvalidConfig, func() {
		ecs.NewWorld(ecs.WithConfig(&ecs.Config{Metrics: ecs.MetricsConfig{Format: "xml"}}))
	})
}

func TestEntityRefHasAndRemove(t *testing.T) {
	w := newTestWorld(t)
	pos := ecs.TypeOf[Position]()
	e := w.BuildEntity(ecs.BuilderFunc(func(ref ecs.EntityRef) {
		ecs.With(ref, Position{})
		assert.True(t, ref.Has(pos))
		if !ref.Has(ecs.TypeOf[Frozen]()) {
			ecs.With(ref, Frozen{})
		}
		assert.True(t, ref.Remove(pos))
		assert.False(t, ref.Remove(pos))
		assert.False(t, ref.Has(pos))
	}))

	assert.False(t, ecs.Has[Position](w, e))
	assert.True(t, ecs.Has[Frozen](w, e))
}
