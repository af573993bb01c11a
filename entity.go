package ecs

import (
	"fmt"
	"iter"
)

// Entity identifies an entity and encodes a generation for stale-handle detection.
type Entity struct {
	index      uint32
	generation uint32
}

// Index returns the backing index of the entity. Indices are recycled after deletion.
func (e Entity) Index() uint32 {
	return e.index
}

// Generation returns the generation counter associated with the entity.
func (e Entity) Generation() uint32 {
	return e.generation
}

// IsZero reports whether the handle is the zero value, which never names an entity.
func (e Entity) IsZero() bool {
	return e.index == 0 && e.generation == 0
}

// String renders the entity handle for debugging purposes.
func (e Entity) String() string {
	return fmt.Sprintf("Entity(%d:%d)", e.index, e.generation)
}

// EntityFromParts constructs a handle from raw parts.
func EntityFromParts(index, generation uint32) Entity {
	return Entity{index: index, generation: generation}
}

// EntityManager allocates and recycles entity indices and tracks which entities are
// active, i.e. visible to processor matching.
//
// Indices are taken from the free stack before the watermark grows. Every create and
// every remove bumps the index's generation, so a handle to a deleted entity never
// matches the entity that later reuses its index.
type EntityManager struct {
	generations []uint32
	free        []uint32
	active      []uint32
	activePos   []int32
	live        int
}

// NewEntityManager constructs an empty manager with room for capacity entities.
func NewEntityManager(capacity int) *EntityManager {
	if capacity < 0 {
		capacity = 0
	}
	return &EntityManager{
		generations: make([]uint32, 0, capacity),
		activePos:   make([]int32, 0, capacity),
		active:      make([]uint32, 0, capacity),
	}
}

// Create issues a new, inactive entity, recycling indices when possible.
func (m *EntityManager) Create() Entity {
	var index uint32
	if n := len(m.free); n > 0 {
		index = m.free[n-1]
		m.free = m.free[:n-1]
	} else {
		index = uint32(len(m.generations))
		m.generations = append(m.generations, 0)
		m.activePos = append(m.activePos, -1)
	}

	m.generations[index]++
	m.live++
	return Entity{index: index, generation: m.generations[index]}
}

// Remove releases the entity, returning false when the handle is stale. Components are
// not touched; callers clear them first.
func (m *EntityManager) Remove(e Entity) bool {
	if !m.Exists(e) {
		return false
	}
	m.deactivate(e.index)
	m.generations[e.index]++
	m.free = append(m.free, e.index)
	m.live--
	return true
}

// Exists reports whether the handle refers to a currently allocated entity.
func (m *EntityManager) Exists(e Entity) bool {
	if e.IsZero() || e.index >= uint32(len(m.generations)) {
		return false
	}
	return m.generations[e.index] == e.generation
}

// Enable makes the entity visible to processor matching.
func (m *EntityManager) Enable(e Entity) {
	if !m.Exists(e) {
		violation("enable", e, ComponentType{}, ErrStaleEntity)
	}
	if m.activePos[e.index] >= 0 {
		return
	}
	m.activePos[e.index] = int32(len(m.active))
	m.active = append(m.active, e.index)
}

// Disable hides the entity from processor matching without touching its components.
func (m *EntityManager) Disable(e Entity) {
	if !m.Exists(e) {
		violation("disable", e, ComponentType{}, ErrStaleEntity)
	}
	m.deactivate(e.index)
}

// Active reports whether the entity exists and is enabled.
func (m *EntityManager) Active(e Entity) bool {
	return m.Exists(e) && m.activePos[e.index] >= 0
}

// Count returns the number of live entities, active or not.
func (m *EntityManager) Count() int {
	return m.live
}

// ActiveCount returns the number of enabled entities.
func (m *EntityManager) ActiveCount() int {
	return len(m.active)
}

// Watermark returns one past the highest index ever issued.
func (m *EntityManager) Watermark() int {
	return len(m.generations)
}

// Iter returns the active entities as of the call. The sequence can be ranged over any
// number of times and is unaffected by later changes to the manager.
func (m *EntityManager) Iter() iter.Seq[Entity] {
	snapshot := m.Snapshot()
	return func(yield func(Entity) bool) {
		for _, e := range snapshot {
			if !yield(e) {
				return
			}
		}
	}
}

// Snapshot returns the active entities as a fresh slice.
func (m *EntityManager) Snapshot() []Entity {
	out := make([]Entity, len(m.active))
	for i, index := range m.active {
		out[i] = Entity{index: index, generation: m.generations[index]}
	}
	return out
}

// eachActive visits active entities in place. fn must not change the active set.
func (m *EntityManager) eachActive(fn func(Entity)) {
	for _, index := range m.active {
		fn(Entity{index: index, generation: m.generations[index]})
	}
}

func (m *EntityManager) deactivate(index uint32) {
	pos := m.activePos[index]
	if pos < 0 {
		return
	}
	last := len(m.active) - 1
	moved := m.active[last]
	m.active[pos] = moved
	m.activePos[moved] = pos
	m.active = m.active[:last]
	m.activePos[index] = -1
}
