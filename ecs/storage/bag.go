package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrSlotVacant signals access to a slot that was never written or was already reclaimed.
	ErrSlotVacant = errors.New("storage: slot is vacant")
	// ErrSlotLive signals a write into a slot that still holds a live record.
	ErrSlotLive = errors.New("storage: slot is live")
	// ErrSlotOutOfRange signals a slot index beyond the bag's high-water mark.
	ErrSlotOutOfRange = errors.New("storage: slot out of range")
)

// SlotError describes a contract violation against a Bag. Bags panic with it.
type SlotError struct {
	Op   string
	Slot int
	Err  error
}

func (e *SlotError) Error() string {
	return fmt.Sprintf("storage: %s slot %d: %v", e.Op, e.Slot, e.Err)
}

func (e *SlotError) Unwrap() error {
	return e.Err
}

// Dropper is implemented by values that release resources when their record is dropped.
type Dropper interface {
	Drop()
}

// Bag is a dense, index-stable array of records of a single type.
//
// Removal marks a slot vacant without shifting any other slot, so indices handed out by
// Add stay valid for the lifetime of the record. Vacant slots are revived with Put; the
// bag itself does not track which vacant slot to reuse, that is left to its owner.
//
// A record is dropped exactly once: on Remove, on Replace (the old value) or on Clear.
// Dropping calls the bag's drop hook, then Drop on values implementing Dropper, then
// zeroes the record so referenced memory can be collected.
type Bag[T any] struct {
	values []T
	live   []bool
	count  int
	drop   func(*T)
}

// NewBag reserves room for capacity records without constructing any.
func NewBag[T any](capacity int) *Bag[T] {
	return NewBagWithDrop[T](capacity, nil)
}

// NewBagWithDrop is NewBag with a hook invoked on every dropped record.
func NewBagWithDrop[T any](capacity int, drop func(*T)) *Bag[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Bag[T]{
		values: make([]T, 0, capacity),
		live:   make([]bool, 0, capacity),
		drop:   drop,
	}
}

// Add appends a record and returns its slot.
func (b *Bag[T]) Add(v T) int {
	slot := len(b.values)
	b.values = append(b.values, v)
	b.live = append(b.live, true)
	b.count++
	return slot
}

// Put writes v into a vacant slot.
func (b *Bag[T]) Put(slot int, v T) {
	b.checkRange("put", slot)
	if b.live[slot] {
		panic(&SlotError{Op: "put", Slot: slot, Err: ErrSlotLive})
	}
	b.values[slot] = v
	b.live[slot] = true
	b.count++
}

// Get returns a copy of the record at slot.
func (b *Bag[T]) Get(slot int) T {
	b.checkLive("get", slot)
	return b.values[slot]
}

// Ref returns a mutable reference to the record at slot. The reference is invalidated by
// any call that grows the bag.
func (b *Bag[T]) Ref(slot int) *T {
	b.checkLive("ref", slot)
	return &b.values[slot]
}

// Replace drops the record at slot and stores v in its place.
func (b *Bag[T]) Replace(slot int, v T) {
	b.checkLive("replace", slot)
	b.dropAt(slot)
	b.values[slot] = v
}

// Remove drops the record at slot and marks the slot vacant.
func (b *Bag[T]) Remove(slot int) {
	b.checkLive("remove", slot)
	b.dropAt(slot)
	b.live[slot] = false
	b.count--
}

// Live reports whether slot holds a record.
func (b *Bag[T]) Live(slot int) bool {
	return slot >= 0 && slot < len(b.live) && b.live[slot]
}

// Len returns the number of live records.
func (b *Bag[T]) Len() int {
	return b.count
}

// Slots returns the number of slots ever written, live or vacant.
func (b *Bag[T]) Slots() int {
	return len(b.values)
}

// Cap returns the number of records the bag can hold before reallocating.
func (b *Bag[T]) Cap() int {
	return cap(b.values)
}

// Each visits live records in slot order until fn returns false.
func (b *Bag[T]) Each(fn func(slot int, v *T) bool) {
	for slot := range b.values {
		if !b.live[slot] {
			continue
		}
		if !fn(slot, &b.values[slot]) {
			return
		}
	}
}

// Clear drops every live record and forgets all slots. Backing memory is kept.
func (b *Bag[T]) Clear() {
	for slot := range b.values {
		if b.live[slot] {
			b.dropAt(slot)
		}
	}
	b.values = b.values[:0]
	b.live = b.live[:0]
	b.count = 0
}

func (b *Bag[T]) dropAt(slot int) {
	p := &b.values[slot]
	if b.drop != nil {
		b.drop(p)
	}
	if d, ok := any(p).(Dropper); ok {
		d.Drop()
	}
	var zero T
	*p = zero
}

func (b *Bag[T]) checkRange(op string, slot int) {
	if slot < 0 || slot >= len(b.values) {
		panic(&SlotError{Op: op, Slot: slot, Err: ErrSlotOutOfRange})
	}
}

func (b *Bag[T]) checkLive(op string, slot int) {
	b.checkRange(op, slot)
	if !b.live[slot] {
		panic(&SlotError{Op: op, Slot: slot, Err: ErrSlotVacant})
	}
}
