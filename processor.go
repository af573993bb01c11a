package ecs

import (
	"fmt"
	"time"
)

// ProcessorFunc adapts a batch function to the Processor interface.
type ProcessorFunc func(w *World, entities []Entity, delta float64)

func (f ProcessorFunc) Run(w *World, entities []Entity, delta float64) {
	f(w, entities, delta)
}

// EachEntity dispatches fn once per matched entity. Entities deleted earlier in the
// same dispatch are skipped.
func EachEntity(fn func(w *World, e Entity, delta float64)) Processor {
	return ProcessorFunc(func(w *World, entities []Entity, delta float64) {
		for _, e := range entities {
			if !w.Alive(e) {
				continue
			}
			fn(w, e, delta)
		}
	})
}

// Each1 dispatches fn once per matched entity with a mutable reference to its A.
// The aspect must guarantee A is present.
func Each1[A any](fn func(e Entity, a *A, delta float64)) Processor {
	return ProcessorFunc(func(w *World, entities []Entity, delta float64) {
		as := ListOf[A](w.components)
		for _, e := range entities {
			if !w.Alive(e) {
				continue
			}
			fn(e, as.MustBorrow(e), delta)
		}
	})
}

// Each2 dispatches fn once per matched entity with mutable references to its A and B.
// The aspect must guarantee both are present.
func Each2[A, B any](fn func(e Entity, a *A, b *B, delta float64)) Processor {
	return ProcessorFunc(func(w *World, entities []Entity, delta float64) {
		as := ListOf[A](w.components)
		bs := ListOf[B](w.components)
		for _, e := range entities {
			if !w.Alive(e) {
				continue
			}
			fn(e, as.MustBorrow(e), bs.MustBorrow(e), delta)
		}
	})
}

// TickFunc runs fn once per tick regardless of how many entities matched.
func TickFunc(fn func(delta float64)) Processor {
	return ProcessorFunc(func(_ *World, _ []Entity, delta float64) {
		fn(delta)
	})
}

// IntervalProcessor runs the wrapped processor at a fixed step. Elapsed time is
// accumulated every tick; once it exceeds Interval the interval is subtracted and the
// processor is matched and dispatched with Interval as its delta.
type IntervalProcessor struct {
	Interval  float64
	SinceLast float64
	Processor Processor
}

// Interval wraps p so that it runs every d of simulated time.
func Interval(p Processor, d time.Duration) *IntervalProcessor {
	return &IntervalProcessor{Interval: d.Seconds(), Processor: p}
}

func (p *IntervalProcessor) Step(delta float64) (float64, bool) {
	p.SinceLast += delta
	if p.SinceLast > p.Interval {
		p.SinceLast -= p.Interval
		return p.Interval, true
	}
	return 0, false
}

func (p *IntervalProcessor) Run(w *World, entities []Entity, delta float64) {
	p.Processor.Run(w, entities, delta)
}

func (p *IntervalProcessor) Name() string {
	return processorName(p.Processor)
}

func processorName(p Processor) string {
	if named, ok := p.(Named); ok {
		if name := named.Name(); name != "" {
			return name
		}
	}
	return fmt.Sprintf("%T", p)
}

var (
	_ Processor = ProcessorFunc(nil)
	_ Processor = (*IntervalProcessor)(nil)
	_ Stepper   = (*IntervalProcessor)(nil)
	_ Named     = (*IntervalProcessor)(nil)
)
