package ecs

import (
	"fmt"
	"time"
)

// ProcessorOption configures a processor at registration.
type ProcessorOption func(*processorEntry)

// WithName overrides the processor's name.
func WithName(name string) ProcessorOption {
	return func(e *processorEntry) { e.name = name }
}

// WithTickInterval runs the processor only on every Every-th tick, shifted by Offset.
func WithTickInterval(interval TickInterval) ProcessorOption {
	return func(e *processorEntry) { e.interval = interval }
}

// WithInterval wraps the processor in an IntervalProcessor stepping every d.
func WithInterval(d time.Duration) ProcessorOption {
	return func(e *processorEntry) {
		if d > 0 {
			e.processor = Interval(e.processor, d)
		}
	}
}

// ProcessorHandle references a registered processor.
type ProcessorHandle struct {
	index int
	name  string
}

// Name returns the name the processor was registered under.
func (h ProcessorHandle) Name() string { return h.name }

type processorEntry struct {
	name      string
	processor Processor
	aspect    Aspect
	interval  TickInterval
	disabled  bool
	entities  []Entity
	runs      uint64
}

// ProcessorManager binds processors to aspects and runs them in registration order.
//
// Every tick each processor goes through two phases: its aspect is evaluated against
// the active entities and the result replaces the cached set, then the processor is
// dispatched over that set. Matching happens right before each processor's own
// dispatch, so structural changes made by an earlier processor are visible to later
// ones in the same tick.
type ProcessorManager struct {
	entries   []*processorEntry
	tickIndex uint64
	observer  ProcessorObserver
}

// NewProcessorManager constructs an empty manager.
func NewProcessorManager() *ProcessorManager {
	return &ProcessorManager{observer: noopObserver{}}
}

// Register appends p, bound to aspect, to the run order.
func (m *ProcessorManager) Register(p Processor, aspect Aspect, opts ...ProcessorOption) ProcessorHandle {
	if p == nil {
		violation("register processor", Entity{}, ComponentType{}, ErrNilProcessor)
	}
	if aspect == nil {
		violation("register processor", Entity{}, ComponentType{}, ErrNilAspect)
	}

	entry := &processorEntry{processor: p, aspect: aspect}
	for _, opt := range opts {
		if opt != nil {
			opt(entry)
		}
	}
	if entry.name == "" {
		entry.name = processorName(p)
	}

	m.entries = append(m.entries, entry)
	return ProcessorHandle{index: len(m.entries) - 1, name: entry.name}
}

// Configure applies options to an already registered processor.
func (m *ProcessorManager) Configure(h ProcessorHandle, opts ...ProcessorOption) {
	entry := m.entry("configure", h)
	for _, opt := range opts {
		if opt != nil {
			opt(entry)
		}
	}
}

// SetEnabled toggles whether the processor runs. Disabled processors are reported as
// skipped.
func (m *ProcessorManager) SetEnabled(h ProcessorHandle, enabled bool) {
	m.entry("enable", h).disabled = !enabled
}

// Enabled reports whether the processor runs.
func (m *ProcessorManager) Enabled(h ProcessorHandle) bool {
	return !m.entry("enabled", h).disabled
}

// Matched returns a copy of the entity set computed for the processor's last run.
func (m *ProcessorManager) Matched(h ProcessorHandle) []Entity {
	return append([]Entity(nil), m.entry("matched", h).entities...)
}

// Runs returns how many times the processor has been dispatched.
func (m *ProcessorManager) Runs(h ProcessorHandle) uint64 {
	return m.entry("runs", h).runs
}

// Names lists processor names in run order.
func (m *ProcessorManager) Names() []string {
	out := make([]string, len(m.entries))
	for i, entry := range m.entries {
		out[i] = entry.name
	}
	return out
}

// Len returns the number of registered processors.
func (m *ProcessorManager) Len() int {
	return len(m.entries)
}

// TickIndex returns the number of completed ticks.
func (m *ProcessorManager) TickIndex() uint64 {
	return m.tickIndex
}

// Update runs one tick over w: every processor, in registration order, with the same
// delta.
func (m *ProcessorManager) Update(w *World, delta float64) {
	for _, entry := range m.entries {
		m.runEntry(w, entry, delta)
	}
	if w.visibility == VisibilityEndOfTick {
		w.flushCommands()
	}
	m.tickIndex++
}

func (m *ProcessorManager) runEntry(w *World, entry *processorEntry, delta float64) {
	summary := ProcessorSummary{Processor: entry.name, Tick: m.tickIndex, Delta: delta}
	start := time.Now()

	if entry.disabled || !shouldRunTick(m.tickIndex, entry.interval) {
		summary.Skipped = true
		m.observer.ProcessorCompleted(summary)
		return
	}
	if stepper, ok := entry.processor.(Stepper); ok {
		step, due := stepper.Step(delta)
		if !due {
			summary.Skipped = true
			m.observer.ProcessorCompleted(summary)
			return
		}
		summary.Delta = step
	}

	m.match(w, entry)
	m.dispatch(w, entry, summary.Delta)
	entry.runs++

	if w.visibility == VisibilityImmediate {
		summary.Commands = w.flushCommands()
	}
	summary.Matched = len(entry.entities)
	summary.Duration = time.Since(start)
	m.observer.ProcessorCompleted(summary)
}

// dispatch runs the processor. If it panics, commands it deferred are discarded before
// the panic continues, so a failed dispatch leaves no partial work queued.
func (m *ProcessorManager) dispatch(w *World, entry *processorEntry, delta float64) {
	snapshot := w.commands.Snapshot()
	defer func() {
		if r := recover(); r != nil {
			discarded := max(0, w.commands.Len()-snapshot)
			w.commands.Restore(snapshot)
			w.logger.Error("processor panicked", "processor", entry.name, "tick", m.tickIndex, "discarded_commands", discarded)
			panic(r)
		}
	}()
	entry.processor.Run(w, entry.entities, delta)
}

func (m *ProcessorManager) match(w *World, entry *processorEntry) {
	matched := entry.entities[:0]
	w.entities.eachActive(func(e Entity) {
		if entry.aspect.Check(w.components, e) {
			matched = append(matched, e)
		}
	})
	entry.entities = matched
}

func (m *ProcessorManager) entry(op string, h ProcessorHandle) *processorEntry {
	if h.index < 0 || h.index >= len(m.entries) || m.entries[h.index].name != h.name {
		violation(op, Entity{}, ComponentType{}, fmt.Errorf("%w: %s", ErrUnknownProcessor, h.name))
	}
	return m.entries[h.index]
}

func shouldRunTick(tick uint64, interval TickInterval) bool {
	every := uint64(interval.Every)
	if every == 0 {
		return true
	}
	offset := uint64(interval.Offset % interval.Every)
	return (tick+offset)%every == 0
}
