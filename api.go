package ecs

import (
	"io"
	"time"
)

// Membership is the read-only view aspects use to query which components an entity owns.
type Membership interface {
	HasID(e Entity, t ComponentType) bool
}

// Aspect selects the entities a processor is interested in.
type Aspect interface {
	Check(m Membership, e Entity) bool
}

// Processor acts on the entities matched by its aspect once per tick. delta is in seconds.
type Processor interface {
	Run(w *World, entities []Entity, delta float64)
}

// Named processors report a stable name for configuration, logs and metrics.
type Named interface {
	Name() string
}

// Stepper gates a processor on elapsed time. Step is called once per tick with the
// frame delta and returns the delta to dispatch with and whether to run at all.
type Stepper interface {
	Step(delta float64) (float64, bool)
}

// Command represents a deferred mutation applied after a processor (or a tick) ends.
type Command interface {
	Apply(w *World)
}

// EntityBuilder populates a freshly created entity before it is enabled.
type EntityBuilder interface {
	Build(ref EntityRef)
}

// Logger captures structured log output from the runtime.
type Logger interface {
	With(key string, value any) Logger
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// ResourceContainer holds world-scoped values shared between processors.
type ResourceContainer interface {
	Get(name string) (any, bool)
	Set(name string, value any)
	Delete(name string)
	Range(func(string, any) bool)
}

// TickInterval controls how frequently a processor runs, counted in ticks.
type TickInterval struct {
	Every  uint32
	Offset uint32
}

// Visibility selects when deferred commands are applied during a tick.
type Visibility uint8

const (
	// VisibilityImmediate applies deferred commands after each processor, so the next
	// processor in the same tick matches against them.
	VisibilityImmediate Visibility = iota
	// VisibilityEndOfTick applies deferred commands once every processor has run.
	VisibilityEndOfTick
)

func (v Visibility) String() string {
	switch v {
	case VisibilityEndOfTick:
		return "end_of_tick"
	default:
		return "immediate"
	}
}

// InstrumentationConfig configures logging and metrics sinks for processor runs.
type InstrumentationConfig struct {
	Observer                ProcessorObserver
	EnableStructuredLogging bool
	LoggingFormat           ObservationLogFormat
	StructuredLogger        Logger
	EnableMetrics           bool
	MetricsCollector        MetricsCollector
	MetricsOptions          *MetricsCollectorOptions
}

// ObservationLogFormat controls structured logging encoding.
type ObservationLogFormat uint8

const (
	ObservationLogFormatJSON ObservationLogFormat = iota
	ObservationLogFormatKeyValue
)

// ProcessorObserver receives a summary after every processor run or skip.
type ProcessorObserver interface {
	ProcessorCompleted(summary ProcessorSummary)
}

// MetricsCollector aggregates processor summaries into metrics.
type MetricsCollector interface {
	ObserveProcessor(summary ProcessorSummary)
}

type MetricsCollectorOptions struct {
	Writer          io.Writer
	DurationBuckets []time.Duration
}

// ProcessorSummary captures execution metadata for one processor in one tick.
type ProcessorSummary struct {
	Processor string
	Tick      uint64
	Delta     float64
	Matched   int
	Skipped   bool
	Commands  int
	Duration  time.Duration
}
