package ecs

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// World owns the entities, component stores and processors of one simulation.
// A world is not safe for concurrent use.
type World struct {
	id         string
	entities   *EntityManager
	components *ComponentManager
	processors *ProcessorManager
	resources  ResourceContainer
	commands   *CommandBuffer
	logger     Logger
	visibility Visibility
	config     *Config
	updating   bool

	entityCapacity    int
	componentCapacity int
	instrumentation   InstrumentationConfig
}

type WorldOption func(*World)

// NewWorld constructs a world with default managers.
func NewWorld(opts ...WorldOption) *World {
	defaults := DefaultConfig()
	w := &World{
		id:                uuid.NewString(),
		resources:         newResourceContainer(),
		commands:          NewCommandBuffer(),
		logger:            NopLogger(),
		entityCapacity:    defaults.EntityCapacity,
		componentCapacity: defaults.ComponentCapacity,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}

	w.logger = w.logger.With("world", w.id)
	w.entities = NewEntityManager(w.entityCapacity)
	w.components = NewComponentManager(w.componentCapacity)
	w.processors = NewProcessorManager()
	w.processors.observer = buildObserverChain(w.logger, w.instrumentation)

	w.logger.Debug("world created", "visibility", w.visibility.String())
	return w
}

// NewWorldFromConfig builds the configured logger and a world using cfg. Options are
// applied after the configuration and may override it.
func NewWorldFromConfig(cfg *Config, opts ...WorldOption) (*World, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger, err := NewLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}
	return NewWorld(append([]WorldOption{WithLogger(logger), WithConfig(cfg)}, opts...)...), nil
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(logger Logger) WorldOption {
	return func(w *World) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithInstrumentation installs processor observers.
func WithInstrumentation(cfg InstrumentationConfig) WorldOption {
	return func(w *World) {
		w.instrumentation = cfg
	}
}

// WithVisibility selects when deferred commands are applied.
func WithVisibility(v Visibility) WorldOption {
	return func(w *World) {
		w.visibility = v
	}
}

// WithEntityCapacity presizes entity bookkeeping.
func WithEntityCapacity(n int) WorldOption {
	return func(w *World) {
		if n >= 0 {
			w.entityCapacity = n
		}
	}
}

// WithConfig applies sizing, visibility and metrics settings from cfg. Per-processor
// settings are applied by name when processors are registered. The logger is not
// built here; use NewWorldFromConfig for that. An invalid cfg is a contract violation.
func WithConfig(cfg *Config) WorldOption {
	return func(w *World) {
		if cfg == nil {
			return
		}
		if err := cfg.Validate(); err != nil {
			violation("configure world", Entity{}, ComponentType{}, err)
		}
		visibility, _ := parseVisibility(cfg.Visibility)
		format, _ := parseLogFormat(cfg.Metrics.Format)

		w.config = cfg
		w.entityCapacity = cfg.EntityCapacity
		w.componentCapacity = cfg.ComponentCapacity
		w.visibility = visibility
		if cfg.Metrics.Enabled {
			w.instrumentation.EnableMetrics = true
		}
		if cfg.Metrics.StructuredLogging {
			w.instrumentation.EnableStructuredLogging = true
			w.instrumentation.LoggingFormat = format
		}
	}
}

// WithResourceContainer overrides the default resource container.
func WithResourceContainer(container ResourceContainer) WorldOption {
	return func(w *World) {
		if container != nil {
			w.resources = container
		}
	}
}

// ID returns the world's unique identifier.
func (w *World) ID() string { return w.id }

// Logger returns the world logger, tagged with the world id.
func (w *World) Logger() Logger { return w.logger }

// Entities exposes the entity manager.
func (w *World) Entities() *EntityManager { return w.entities }

// Components exposes the component manager.
func (w *World) Components() *ComponentManager { return w.components }

// Processors exposes the processor manager.
func (w *World) Processors() *ProcessorManager { return w.processors }

// Resources exposes the resource container.
func (w *World) Resources() ResourceContainer { return w.resources }

// Visibility reports when deferred commands are applied.
func (w *World) Visibility() Visibility { return w.visibility }

// Create returns a new, enabled entity with no components.
func (w *World) Create() Entity {
	e := w.entities.Create()
	w.entities.Enable(e)
	w.logger.Debug("entity created", "entity", e.String())
	return e
}

// NewEntity returns a new, disabled entity. Processors ignore it until it is enabled.
func (w *World) NewEntity() EntityRef {
	e := w.entities.Create()
	w.logger.Debug("entity created", "entity", e.String(), "enabled", false)
	return EntityRef{world: w, entity: e}
}

// BuildEntity creates an entity, lets b populate it and enables it.
func (w *World) BuildEntity(b EntityBuilder) Entity {
	ref := w.NewEntity()
	if b != nil {
		b.Build(ref)
	}
	w.entities.Enable(ref.entity)
	return ref.entity
}

// BuildEntities creates n entities from b. Every id is allocated first, then each is
// built, then each is enabled.
func (w *World) BuildEntities(n int, b EntityBuilder) []Entity {
	if n <= 0 {
		return nil
	}
	out := make([]Entity, n)
	for i := range out {
		out[i] = w.entities.Create()
	}
	if b != nil {
		for _, e := range out {
			b.Build(EntityRef{world: w, entity: e})
		}
	}
	for _, e := range out {
		w.entities.Enable(e)
	}
	w.logger.Debug("entities built", "count", n)
	return out
}

// Enable makes e visible to processors.
func (w *World) Enable(e Entity) { w.entities.Enable(e) }

// Disable hides e from processors without deleting it.
func (w *World) Disable(e Entity) { w.entities.Disable(e) }

// Alive reports whether e refers to a live entity.
func (w *World) Alive(e Entity) bool { return w.entities.Exists(e) }

// Active reports whether e is live and enabled.
func (w *World) Active(e Entity) bool { return w.entities.Active(e) }

// DeleteEntity removes all of e's components and then recycles its id. It returns
// false if e was already stale.
func (w *World) DeleteEntity(e Entity) bool {
	if !w.entities.Exists(e) {
		return false
	}
	removed := w.components.ClearEntity(e)
	w.entities.Remove(e)
	w.logger.Debug("entity deleted", "entity", e.String(), "components", removed)
	return true
}

// RegisterComponent makes T attachable to entities of w.
func RegisterComponent[T any](w *World, opts ...ComponentOption) error {
	if err := Register[T](w.components, opts...); err != nil {
		return err
	}
	w.logger.Debug("component registered", "component", TypeOf[T]().String())
	return nil
}

// RegisterProcessor appends p, bound to aspect, to the run order. Settings from the
// world config are applied by the processor's name.
func (w *World) RegisterProcessor(p Processor, aspect Aspect, opts ...ProcessorOption) ProcessorHandle {
	h := w.processors.Register(p, aspect, opts...)
	if w.config != nil {
		if pc, ok := w.config.Processors[h.name]; ok {
			w.processors.Configure(h, pc.options()...)
		}
	}
	w.logger.Debug("processor registered", "processor", h.name, "order", h.index)
	return h
}

// Defer queues cmd. It is applied after the current processor or at the end of the
// tick depending on the world's Visibility; outside a tick it waits for the next one.
func (w *World) Defer(cmd Command) {
	w.commands.Push(cmd)
}

// Pending returns the number of deferred commands not yet applied.
func (w *World) Pending() int {
	return w.commands.Len()
}

// Update runs one tick: every enabled processor in registration order with the same
// delta, in seconds.
func (w *World) Update(delta float64) {
	if delta < 0 || math.IsNaN(delta) {
		violation("update", Entity{}, ComponentType{}, fmt.Errorf("%w: %v", ErrInvalidDelta, delta))
	}
	if w.updating {
		violation("update", Entity{}, ComponentType{}, ErrReentrantUpdate)
	}
	w.updating = true
	defer func() { w.updating = false }()
	w.processors.Update(w, delta)
}

// Flush applies deferred commands now and returns how many ran.
func (w *World) Flush() int {
	return w.flushCommands()
}

// flushCommands applies queued commands, including any queued while applying.
func (w *World) flushCommands() int {
	applied := 0
	for w.commands.Len() > 0 {
		for _, cmd := range w.commands.Drain() {
			cmd.Apply(w)
			applied++
		}
	}
	return applied
}
