package ecs

// NewCreateEntityCommand defers creating an entity built by builder, which may be nil.
// If target is non-nil it receives the new entity when the command is applied.
func NewCreateEntityCommand(builder EntityBuilder, target *Entity) Command {
	return createEntityCommand{builder: builder, target: target}
}

// NewDeleteEntityCommand defers deleting an entity and its components.
func NewDeleteEntityCommand(e Entity) Command {
	return deleteEntityCommand{entity: e}
}

// NewAddComponentCommand defers attaching v to e.
func NewAddComponentCommand[T any](e Entity, v T) Command {
	return addComponentCommand[T]{entity: e, value: v}
}

// NewSetComponentCommand defers overwriting e's T with v.
func NewSetComponentCommand[T any](e Entity, v T) Command {
	return setComponentCommand[T]{entity: e, value: v}
}

// NewRemoveComponentCommand defers detaching T from e.
func NewRemoveComponentCommand[T any](e Entity) Command {
	return removeComponentCommand[T]{entity: e}
}

type createEntityCommand struct {
	builder EntityBuilder
	target  *Entity
}

type deleteEntityCommand struct {
	entity Entity
}

type addComponentCommand[T any] struct {
	entity Entity
	value  T
}

type setComponentCommand[T any] struct {
	entity Entity
	value  T
}

type removeComponentCommand[T any] struct {
	entity Entity
}

func (c createEntityCommand) Apply(w *World) {
	var e Entity
	if c.builder != nil {
		e = w.BuildEntity(c.builder)
	} else {
		e = w.Create()
	}
	if c.target != nil {
		*c.target = e
	}
}

func (c deleteEntityCommand) Apply(w *World) {
	if !w.DeleteEntity(c.entity) {
		w.logger.Debug("dropped deferred delete of stale entity", "entity", c.entity.String())
	}
}

func (c addComponentCommand[T]) Apply(w *World) {
	if !w.Alive(c.entity) {
		w.logger.Debug("dropped deferred add on stale entity", "entity", c.entity.String(), "component", TypeOf[T]().String())
		return
	}
	Add(w, c.entity, c.value)
}

func (c setComponentCommand[T]) Apply(w *World) {
	if !w.Alive(c.entity) {
		w.logger.Debug("dropped deferred set on stale entity", "entity", c.entity.String(), "component", TypeOf[T]().String())
		return
	}
	Set(w, c.entity, c.value)
}

func (c removeComponentCommand[T]) Apply(w *World) {
	if !w.Alive(c.entity) {
		return
	}
	Remove[T](w, c.entity)
}

var (
	_ Command = createEntityCommand{}
	_ Command = deleteEntityCommand{}
	_ Command = addComponentCommand[struct{}]{}
	_ Command = setComponentCommand[struct{}]{}
	_ Command = removeComponentCommand[struct{}]{}
)
