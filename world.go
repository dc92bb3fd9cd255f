package ecscore

type WorldOption func(*World)

// NewWorld constructs a world with default registries and providers.
func NewWorld(opts ...WorldOption) *World {
	w := &World{
		registry:  NewEntityRegistry(),
		storage:   newStorageProvider(),
		resources: newResourceContainer(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WithEntityRegistry overrides the default registry.
func WithEntityRegistry(registry *EntityRegistry) WorldOption {
	return func(w *World) {
		if registry != nil {
			w.registry = registry
		}
	}
}

// WithStorageProvider overrides the default storage provider.
func WithStorageProvider(provider StorageProvider) WorldOption {
	return func(w *World) {
		if provider != nil {
			w.storage = provider
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

// Registry exposes the backing entity registry.
func (w *World) Registry() *EntityRegistry {
	return w.registry
}

// Storage returns the storage provider used by the world.
func (w *World) Storage() StorageProvider {
	return w.storage
}

// Resources exposes the resource container.
func (w *World) Resources() ResourceContainer {
	return w.resources
}

// RegisterComponent allows callers to register component storage strategies.
func (w *World) RegisterComponent(t ComponentType, strategy StorageStrategy) error {
    return w.storage.RegisterComponent(t, strategy)
}

// ViewComponent retrieves a component view by type.
func (w *World) ViewComponent(t ComponentType) (ComponentView, error) {
    return w.storage.View(t)
}

// ApplyCommands executes deferred commands against the world.
func (w *World) ApplyCommands(commands []Command) error {
    return w.storage.Apply(w, commands)
}

// CreateEntity allocates a new entity id directly (outside of a deferred
// command). Systems running inside a parallel pipeline stage must instead
// defer entity creation through a CommandBuffer.
func (w *World) CreateEntity() EntityID {
	return w.registry.Create()
}

// DestroyEntity removes an entity and every component attached to it.
// Destroying an entity is equivalent to removing each of its components in
// any order, so every registered storage is swept for the id before the
// registry retires it.
func (w *World) DestroyEntity(id EntityID) bool {
	if !w.registry.IsAlive(id) {
		return false
	}
	w.storage.Range(func(_ ComponentType, store ComponentStore) bool {
		store.Remove(id)
		return true
	})
	return w.registry.Destroy(id)
}

// Databag fetches the world-scoped singleton keyed by name, lazily
// constructing it via factory on first access. At most one value per name
// ever exists in a world.
func Databag[T any](w *World, name string, factory func() T) T {
	if v, ok := w.resources.Get(name); ok {
		return v.(T)
	}
	v := factory()
	w.resources.Set(name, v)
	return v
}

// EventsStorage returns the typed event ring for the named event kind,
// constructing it on first access.
func EventsStorage[E any](w *World, kind string) *EventStorage[E] {
	return Events[E](w, kind)
}

// FlushEmitterEvents clears one emitter's backlog within one event kind's
// storage, a no-op if that event kind has never been touched. The pipeline
// executor calls this for every event kind/emitter pair a system declares
// in EventEmit, immediately before invoking it, so each emitter system
// only ever sees the events it recorded during the current tick.
func (w *World) FlushEmitterEvents(kind, emitter string) {
	w.eventsMu.Lock()
	bag, ok := w.events[kind]
	w.eventsMu.Unlock()
	if !ok {
		return
	}
	bag.flushEmitter(emitter)
}

// FlushEvents clears every event storage's backlog, e.g. at world teardown.
func (w *World) FlushEvents() {
	w.eventsMu.Lock()
	defer w.eventsMu.Unlock()
	for _, bag := range w.events {
		bag.flushAll()
	}
}
