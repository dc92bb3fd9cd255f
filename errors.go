package ecscore

import "errors"

var (
	// ErrComponentAlreadyRegistered indicates an attempt to register the same component twice.
	ErrComponentAlreadyRegistered = errors.New("ecs: component already registered")
	// ErrComponentNotRegistered signals lookup on an unknown component type.
	ErrComponentNotRegistered = errors.New("ecs: component not registered")
	// ErrNilStorageStrategy is returned when storage registration receives a nil strategy.
	ErrNilStorageStrategy = errors.New("ecs: nil storage strategy")
	// ErrNilComponentStore is returned when a strategy produces a nil store.
	ErrNilComponentStore = errors.New("ecs: strategy returned nil store")
	// ErrWorkerPoolClosed indicates jobs cannot be submitted because the pool closed.
	ErrWorkerPoolClosed = errors.New("ecs: worker pool closed")
	// ErrAsyncWritesNotSupported indicates an async work group attempted to mutate components.
	ErrAsyncWritesNotSupported = errors.New("ecs: async work group cannot perform component writes")
	// ErrAsyncSystemNotAllowed indicates a system opted out of async execution.
	ErrAsyncSystemNotAllowed = errors.New("ecs: system does not allow async execution")
	// ErrDuplicateWriteAccess indicates conflicting write access within a work group.
	ErrDuplicateWriteAccess = errors.New("ecs: duplicate write access to component in work group")
	// ErrDuplicateResourceWriteAccess indicates conflicting resource write claims.
	ErrDuplicateResourceWriteAccess = errors.New("ecs: duplicate write access to resource in work group")
	// ErrAsyncResourceWritesNotSupported indicates async groups attempted to mutate resources.
	ErrAsyncResourceWritesNotSupported = errors.New("ecs: async work group cannot perform resource writes")

	// ErrUnknownId is returned by registry lookups for an id that was never assigned.
	ErrUnknownId = errors.New("ecs: unknown id")
	// ErrMissingComponent is returned when an entity lacks a component a caller assumed present.
	ErrMissingComponent = errors.New("ecs: entity has no such component")
	// ErrPlanUnbuildable is returned by the pipeline builder for a cycle or unresolved dispatcher.
	ErrPlanUnbuildable = errors.New("ecs: pipeline plan cannot be built")
	// ErrDispatchGuardViolated is returned when a system mutates shared world state
	// outside of a command buffer while running in a parallel stage.
	ErrDispatchGuardViolated = errors.New("ecs: structural mutation outside command buffer in parallel stage")
	// ErrInvalidSharedId is returned by shared-steady storages for an id that
	// was never allocated, or was freed.
	ErrInvalidSharedId = errors.New("ecs: invalid or freed shared id")
	// ErrDuplicateName is returned when a registry registration reuses an
	// already-taken name for an incompatible kind.
	ErrDuplicateName = errors.New("ecs: name already registered")
	// ErrRegistryFrozen is returned by registration calls made after the
	// registry has been frozen by a pipeline build.
	ErrRegistryFrozen = errors.New("ecs: registry is frozen")
)
