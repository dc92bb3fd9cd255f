package registry

import (
	"fmt"
	"sync"

	ecs "github.com/dangerosodavo/ecscore"
)

// Registry holds every kind's name->id table and descriptor slice. It is
// built once at process startup by a single goroutine and then frozen by
// the first pipeline Build() (see ecscore/pipeline); registration after
// freeze fails with ErrRegistryFrozen except for the dynamic-system reset
// path, which is explicitly allowed to mutate a frozen registry because it
// does not change the set of ids or names in play.
type Registry struct {
	mu sync.Mutex

	frozen bool

	componentsByName map[string]ComponentKindId
	components       []ComponentDescriptor

	databagsByName map[string]DatabagKindId
	databags       []DatabagDescriptor

	eventsByName map[string]EventKindId
	events       []EventDescriptor

	spawnersByName map[string]SpawnerKindId
	spawners       []SpawnerDescriptor

	systemsByName map[string]SystemId
	systems       []SystemDescriptor

	bundlesByName map[string]SystemBundleId
	bundles       []SystemBundleDescriptor
}

// New constructs an empty registry. Index 0 of every descriptor slice is
// left as a zero-value placeholder so that kind ids are dense starting at
// 1 and the zero id can serve as every kind's "none" sentinel.
func New() *Registry {
	return &Registry{
		componentsByName: make(map[string]ComponentKindId),
		components:       make([]ComponentDescriptor, 1),
		databagsByName:   make(map[string]DatabagKindId),
		databags:         make([]DatabagDescriptor, 1),
		eventsByName:     make(map[string]EventKindId),
		events:           make([]EventDescriptor, 1),
		spawnersByName:   make(map[string]SpawnerKindId),
		spawners:         make([]SpawnerDescriptor, 1),
		systemsByName:    make(map[string]SystemId),
		systems:          make([]SystemDescriptor, 1),
		bundlesByName:    make(map[string]SystemBundleId),
		bundles:          make([]SystemBundleDescriptor, 1),
	}
}

// Freeze locks out further registration except the dynamic-system reset
// path. Called by the pipeline builder's first Build().
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

func (r *Registry) IsFrozen() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frozen
}

// RegisterComponent assigns a fresh ComponentKindId to name, or fails if
// the name is already taken.
func (r *Registry) RegisterComponent(name string, discipline ecs.StorageDiscipline, factory func() any) (ComponentKindId, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return NoComponent, ecs.ErrRegistryFrozen
	}
	if _, exists := r.componentsByName[name]; exists {
		return NoComponent, fmt.Errorf("%w: component %q", ecs.ErrDuplicateName, name)
	}

	id := ComponentKindId(len(r.components))
	r.components = append(r.components, ComponentDescriptor{Id: id, Name: name, Discipline: discipline, Factory: factory})
	r.componentsByName[name] = id
	return id, nil
}

func (r *Registry) Component(id ComponentKindId) (ComponentDescriptor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id == NoComponent || int(id) >= len(r.components) {
		return ComponentDescriptor{}, ecs.ErrUnknownId
	}
	return r.components[id], nil
}

func (r *Registry) ComponentByName(name string) (ComponentDescriptor, error) {
	r.mu.Lock()
	id, ok := r.componentsByName[name]
	r.mu.Unlock()
	if !ok {
		return ComponentDescriptor{}, ecs.ErrUnknownId
	}
	return r.Component(id)
}

// RegisterDatabag assigns a fresh DatabagKindId to name.
func (r *Registry) RegisterDatabag(name string, factory func() any, singleThreadOnly bool) (DatabagKindId, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return NoDatabag, ecs.ErrRegistryFrozen
	}
	if _, exists := r.databagsByName[name]; exists {
		return NoDatabag, fmt.Errorf("%w: databag %q", ecs.ErrDuplicateName, name)
	}

	id := DatabagKindId(len(r.databags))
	r.databags = append(r.databags, DatabagDescriptor{Id: id, Name: name, Factory: factory, SingleThreadOnly: singleThreadOnly})
	r.databagsByName[name] = id
	return id, nil
}

func (r *Registry) Databag(id DatabagKindId) (DatabagDescriptor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id == NoDatabag || int(id) >= len(r.databags) {
		return DatabagDescriptor{}, ecs.ErrUnknownId
	}
	return r.databags[id], nil
}

// SingleThreadDatabags returns the set of databag ids flagged
// single-thread-only, for use by the pipeline builder's conflict pass.
func (r *Registry) SingleThreadDatabags() map[DatabagKindId]bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[DatabagKindId]bool)
	for _, d := range r.databags[1:] {
		if d.SingleThreadOnly {
			out[d.Id] = true
		}
	}
	return out
}

// RegisterEvent assigns a fresh EventKindId to name.
func (r *Registry) RegisterEvent(name string, factory func() any, destroy func(any)) (EventKindId, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return NoEvent, ecs.ErrRegistryFrozen
	}
	if _, exists := r.eventsByName[name]; exists {
		return NoEvent, fmt.Errorf("%w: event %q", ecs.ErrDuplicateName, name)
	}

	id := EventKindId(len(r.events))
	r.events = append(r.events, EventDescriptor{Id: id, Name: name, Factory: factory, Destroy: destroy})
	r.eventsByName[name] = id
	return id, nil
}

func (r *Registry) Event(id EventKindId) (EventDescriptor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id == NoEvent || int(id) >= len(r.events) {
		return EventDescriptor{}, ecs.ErrUnknownId
	}
	return r.events[id], nil
}

// RegisterSpawner assigns a fresh SpawnerKindId to name.
func (r *Registry) RegisterSpawner(name string) (SpawnerKindId, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return NoSpawner, ecs.ErrRegistryFrozen
	}
	if _, exists := r.spawnersByName[name]; exists {
		return NoSpawner, fmt.Errorf("%w: spawner %q", ecs.ErrDuplicateName, name)
	}

	id := SpawnerKindId(len(r.spawners))
	r.spawners = append(r.spawners, SpawnerDescriptor{Id: id, Name: name})
	r.spawnersByName[name] = id
	return id, nil
}

func (r *Registry) Spawner(id SpawnerKindId) (SpawnerDescriptor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id == NoSpawner || int(id) >= len(r.spawners) {
		return SpawnerDescriptor{}, ecs.ErrUnknownId
	}
	return r.spawners[id], nil
}

// RegisterSystem assigns a fresh SystemId to name, unless name already
// names a dynamic system: in that case the existing id is reused, its
// descriptor is replaced wholesale (reset), and the caller gets the same
// SystemId back. Re-registering a non-dynamic name is always an error,
// and registering a dynamic descriptor under a name already held by a
// native (non-dynamic) system is also an error — only dynamic-over-dynamic
// re-registration resets.
func (r *Registry) RegisterSystem(desc SystemDescriptor) (SystemId, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.systemsByName[desc.Name]; exists {
		current := r.systems[existing]
		if !current.Dynamic || !desc.Dynamic {
			return NoSystem, fmt.Errorf("%w: system %q", ecs.ErrDuplicateName, desc.Name)
		}
		desc.Id = existing
		r.systems[existing] = desc
		return existing, nil
	}

	if r.frozen {
		return NoSystem, ecs.ErrRegistryFrozen
	}

	id := SystemId(len(r.systems))
	desc.Id = id
	r.systems = append(r.systems, desc)
	r.systemsByName[desc.Name] = id
	return id, nil
}

func (r *Registry) System(id SystemId) (SystemDescriptor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id == NoSystem || int(id) >= len(r.systems) {
		return SystemDescriptor{}, ecs.ErrUnknownId
	}
	return r.systems[id], nil
}

func (r *Registry) SystemByName(name string) (SystemDescriptor, error) {
	r.mu.Lock()
	id, ok := r.systemsByName[name]
	r.mu.Unlock()
	if !ok {
		return SystemDescriptor{}, ecs.ErrUnknownId
	}
	return r.System(id)
}

// RegisterSystemBundle assigns a fresh SystemBundleId to name.
func (r *Registry) RegisterSystemBundle(name string) (SystemBundleId, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return NoSystemBundle, ecs.ErrRegistryFrozen
	}
	if _, exists := r.bundlesByName[name]; exists {
		return NoSystemBundle, fmt.Errorf("%w: system bundle %q", ecs.ErrDuplicateName, name)
	}

	id := SystemBundleId(len(r.bundles))
	r.bundles = append(r.bundles, SystemBundleDescriptor{Id: id, Name: name})
	r.bundlesByName[name] = id
	return id, nil
}

// AddToBundle appends a system to a bundle's member list.
func (r *Registry) AddToBundle(bundle SystemBundleId, system SystemId) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if bundle == NoSystemBundle || int(bundle) >= len(r.bundles) {
		return ecs.ErrUnknownId
	}
	if system == NoSystem || int(system) >= len(r.systems) {
		return ecs.ErrUnknownId
	}
	b := r.bundles[bundle]
	b.Members = append(b.Members, system)
	r.bundles[bundle] = b
	return nil
}

// SetBundleOrdering records bundle-level before/after declarations, which
// the pipeline builder carries onto every member system at expansion time.
func (r *Registry) SetBundleOrdering(bundle SystemBundleId, before, after []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if bundle == NoSystemBundle || int(bundle) >= len(r.bundles) {
		return ecs.ErrUnknownId
	}
	b := r.bundles[bundle]
	b.Before = before
	b.After = after
	r.bundles[bundle] = b
	return nil
}

func (r *Registry) SystemBundle(id SystemBundleId) (SystemBundleDescriptor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id == NoSystemBundle || int(id) >= len(r.bundles) {
		return SystemBundleDescriptor{}, ecs.ErrUnknownId
	}
	return r.bundles[id], nil
}
