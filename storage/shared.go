package storage

import (
	"fmt"
	"sync"

	ecs "github.com/dangerosodavo/ecscore"
)

// sharedStrategy creates stores where many entities alias a single
// value held elsewhere in a paged arena, addressed by SharedId. This is
// the right fit for data that is genuinely identical across a whole class
// of entities (all zombies sharing the same base stats table): the value
// is created once via CreateShared, entities alias it via Attach, and it
// only ever changes when the holder explicitly frees and recreates it.
//
// Shared values are not mutated per-entity. GetMut still marks the
// aliasing entity changed (a system may have legitimate reasons to treat
// "my aliased value moved version" as a change) but the stored value
// itself is shared state; callers that need independent values per
// entity should use dense or steady storage instead.
type sharedStrategy struct{}

// NewSharedStrategy constructs a shared-steady storage strategy.
func NewSharedStrategy() ecs.StorageStrategy {
	return sharedStrategy{}
}

func (sharedStrategy) Name() string {
	return "shared-steady"
}

func (sharedStrategy) Discipline() ecs.StorageDiscipline {
	return ecs.StorageSharedSteady
}

func (sharedStrategy) NewStore(t ecs.ComponentType) ecs.ComponentStore {
	return newSharedStore(t)
}

type entityShare struct {
	generation uint32
	shared     ecs.SharedId
}

// sharedStore backs SharedSteadyStorage: values live in a paged arena
// addressed by SharedId, entities hold a SharedId alias and a refcount
// tracks how many entities currently alias each value for diagnostics.
// The refcount never frees anything on its own: a shared value only goes
// away when its holder calls FreeShared, regardless of how many aliasing
// entities have detached or been destroyed.
type sharedStore struct {
	mu            sync.RWMutex
	typ           ecs.ComponentType
	ids           *ecs.SharedIdAllocator
	arena         *pagedArena
	refCounts     map[uint32]int
	entityToShare map[uint32]entityShare
	changes       *ecs.ChangeList
}

func newSharedStore(t ecs.ComponentType) *sharedStore {
	return &sharedStore{
		typ:           t,
		ids:           ecs.NewSharedIdAllocator(),
		arena:         newPagedArena(0),
		refCounts:     make(map[uint32]int),
		entityToShare: make(map[uint32]entityShare),
		changes:       ecs.NewChangeList(),
	}
}

func (s *sharedStore) ComponentType() ecs.ComponentType {
	return s.typ
}

// CreateShared allocates a new shared value and returns its id. The
// value starts with zero entity aliases; the caller typically attaches
// it to one or more entities immediately afterward.
func (s *sharedStore) CreateShared(value any) ecs.SharedId {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.ids.Allocate()
	s.arena.setAt(id.Index(), value)
	s.refCounts[id.Index()] = 0
	return id
}

// FreeShared releases a shared value immediately, regardless of any
// remaining entity aliases; those entities' next Get/Has will report
// the component missing. Matches the original's explicit free semantics:
// shared values are not refcounted out of existence automatically.
func (s *sharedStore) FreeShared(id ecs.SharedId) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.freeSharedLocked(id)
}

func (s *sharedStore) freeSharedLocked(id ecs.SharedId) bool {
	if !s.ids.IsValid(id) {
		return false
	}
	s.ids.Free(id)
	s.arena.clearAt(id.Index())
	delete(s.refCounts, id.Index())
	return true
}

// HasShared reports whether id still names a live shared value.
func (s *sharedStore) HasShared(id ecs.SharedId) bool {
	return s.ids.IsValid(id)
}

// GetShared returns the value a SharedId names, independent of any
// entity alias.
func (s *sharedStore) GetShared(id ecs.SharedId) (any, bool) {
	if !s.ids.IsValid(id) {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.arena.getAt(id.Index())
}

// Attach aliases entity to a shared value, detaching any previous alias
// first. Returns ErrInvalidSharedId if id is unknown or has been freed.
func (s *sharedStore) Attach(entity ecs.EntityID, id ecs.SharedId) error {
	if entity.IsZero() {
		return fmt.Errorf("shared: cannot attach zero entity")
	}
	if !s.ids.IsValid(id) {
		return ecs.ErrInvalidSharedId
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.entityToShare[entity.Index()]; ok && prev.generation == entity.Generation() {
		s.refCounts[prev.shared.Index()]--
	}
	s.entityToShare[entity.Index()] = entityShare{generation: entity.Generation(), shared: id}
	s.refCounts[id.Index()]++
	s.changes.NotifyChanged(entity)
	return nil
}

func (s *sharedStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entityToShare)
}

func (s *sharedStore) Has(entity ecs.EntityID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	share, ok := s.entityToShare[entity.Index()]
	if !ok || share.generation != entity.Generation() {
		return false
	}
	return s.ids.IsValid(share.shared)
}

func (s *sharedStore) Get(entity ecs.EntityID) (any, bool) {
	s.mu.RLock()
	share, ok := s.entityToShare[entity.Index()]
	s.mu.RUnlock()
	if !ok || share.generation != entity.Generation() {
		return nil, false
	}
	return s.GetShared(share.shared)
}

func (s *sharedStore) GetMut(entity ecs.EntityID) (any, bool) {
	v, ok := s.Get(entity)
	if ok {
		s.changes.NotifyChanged(entity)
	}
	return v, ok
}

func (s *sharedStore) NotifyChanged(entity ecs.EntityID) {
	s.changes.NotifyChanged(entity)
}

func (s *sharedStore) Changes() *ecs.ChangeList {
	return s.changes
}

func (s *sharedStore) Iterate(fn func(ecs.EntityID, any) bool) {
	s.mu.RLock()
	type pair struct {
		id    ecs.EntityID
		value any
	}
	var pairs []pair
	for idx, share := range s.entityToShare {
		value, ok := s.arena.getAt(share.shared.Index())
		if !ok {
			continue
		}
		pairs = append(pairs, pair{id: ecs.EntityIDFromParts(idx, share.generation), value: value})
	}
	s.mu.RUnlock()

	for _, p := range pairs {
		if !fn(p.id, p.value) {
			return
		}
	}
}

// Set is a convenience path for callers that don't need explicit shared
// ids: it allocates a fresh shared value and attaches entity to it. Two
// entities that call Set with equal-looking values do NOT share storage
// unless the caller routes them through the same CreateShared/Attach
// pair; use CreateShared+Attach directly to actually alias.
func (s *sharedStore) Set(entity ecs.EntityID, value any) error {
	if entity.IsZero() {
		return fmt.Errorf("shared: cannot set zero entity")
	}

	id := s.CreateShared(value)

	s.mu.Lock()
	if prev, ok := s.entityToShare[entity.Index()]; ok && prev.generation == entity.Generation() {
		s.refCounts[prev.shared.Index()]--
	}
	s.entityToShare[entity.Index()] = entityShare{generation: entity.Generation(), shared: id}
	s.refCounts[id.Index()]++
	s.mu.Unlock()

	s.changes.NotifyChanged(entity)
	return nil
}

func (s *sharedStore) Remove(entity ecs.EntityID) bool {
	s.mu.Lock()
	share, ok := s.entityToShare[entity.Index()]
	if !ok || share.generation != entity.Generation() {
		s.mu.Unlock()
		return false
	}
	delete(s.entityToShare, entity.Index())
	// Detaching an alias never frees the shared value itself — only an
	// explicit FreeShared call does. refCounts is kept purely as an alias
	// count for diagnostics.
	s.refCounts[share.shared.Index()]--
	s.mu.Unlock()

	s.changes.NotifyUpdated(entity)
	return true
}

func (s *sharedStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = ecs.NewSharedIdAllocator()
	s.arena.reset()
	s.refCounts = make(map[uint32]int)
	s.entityToShare = make(map[uint32]entityShare)
	s.changes.Clear()
}

var (
	_ ecs.ComponentStore  = (*sharedStore)(nil)
	_ ecs.StorageStrategy = sharedStrategy{}
)
