package storage

import (
	"fmt"
	"sync"

	ecs "github.com/dangerosodavo/ecscore"
)

// steadyStrategy backs component types that need addresses stable across
// unrelated inserts and removals elsewhere in the same storage: unlike
// dense storage, removing one entity's component never relocates
// another's. Suited to components other systems hold onto across ticks
// (e.g. cached handles), at the cost of losing packed iteration.
type steadyStrategy struct {
	pageSize int
}

// NewSteadyStrategy constructs a steady storage strategy. pageSize of 0
// selects the default page size.
func NewSteadyStrategy(pageSize int) ecs.StorageStrategy {
	return steadyStrategy{pageSize: pageSize}
}

func (steadyStrategy) Name() string {
	return "steady"
}

func (steadyStrategy) Discipline() ecs.StorageDiscipline {
	return ecs.StorageSteady
}

func (s steadyStrategy) NewStore(t ecs.ComponentType) ecs.ComponentStore {
	return &steadyStore{
		typ:          t,
		arena:        newPagedArena(s.pageSize),
		entityToSlot: make(map[uint32]steadySlot),
		changes:      ecs.NewChangeList(),
	}
}

type steadySlot struct {
	generation uint32
	index      uint32
}

type steadyStore struct {
	mu           sync.RWMutex
	typ          ecs.ComponentType
	arena        *pagedArena
	entityToSlot map[uint32]steadySlot
	changes      *ecs.ChangeList
}

func (s *steadyStore) ComponentType() ecs.ComponentType {
	return s.typ
}

func (s *steadyStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entityToSlot)
}

func (s *steadyStore) Has(id ecs.EntityID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot, ok := s.entityToSlot[id.Index()]
	return ok && slot.generation == id.Generation()
}

func (s *steadyStore) Get(id ecs.EntityID) (any, bool) {
	s.mu.RLock()
	slot, ok := s.entityToSlot[id.Index()]
	s.mu.RUnlock()
	if !ok || slot.generation != id.Generation() {
		return nil, false
	}
	return s.arena.getAt(slot.index)
}

func (s *steadyStore) GetMut(id ecs.EntityID) (any, bool) {
	v, ok := s.Get(id)
	if ok {
		s.changes.NotifyChanged(id)
	}
	return v, ok
}

func (s *steadyStore) NotifyChanged(id ecs.EntityID) {
	s.changes.NotifyChanged(id)
}

func (s *steadyStore) Changes() *ecs.ChangeList {
	return s.changes
}

func (s *steadyStore) Iterate(fn func(ecs.EntityID, any) bool) {
	s.mu.RLock()
	type pair struct {
		id    ecs.EntityID
		value any
	}
	pairs := make([]pair, 0, len(s.entityToSlot))
	for idx, slot := range s.entityToSlot {
		if v, ok := s.arena.getAt(slot.index); ok {
			pairs = append(pairs, pair{id: ecs.EntityIDFromParts(idx, slot.generation), value: v})
		}
	}
	s.mu.RUnlock()

	for _, p := range pairs {
		if !fn(p.id, p.value) {
			return
		}
	}
}

func (s *steadyStore) Set(id ecs.EntityID, value any) error {
	if id.IsZero() {
		return fmt.Errorf("steady: cannot set zero entity")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if slot, ok := s.entityToSlot[id.Index()]; ok && slot.generation == id.Generation() {
		s.arena.setAt(slot.index, value)
	} else {
		idx := s.arena.alloc(value)
		s.entityToSlot[id.Index()] = steadySlot{generation: id.Generation(), index: idx}
	}
	s.changes.NotifyChanged(id)
	return nil
}

func (s *steadyStore) Remove(id ecs.EntityID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.entityToSlot[id.Index()]
	if !ok || slot.generation != id.Generation() {
		return false
	}
	s.arena.free_(slot.index)
	delete(s.entityToSlot, id.Index())
	s.changes.NotifyUpdated(id)
	return true
}

func (s *steadyStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.arena.reset()
	s.entityToSlot = make(map[uint32]steadySlot)
	s.changes.Clear()
}

var (
	_ ecs.ComponentStore  = (*steadyStore)(nil)
	_ ecs.StorageStrategy = steadyStrategy{}
)
