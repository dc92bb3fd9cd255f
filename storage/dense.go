package storage

import (
	"fmt"

	ecs "github.com/dangerosodavo/ecscore"
)

type denseStrategy struct{}

// NewDenseStrategy constructs a dense storage strategy: a packed value
// array plus a sparse entity->index map. Removing swaps the last packed
// element into the removed slot, so iteration order is not stable across
// removals and any outstanding reference into the packed array is
// invalidated by the next remove or by a reallocating insert.
func NewDenseStrategy() ecs.StorageStrategy {
	return denseStrategy{}
}

func (denseStrategy) Name() string {
	return "dense"
}

func (denseStrategy) Discipline() ecs.StorageDiscipline {
	return ecs.StorageDense
}

func (denseStrategy) NewStore(t ecs.ComponentType) ecs.ComponentStore {
	return &denseStore{
		typ:          t,
		entityToData: make(map[uint32]int),
		changes:      ecs.NewChangeList(),
	}
}

// denseStore holds a packed `data` array in parallel with `dataToEntity`,
// plus a sparse `entityToData` map from entity index to packed position.
type denseStore struct {
	typ          ecs.ComponentType
	data         []any
	dataToEntity []ecs.EntityID
	entityToData map[uint32]int
	changes      *ecs.ChangeList
}

func (s *denseStore) ComponentType() ecs.ComponentType {
	return s.typ
}

func (s *denseStore) Len() int {
	return len(s.data)
}

func (s *denseStore) Has(id ecs.EntityID) bool {
	idx, ok := s.entityToData[id.Index()]
	if !ok {
		return false
	}
	return s.dataToEntity[idx].Generation() == id.Generation()
}

func (s *denseStore) Get(id ecs.EntityID) (any, bool) {
	idx, ok := s.entityToData[id.Index()]
	if !ok || s.dataToEntity[idx].Generation() != id.Generation() {
		return nil, false
	}
	return s.data[idx], true
}

func (s *denseStore) GetMut(id ecs.EntityID) (any, bool) {
	v, ok := s.Get(id)
	if ok {
		s.changes.NotifyChanged(id)
	}
	return v, ok
}

func (s *denseStore) NotifyChanged(id ecs.EntityID) {
	s.changes.NotifyChanged(id)
}

func (s *denseStore) Changes() *ecs.ChangeList {
	return s.changes
}

func (s *denseStore) Iterate(fn func(ecs.EntityID, any) bool) {
	for i, value := range s.data {
		if !fn(s.dataToEntity[i], value) {
			return
		}
	}
}

func (s *denseStore) Set(id ecs.EntityID, value any) error {
	if id.IsZero() {
		return fmt.Errorf("dense: cannot set zero entity")
	}

	if idx, ok := s.entityToData[id.Index()]; ok && s.dataToEntity[idx].Generation() == id.Generation() {
		s.data[idx] = value
		s.changes.NotifyChanged(id)
		return nil
	}

	idx := len(s.data)
	s.data = append(s.data, value)
	s.dataToEntity = append(s.dataToEntity, id)
	s.entityToData[id.Index()] = idx
	s.changes.NotifyChanged(id)
	return nil
}

func (s *denseStore) Remove(id ecs.EntityID) bool {
	idx, ok := s.entityToData[id.Index()]
	if !ok || s.dataToEntity[idx].Generation() != id.Generation() {
		return false
	}

	last := len(s.data) - 1
	if idx != last {
		s.data[idx] = s.data[last]
		s.dataToEntity[idx] = s.dataToEntity[last]
		s.entityToData[s.dataToEntity[idx].Index()] = idx
	}
	s.data = s.data[:last]
	s.dataToEntity = s.dataToEntity[:last]
	delete(s.entityToData, id.Index())
	s.changes.NotifyUpdated(id)
	return true
}

func (s *denseStore) Clear() {
	s.data = nil
	s.dataToEntity = nil
	s.entityToData = make(map[uint32]int)
	s.changes.Clear()
}

var (
	_ ecs.ComponentStore = (*denseStore)(nil)
	_ ecs.StorageStrategy = denseStrategy{}
)
