package ecscore

import "sync"

// ChangeList tracks the set of entities mutated or inserted into a storage
// since the last consumer flush. It supports safe removal while a consumer
// is mid-iteration: NotifyUpdated immediately after NotifyChanged leaves the
// list exactly as it was before the NotifyChanged call.
type ChangeList struct {
	mu             sync.Mutex
	changed        []EntityID
	index          map[EntityID]int
	iterationIndex int
}

// NewChangeList constructs an empty change list.
func NewChangeList() *ChangeList {
	return &ChangeList{index: make(map[EntityID]int), iterationIndex: -1}
}

// NotifyChanged marks an entity as mutated. Idempotent: marking an already
// tracked entity again is a no-op.
func (c *ChangeList) NotifyChanged(id EntityID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.index[id]; ok {
		return
	}
	c.index[id] = len(c.changed)
	c.changed = append(c.changed, id)
}

// NotifyUpdated removes an entity from the list, as a consumer does once it
// has processed the change. Safe to call while ForEach is iterating: it
// preserves the invariant that every not-yet-visited changed entity is still
// visited exactly once.
func (c *ChangeList) NotifyUpdated(id EntityID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx, ok := c.index[id]
	if !ok {
		return
	}

	if c.iterationIndex == -1 {
		c.removeAtLocked(idx)
		return
	}

	if c.iterationIndex >= idx {
		// Already visited this slot; swap the not-yet-visited tail element
		// into it and rewind one step so it gets (re-)visited next.
		last := len(c.changed) - 1
		c.changed[idx] = c.changed[c.iterationIndex]
		c.index[c.changed[idx]] = idx
		c.changed[c.iterationIndex] = c.changed[last]
		if c.iterationIndex != last {
			c.index[c.changed[c.iterationIndex]] = c.iterationIndex
		}
		c.changed = c.changed[:last]
		delete(c.index, id)
		c.iterationIndex--
	} else {
		c.removeAtLocked(idx)
	}
}

func (c *ChangeList) removeAtLocked(idx int) {
	last := len(c.changed) - 1
	removed := c.changed[idx]
	c.changed[idx] = c.changed[last]
	if idx != last {
		c.index[c.changed[idx]] = idx
	}
	c.changed = c.changed[:last]
	delete(c.index, removed)
}

// Has reports whether the entity is currently tracked as changed.
func (c *ChangeList) Has(id EntityID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.index[id]
	return ok
}

// IsEmpty reports whether the list has no tracked entities.
func (c *ChangeList) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.changed) == 0
}

// Len reports how many entities are tracked.
func (c *ChangeList) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.changed)
}

// ForEach iterates the tracked entities. fn may call NotifyUpdated on the
// current or a not-yet-visited entity without corrupting the iteration.
func (c *ChangeList) ForEach(fn func(EntityID)) {
	c.mu.Lock()
	c.iterationIndex = 0
	for c.iterationIndex < len(c.changed) {
		id := c.changed[c.iterationIndex]
		c.mu.Unlock()
		fn(id)
		c.mu.Lock()
		c.iterationIndex++
	}
	c.iterationIndex = -1
	c.mu.Unlock()
}

// Clear empties the list. Panics if called mid-iteration, mirroring the
// programmer-error contract of the original change-tracking design.
func (c *ChangeList) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.iterationIndex != -1 {
		panic("ecscore: ChangeList.Clear called while iterating")
	}
	c.changed = nil
	c.index = make(map[EntityID]int)
}

// EntityList has ChangeList semantics plus an optional freeze: while frozen,
// further Notify/Remove calls are ignored so a consumer can iterate a stable
// snapshot.
type EntityList struct {
	ChangeList
	mu     sync.Mutex
	frozen bool
}

// NewEntityList constructs an empty, unfrozen entity list.
func NewEntityList() *EntityList {
	return &EntityList{ChangeList: ChangeList{index: make(map[EntityID]int), iterationIndex: -1}}
}

// Freeze suspends mutation until Unfreeze is called.
func (l *EntityList) Freeze() {
	l.mu.Lock()
	l.frozen = true
	l.mu.Unlock()
}

// Unfreeze resumes mutation.
func (l *EntityList) Unfreeze() {
	l.mu.Lock()
	l.frozen = false
	l.mu.Unlock()
}

func (l *EntityList) isFrozen() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frozen
}

// NotifyChanged records an entity unless the list is frozen.
func (l *EntityList) NotifyChanged(id EntityID) {
	if l.isFrozen() {
		return
	}
	l.ChangeList.NotifyChanged(id)
}

// NotifyUpdated removes an entity unless the list is frozen.
func (l *EntityList) NotifyUpdated(id EntityID) {
	if l.isFrozen() {
		return
	}
	l.ChangeList.NotifyUpdated(id)
}
