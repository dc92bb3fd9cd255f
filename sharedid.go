package ecscore

import (
	"fmt"
	"sync"
)

// SharedId names a value held by a shared-steady storage, independent of
// any entity that aliases it. The generation guards against a freed id
// being mistaken for a newly allocated one at the same index.
type SharedId struct {
	index      uint32
	generation uint32
}

func (id SharedId) Index() uint32 {
	return id.index
}

func (id SharedId) Generation() uint32 {
	return id.generation
}

func (id SharedId) IsZero() bool {
	return id.index == 0 && id.generation == 0
}

func (id SharedId) String() string {
	if id.IsZero() {
		return "SharedId(0:0)"
	}
	return fmt.Sprintf("SharedId(%d:%d)", id.index, id.generation)
}

// SharedIdAllocator hands out SharedIds with the same recycle-by-generation
// discipline EntityRegistry uses for entities.
type SharedIdAllocator struct {
	mu          sync.Mutex
	generations []uint32
	free        []uint32
}

func NewSharedIdAllocator() *SharedIdAllocator {
	return &SharedIdAllocator{}
}

func (a *SharedIdAllocator) Allocate() SharedId {
	a.mu.Lock()
	defer a.mu.Unlock()

	var index uint32
	if n := len(a.free); n > 0 {
		index = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		index = uint32(len(a.generations))
		a.generations = append(a.generations, 0)
	}

	a.generations[index]++
	return SharedId{index: index, generation: a.generations[index]}
}

func (a *SharedIdAllocator) Free(id SharedId) bool {
	if id.IsZero() {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.isValidLocked(id) {
		return false
	}
	a.generations[id.index]++
	a.free = append(a.free, id.index)
	return true
}

func (a *SharedIdAllocator) IsValid(id SharedId) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.isValidLocked(id)
}

func (a *SharedIdAllocator) isValidLocked(id SharedId) bool {
	if id.IsZero() || int(id.index) >= len(a.generations) {
		return false
	}
	return a.generations[id.index] == id.generation
}
