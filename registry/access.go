package registry

// SystemAccessSet is the declared read/write footprint of one system, used
// both to validate registration (§4.1: "every registered system has a
// non-empty access descriptor, possibly all empty") and to detect
// conflicts between systems a pipeline build wants to run in the same
// stage (§4.4, §5).
type SystemAccessSet struct {
	ComponentReads  []ComponentKindId
	ComponentWrites []ComponentKindId
	DatabagReads    []DatabagKindId
	DatabagWrites   []DatabagKindId
	// EventEmit maps an event kind to the emitter names this system emits
	// under; EventReceive maps an event kind to the emitter names this
	// system consumes from (empty slice means "any emitter").
	EventEmit    map[EventKindId][]string
	EventReceive map[EventKindId][]string
	Spawners     []SpawnerKindId
}

func (s SystemAccessSet) componentWriteSet() map[ComponentKindId]struct{} {
	m := make(map[ComponentKindId]struct{}, len(s.ComponentWrites))
	for _, c := range s.ComponentWrites {
		m[c] = struct{}{}
	}
	return m
}

func (s SystemAccessSet) databagWriteSet() map[DatabagKindId]struct{} {
	m := make(map[DatabagKindId]struct{}, len(s.DatabagWrites))
	for _, d := range s.DatabagWrites {
		m[d] = struct{}{}
	}
	return m
}

// Conflicts reports whether a and b cannot safely run in the same
// pipeline stage, per §5's shared-resource policy: a write by either side
// on anything the other reads or writes conflicts; single-thread-only
// databags force a solo stage; an event emitter on a kind conflicts with
// any receiver or other emitter on the same kind.
func (a SystemAccessSet) Conflicts(b SystemAccessSet, singleThreadDatabags map[DatabagKindId]bool) bool {
	aWritesComp := a.componentWriteSet()
	bWritesComp := b.componentWriteSet()
	for _, c := range a.ComponentReads {
		if _, ok := bWritesComp[c]; ok {
			return true
		}
	}
	for _, c := range b.ComponentReads {
		if _, ok := aWritesComp[c]; ok {
			return true
		}
	}
	for c := range aWritesComp {
		if _, ok := bWritesComp[c]; ok {
			return true
		}
	}

	aWritesDatabag := a.databagWriteSet()
	bWritesDatabag := b.databagWriteSet()
	for _, d := range a.DatabagReads {
		if _, ok := bWritesDatabag[d]; ok {
			return true
		}
	}
	for _, d := range b.DatabagReads {
		if _, ok := aWritesDatabag[d]; ok {
			return true
		}
	}
	for d := range aWritesDatabag {
		if _, ok := bWritesDatabag[d]; ok {
			return true
		}
	}

	if singleThreadDatabags != nil {
		if touchesAny(a, singleThreadDatabags) || touchesAny(b, singleThreadDatabags) {
			return true
		}
	}

	for kind := range a.EventEmit {
		if _, ok := b.EventEmit[kind]; ok {
			return true
		}
		if _, ok := b.EventReceive[kind]; ok {
			return true
		}
	}
	for kind := range a.EventReceive {
		if _, ok := b.EventEmit[kind]; ok {
			return true
		}
	}

	return false
}

func touchesAny(s SystemAccessSet, flags map[DatabagKindId]bool) bool {
	for _, d := range s.DatabagReads {
		if flags[d] {
			return true
		}
	}
	for _, d := range s.DatabagWrites {
		if flags[d] {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the access set declares no access at all —
// allowed per §4.1. Conflicts has no special case for it: an empty set
// intersects nothing, but it still conflicts with a partner that touches
// a single-thread-only databag.
func (s SystemAccessSet) IsEmpty() bool {
	return len(s.ComponentReads) == 0 && len(s.ComponentWrites) == 0 &&
		len(s.DatabagReads) == 0 && len(s.DatabagWrites) == 0 &&
		len(s.EventEmit) == 0 && len(s.EventReceive) == 0 &&
		len(s.Spawners) == 0
}
