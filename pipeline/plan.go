package pipeline

import ecs "github.com/dangerosodavo/ecscore"

// Stage is a set of systems the executor may run concurrently; the
// builder guarantees their access sets never conflict.
type Stage struct {
	Systems []SystemHandle
}

// PhasePlan is the ordered list of stages a single phase partitions into.
type PhasePlan struct {
	Phase  ecs.Phase
	Stages []Stage
}

// Plan is the immutable output of a successful Builder.Build: a
// phase-ordered sequence of stages, plus the resolved sub-plans for every
// dispatcher system and the emitter cache for event receivers.
type Plan struct {
	Phases       []PhasePlan
	Dispatchers  map[string]*Plan
	EmitterCache map[string][]string // event kind name -> known emitter names
}

func (p *Plan) isEmpty() bool {
	for _, ph := range p.Phases {
		if len(ph.Stages) > 0 {
			return false
		}
	}
	return true
}
