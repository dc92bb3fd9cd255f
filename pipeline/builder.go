// Package pipeline turns a registry of systems and bundles into an
// executable Plan (Builder), then runs that plan tick after tick
// (Executor), following the runtime core's Pipeline Builder and Pipeline
// Executor design: phase partition, dependency-ordered layering, conflict
// splitting, dispatcher wiring, and an emitter cache for event receivers.
package pipeline

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/time/rate"

	ecs "github.com/dangerosodavo/ecscore"
	"github.com/dangerosodavo/ecscore/registry"
)

var allPhases = []ecs.Phase{
	ecs.PhaseConfig,
	ecs.PhaseInput,
	ecs.PhasePreProcess,
	ecs.PhaseProcess,
	ecs.PhasePostProcess,
	ecs.PhasePreRender,
}

// Builder assembles a Plan from a registry's systems and bundles. A single
// Builder can be reused across many Build calls, e.g. after a temporary
// system is readmitted.
type Builder struct {
	reg         *registry.Registry
	systemIds   []registry.SystemId
	bundleIds   []registry.SystemBundleId
	dispatchers map[string]*Builder

	readmitLimiter *rate.Limiter
}

type BuilderOption func(*Builder)

// WithReadmitRateLimit bounds how often Readmit accepts a temporary system
// back into the plan, per the runtime core's re-admission design.
func WithReadmitRateLimit(r rate.Limit, burst int) BuilderOption {
	return func(b *Builder) { b.readmitLimiter = rate.NewLimiter(r, burst) }
}

func NewBuilder(reg *registry.Registry, opts ...BuilderOption) *Builder {
	b := &Builder{reg: reg, dispatchers: make(map[string]*Builder)}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Builder) AddSystem(id registry.SystemId) *Builder {
	b.systemIds = append(b.systemIds, id)
	return b
}

func (b *Builder) AddBundle(id registry.SystemBundleId) *Builder {
	b.bundleIds = append(b.bundleIds, id)
	return b
}

// WireDispatcher registers the sub-Builder that resolves a dispatcher
// system's DispatcherName. Build fails with ErrPlanUnbuildable if a
// dispatcher system in the plan names a sub-pipeline nothing wired here.
func (b *Builder) WireDispatcher(name string, sub *Builder) *Builder {
	b.dispatchers[name] = sub
	return b
}

// Readmit re-adds a temporary system the Executor previously excised. When
// the Builder was constructed with WithReadmitRateLimit, calls beyond that
// rate fail with ErrPlanUnbuildable; without that option Readmit is not
// rate limited.
func (b *Builder) Readmit(id registry.SystemId) error {
	if b.readmitLimiter != nil && !b.readmitLimiter.Allow() {
		return fmt.Errorf("%w: readmission rate exceeded for system %v", ecs.ErrPlanUnbuildable, id)
	}
	b.AddSystem(id)
	return nil
}

type expandedSystem struct {
	desc   registry.SystemDescriptor
	before []string
	after  []string
	order  int
}

func (b *Builder) expand() ([]expandedSystem, error) {
	seen := make(map[registry.SystemId]bool)
	var out []expandedSystem
	order := 0

	add := func(id registry.SystemId, extraBefore, extraAfter []string) error {
		if seen[id] {
			return nil
		}
		seen[id] = true
		desc, err := b.reg.System(id)
		if err != nil {
			return err
		}
		before := append(append([]string{}, desc.Before...), extraBefore...)
		after := append(append([]string{}, desc.After...), extraAfter...)
		out = append(out, expandedSystem{desc: desc, before: before, after: after, order: order})
		order++
		return nil
	}

	for _, bundleId := range b.bundleIds {
		bundle, err := b.reg.SystemBundle(bundleId)
		if err != nil {
			return nil, err
		}
		for _, memberId := range bundle.Members {
			if err := add(memberId, bundle.Before, bundle.After); err != nil {
				return nil, err
			}
		}
	}
	for _, id := range b.systemIds {
		if err := add(id, nil, nil); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Build runs the seven-step algorithm and freezes the registry on success,
// per the Type Registry design's "frozen after the first pipeline build"
// rule — re-running Build (e.g. after Readmit) re-freezes harmlessly.
func (b *Builder) Build() (*Plan, error) {
	systems, err := b.expand()
	if err != nil {
		return nil, err
	}

	byPhase := make(map[ecs.Phase][]expandedSystem)
	for _, s := range systems {
		byPhase[s.desc.Phase] = append(byPhase[s.desc.Phase], s)
	}

	byName := make(map[string]expandedSystem, len(systems))
	for _, s := range systems {
		byName[s.desc.Name] = s
	}

	singleThread := b.reg.SingleThreadDatabags()

	plan := &Plan{EmitterCache: make(map[string][]string)}
	for _, phase := range allPhases {
		members := byPhase[phase]
		if len(members) == 0 {
			continue
		}
		stages, err := layerAndSplit(members, byName, singleThread)
		if err != nil {
			return nil, err
		}
		phasePlan := PhasePlan{Phase: phase}
		for _, stageMembers := range stages {
			handles := make([]SystemHandle, 0, len(stageMembers))
			for _, s := range stageMembers {
				handles = append(handles, b.toHandle(s.desc))
			}
			phasePlan.Stages = append(phasePlan.Stages, Stage{Systems: handles})
		}
		plan.Phases = append(plan.Phases, phasePlan)
	}

	if err := b.wireDispatchers(plan, systems); err != nil {
		return nil, err
	}
	b.buildEmitterCache(plan, systems)

	b.reg.Freeze()
	return plan, nil
}

// layerAndSplit builds the intra-phase dependency DAG from before/after
// edges, assigns each system to the layer one past its latest
// predecessor's layer (longest-path topological layering), then splits
// each layer into conflict-free sub-stages.
func layerAndSplit(members []expandedSystem, byName map[string]expandedSystem, singleThread map[registry.DatabagKindId]bool) ([][]expandedSystem, error) {
	inPhase := make(map[registry.SystemId]bool, len(members))
	for _, s := range members {
		inPhase[s.desc.Id] = true
	}

	dependents := make(map[registry.SystemId][]registry.SystemId)
	remaining := make(map[registry.SystemId]int, len(members))
	for _, s := range members {
		remaining[s.desc.Id] = 0
	}

	addEdge := func(pred, succ registry.SystemId) {
		dependents[pred] = append(dependents[pred], succ)
		remaining[succ]++
	}

	for _, s := range members {
		for _, name := range s.before {
			if target, ok := byName[name]; ok && inPhase[target.desc.Id] {
				addEdge(s.desc.Id, target.desc.Id)
			}
		}
		for _, name := range s.after {
			if target, ok := byName[name]; ok && inPhase[target.desc.Id] {
				addEdge(target.desc.Id, s.desc.Id)
			}
		}
	}

	var layers [][]expandedSystem
	placed := make(map[registry.SystemId]bool, len(members))
	for len(placed) < len(members) {
		var frontier []expandedSystem
		for _, s := range members {
			if !placed[s.desc.Id] && remaining[s.desc.Id] == 0 {
				frontier = append(frontier, s)
			}
		}
		if len(frontier) == 0 {
			var merr *multierror.Error
			for _, s := range members {
				if !placed[s.desc.Id] {
					merr = multierror.Append(merr, fmt.Errorf("system %q participates in a dependency cycle", s.desc.Name))
				}
			}
			return nil, fmt.Errorf("%w: %v", ecs.ErrPlanUnbuildable, merr)
		}
		sort.Slice(frontier, func(i, j int) bool { return frontier[i].order < frontier[j].order })
		for _, s := range frontier {
			placed[s.desc.Id] = true
			for _, succ := range dependents[s.desc.Id] {
				remaining[succ]--
			}
		}
		layers = append(layers, frontier)
	}

	var stages [][]expandedSystem
	for _, layer := range layers {
		stages = append(stages, splitConflicts(layer, singleThread)...)
	}
	return stages, nil
}

// splitConflicts greedily first-fits each system of a layer into the
// earliest sub-stage whose members don't conflict with it, preserving
// declaration order; a dispatcher system always gets a solo sub-stage.
func splitConflicts(layer []expandedSystem, singleThread map[registry.DatabagKindId]bool) [][]expandedSystem {
	var subStages [][]expandedSystem
	for _, s := range layer {
		if s.desc.Kind == ecs.SystemDispatcher {
			subStages = append(subStages, []expandedSystem{s})
			continue
		}
		placedInto := -1
		for i, stage := range subStages {
			conflict := false
			for _, other := range stage {
				if other.desc.Kind == ecs.SystemDispatcher || s.desc.Access.Conflicts(other.desc.Access, singleThread) {
					conflict = true
					break
				}
			}
			if !conflict {
				placedInto = i
				break
			}
		}
		if placedInto == -1 {
			subStages = append(subStages, []expandedSystem{s})
		} else {
			subStages[placedInto] = append(subStages[placedInto], s)
		}
	}
	return subStages
}

func (b *Builder) toHandle(desc registry.SystemDescriptor) SystemHandle {
	repeat := desc.DispatcherRepeat
	if repeat < 1 {
		repeat = 1
	}

	var emits []EmitterRef
	for kind, names := range desc.Access.EventEmit {
		eventDesc, err := b.reg.Event(kind)
		if err != nil {
			continue
		}
		for _, n := range names {
			emits = append(emits, EmitterRef{EventKind: eventDesc.Name, Emitter: n})
		}
	}

	return SystemHandle{
		Id:               uint32(desc.Id),
		Name:             desc.Name,
		Kind:             desc.Kind,
		Phase:            desc.Phase,
		Invoke:           desc.Invoke,
		DispatcherName:   desc.DispatcherName,
		DispatcherRepeat: repeat,
		Temporary:        desc.Kind == ecs.SystemTemporary,
		Emits:            emits,
	}
}

func (b *Builder) wireDispatchers(plan *Plan, systems []expandedSystem) error {
	needed := make(map[string]bool)
	for _, s := range systems {
		if s.desc.Kind != ecs.SystemDispatcher {
			continue
		}
		if s.desc.DispatcherName == "" {
			return fmt.Errorf("%w: dispatcher system %q has no sub-pipeline name", ecs.ErrPlanUnbuildable, s.desc.Name)
		}
		needed[s.desc.DispatcherName] = true
	}
	if len(needed) == 0 {
		return nil
	}
	plan.Dispatchers = make(map[string]*Plan, len(needed))
	for name := range needed {
		sub, ok := b.dispatchers[name]
		if !ok {
			return fmt.Errorf("%w: dispatcher %q has no wired sub-pipeline", ecs.ErrPlanUnbuildable, name)
		}
		subPlan, err := sub.Build()
		if err != nil {
			return err
		}
		plan.Dispatchers[name] = subPlan
	}
	return nil
}

func (b *Builder) buildEmitterCache(plan *Plan, systems []expandedSystem) {
	for _, s := range systems {
		for kind, names := range s.desc.Access.EventEmit {
			eventDesc, err := b.reg.Event(kind)
			if err != nil {
				continue
			}
			existing := plan.EmitterCache[eventDesc.Name]
			for _, n := range names {
				if !containsString(existing, n) {
					existing = append(existing, n)
				}
			}
			plan.EmitterCache[eventDesc.Name] = existing
		}
	}
}

func containsString(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
