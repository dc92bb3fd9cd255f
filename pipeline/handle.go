package pipeline

import ecs "github.com/dangerosodavo/ecscore"

// SystemHandle is the resolved, invocable view of one registry.SystemId
// the builder places into a Stage.
type SystemHandle struct {
	Id     uint32
	Name   string
	Kind   ecs.SystemKind
	Phase  ecs.Phase
	Invoke func(ctx ecs.ExecutionContext) ecs.SystemResult

	// DispatcherName is non-empty for a Kind == ecs.SystemDispatcher
	// handle; the Executor looks up the matching sub-Plan in
	// Plan.Dispatchers by this name.
	DispatcherName string
	// DispatcherRepeat is how many times the Executor ticks the
	// sub-plan to completion per visit of this handle. Always >= 1.
	DispatcherRepeat int
	// Temporary marks a system that the Executor excises from the plan
	// after it runs once successfully, per §4.6's temporary-system rule.
	Temporary bool
	// Emits lists every (event kind, emitter name) pair this system's
	// Access.EventEmit declares. The Executor flushes each one's backlog
	// immediately before invoking the system, so an emitter never sees
	// events left over from an earlier tick.
	Emits []EmitterRef
}

// EmitterRef names one event kind/emitter name pair a system emits under.
type EmitterRef struct {
	EventKind string
	Emitter   string
}
