package registry

import ecs "github.com/dangerosodavo/ecscore"

// ComponentDescriptor is the immutable record produced by RegisterComponent.
type ComponentDescriptor struct {
	Id         ComponentKindId
	Name       string
	Discipline ecs.StorageDiscipline
	Factory    func() any
}

// DatabagDescriptor is the immutable record produced by RegisterDatabag.
type DatabagDescriptor struct {
	Id     DatabagKindId
	Name   string
	Factory func() any
	// SingleThreadOnly marks well-known databags (world root, scene-tree
	// host databag, pipeline commands) that force any touching system
	// into a solo stage, per §5.
	SingleThreadOnly bool
}

// EventDescriptor is the immutable record produced by RegisterEvent.
type EventDescriptor struct {
	Id      EventKindId
	Name    string
	Factory func() any
	Destroy func(any)
}

// SpawnerDescriptor is the immutable record produced by RegisterSpawner.
type SpawnerDescriptor struct {
	Id   SpawnerKindId
	Name string
}

// SystemDescriptor is the registry's full record for a system: its name,
// access set, scheduling metadata, and invocation hook. invoke_fn in
// spec.md §4.1 corresponds to Invoke here.
type SystemDescriptor struct {
	Id               SystemId
	Name             string
	Access           SystemAccessSet
	Kind             ecs.SystemKind
	Phase            ecs.Phase
	DispatcherName   string // non-empty only for Kind == SystemDispatcher
	// DispatcherRepeat is how many times the dispatcher invokes its
	// sub-plan to completion per visit. Zero/negative defaults to 1 so
	// every existing dispatcher descriptor keeps running exactly once.
	DispatcherRepeat int
	ParentDispatcher string // non-empty for a system targeted into a sub-pipeline
	Before           []string
	After            []string
	Invoke           func(ctx ecs.ExecutionContext) ecs.SystemResult
	// Dynamic marks a foreign-origin (script-supplied) system: re-registering
	// under the same name resets its descriptor and clears any cached
	// emitter map, but preserves Id, instead of failing with a duplicate
	// registration error.
	Dynamic bool
}

// SystemBundleDescriptor groups a set of systems under one registration
// name, with bundle-level before/after edges carried onto every member
// when the bundle is expanded by the pipeline builder.
type SystemBundleDescriptor struct {
	Id      SystemBundleId
	Name    string
	Members []SystemId
	Before  []string
	After   []string
}
