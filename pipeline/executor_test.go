package pipeline_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	ecs "github.com/dangerosodavo/ecscore"
	"github.com/dangerosodavo/ecscore/pipeline"
	"github.com/dangerosodavo/ecscore/registry"
)

func recordingInvoke(mu *sync.Mutex, order *[]string, name string) func(ecs.ExecutionContext) ecs.SystemResult {
	return func(ecs.ExecutionContext) ecs.SystemResult {
		mu.Lock()
		*order = append(*order, name)
		mu.Unlock()
		return ecs.SystemResult{}
	}
}

func TestExecutor_MinimalTickRunsEveryStage(t *testing.T) {
	reg := registry.New()
	var mu sync.Mutex
	var order []string

	second, err := reg.RegisterSystem(registry.SystemDescriptor{
		Name: "Second", After: []string{"First"}, Invoke: recordingInvoke(&mu, &order, "Second"),
	})
	require.NoError(t, err)
	first, err := reg.RegisterSystem(registry.SystemDescriptor{
		Name: "First", Invoke: recordingInvoke(&mu, &order, "First"),
	})
	require.NoError(t, err)

	plan, err := pipeline.NewBuilder(reg).AddSystem(second).AddSystem(first).Build()
	require.NoError(t, err)

	world := ecs.NewWorld()
	exec := pipeline.NewExecutor(world, plan)
	require.NoError(t, exec.Tick(context.Background(), time.Millisecond))
	require.Equal(t, []string{"First", "Second"}, order)
}

func TestExecutor_ParallelStageRunsBothSystems(t *testing.T) {
	reg := registry.New()
	var mu sync.Mutex
	var order []string

	a, err := reg.RegisterSystem(registry.SystemDescriptor{
		Name:   "A",
		Access: registry.SystemAccessSet{ComponentWrites: []registry.ComponentKindId{1}},
		Invoke: recordingInvoke(&mu, &order, "A"),
	})
	require.NoError(t, err)
	b, err := reg.RegisterSystem(registry.SystemDescriptor{
		Name:   "B",
		Access: registry.SystemAccessSet{ComponentWrites: []registry.ComponentKindId{2}},
		Invoke: recordingInvoke(&mu, &order, "B"),
	})
	require.NoError(t, err)

	plan, err := pipeline.NewBuilder(reg).AddSystem(a).AddSystem(b).Build()
	require.NoError(t, err)
	require.Len(t, plan.Phases[0].Stages, 1)
	require.Len(t, plan.Phases[0].Stages[0].Systems, 2)

	world := ecs.NewWorld()
	exec := pipeline.NewExecutor(world, plan)
	require.NoError(t, exec.Tick(context.Background(), time.Millisecond))
	require.ElementsMatch(t, []string{"A", "B"}, order)
}

func TestExecutor_TemporarySystemRetiresAfterSuccess(t *testing.T) {
	reg := registry.New()
	var runs int

	id, err := reg.RegisterSystem(registry.SystemDescriptor{
		Name: "Bootstrap",
		Kind: ecs.SystemTemporary,
		Invoke: func(ecs.ExecutionContext) ecs.SystemResult {
			runs++
			return ecs.SystemResult{}
		},
	})
	require.NoError(t, err)

	plan, err := pipeline.NewBuilder(reg).AddSystem(id).Build()
	require.NoError(t, err)

	world := ecs.NewWorld()
	exec := pipeline.NewExecutor(world, plan)
	require.NoError(t, exec.Tick(context.Background(), time.Millisecond))
	require.NoError(t, exec.Tick(context.Background(), time.Millisecond))
	require.Equal(t, 1, runs)
}

func TestExecutor_DispatcherRunsSubPipelineToCompletion(t *testing.T) {
	reg := registry.New()
	var childRuns int

	child, err := reg.RegisterSystem(registry.SystemDescriptor{
		Name: "ChildSystem",
		Invoke: func(ecs.ExecutionContext) ecs.SystemResult {
			childRuns++
			return ecs.SystemResult{}
		},
	})
	require.NoError(t, err)
	dispatcher, err := reg.RegisterSystem(registry.SystemDescriptor{
		Name: "SceneDispatcher", Kind: ecs.SystemDispatcher, DispatcherName: "scene",
		Invoke: func(ecs.ExecutionContext) ecs.SystemResult { return ecs.SystemResult{} },
	})
	require.NoError(t, err)

	sub := pipeline.NewBuilder(reg).AddSystem(child)
	plan, err := pipeline.NewBuilder(reg).AddSystem(dispatcher).WireDispatcher("scene", sub).Build()
	require.NoError(t, err)

	world := ecs.NewWorld()
	exec := pipeline.NewExecutor(world, plan)
	require.NoError(t, exec.Tick(context.Background(), time.Millisecond))
	require.NoError(t, exec.Tick(context.Background(), time.Millisecond))
	require.Equal(t, 2, childRuns)
}

func TestExecutor_DispatcherRepeatRunsSubPlanMultipleTimesPerVisit(t *testing.T) {
	reg := registry.New()
	var mu sync.Mutex
	var order []string

	p1, err := reg.RegisterSystem(registry.SystemDescriptor{
		Name: "P1", Invoke: recordingInvoke(&mu, &order, "P1"),
	})
	require.NoError(t, err)
	p2, err := reg.RegisterSystem(registry.SystemDescriptor{
		Name: "P2", After: []string{"P1"}, Invoke: recordingInvoke(&mu, &order, "P2"),
	})
	require.NoError(t, err)

	a, err := reg.RegisterSystem(registry.SystemDescriptor{
		Name: "A", Invoke: recordingInvoke(&mu, &order, "A"),
	})
	require.NoError(t, err)
	dispatcher, err := reg.RegisterSystem(registry.SystemDescriptor{
		Name: "Dispatcher", Kind: ecs.SystemDispatcher, DispatcherName: "sub", DispatcherRepeat: 2,
		After:  []string{"A"},
		Invoke: func(ecs.ExecutionContext) ecs.SystemResult { return ecs.SystemResult{} },
	})
	require.NoError(t, err)
	b, err := reg.RegisterSystem(registry.SystemDescriptor{
		Name: "B", After: []string{"Dispatcher"}, Invoke: recordingInvoke(&mu, &order, "B"),
	})
	require.NoError(t, err)

	sub := pipeline.NewBuilder(reg).AddSystem(p1).AddSystem(p2)
	plan, err := pipeline.NewBuilder(reg).AddSystem(a).AddSystem(dispatcher).AddSystem(b).WireDispatcher("sub", sub).Build()
	require.NoError(t, err)

	world := ecs.NewWorld()
	exec := pipeline.NewExecutor(world, plan)
	require.NoError(t, exec.Tick(context.Background(), time.Millisecond))
	require.Equal(t, []string{"A", "P1", "P2", "P1", "P2", "B"}, order)
}

func TestExecutor_EmitterBacklogFlushedBeforeEachInvocation(t *testing.T) {
	reg := registry.New()
	spawned, err := reg.RegisterEvent("Spawned", nil, nil)
	require.NoError(t, err)

	var seenAtStart []int
	emitter, err := reg.RegisterSystem(registry.SystemDescriptor{
		Name: "Spawner",
		Access: registry.SystemAccessSet{
			EventEmit: map[registry.EventKindId][]string{spawned: {"Spawner"}},
		},
		Invoke: func(ctx ecs.ExecutionContext) ecs.SystemResult {
			events := ecs.Events[string](ctx.World(), "Spawned")
			seenAtStart = append(seenAtStart, len(events.Events("Spawner")))
			events.Emit("Spawner", "x")
			return ecs.SystemResult{}
		},
	})
	require.NoError(t, err)

	plan, err := pipeline.NewBuilder(reg).AddSystem(emitter).Build()
	require.NoError(t, err)

	world := ecs.NewWorld()
	exec := pipeline.NewExecutor(world, plan)
	require.NoError(t, exec.Tick(context.Background(), time.Millisecond))
	require.NoError(t, exec.Tick(context.Background(), time.Millisecond))
	require.NoError(t, exec.Tick(context.Background(), time.Millisecond))

	require.Equal(t, []int{0, 0, 0}, seenAtStart)
}

func TestExecutor_AbortOnErrorStopsTickWithNoRetry(t *testing.T) {
	reg := registry.New()
	var secondRan bool

	failing, err := reg.RegisterSystem(registry.SystemDescriptor{
		Name: "Failing",
		Invoke: func(ecs.ExecutionContext) ecs.SystemResult {
			return ecs.SystemResult{Err: ecs.ErrMissingComponent}
		},
	})
	require.NoError(t, err)
	after, err := reg.RegisterSystem(registry.SystemDescriptor{
		Name: "After", After: []string{"Failing"},
		Invoke: func(ecs.ExecutionContext) ecs.SystemResult {
			secondRan = true
			return ecs.SystemResult{}
		},
	})
	require.NoError(t, err)

	plan, err := pipeline.NewBuilder(reg).AddSystem(failing).AddSystem(after).Build()
	require.NoError(t, err)

	world := ecs.NewWorld()
	exec := pipeline.NewExecutor(world, plan)
	err = exec.Tick(context.Background(), time.Millisecond)
	require.ErrorIs(t, err, ecs.ErrMissingComponent)
	require.False(t, secondRan)
}

func TestExecutor_DeferredCommandsFlushAtTickEnd(t *testing.T) {
	reg := registry.New()

	spawner, err := reg.RegisterSystem(registry.SystemDescriptor{
		Name: "Spawner",
		Invoke: func(ctx ecs.ExecutionContext) ecs.SystemResult {
			ctx.Defer(ecs.NewCreateEntityCommand(nil))
			return ecs.SystemResult{}
		},
	})
	require.NoError(t, err)

	plan, err := pipeline.NewBuilder(reg).AddSystem(spawner).Build()
	require.NoError(t, err)

	world := ecs.NewWorld()
	exec := pipeline.NewExecutor(world, plan)
	require.NoError(t, exec.Tick(context.Background(), time.Millisecond))
	require.Equal(t, 1, world.Registry().Count())
}

func TestExecutor_SameWorldPlanPairingSharesToken(t *testing.T) {
	reg := registry.New()
	noop, err := reg.RegisterSystem(registry.SystemDescriptor{Name: "Noop", Invoke: noopInvoke})
	require.NoError(t, err)
	plan, err := pipeline.NewBuilder(reg).AddSystem(noop).Build()
	require.NoError(t, err)

	world := ecs.NewWorld()
	first := pipeline.NewExecutor(world, plan)
	second := pipeline.NewExecutor(world, plan)

	require.NotNil(t, first.Token())
	require.Equal(t, first.Token(), second.Token())
}
