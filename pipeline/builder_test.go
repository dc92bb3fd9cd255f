package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	ecs "github.com/dangerosodavo/ecscore"
	"github.com/dangerosodavo/ecscore/pipeline"
	"github.com/dangerosodavo/ecscore/registry"
)

func noopInvoke(ecs.ExecutionContext) ecs.SystemResult { return ecs.SystemResult{} }

func TestBuilder_ConflictForcesSplit(t *testing.T) {
	reg := registry.New()
	writer, err := reg.RegisterSystem(registry.SystemDescriptor{
		Name:   "Writer",
		Access: registry.SystemAccessSet{ComponentWrites: []registry.ComponentKindId{1}},
		Invoke: noopInvoke,
	})
	require.NoError(t, err)
	reader, err := reg.RegisterSystem(registry.SystemDescriptor{
		Name:   "Reader",
		Access: registry.SystemAccessSet{ComponentReads: []registry.ComponentKindId{1}},
		Invoke: noopInvoke,
	})
	require.NoError(t, err)
	independent, err := reg.RegisterSystem(registry.SystemDescriptor{
		Name:   "Independent",
		Access: registry.SystemAccessSet{ComponentWrites: []registry.ComponentKindId{2}},
		Invoke: noopInvoke,
	})
	require.NoError(t, err)

	b := pipeline.NewBuilder(reg).AddSystem(writer).AddSystem(reader).AddSystem(independent)
	plan, err := b.Build()
	require.NoError(t, err)
	require.Len(t, plan.Phases, 1)

	stages := plan.Phases[0].Stages
	require.Len(t, stages, 2)
	require.Len(t, stages[0].Systems, 2)
	names := []string{stages[0].Systems[0].Name, stages[0].Systems[1].Name}
	require.Contains(t, names, "Writer")
	require.Contains(t, names, "Independent")
	require.Len(t, stages[1].Systems, 1)
	require.Equal(t, "Reader", stages[1].Systems[0].Name)
}

func TestBuilder_BeforeAfterOrdersIntoSeparateStages(t *testing.T) {
	reg := registry.New()
	second, err := reg.RegisterSystem(registry.SystemDescriptor{Name: "Second", After: []string{"First"}, Invoke: noopInvoke})
	require.NoError(t, err)
	first, err := reg.RegisterSystem(registry.SystemDescriptor{Name: "First", Invoke: noopInvoke})
	require.NoError(t, err)

	b := pipeline.NewBuilder(reg).AddSystem(second).AddSystem(first)
	plan, err := b.Build()
	require.NoError(t, err)

	stages := plan.Phases[0].Stages
	require.Len(t, stages, 2)
	require.Equal(t, "First", stages[0].Systems[0].Name)
	require.Equal(t, "Second", stages[1].Systems[0].Name)
}

func TestBuilder_CycleIsRejected(t *testing.T) {
	reg := registry.New()
	a, err := reg.RegisterSystem(registry.SystemDescriptor{Name: "A", Before: []string{"B"}, Invoke: noopInvoke})
	require.NoError(t, err)
	b, err := reg.RegisterSystem(registry.SystemDescriptor{Name: "B", Before: []string{"A"}, Invoke: noopInvoke})
	require.NoError(t, err)

	_, err = pipeline.NewBuilder(reg).AddSystem(a).AddSystem(b).Build()
	require.ErrorIs(t, err, ecs.ErrPlanUnbuildable)
}

func TestBuilder_UnresolvedDispatcherIsRejected(t *testing.T) {
	reg := registry.New()
	dispatcher, err := reg.RegisterSystem(registry.SystemDescriptor{
		Name: "SceneDispatcher", Kind: ecs.SystemDispatcher, DispatcherName: "scene", Invoke: noopInvoke,
	})
	require.NoError(t, err)

	_, err = pipeline.NewBuilder(reg).AddSystem(dispatcher).Build()
	require.ErrorIs(t, err, ecs.ErrPlanUnbuildable)
}

func TestBuilder_DispatcherWiring(t *testing.T) {
	reg := registry.New()
	child, err := reg.RegisterSystem(registry.SystemDescriptor{Name: "ChildSystem", Invoke: noopInvoke})
	require.NoError(t, err)
	dispatcher, err := reg.RegisterSystem(registry.SystemDescriptor{
		Name: "SceneDispatcher", Kind: ecs.SystemDispatcher, DispatcherName: "scene", Invoke: noopInvoke,
	})
	require.NoError(t, err)

	sub := pipeline.NewBuilder(reg).AddSystem(child)
	plan, err := pipeline.NewBuilder(reg).AddSystem(dispatcher).WireDispatcher("scene", sub).Build()
	require.NoError(t, err)
	require.Contains(t, plan.Dispatchers, "scene")
	require.Equal(t, "ChildSystem", plan.Dispatchers["scene"].Phases[0].Stages[0].Systems[0].Name)
}

func TestBuilder_BundleExpansionAddsAllMembers(t *testing.T) {
	reg := registry.New()
	sysA, err := reg.RegisterSystem(registry.SystemDescriptor{Name: "A", Invoke: noopInvoke})
	require.NoError(t, err)
	sysB, err := reg.RegisterSystem(registry.SystemDescriptor{Name: "B", Invoke: noopInvoke})
	require.NoError(t, err)

	bundle, err := reg.RegisterSystemBundle("Physics")
	require.NoError(t, err)
	require.NoError(t, reg.AddToBundle(bundle, sysA))
	require.NoError(t, reg.AddToBundle(bundle, sysB))

	plan, err := pipeline.NewBuilder(reg).AddBundle(bundle).Build()
	require.NoError(t, err)
	require.Len(t, plan.Phases, 1)
	require.Len(t, plan.Phases[0].Stages, 1)
	require.Len(t, plan.Phases[0].Stages[0].Systems, 2)
}

func TestBuilder_EmitterCache(t *testing.T) {
	reg := registry.New()
	spawnEvent, err := reg.RegisterEvent("Spawn", nil, nil)
	require.NoError(t, err)

	_, err = reg.RegisterSystem(registry.SystemDescriptor{
		Name: "Spawner",
		Access: registry.SystemAccessSet{
			EventEmit: map[registry.EventKindId][]string{spawnEvent: {"spawner"}},
		},
		Invoke: noopInvoke,
	})
	require.NoError(t, err)

	spawner, err := reg.SystemByName("Spawner")
	require.NoError(t, err)

	plan, err := pipeline.NewBuilder(reg).AddSystem(spawner.Id).Build()
	require.NoError(t, err)
	require.Equal(t, []string{"spawner"}, plan.EmitterCache["Spawn"])
}
