package registry_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	ecs "github.com/dangerosodavo/ecscore"
	"github.com/dangerosodavo/ecscore/registry"
)

func TestRegisterComponent_DuplicateNameFails(t *testing.T) {
	r := registry.New()

	id, err := r.RegisterComponent("Position", ecs.StorageDense, func() any { return struct{}{} })
	require.NoError(t, err)
	require.NotEqual(t, registry.NoComponent, id)

	_, err = r.RegisterComponent("Position", ecs.StorageDense, nil)
	require.ErrorIs(t, err, ecs.ErrDuplicateName)
}

func TestRegisterComponent_IdsAreDense(t *testing.T) {
	r := registry.New()

	a, err := r.RegisterComponent("A", ecs.StorageDense, nil)
	require.NoError(t, err)
	b, err := r.RegisterComponent("B", ecs.StorageDense, nil)
	require.NoError(t, err)

	require.Equal(t, a+1, b)
}

func TestFreeze_RejectsFurtherRegistration(t *testing.T) {
	r := registry.New()
	r.Freeze()

	_, err := r.RegisterComponent("Position", ecs.StorageDense, nil)
	require.ErrorIs(t, err, ecs.ErrRegistryFrozen)

	_, err = r.RegisterDatabag("Clock", nil, false)
	require.ErrorIs(t, err, ecs.ErrRegistryFrozen)

	_, err = r.RegisterSystemBundle("Physics")
	require.ErrorIs(t, err, ecs.ErrRegistryFrozen)
}

func TestRegisterSystem_NativeDuplicateFails(t *testing.T) {
	r := registry.New()

	_, err := r.RegisterSystem(registry.SystemDescriptor{Name: "Inc"})
	require.NoError(t, err)

	_, err = r.RegisterSystem(registry.SystemDescriptor{Name: "Inc"})
	require.ErrorIs(t, err, ecs.ErrDuplicateName)
}

func TestRegisterSystem_DynamicReRegistrationResetsDescriptorKeepsId(t *testing.T) {
	r := registry.New()

	first, err := r.RegisterSystem(registry.SystemDescriptor{
		Name:    "ScriptedAI",
		Dynamic: true,
		Access:  registry.SystemAccessSet{ComponentReads: []registry.ComponentKindId{1}},
	})
	require.NoError(t, err)

	second, err := r.RegisterSystem(registry.SystemDescriptor{
		Name:    "ScriptedAI",
		Dynamic: true,
		Access:  registry.SystemAccessSet{ComponentReads: []registry.ComponentKindId{1, 2}},
	})
	require.NoError(t, err)
	require.Equal(t, first, second)

	desc, err := r.System(second)
	require.NoError(t, err)
	require.Len(t, desc.Access.ComponentReads, 2)
}

func TestRegisterSystem_DynamicCannotReplaceNative(t *testing.T) {
	r := registry.New()

	_, err := r.RegisterSystem(registry.SystemDescriptor{Name: "Inc", Dynamic: false})
	require.NoError(t, err)

	_, err = r.RegisterSystem(registry.SystemDescriptor{Name: "Inc", Dynamic: true})
	require.ErrorIs(t, err, ecs.ErrDuplicateName)
}

func TestRegisterSystem_FrozenStillAllowsDynamicReset(t *testing.T) {
	r := registry.New()
	id, err := r.RegisterSystem(registry.SystemDescriptor{Name: "ScriptedAI", Dynamic: true})
	require.NoError(t, err)

	r.Freeze()

	again, err := r.RegisterSystem(registry.SystemDescriptor{Name: "ScriptedAI", Dynamic: true})
	require.NoError(t, err)
	require.Equal(t, id, again)
}

func TestSystemBundle_MembersAndOrdering(t *testing.T) {
	r := registry.New()

	sysA, _ := r.RegisterSystem(registry.SystemDescriptor{Name: "A"})
	sysB, _ := r.RegisterSystem(registry.SystemDescriptor{Name: "B"})

	bundle, err := r.RegisterSystemBundle("Physics")
	require.NoError(t, err)

	require.NoError(t, r.AddToBundle(bundle, sysA))
	require.NoError(t, r.AddToBundle(bundle, sysB))
	require.NoError(t, r.SetBundleOrdering(bundle, []string{"Render"}, nil))

	desc, err := r.SystemBundle(bundle)
	require.NoError(t, err)
	require.ElementsMatch(t, []registry.SystemId{sysA, sysB}, desc.Members)
	require.Equal(t, []string{"Render"}, desc.Before)
}

func TestSingleThreadDatabags(t *testing.T) {
	r := registry.New()

	world, err := r.RegisterDatabag("WorldRoot", nil, true)
	require.NoError(t, err)
	_, err = r.RegisterDatabag("Score", nil, false)
	require.NoError(t, err)

	flags := r.SingleThreadDatabags()
	require.True(t, flags[world])
	require.Len(t, flags, 1)
}

func TestAccessSet_ConflictsOnComponentWriteRead(t *testing.T) {
	a := registry.SystemAccessSet{ComponentWrites: []registry.ComponentKindId{1}}
	b := registry.SystemAccessSet{ComponentReads: []registry.ComponentKindId{1}}
	require.True(t, a.Conflicts(b, nil))
}

func TestAccessSet_NoConflictOnDisjointComponents(t *testing.T) {
	a := registry.SystemAccessSet{ComponentWrites: []registry.ComponentKindId{1}}
	b := registry.SystemAccessSet{ComponentWrites: []registry.ComponentKindId{2}}
	require.False(t, a.Conflicts(b, nil))
}

func TestAccessSet_ConflictsOnSingleThreadDatabag(t *testing.T) {
	a := registry.SystemAccessSet{DatabagReads: []registry.DatabagKindId{1}}
	b := registry.SystemAccessSet{DatabagReads: []registry.DatabagKindId{2}}
	require.True(t, a.Conflicts(b, map[registry.DatabagKindId]bool{1: true}))
}

func TestAccessSet_EventEmitterConflictsWithReceiver(t *testing.T) {
	a := registry.SystemAccessSet{EventEmit: map[registry.EventKindId][]string{1: {"spawn"}}}
	b := registry.SystemAccessSet{EventReceive: map[registry.EventKindId][]string{1: nil}}
	require.True(t, a.Conflicts(b, nil))
}

func TestAccessSet_EmptySetNeverConflicts(t *testing.T) {
	a := registry.SystemAccessSet{}
	b := registry.SystemAccessSet{ComponentWrites: []registry.ComponentKindId{1}, ComponentReads: []registry.ComponentKindId{2}}
	require.True(t, a.IsEmpty())
	require.False(t, a.Conflicts(b, nil))
}
