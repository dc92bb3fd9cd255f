package storage

import (
	"testing"

	ecs "github.com/dangerosodavo/ecscore"
)

type GameStats struct {
	Health       int
	AttackDamage int
	Defense      int
}

func TestSharedStore_CreateAttachAlias(t *testing.T) {
	strategy := NewSharedStrategy()
	store := strategy.NewStore("Stats").(*sharedStore)

	reg := ecs.NewEntityRegistry()
	zombie1 := reg.Create()
	zombie2 := reg.Create()

	baseStats := GameStats{Health: 50, AttackDamage: 10, Defense: 5}
	shared := store.CreateShared(baseStats)

	if err := store.Attach(zombie1, shared); err != nil {
		t.Fatalf("attach zombie1: %v", err)
	}
	if err := store.Attach(zombie2, shared); err != nil {
		t.Fatalf("attach zombie2: %v", err)
	}

	if store.Len() != 2 {
		t.Fatalf("expected 2 entities aliasing the value, got %d", store.Len())
	}

	v1, ok := store.Get(zombie1)
	if !ok || v1.(GameStats) != baseStats {
		t.Fatalf("unexpected value for zombie1: %#v ok=%v", v1, ok)
	}
	v2, ok := store.Get(zombie2)
	if !ok || v2.(GameStats) != baseStats {
		t.Fatalf("unexpected value for zombie2: %#v ok=%v", v2, ok)
	}
}

func TestSharedStore_FreeInvalidatesAliases(t *testing.T) {
	strategy := NewSharedStrategy()
	store := strategy.NewStore("Stats").(*sharedStore)

	reg := ecs.NewEntityRegistry()
	e1 := reg.Create()

	shared := store.CreateShared(GameStats{Health: 1})
	if err := store.Attach(e1, shared); err != nil {
		t.Fatalf("attach: %v", err)
	}

	if !store.FreeShared(shared) {
		t.Fatalf("expected free to succeed")
	}
	if store.HasShared(shared) {
		t.Fatalf("shared id should be invalid after free")
	}
	if store.Has(e1) {
		t.Fatalf("entity alias should report missing after free")
	}
	if _, ok := store.GetShared(shared); ok {
		t.Fatalf("expected GetShared to fail after free")
	}
}

func TestSharedStore_AttachUnknownIdFails(t *testing.T) {
	strategy := NewSharedStrategy()
	store := strategy.NewStore("Stats").(*sharedStore)

	reg := ecs.NewEntityRegistry()
	e1 := reg.Create()

	bogus := ecs.SharedId{}
	if err := store.Attach(e1, bogus); err == nil {
		t.Fatalf("expected error attaching zero shared id")
	}
}

func TestSharedStore_ReattachReleasesPreviousAlias(t *testing.T) {
	strategy := NewSharedStrategy()
	store := strategy.NewStore("Stats").(*sharedStore)

	reg := ecs.NewEntityRegistry()
	e1 := reg.Create()

	a := store.CreateShared(GameStats{Health: 1})
	b := store.CreateShared(GameStats{Health: 2})

	store.Attach(e1, a)
	store.Attach(e1, b)

	if store.refCounts[a.Index()] != 0 {
		t.Fatalf("expected stale alias refcount to drop to 0, got %d", store.refCounts[a.Index()])
	}
	if store.refCounts[b.Index()] != 1 {
		t.Fatalf("expected new alias refcount 1, got %d", store.refCounts[b.Index()])
	}

	v, ok := store.Get(e1)
	if !ok || v.(GameStats).Health != 2 {
		t.Fatalf("expected entity to now see the reattached value, got %#v", v)
	}
}

func TestSharedStore_SetConvenienceAndRemove(t *testing.T) {
	strategy := NewSharedStrategy()
	store := strategy.NewStore("Stats").(*sharedStore)

	reg := ecs.NewEntityRegistry()
	e1 := reg.Create()

	if err := store.Set(e1, GameStats{Health: 9}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !store.Has(e1) {
		t.Fatalf("expected entity to have component after set")
	}

	if !store.Remove(e1) {
		t.Fatalf("expected remove to succeed")
	}
	if store.Has(e1) {
		t.Fatalf("expected entity to lose component after remove")
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store after remove, got %d", store.Len())
	}
}

func TestSharedStore_RemovingLastAliasDoesNotFreeSharedValue(t *testing.T) {
	strategy := NewSharedStrategy()
	store := strategy.NewStore("Stats").(*sharedStore)

	reg := ecs.NewEntityRegistry()
	e1 := reg.Create()
	e2 := reg.Create()

	shared := store.CreateShared(GameStats{Health: 50})
	if err := store.Attach(e1, shared); err != nil {
		t.Fatalf("attach e1: %v", err)
	}
	if err := store.Attach(e2, shared); err != nil {
		t.Fatalf("attach e2: %v", err)
	}

	if !store.Remove(e1) {
		t.Fatalf("expected remove e1 to succeed")
	}
	if !store.Remove(e2) {
		t.Fatalf("expected remove e2 to succeed")
	}

	if !store.HasShared(shared) {
		t.Fatalf("expected shared value to survive every alias detaching")
	}
	if _, ok := store.GetShared(shared); !ok {
		t.Fatalf("expected shared value to still be readable")
	}

	if !store.FreeShared(shared) {
		t.Fatalf("expected explicit FreeShared to succeed")
	}
	if store.HasShared(shared) {
		t.Fatalf("expected shared value to be gone after FreeShared")
	}
}

func TestSharedStore_ZeroEntity(t *testing.T) {
	strategy := NewSharedStrategy()
	store := strategy.NewStore("Stats").(*sharedStore)

	if err := store.Set(ecs.EntityID{}, GameStats{}); err == nil {
		t.Fatalf("expected error when setting zero entity")
	}
}

func TestSharedStore_Iterate(t *testing.T) {
	strategy := NewSharedStrategy()
	store := strategy.NewStore("Stats").(*sharedStore)

	reg := ecs.NewEntityRegistry()
	shared := store.CreateShared(GameStats{Health: 50})

	for i := 0; i < 3; i++ {
		e := reg.Create()
		if err := store.Attach(e, shared); err != nil {
			t.Fatalf("attach: %v", err)
		}
	}

	count := 0
	store.Iterate(func(_ ecs.EntityID, v any) bool {
		count++
		if v.(GameStats).Health != 50 {
			t.Fatalf("unexpected value: %#v", v)
		}
		return true
	})
	if count != 3 {
		t.Fatalf("expected 3 iterations, got %d", count)
	}
}

func TestSharedStore_Clear(t *testing.T) {
	strategy := NewSharedStrategy()
	store := strategy.NewStore("Stats").(*sharedStore)

	reg := ecs.NewEntityRegistry()
	e1 := reg.Create()
	shared := store.CreateShared(GameStats{Health: 50})
	store.Attach(e1, shared)

	store.Clear()

	if store.Len() != 0 {
		t.Fatalf("expected length 0 after clear, got %d", store.Len())
	}
	if store.Has(e1) {
		t.Fatalf("entity should not have component after clear")
	}
	if store.HasShared(shared) {
		t.Fatalf("shared id should be invalid after clear")
	}
}
