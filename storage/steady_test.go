package storage

import (
	"testing"

	ecs "github.com/dangerosodavo/ecscore"
)

func TestSteadyStoreCRUD(t *testing.T) {
	strategy := NewSteadyStrategy(4)
	store := strategy.NewStore(ecs.ComponentType("comp")).(*steadyStore)

	reg := ecs.NewEntityRegistry()
	id := reg.Create()

	if err := store.Set(id, 7); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !store.Has(id) {
		t.Fatalf("expected Has true")
	}
	v, ok := store.Get(id)
	if !ok || v.(int) != 7 {
		t.Fatalf("unexpected get: %#v ok=%v", v, ok)
	}

	if !store.Remove(id) {
		t.Fatalf("remove failed")
	}
	if store.Has(id) {
		t.Fatalf("expected removed entity to be absent")
	}
}

func TestSteadyStoreAddressStableAcrossUnrelatedRemoval(t *testing.T) {
	strategy := NewSteadyStrategy(4)
	store := strategy.NewStore(ecs.ComponentType("comp")).(*steadyStore)

	reg := ecs.NewEntityRegistry()
	a := reg.Create()
	b := reg.Create()

	store.Set(a, &struct{ N int }{N: 1})
	store.Set(b, &struct{ N int }{N: 2})

	beforeRemoval, _ := store.Get(b)

	store.Remove(a)

	afterRemoval, ok := store.Get(b)
	if !ok {
		t.Fatalf("expected b to survive a's removal")
	}
	if beforeRemoval != afterRemoval {
		t.Fatalf("expected b's address to be stable across a's removal")
	}
}

func TestSteadyStoreRejectsZeroEntity(t *testing.T) {
	store := NewSteadyStrategy(0).NewStore(ecs.ComponentType("comp"))
	if err := store.Set(ecs.EntityID{}, 1); err == nil {
		t.Fatalf("expected error for zero entity")
	}
}

func TestSteadyStoreIterate(t *testing.T) {
	strategy := NewSteadyStrategy(4)
	store := strategy.NewStore(ecs.ComponentType("comp"))

	reg := ecs.NewEntityRegistry()
	ids := make([]ecs.EntityID, 0, 5)
	for i := 0; i < 5; i++ {
		id := reg.Create()
		ids = append(ids, id)
		if err := store.Set(id, i); err != nil {
			t.Fatalf("set: %v", err)
		}
	}

	seen := 0
	store.Iterate(func(ecs.EntityID, any) bool {
		seen++
		return true
	})
	if seen != 5 {
		t.Fatalf("expected 5 entities, got %d", seen)
	}
}
