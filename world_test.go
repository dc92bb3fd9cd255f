package ecscore_test

import (
	"testing"

	ecs "github.com/dangerosodavo/ecscore"
	ecsstorage "github.com/dangerosodavo/ecscore/storage"
)

func TestWorldRegisterComponent(t *testing.T) {
	world := ecs.NewWorld()

	strategy := ecsstorage.NewDenseStrategy()
	compType := ecs.ComponentType("position")

	if err := world.RegisterComponent(compType, strategy); err != nil {
		t.Fatalf("register component: %v", err)
	}

	if err := world.RegisterComponent(compType, strategy); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}

	view, err := world.ViewComponent(compType)
	if err != nil {
		t.Fatalf("view component: %v", err)
	}
	if view.ComponentType() != compType {
		t.Fatalf("unexpected component type: %v", view.ComponentType())
	}
}

func TestWorldDestroyEntitySweepsComponents(t *testing.T) {
	world := ecs.NewWorld()
	compType := ecs.ComponentType("position")

	if err := world.RegisterComponent(compType, ecsstorage.NewDenseStrategy()); err != nil {
		t.Fatalf("register component: %v", err)
	}

	entity := world.CreateEntity()
	view, err := world.ViewComponent(compType)
	if err != nil {
		t.Fatalf("view component: %v", err)
	}
	store, ok := view.(ecs.ComponentStore)
	if !ok {
		t.Fatalf("expected writable store")
	}
	if err := store.Set(entity, 1); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !store.Has(entity) {
		t.Fatalf("expected component to be set before destroy")
	}

	if !world.DestroyEntity(entity) {
		t.Fatalf("expected destroy to succeed")
	}
	if store.Has(entity) {
		t.Fatalf("expected component to be swept on entity destroy")
	}
}

func TestResourceContainer(t *testing.T) {
	world := ecs.NewWorld()
	world.Resources().Set("clock", 123)

	value, ok := world.Resources().Get("clock")
	if !ok {
		t.Fatalf("expected resource")
	}
	if value.(int) != 123 {
		t.Fatalf("unexpected resource value: %v", value)
	}

	seen := 0
	world.Resources().Range(func(k string, v any) bool {
		seen++
		return true
	})
	if seen == 0 {
		t.Fatalf("expected Range to visit entries")
	}

	world.Resources().Delete("clock")
	if _, ok := world.Resources().Get("clock"); ok {
		t.Fatalf("resource should be deleted")
	}
}
