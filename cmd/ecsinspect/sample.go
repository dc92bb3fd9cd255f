package main

import (
	"time"

	ecs "github.com/dangerosodavo/ecscore"
	"github.com/dangerosodavo/ecscore/pipeline"
	"github.com/dangerosodavo/ecscore/registry"
	"github.com/dangerosodavo/ecscore/storage"
)

// buildSamplePlan wires a small Position/Velocity demo: a temporary
// bootstrap system, a physics system that writes Position from Velocity,
// and a render system that only reads Position. It exists purely to give
// the plan/tick/metrics subcommands something concrete to report on.
func buildSamplePlan() (*ecs.World, *pipeline.Builder, *registry.Registry, error) {
	world := ecs.NewWorld()
	reg := registry.New()

	if err := world.RegisterComponent("Position", storage.NewDenseStrategy()); err != nil {
		return nil, nil, nil, err
	}
	if err := world.RegisterComponent("Velocity", storage.NewDenseStrategy()); err != nil {
		return nil, nil, nil, err
	}
	position, err := reg.RegisterComponent("Position", ecs.StorageDense, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	velocity, err := reg.RegisterComponent("Velocity", ecs.StorageDense, nil)
	if err != nil {
		return nil, nil, nil, err
	}

	bootstrap, err := reg.RegisterSystem(registry.SystemDescriptor{
		Name: "Bootstrap",
		Kind: ecs.SystemTemporary,
		Invoke: func(ctx ecs.ExecutionContext) ecs.SystemResult {
			entity := ctx.World().CreateEntity()
			ctx.Defer(ecs.NewAddComponentCommand(entity, "Position", struct{ X, Y float64 }{}))
			ctx.Defer(ecs.NewAddComponentCommand(entity, "Velocity", struct{ X, Y float64 }{X: 1}))
			return ecs.SystemResult{}
		},
	})
	if err != nil {
		return nil, nil, nil, err
	}

	physics, err := reg.RegisterSystem(registry.SystemDescriptor{
		Name: "Physics",
		Access: registry.SystemAccessSet{
			ComponentReads:  []registry.ComponentKindId{velocity},
			ComponentWrites: []registry.ComponentKindId{position},
		},
		Invoke: func(ctx ecs.ExecutionContext) ecs.SystemResult { return ecs.SystemResult{} },
	})
	if err != nil {
		return nil, nil, nil, err
	}

	render, err := reg.RegisterSystem(registry.SystemDescriptor{
		Name:   "Render",
		After:  []string{"Physics"},
		Access: registry.SystemAccessSet{ComponentReads: []registry.ComponentKindId{position}},
		Invoke: func(ctx ecs.ExecutionContext) ecs.SystemResult { return ecs.SystemResult{} },
	})
	if err != nil {
		return nil, nil, nil, err
	}

	builder := pipeline.NewBuilder(reg).AddSystem(bootstrap).AddSystem(physics).AddSystem(render)
	return world, builder, reg, nil
}

const sampleTickInterval = 16 * time.Millisecond
