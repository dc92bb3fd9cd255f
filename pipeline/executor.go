package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	ecs "github.com/dangerosodavo/ecscore"
)

// ErrorPolicy controls what the Executor does when a system returns an
// error. Abort (the default) stops the tick with no retry, matching the
// runtime core's abort-on-system-failure rule; Continue logs and keeps
// going; Retry re-invokes the system once through an exponential backoff,
// discarding any commands it deferred on the failed attempt.
type ErrorPolicy uint8

const (
	ErrorPolicyAbort ErrorPolicy = iota
	ErrorPolicyContinue
	ErrorPolicyRetry
)

// Executor runs a Plan tick after tick: strict ordering between stages,
// parallel execution within a stage, recursive full-iteration of
// dispatcher sub-plans, and a single deferred-command flush at tick end.
type Executor struct {
	world    *ecs.World
	plan     *Plan
	pool     *ecs.CommandBufferPool
	logger   ecs.Logger
	tracer   ecs.Tracer
	observer ecs.SchedulerObserver
	policy   ErrorPolicy

	token *WorldToken

	mu                  sync.Mutex
	active              []PhasePlan
	tick                uint64
	dispatcherExecutors map[string]*Executor
}

type ExecutorOption func(*Executor)

func WithLogger(l ecs.Logger) ExecutorOption { return func(e *Executor) { e.logger = l } }
func WithTracer(t ecs.Tracer) ExecutorOption { return func(e *Executor) { e.tracer = t } }
func WithObserver(o ecs.SchedulerObserver) ExecutorOption {
	return func(e *Executor) { e.observer = o }
}
func WithErrorPolicy(p ErrorPolicy) ExecutorOption { return func(e *Executor) { e.policy = p } }

func NewExecutor(world *ecs.World, plan *Plan, opts ...ExecutorOption) *Executor {
	e := &Executor{
		world:    world,
		plan:     plan,
		pool:     ecs.NewCommandBufferPool(),
		logger:   ecs.NewNoopLogger(),
		tracer:   ecs.NewNoopTracer(),
		observer: ecs.NewNoopObserver(),
	}
	e.active = append(e.active, plan.Phases...)
	for _, opt := range opts {
		opt(e)
	}
	// Acquire (or reuse) the preparation token for this world+plan pairing.
	// A world token carries no state of its own here since this core keeps
	// no long-lived pipeline state beyond the plan itself; it exists so
	// concurrent first-touch pairings are de-duplicated rather than raced.
	if tok, err := globalTokens.acquire(world, plan, nil); err == nil {
		e.token = tok
	}
	return e
}

// Tick runs every phase's stages in declaration order, then applies every
// command this Executor's systems deferred during the tick against the
// world exactly once. A dispatcher's sub-plan runs on its own child
// Executor, which applies its systems' commands at the end of each child
// tick, before the parent's flush.
func (e *Executor) Tick(ctx context.Context, dt time.Duration) error {
	e.mu.Lock()
	e.tick++
	tick := e.tick
	phases := e.active
	e.mu.Unlock()

	buf := e.pool.Get()
	defer e.pool.Put(buf)

	for pi, phase := range phases {
		retained, err := e.runPhase(ctx, dt, tick, phase, buf)
		if err != nil {
			return err
		}
		e.mu.Lock()
		e.active[pi].Stages = retained
		e.mu.Unlock()
	}

	if commands := buf.Drain(); len(commands) > 0 {
		if err := e.world.ApplyCommands(commands); err != nil {
			return err
		}
	}
	return nil
}

// Token returns the world+plan preparation token this Executor acquired at
// construction time.
func (e *Executor) Token() *WorldToken { return e.token }

// Run advances the executor steps ticks, stopping at the first error.
func (e *Executor) Run(ctx context.Context, steps int, dt time.Duration) error {
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.Tick(ctx, dt); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) runPhase(ctx context.Context, dt time.Duration, tick uint64, phase PhasePlan, buf *ecs.CommandBuffer) ([]Stage, error) {
	retained := make([]Stage, 0, len(phase.Stages))
	for si, stage := range phase.Stages {
		start := time.Now()
		survivors, runErr := e.runStage(ctx, dt, tick, stage, buf)
		e.observer.WorkGroupCompleted(ecs.WorkGroupSummary{
			WorkGroupID:     ecs.WorkGroupID(fmt.Sprintf("%s/%d", phase.Phase, si)),
			Mode:            stageMode(stage),
			Async:           len(stage.Systems) > 1,
			Tick:            tick,
			Duration:        time.Since(start),
			SystemsTotal:    len(stage.Systems),
			SystemsExecuted: len(survivors),
			SystemsSkipped:  len(stage.Systems) - len(survivors),
			Error:           runErr,
		})
		if runErr != nil {
			return nil, runErr
		}
		if len(survivors) > 0 {
			retained = append(retained, Stage{Systems: survivors})
		}
	}
	return retained, nil
}

func stageMode(stage Stage) ecs.WorkGroupMode {
	if len(stage.Systems) > 1 {
		return ecs.WorkGroupModeAsync
	}
	return ecs.WorkGroupModeSynchronized
}

func (e *Executor) runStage(ctx context.Context, dt time.Duration, tick uint64, stage Stage, buf *ecs.CommandBuffer) ([]SystemHandle, error) {
	if len(stage.Systems) <= 1 {
		var out []SystemHandle
		for _, handle := range stage.Systems {
			survivor, err := e.runOne(ctx, dt, tick, handle, buf)
			if err != nil {
				return nil, err
			}
			if survivor != nil {
				out = append(out, *survivor)
			}
		}
		return out, nil
	}

	// Parallel-within-stage: each system writes into its own buffer so
	// concurrent Defer calls never race; buffers are appended to the
	// tick's buffer, in declaration order, only once the stage settles.
	survivors := make([]*SystemHandle, len(stage.Systems))
	perSystemBufs := make([]*ecs.CommandBuffer, len(stage.Systems))
	group, gctx := errgroup.WithContext(ctx)
	for i, handle := range stage.Systems {
		i, handle := i, handle
		group.Go(func() error {
			local := ecs.NewCommandBuffer()
			perSystemBufs[i] = local
			survivor, err := e.runOne(gctx, dt, tick, handle, local)
			if err != nil {
				return err
			}
			survivors[i] = survivor
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var out []SystemHandle
	for i, s := range survivors {
		for _, cmd := range perSystemBufs[i].Drain() {
			buf.Push(cmd)
		}
		if s != nil {
			out = append(out, *s)
		}
	}
	return out, nil
}

// runOne invokes a single system, recurses into its sub-pipeline when it
// is a dispatcher, and reports whether the handle should survive into the
// next tick — nil means a temporary system retired itself after
// succeeding.
func (e *Executor) runOne(ctx context.Context, dt time.Duration, tick uint64, handle SystemHandle, buf *ecs.CommandBuffer) (*SystemHandle, error) {
	snapshot := buf.Snapshot()
	result := e.invoke(ctx, dt, tick, handle, buf)
	if result.Err != nil {
		switch e.policy {
		case ErrorPolicyContinue:
			e.logger.Error("system failed, continuing", "system", handle.Name, "error", result.Err)
		case ErrorPolicyRetry:
			buf.Restore(snapshot)
			if retryErr := e.invokeWithBackoff(ctx, dt, tick, handle, buf, result.Err); retryErr != nil {
				buf.Restore(snapshot)
				return nil, retryErr
			}
			result.Err = nil
		default:
			return nil, result.Err
		}
	}

	if handle.Kind == ecs.SystemDispatcher {
		if sub, ok := e.plan.Dispatchers[handle.DispatcherName]; ok {
			repeat := handle.DispatcherRepeat
			if repeat < 1 {
				repeat = 1
			}
			child := e.dispatcherExecutor(handle.DispatcherName, sub)
			for i := 0; i < repeat; i++ {
				if err := child.Tick(ctx, dt); err != nil {
					return nil, err
				}
			}
		}
	}

	if handle.Temporary && result.Err == nil {
		return nil, nil
	}
	return &handle, nil
}

func (e *Executor) invoke(ctx context.Context, dt time.Duration, tick uint64, handle SystemHandle, buf *ecs.CommandBuffer) ecs.SystemResult {
	if handle.Invoke == nil {
		return ecs.SystemResult{Skipped: true}
	}
	for _, ref := range handle.Emits {
		e.world.FlushEmitterEvents(ref.EventKind, ref.Emitter)
	}
	execCtx := &executionContext{world: e.world, dt: dt, tick: tick, logger: e.logger, buf: buf}
	_ = ctx // reserved for future cancellation-aware systems
	return handle.Invoke(execCtx)
}

// invokeWithBackoff re-invokes a system whose first attempt failed with
// firstErr. The first operation call reports that failure without running
// the system, so the single re-invocation happens after one backoff wait.
func (e *Executor) invokeWithBackoff(ctx context.Context, dt time.Duration, tick uint64, handle SystemHandle, buf *ecs.CommandBuffer, firstErr error) error {
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 1), ctx)
	attempted := false
	return backoff.Retry(func() error {
		if !attempted {
			attempted = true
			return firstErr
		}
		result := e.invoke(ctx, dt, tick, handle, buf)
		return result.Err
	}, policy)
}

// dispatcherExecutor returns the cached sub-Executor for a dispatcher's
// named sub-plan, constructing it on first use so a dispatcher's
// temporary-system excisions persist across its parent's ticks.
func (e *Executor) dispatcherExecutor(name string, sub *Plan) *Executor {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dispatcherExecutors == nil {
		e.dispatcherExecutors = make(map[string]*Executor)
	}
	if existing, ok := e.dispatcherExecutors[name]; ok {
		return existing
	}
	child := NewExecutor(e.world, sub,
		WithLogger(e.logger), WithTracer(e.tracer), WithObserver(e.observer), WithErrorPolicy(e.policy))
	e.dispatcherExecutors[name] = child
	return child
}

type executionContext struct {
	world  *ecs.World
	dt     time.Duration
	tick   uint64
	logger ecs.Logger
	buf    *ecs.CommandBuffer
}

func (c *executionContext) World() *ecs.World          { return c.world }
func (c *executionContext) TimeDelta() time.Duration   { return c.dt }
func (c *executionContext) TickIndex() uint64          { return c.tick }
func (c *executionContext) Logger() ecs.Logger         { return c.logger }
func (c *executionContext) Defer(cmd ecs.Command)      { c.buf.Push(cmd) }

var _ ecs.ExecutionContext = (*executionContext)(nil)
