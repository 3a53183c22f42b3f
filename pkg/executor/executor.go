package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aretw0/waypoint/pkg/coverage"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/model"
	"github.com/aretw0/waypoint/pkg/planner"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Status is the outcome of one plan.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusAborted Status = "aborted"
)

// TargetFactory builds a fresh system under test for one execution.
// Targets implementing io.Closer are closed when the execution ends.
type TargetFactory[T any] func(ctx context.Context, x *model.Execution[T]) (T, error)

// PlanResult is the outcome of one executed plan.
type PlanResult struct {
	ExecutionID string        `json:"execution_id"`
	Plan        planner.Plan  `json:"plan"`
	Status      Status        `json:"status"`
	Err         error         `json:"-"`
	Error       string        `json:"error,omitempty"`
	Steps       int           `json:"steps"`
	Duration    time.Duration `json:"duration"`
}

// Report is the outcome of a run over many plans.
type Report struct {
	ID       string           `json:"id"`
	Workflow string           `json:"workflow"`
	Results  []PlanResult     `json:"results"`
	Coverage *coverage.Report `json:"coverage"`
	Duration time.Duration    `json:"duration"`
}

// Count returns the number of results with status s.
func (r *Report) Count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// Err joins every plan failure with the coverage gap, if any, under criteria c.
func (r *Report) Err(c coverage.Criteria) error {
	var errs []error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Plan.Name(), res.Err))
		}
	}
	if r.Coverage != nil {
		if err := r.Coverage.Check(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Executor runs plans of one model.
type Executor[T any] struct {
	model   *model.Model[T]
	factory TargetFactory[T]
	cfg     *config
	tracker *coverage.Tracker
}

// New creates an executor. Without WithTracker it records into a fresh
// in-memory tracker.
func New[T any](m *model.Model[T], factory TargetFactory[T], opts ...Option) *Executor[T] {
	cfg := newConfig(opts)
	tracker := cfg.tracker
	if tracker == nil {
		tracker = coverage.NewTracker(m.Definition(), coverage.WithLogger(cfg.logger))
	}
	return &Executor[T]{model: m, factory: factory, cfg: cfg, tracker: tracker}
}

// Tracker returns the coverage tracker.
func (e *Executor[T]) Tracker() *coverage.Tracker { return e.tracker }

// Execute runs a single plan against a fresh target.
func (e *Executor[T]) Execute(ctx context.Context, plan planner.Plan) PlanResult {
	start := time.Now()
	id := uuid.NewString()
	logger := e.cfg.logger.With("execution", id, "plan", plan.Name())

	x := model.NewExecution[T](id, plan, e.model.Definition().InitialSnapshot())
	x.Logger = logger

	res := PlanResult{ExecutionID: id, Plan: plan, Status: StatusPassed}
	res.Steps, res.Err = e.run(ctx, x)
	res.Duration = time.Since(start)

	var assertErr *AssertionError
	switch {
	case res.Err == nil:
		logger.Info("plan passed", "steps", res.Steps, "duration", res.Duration)
	case errors.As(res.Err, &assertErr):
		res.Status = StatusFailed
		logger.Warn("plan failed", "step", res.Steps+1, "error", res.Err)
	default:
		res.Status = StatusAborted
		logger.Warn("plan aborted", "step", res.Steps+1, "error", res.Err)
	}
	if res.Err != nil {
		res.Error = res.Err.Error()
	}

	if e.cfg.hooks.OnPlan != nil {
		e.cfg.hooks.OnPlan(ctx, &domain.PlanEvent{
			HookBase: domain.HookBase{Timestamp: time.Now(), Type: domain.HookPlan},
			Plan:     plan.Name(),
			Status:   string(res.Status),
			Steps:    res.Steps,
			Duration: res.Duration,
			Err:      res.Err,
		})
	}
	return res
}

// run returns the number of completed steps and the first failure.
func (e *Executor[T]) run(ctx context.Context, x *model.Execution[T]) (int, error) {
	var target T
	err := recovered(func() (err error) {
		target, err = e.factory(ctx, x)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create target: %w", err)
	}
	x.Target = target
	if closer, ok := any(target).(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				x.Logger.Warn("failed to close target", "error", err)
			}
		}()
	}

	plan := x.Plan
	if err := e.assert(ctx, x, x.Expected.State); err != nil {
		return 0, err
	}
	if err := e.tracker.RecordState(ctx, x.Expected.State); err != nil {
		return 0, err
	}

	for i, step := range plan.Path.Steps {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		x.Step = i
		x.Expected = step.To
		stepStart := time.Now()

		err := recovered(func() error { return e.model.Exec(ctx, x, step.Event) })
		if err != nil {
			err = &ExecHookError{Plan: plan.Name(), Step: i, Event: step.Event.Name, Err: err}
		} else {
			err = e.assert(ctx, x, step.To.State)
		}
		e.emitStep(ctx, plan, i, step, time.Since(stepStart), err)
		if err != nil {
			return i, err
		}

		if err := e.tracker.RecordState(ctx, step.To.State); err != nil {
			return i, err
		}
		if err := e.tracker.RecordTransition(ctx, step.Transition()); err != nil {
			return i, err
		}
	}
	return len(plan.Path.Steps), nil
}

func (e *Executor[T]) assert(ctx context.Context, x *model.Execution[T], state string) error {
	var checked bool
	err := recovered(func() (err error) {
		checked, err = e.model.Assert(ctx, x, state)
		return err
	})
	if err != nil {
		return &AssertionError{Plan: x.Plan.Name(), Step: x.Step, State: state, Err: err}
	}
	if !checked {
		x.Logger.Debug("no assertion for state", "state", state)
	}
	return nil
}

// recovered runs a user hook, converting a panic into an error.
func recovered(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHookPanicked, r)
		}
	}()
	return fn()
}

func (e *Executor[T]) emitStep(ctx context.Context, plan planner.Plan, i int, step planner.Step, d time.Duration, err error) {
	if e.cfg.hooks.OnStep == nil {
		return
	}
	e.cfg.hooks.OnStep(ctx, &domain.StepEvent{
		HookBase: domain.HookBase{Timestamp: time.Now(), Type: domain.HookStep},
		Plan:     plan.Name(),
		Index:    i,
		Event:    step.Event.Name,
		State:    step.To.State,
		Duration: d,
		Err:      err,
	})
}

// ExecuteAll runs every plan, then computes coverage across them. Plan
// failures are reported in the results, never as the returned error.
func (e *Executor[T]) ExecuteAll(ctx context.Context, plans []planner.Plan) (*Report, error) {
	start := time.Now()
	results := make([]PlanResult, len(plans))

	var g errgroup.Group
	g.SetLimit(e.cfg.concurrency)
	for i, plan := range plans {
		g.Go(func() error {
			results[i] = e.Execute(ctx, plan)
			// Per-plan failures must not stop the other plans.
			return nil
		})
	}
	_ = g.Wait()

	cov, err := e.tracker.Report(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{
		ID:       e.tracker.RunID(),
		Workflow: e.model.Definition().ID(),
		Results:  results,
		Coverage: cov,
		Duration: time.Since(start),
	}
	e.cfg.logger.Info("run finished",
		"run", report.ID,
		"plans", len(plans),
		"passed", report.Count(StatusPassed),
		"failed", report.Count(StatusFailed),
		"aborted", report.Count(StatusAborted),
		"state_coverage", cov.StateCoverage(),
		"transition_coverage", cov.TransitionCoverage(),
		"duration", report.Duration)
	return report, nil
}
