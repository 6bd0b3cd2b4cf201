// Package observability provides hooks for following a running simulation.
//
// The layout model reports what happens while it steps through a set of
// hooks without depending on any particular backend. Hooks are handed to
// the model explicitly; there is no global registry, so two models in one
// process can report to different places.
//
// # Usage
//
// Pass hooks when building a model:
//
//	m := model.New(model.Options{
//	    Hooks: observability.NewLogHooks(logger),
//	})
//
// Several hooks can be combined:
//
//	hooks := observability.Multi(observability.NewLogHooks(logger), metrics)
package observability

import (
	"context"
	"time"
)

// =============================================================================
// Simulation Hooks
// =============================================================================

// StepInfo summarizes one completed simulation step.
type StepInfo struct {
	RunID     string
	Iteration int
	Duration  time.Duration
	Paths     int
}

// SimulationHooks receives events from a layout model.
//
// Hooks are called with the model lock held: implementations must return
// quickly and must not call back into the model.
type SimulationHooks interface {
	// OnStep records a completed step.
	OnStep(ctx context.Context, info StepInfo)

	// OnFinished records an embedder declaring the layout done.
	OnFinished(ctx context.Context, runID, embedder string, iteration int)

	// OnPathsChanged records a new set of active rigid paths.
	OnPathsChanged(ctx context.Context, runID string, paths int)

	// OnCheckpoint records the auto path manager accepting a state.
	OnCheckpoint(ctx context.Context, runID string, quality float64, depth int)

	// OnRollback records the auto path manager restoring a checkpoint.
	OnRollback(ctx context.Context, runID string, quality float64, depth int)

	// OnError records a failed step that the model recovered from.
	OnError(ctx context.Context, runID string, err error)
}

// =============================================================================
// No-op Implementation
// =============================================================================

// NoopSimulationHooks is a no-op implementation of SimulationHooks.
type NoopSimulationHooks struct{}

func (NoopSimulationHooks) OnStep(context.Context, StepInfo)                   {}
func (NoopSimulationHooks) OnFinished(context.Context, string, string, int)    {}
func (NoopSimulationHooks) OnPathsChanged(context.Context, string, int)        {}
func (NoopSimulationHooks) OnCheckpoint(context.Context, string, float64, int) {}
func (NoopSimulationHooks) OnRollback(context.Context, string, float64, int)   {}
func (NoopSimulationHooks) OnError(context.Context, string, error)             {}

// =============================================================================
// Fan-out
// =============================================================================

type multiHooks []SimulationHooks

// Multi returns hooks that forward every event to each of hooks in order.
// Nil entries are dropped.
func Multi(hooks ...SimulationHooks) SimulationHooks {
	var m multiHooks
	for _, h := range hooks {
		if h != nil {
			m = append(m, h)
		}
	}
	if len(m) == 0 {
		return NoopSimulationHooks{}
	}
	if len(m) == 1 {
		return m[0]
	}
	return m
}

func (m multiHooks) OnStep(ctx context.Context, info StepInfo) {
	for _, h := range m {
		h.OnStep(ctx, info)
	}
}

func (m multiHooks) OnFinished(ctx context.Context, runID, embedder string, iteration int) {
	for _, h := range m {
		h.OnFinished(ctx, runID, embedder, iteration)
	}
}

func (m multiHooks) OnPathsChanged(ctx context.Context, runID string, paths int) {
	for _, h := range m {
		h.OnPathsChanged(ctx, runID, paths)
	}
}

func (m multiHooks) OnCheckpoint(ctx context.Context, runID string, quality float64, depth int) {
	for _, h := range m {
		h.OnCheckpoint(ctx, runID, quality, depth)
	}
}

func (m multiHooks) OnRollback(ctx context.Context, runID string, quality float64, depth int) {
	for _, h := range m {
		h.OnRollback(ctx, runID, quality, depth)
	}
}

func (m multiHooks) OnError(ctx context.Context, runID string, err error) {
	for _, h := range m {
		h.OnError(ctx, runID, err)
	}
}
