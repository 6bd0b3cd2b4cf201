package observability

import (
	"context"

	"github.com/charmbracelet/log"
)

// LogHooks writes simulation events to a charm logger. Steps are logged at
// debug level only every Every iterations; everything else is logged as
// it happens.
type LogHooks struct {
	Logger *log.Logger
	Every  int
}

// NewLogHooks returns hooks logging to logger, or to the default logger if
// logger is nil, with a step line every 100 iterations.
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{Logger: logger, Every: 100}
}

func (h *LogHooks) OnStep(_ context.Context, info StepInfo) {
	if h.Every <= 0 || info.Iteration%h.Every != 0 {
		return
	}
	h.Logger.Debug("step", "run", info.RunID, "iteration", info.Iteration, "paths", info.Paths, "took", info.Duration)
}

func (h *LogHooks) OnFinished(_ context.Context, runID, embedder string, iteration int) {
	h.Logger.Info("layout finished", "run", runID, "embedder", embedder, "iteration", iteration)
}

func (h *LogHooks) OnPathsChanged(_ context.Context, runID string, paths int) {
	h.Logger.Debug("paths changed", "run", runID, "paths", paths)
}

func (h *LogHooks) OnCheckpoint(_ context.Context, runID string, quality float64, depth int) {
	h.Logger.Debug("checkpoint", "run", runID, "quality", quality, "depth", depth)
}

func (h *LogHooks) OnRollback(_ context.Context, runID string, quality float64, depth int) {
	h.Logger.Debug("rollback", "run", runID, "quality", quality, "depth", depth)
}

func (h *LogHooks) OnError(_ context.Context, runID string, err error) {
	h.Logger.Warn("step failed", "run", runID, "err", err)
}
