package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks reports every event as a debug-level log line.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log to logger, or to the default logger
// when logger is nil.
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{logger: logger.WithPrefix("hooks")}
}

func (h *LogHooks) OnGrowStart(_ context.Context, speciesID string, iterations int) {
	h.logger.Debug("grow start", "species", speciesID, "iterations", iterations)
}

func (h *LogHooks) OnGrowComplete(_ context.Context, speciesID string, segments int, cached bool, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("grow failed", "species", speciesID, "duration", d, "err", err)
		return
	}
	h.logger.Debug("grow complete", "species", speciesID, "segments", segments, "cached", cached, "duration", d)
}

func (h *LogHooks) OnPruneStart(_ context.Context, prunedIDs int) {
	h.logger.Debug("prune start", "pruned", prunedIDs)
}

func (h *LogHooks) OnPruneComplete(_ context.Context, removed int, d time.Duration) {
	h.logger.Debug("prune complete", "removed", removed, "duration", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("render failed", "formats", formats, "err", err)
		return
	}
	h.logger.Debug("render complete", "formats", formats, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnSessionCreate(_ context.Context, sessionID, speciesID string) {
	h.logger.Info("session created", "session", sessionID, "species", speciesID)
}

func (h *LogHooks) OnPrune(_ context.Context, sessionID, branchID string, closure int) {
	h.logger.Info("branch pruned", "session", sessionID, "branch", branchID, "closure", closure)
}

func (h *LogHooks) OnReset(_ context.Context, sessionID string) {
	h.logger.Info("session reset", "session", sessionID)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ SessionHooks  = (*LogHooks)(nil)
)
