package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/taskdeck/backend/internal/infrastructure/journal"
)

// PrunerConfig controls how frequently the journal is trimmed and how much
// history is kept.
type PrunerConfig struct {
	Interval  time.Duration
	Retention time.Duration
}

// JournalPruner trims mutation-journal entries past their retention window on
// a cron schedule.
type JournalPruner struct {
	store  *journal.Store
	logger *zap.Logger
	cron   *cron.Cron
	cfg    PrunerConfig
}

func NewJournalPruner(store *journal.Store, logger *zap.Logger, cfg PrunerConfig) *JournalPruner {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Minute
	}
	// The @every schedule below has second granularity.
	if cfg.Interval < time.Second {
		cfg.Interval = time.Second
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	jp := &JournalPruner{
		store:  store,
		logger: logger,
		cfg:    cfg,
		cron:   cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	if _, err := jp.cron.AddFunc(schedule, jp.prune); err != nil {
		logger.Error("failed to schedule journal prune",
			zap.String("schedule", schedule), zap.Error(err))
	}

	return jp
}

// Start launches the cron scheduler.
func (jp *JournalPruner) Start() {
	if jp == nil || jp.cron == nil {
		return
	}
	jp.cron.Start()
	jp.logger.Info("journal pruner started",
		zap.Duration("interval", jp.cfg.Interval),
		zap.Duration("retention", jp.cfg.Retention))
}

// Stop gracefully stops the scheduler.
func (jp *JournalPruner) Stop(ctx context.Context) {
	if jp == nil || jp.cron == nil {
		return
	}
	stopCtx := jp.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	jp.logger.Info("journal pruner stopped")
}

func (jp *JournalPruner) prune() {
	cutoff := time.Now().Add(-jp.cfg.Retention)
	pruned, err := jp.store.Prune(cutoff)
	if err != nil {
		jp.logger.Error("journal prune failed", zap.Error(err))
		return
	}
	if pruned > 0 {
		jp.logger.Info("journal pruned", zap.Int("entries", pruned))
	}
}
