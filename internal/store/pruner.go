package store

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const pruneInterval = time.Hour

// Pruner periodically deletes journal entries older than the retention period.
type Pruner struct {
	db        *DB
	retention time.Duration
	logger    *zap.Logger
	cancel    context.CancelFunc
}

// NewPruner creates a new journal pruner.
func NewPruner(db *DB, retention time.Duration, logger *zap.Logger) *Pruner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pruner{
		db:        db,
		retention: retention,
		logger:    logger,
	}
}

// Start prunes once and then on every interval until Stop.
func (p *Pruner) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	go p.loop(ctx)
}

// Stop stops the pruner loop.
func (p *Pruner) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
}

func (p *Pruner) loop(ctx context.Context) {
	p.PruneOnce()

	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.PruneOnce()
		case <-ctx.Done():
			return
		}
	}
}

// PruneOnce deletes expired drops and returns how many were removed.
func (p *Pruner) PruneOnce() int64 {
	n, err := p.db.PruneDrops(p.retention)
	if err != nil {
		p.logger.Error("failed to prune drop journal", zap.Error(err))
		return 0
	}
	if n > 0 {
		p.logger.Info("pruned drop journal", zap.Int64("removed", n), zap.Duration("retention", p.retention))
	}
	return n
}
