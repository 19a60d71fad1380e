package tasks

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	ledgerstore "github.com/devcollab/workbench/internal/app/store/ledger"
	"github.com/devcollab/workbench/internal/app/store/sessions"
	"github.com/devcollab/workbench/internal/domain/models"
)

// IdleSessionSweepJob closes collaboration sessions with no activity for
// longer than the idle timeout. Sessions are marked inactive rather than
// deleted; the next join on the project starts a fresh one.
func IdleSessionSweepJob(db *mongo.Database, logger *zap.Logger) Job {
	store := sessions.New(db)
	return Job{
		Name:     "idle-session-sweep",
		Interval: 5 * time.Minute,
		Run: func(ctx context.Context) error {
			closed, err := store.DeactivateIdle(ctx, time.Now().Add(-models.SessionIdleTimeout))
			if err != nil {
				return err
			}
			if closed > 0 {
				logger.Info("closed idle collaboration sessions",
					zap.Int64("count", closed))
			}
			return nil
		},
	}
}

// LedgerRetentionJob prunes request ledger entries older than retention.
func LedgerRetentionJob(db *mongo.Database, logger *zap.Logger, retention time.Duration) Job {
	store := ledgerstore.New(db)
	return Job{
		Name:     "ledger-retention",
		Interval: 6 * time.Hour,
		Run: func(ctx context.Context) error {
			deleted, err := store.DeleteOlderThan(ctx, time.Now().Add(-retention))
			if err != nil {
				return err
			}
			if deleted > 0 {
				logger.Info("pruned old ledger entries",
					zap.Int64("deleted", deleted),
					zap.Duration("retention", retention))
			}
			return nil
		},
	}
}
