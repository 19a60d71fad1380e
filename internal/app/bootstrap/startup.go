package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/devcollab/workbench/internal/app/system/tasks"
)

// Startup runs once after DB connections and schema/index setup are
// complete, but before the HTTP handler is built and requests are served.
//
// Returning a non-nil error will abort startup and prevent the server
// from starting. The context will be cancelled if the process is asked
// to shut down while Startup is running; honor it in any long-running
// work.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	startTaskRunner(deps.MongoDatabase, appCfg, logger)
	return nil
}

// taskRunner is the global task runner instance, used for graceful shutdown.
var taskRunner *tasks.Runner

func startTaskRunner(db *mongo.Database, appCfg AppConfig, logger *zap.Logger) {
	taskRunner = tasks.New(logger)

	taskRunner.Register(tasks.IdleSessionSweepJob(db, logger))
	taskRunner.Register(tasks.LedgerRetentionJob(db, logger, appCfg.LedgerRetention))

	taskRunner.Start()
}
