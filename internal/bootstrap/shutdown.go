package bootstrap

import (
	"context"
	"log/slog"

	"github.com/osse101/HarvestShare_Go/internal/repository"
	"github.com/osse101/HarvestShare_Go/internal/server"
	"github.com/osse101/HarvestShare_Go/internal/worker"
)

// ShutdownComponents holds all components that need graceful shutdown
type ShutdownComponents struct {
	Server       *server.Server
	ExpiryWorker *worker.ExpiryWorker
	Store        repository.Store
}

// GracefulShutdown stops the ops server, then the expiry worker, then closes the store.
// Errors are logged and do not stop the sequence.
func GracefulShutdown(ctx context.Context, components ShutdownComponents) {
	slog.Info(LogMsgShuttingDown)

	if components.Server != nil {
		if err := components.Server.Stop(ctx); err != nil {
			slog.Error(LogMsgServerForcedShutdown, "error", err)
		}
	}

	// The worker may be mid-sweep; it must finish before the store closes
	if components.ExpiryWorker != nil {
		if err := components.ExpiryWorker.Shutdown(ctx); err != nil {
			slog.Error(LogMsgExpiryWorkerShutdownFailed, "error", err)
		}
	}

	if components.Store != nil {
		components.Store.Close()
	}

	slog.Info(LogMsgStopped)
}
