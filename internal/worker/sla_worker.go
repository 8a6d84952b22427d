package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/service"
)

// StartSLAWorker runs the SLA sweep on a fixed cadence until the context is
// cancelled. One pass runs immediately at startup.
func StartSLAWorker(ctx context.Context, slaService *service.SLAService, interval time.Duration, logger *zap.Logger) {
	if slaService == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		sweep(ctx, slaService, logger)
		for {
			select {
			case <-ctx.Done():
				logger.Info("sla worker stopped")
				return
			case <-ticker.C:
				sweep(ctx, slaService, logger)
			}
		}
	}()
}

func sweep(ctx context.Context, slaService *service.SLAService, logger *zap.Logger) {
	if _, err := slaService.Sweep(ctx); err != nil {
		logger.Error("sla sweep failed", zap.Error(err))
	}
}
