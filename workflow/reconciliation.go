package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/models"
	"github.com/wchd/budget_backend/utils"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// RunBalanceReconciliation compares running counters and fund cash with full scans.
// With repair set, drifted counters are reset to the scanned totals; cash is never rewritten.
func RunBalanceReconciliation(ctx context.Context, repair bool) (*models.ReconciliationResult, error) {
	if _, ok := utils.GetCorrelationIdFromContext(ctx); !ok {
		ctx = utils.SetCorrelationIdInContext(ctx, uuid.NewString())
	}
	ctx, span := tracer.Start(ctx, "RunBalanceReconciliation")
	defer span.End()

	result, err := models.RunReconciliationChecks(ctx, repair)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		config.LogErrorCtx(ctx, "workflow", "RunBalanceReconciliation", "RunReconciliationChecks", map[string]any{"repair": repair}, err)
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("reconciliation.checked", result.Checked),
		attribute.Int("reconciliation.drifts", len(result.Reports)),
		attribute.Int("reconciliation.repaired", result.Repaired),
	)
	return result, nil
}

// StartReconciliationScheduler runs the drift check on spec, in the configured time zone.
// The returned cron must be stopped on shutdown.
func StartReconciliationScheduler(spec string) (*cron.Cron, error) {
	loc, err := time.LoadLocation(config.TimeZone())
	if err != nil {
		loc = time.UTC
	}
	logger := config.GetLogger()
	c := cron.New(cron.WithLocation(loc))
	_, err = c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		result, err := RunBalanceReconciliation(ctx, false)
		if err != nil {
			return
		}
		if len(result.Reports) > 0 {
			logger.WithField("correlation_id", result.CorrelationId).Warnf("scheduled reconciliation found %d drifts", len(result.Reports))
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	logger.WithField("schedule", spec).Info("reconciliation scheduler started")
	return c, nil
}
