package workflow_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/models"
	"github.com/wchd/budget_backend/workflow"
)

func postTwoPayrollExpenses(t *testing.T, ctx context.Context) {
	t.Helper()
	newPayrollLedger(t, ctx)
	if _, err := workflow.ImportPayroll(ctx, strings.NewReader(payrollFile), workflow.PayrollImportOptions{PostingDate: postingDate}); err != nil {
		t.Fatalf("import: %v", err)
	}
}

func TestDispatchOnce_PublishesPendingEvents(t *testing.T) {
	ctx := setupDB(t)
	postTwoPayrollExpenses(t, ctx)

	var published []config.LedgerEvent
	d := workflow.NewOutboxDispatcher(config.GetDB(), config.GetLogger())
	d.Publish = func(ctx context.Context, msg config.LedgerEvent) (string, error) {
		published = append(published, msg)
		return "msg-" + msg.EventId, nil
	}

	if sent := d.DispatchOnce(ctx); sent != 2 {
		t.Fatalf("expected 2 sent, got %d", sent)
	}
	if len(published) != 2 || published[0].ReferenceType != "EXP" || published[0].Amount != "-50.00" {
		t.Fatalf("unexpected events %+v", published)
	}
	counts, _ := models.LedgerEventCounts(ctx)
	if counts[models.OutboxPublishStatusSent] != 2 {
		t.Fatalf("expected 2 sent rows, got %v", counts)
	}
	if sent := d.DispatchOnce(ctx); sent != 0 {
		t.Fatalf("sent rows were published again: %d", sent)
	}
}

func TestDispatchOnce_DeadAfterMaxAttemptsThenReplay(t *testing.T) {
	ctx := setupDB(t)
	postTwoPayrollExpenses(t, ctx)

	d := workflow.NewOutboxDispatcher(config.GetDB(), config.GetLogger())
	d.MaxAttempts = 1
	d.Publish = func(ctx context.Context, msg config.LedgerEvent) (string, error) {
		return "", errors.New("broker unavailable")
	}
	if sent := d.DispatchOnce(ctx); sent != 0 {
		t.Fatalf("expected nothing sent, got %d", sent)
	}
	counts, _ := models.LedgerEventCounts(ctx)
	if counts[models.OutboxPublishStatusDead] != 2 {
		t.Fatalf("expected 2 dead rows, got %v", counts)
	}

	replayed, err := models.ReplayDeadLedgerEvents(ctx, false, 0)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if replayed != 2 {
		t.Fatalf("expected 2 replayed, got %d", replayed)
	}
	d.Publish = func(ctx context.Context, msg config.LedgerEvent) (string, error) {
		return "ok", nil
	}
	if sent := d.DispatchOnce(ctx); sent != 2 {
		t.Fatalf("expected replayed rows to publish, got %d", sent)
	}
}
