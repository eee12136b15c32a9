// reconcile-balances recomputes fund, line and grant line counters from postings
// and reports any drift. With -repair the stored counters are rewritten.
//
// Usage:
//
//	go run ./cmd/reconcile-balances [-repair]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/workflow"
)

func main() {
	repair := flag.Bool("repair", false, "rewrite drifted counters")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall timeout")
	flag.Parse()

	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized. Set DB_* env vars.")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, err := workflow.RunBalanceReconciliation(ctx, *repair)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reconciliation failed: %v\n", err)
		os.Exit(1)
	}
	for _, r := range result.Reports {
		fmt.Printf("%s %s %s: actual=%s expected=%s drift=%s repaired=%t\n", r.CheckType, r.EntityType, r.EntityId, r.Actual.StringFixed(2), r.Expected.StringFixed(2), r.Drift.StringFixed(2), r.Repaired)
	}
	fmt.Printf("checked=%d drifted=%d repaired=%d correlation_id=%s\n", result.Checked, len(result.Reports), result.Repaired, result.CorrelationId)
	if len(result.Reports) > 0 && !*repair {
		os.Exit(3)
	}
}
