// outbox-replay requeues DEAD ledger events (and optionally FAILED ones) for dispatch.
//
// Usage:
//
//	go run ./cmd/outbox-replay [-include-failed] [-limit 100]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/models"
)

func main() {
	includeFailed := flag.Bool("include-failed", false, "also requeue FAILED events")
	limit := flag.Int("limit", 0, "max events to requeue (0 = all)")
	flag.Parse()

	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized. Set DB_* env vars.")
		os.Exit(1)
	}
	ctx := context.Background()

	n, err := models.ReplayDeadLedgerEvents(ctx, *includeFailed, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay failed: %v\n", err)
		os.Exit(1)
	}
	counts, err := models.LedgerEventCounts(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "count failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("requeued=%d counts=%v\n", n, counts)
}
