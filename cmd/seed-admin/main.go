// seed-admin creates the first admin console user if it does not exist yet.
//
// Usage (from backend directory):
//
//	DB_DRIVER=sqlite SQLITE_PATH=data/budget.db ADMIN_PASSWORD=... go run ./cmd/seed-admin
//
// ADMIN_USERNAME and ADMIN_NAME default to "budgetAdmin" and "Budget Admin".
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/models"
)

func envOr(key string, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	ctx := context.Background()
	password := os.Getenv("ADMIN_PASSWORD")
	if len(password) < 8 {
		fmt.Fprintln(os.Stderr, "ADMIN_PASSWORD must be set (at least 8 characters)")
		os.Exit(2)
	}

	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	if err := models.MigrateTable(); err != nil {
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}

	user, created, err := models.EnsureAdmin(ctx, envOr("ADMIN_USERNAME", "budgetAdmin"), envOr("ADMIN_NAME", "Budget Admin"), password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed admin: %v\n", err)
		os.Exit(1)
	}
	if created {
		fmt.Printf("created admin user %q (id=%d)\n", user.Username, user.ID)
		return
	}
	fmt.Printf("admin user %q already exists (id=%d)\n", user.Username, user.ID)
}
