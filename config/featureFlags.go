package config

import (
	"os"
	"strings"
)

// LedgerEventsEnabled turns on the outbox dispatcher that publishes postings to Pub/Sub.
//
// Set via env:
// - LEDGER_EVENTS_ENABLED=true
func LedgerEventsEnabled() bool {
	return boolFromEnv("LEDGER_EVENTS_ENABLED")
}

// ReconciliationSchedule is the cron spec for the balance drift check.
// Empty disables the schedule.
//
// Set via env:
// - RECONCILIATION_CRON="0 2 * * *"
func ReconciliationSchedule() string {
	return strings.TrimSpace(os.Getenv("RECONCILIATION_CRON"))
}

// SkipMigrations disables AutoMigrate on startup.
func SkipMigrations() bool {
	return boolFromEnv("SKIP_MIGRATIONS")
}

// OutboxMaxAttempts caps publish retries before a ledger event goes DEAD.
func OutboxMaxAttempts() int {
	return intFromEnv("OUTBOX_MAX_ATTEMPTS", 20)
}

// TimeZone is the location used for "today" in reports and cron.
func TimeZone() string {
	tz := strings.TrimSpace(os.Getenv("TZ_NAME"))
	if tz == "" {
		return "America/New_York"
	}
	return tz
}
