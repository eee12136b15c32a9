package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/utils"
	"gorm.io/gorm"
)

type LedgerReferenceType string

const (
	LedgerReferenceTypeExpense LedgerReferenceType = "EXP"
	LedgerReferenceTypeRevenue LedgerReferenceType = "REV"
)

// Outbox publish statuses for LedgerEventRecord.PublishStatus.
const (
	OutboxPublishStatusPending    = "PENDING"
	OutboxPublishStatusProcessing = "PROCESSING"
	OutboxPublishStatusSent       = "SENT"
	OutboxPublishStatusFailed     = "FAILED"
	OutboxPublishStatusDead       = "DEAD"
)

// LedgerEventRecord is the transactional outbox row written with every posting.
// The dispatcher publishes it to Pub/Sub after commit.
type LedgerEventRecord struct {
	ID               int                 `gorm:"primary_key;index:idx_outbox_dispatch,priority:3" json:"id"`
	EventId          string              `gorm:"size:36;uniqueIndex;not null" json:"event_id"`
	OccurredAt       time.Time           `gorm:"index;not null" json:"occurred_at"`
	ReferenceId      int                 `gorm:"index:idx_ledger_ref,priority:2" json:"reference_id"`
	ReferenceType    LedgerReferenceType `gorm:"size:3;index:idx_ledger_ref,priority:1" json:"reference_type"`
	FundId           string              `gorm:"size:20;index" json:"fund_id"`
	Amount           decimal.Decimal     `gorm:"type:decimal(20,4);not null" json:"amount"`
	Payload          []byte              `gorm:"type:blob" json:"payload"`
	PublishStatus    string              `gorm:"size:20;index;not null;default:'PENDING';index:idx_outbox_dispatch,priority:1" json:"publish_status"`
	PublishedAt      *time.Time          `gorm:"index" json:"published_at"`
	PubSubMessageId  *string             `gorm:"size:255" json:"pubsub_message_id"`
	PublishAttempts  int                 `gorm:"not null;default:0" json:"publish_attempts"`
	NextAttemptAt    *time.Time          `gorm:"index;index:idx_outbox_dispatch,priority:2" json:"next_attempt_at"`
	LockedAt         *time.Time          `gorm:"index" json:"locked_at"`
	LockedBy         *string             `gorm:"size:100" json:"locked_by"`
	LastPublishError *string             `gorm:"type:text" json:"last_publish_error"`
	CorrelationId    string              `gorm:"size:64;index" json:"correlation_id"`
	CreatedAt        time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func ConvertToLedgerEvent(record LedgerEventRecord) config.LedgerEvent {
	return config.LedgerEvent{
		ID:            record.ID,
		EventId:       record.EventId,
		OccurredAt:    record.OccurredAt,
		ReferenceId:   record.ReferenceId,
		ReferenceType: string(record.ReferenceType),
		FundId:        record.FundId,
		Amount:        record.Amount.StringFixed(2),
		Payload:       record.Payload,
		CorrelationId: record.CorrelationId,
	}
}

// writeLedgerEvent stores the outbox row inside the caller's transaction; it does not publish.
func writeLedgerEvent(ctx context.Context, tx *gorm.DB, refType LedgerReferenceType, refId int, fundId string, amount decimal.Decimal, obj interface{}) error {
	payload, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	record := LedgerEventRecord{
		EventId:       uuid.NewString(),
		OccurredAt:    time.Now().UTC(),
		ReferenceId:   refId,
		ReferenceType: refType,
		FundId:        fundId,
		Amount:        amount,
		Payload:       payload,
		PublishStatus: OutboxPublishStatusPending,
		CorrelationId: correlationIdFromContextOrNew(ctx),
	}
	return tx.Create(&record).Error
}

func correlationIdFromContextOrNew(ctx context.Context) string {
	if ctx != nil {
		if v, ok := utils.GetCorrelationIdFromContext(ctx); ok && v != "" {
			return v
		}
	}
	return uuid.NewString()
}

// ReplayDeadLedgerEvents moves DEAD (and optionally FAILED) rows back to PENDING.
func ReplayDeadLedgerEvents(ctx context.Context, includeFailed bool, limit int) (int64, error) {
	statuses := []string{OutboxPublishStatusDead}
	if includeFailed {
		statuses = append(statuses, OutboxPublishStatusFailed)
	}
	db := config.GetDB().WithContext(ctx)
	var ids []int
	q := db.Model(&LedgerEventRecord{}).Where("publish_status IN ?", statuses).Order("id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	res := db.Model(&LedgerEventRecord{}).Where("id IN ?", ids).Updates(map[string]interface{}{
		"publish_status":     OutboxPublishStatusPending,
		"publish_attempts":   0,
		"next_attempt_at":    nil,
		"locked_at":          nil,
		"locked_by":          nil,
		"last_publish_error": nil,
	})
	return res.RowsAffected, res.Error
}

// LedgerEventCounts returns outbox row counts per publish status.
func LedgerEventCounts(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		PublishStatus string
		Count         int64
	}
	err := config.GetDB().WithContext(ctx).Model(&LedgerEventRecord{}).
		Select("publish_status, count(*) as count").
		Group("publish_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.PublishStatus] = r.Count
	}
	return counts, nil
}
