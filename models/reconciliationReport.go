package models

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	CheckLineSpent       = "LINE_BUDGET_SPENT"
	CheckLineIncome      = "LINE_TOTAL_INCOME"
	CheckGrantLineSpent  = "GRANT_LINE_BUDGET_SPENT"
	CheckGrantLineIncome = "GRANT_LINE_TOTAL_INCOME"
	CheckFundCash        = "FUND_CASH_BALANCE"
)

// ReconciliationReport is one drift found between a stored balance and a full scan.
type ReconciliationReport struct {
	ID            int             `gorm:"primary_key" json:"id"`
	CheckType     string          `gorm:"size:50;index;not null" json:"check_type"`
	EntityType    string          `gorm:"size:50;index;not null" json:"entity_type"`
	EntityId      string          `gorm:"size:40;index;not null" json:"entity_id"`
	Expected      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"expected"`
	Actual        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"actual"`
	Drift         decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"drift"`
	Repaired      bool            `gorm:"not null;default:false" json:"repaired"`
	Details       string          `gorm:"type:text" json:"details"`
	CorrelationId string          `gorm:"size:64;index" json:"correlation_id"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type ReconciliationResult struct {
	CorrelationId string                 `json:"correlation_id"`
	Checked       int                    `json:"checked"`
	Repaired      int                    `json:"repaired"`
	Reports       []ReconciliationReport `json:"reports"`
}

// RunReconciliationChecks compares every running counter and fund cash balance with a full scan
// and writes one report row per mismatch. With repair set, line and grant line counters are
// reset to the scanned values; cash balances are only reported.
func RunReconciliationChecks(ctx context.Context, repair bool) (*ReconciliationResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	db := config.GetDB()
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	cid, ok := utils.GetCorrelationIdFromContext(ctx)
	if !ok || cid == "" {
		cid = uuid.NewString()
	}
	result := ReconciliationResult{CorrelationId: cid}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// every posting locks its fund first, so holding all fund rows freezes the ledger
		var funds []Fund
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Order("id").Find(&funds).Error; err != nil {
			return err
		}
		var lines []Line
		if err := tx.Order("id").Find(&lines).Error; err != nil {
			return err
		}
		var grantLines []GrantLine
		if err := tx.Order("id").Find(&grantLines).Error; err != nil {
			return err
		}
		lineTotals, err := ScanLineTotals(tx)
		if err != nil {
			return err
		}
		grantLineTotals, err := ScanGrantLineTotals(tx)
		if err != nil {
			return err
		}
		fundFlows, err := ScanFundFlows(tx)
		if err != nil {
			return err
		}

		drift := func(check, entityType, entityId string, expected, actual decimal.Decimal, repairable bool) {
			result.Checked++
			if expected.Equal(actual) {
				return
			}
			result.Reports = append(result.Reports, ReconciliationReport{
				CheckType:     check,
				EntityType:    entityType,
				EntityId:      entityId,
				Expected:      expected,
				Actual:        actual,
				Drift:         actual.Sub(expected),
				Repaired:      repair && repairable,
				Details:       fmt.Sprintf("%s %s: stored %s, scanned %s", entityType, entityId, actual.StringFixed(2), expected.StringFixed(2)),
				CorrelationId: cid,
			})
		}

		for _, l := range lines {
			t := lineTotals[l.ID]
			drift(CheckLineSpent, "Line", l.ID, t.Spent, l.BudgetSpent, true)
			drift(CheckLineIncome, "Line", l.ID, t.Income, l.TotalIncome, true)
		}
		for _, gl := range grantLines {
			id := strconv.Itoa(gl.ID)
			t := grantLineTotals[id]
			drift(CheckGrantLineSpent, "GrantLine", id, t.Spent, gl.BudgetSpent, true)
			drift(CheckGrantLineIncome, "GrantLine", id, t.Income, gl.TotalIncome, true)
		}
		for i := range funds {
			drift(CheckFundCash, "Fund", funds[i].ID, ExpectedCash(&funds[i], fundFlows[funds[i].ID]), funds[i].CashBalance, false)
		}

		if repair {
			for _, r := range result.Reports {
				if !r.Repaired {
					continue
				}
				if err := repairCounter(tx, r); err != nil {
					return err
				}
				result.Repaired++
			}
		}
		if len(result.Reports) > 0 {
			if err := tx.Create(&result.Reports).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(result.Reports, func(i, j int) bool {
		return result.Reports[i].CheckType < result.Reports[j].CheckType
	})
	config.GetLogger().WithFields(logrus.Fields{
		"field":          "ReconciliationChecks",
		"correlation_id": cid,
		"checked":        result.Checked,
		"drifts":         len(result.Reports),
		"repaired":       result.Repaired,
	}).Info("reconciliation checks completed")
	return &result, nil
}

func repairCounter(tx *gorm.DB, r ReconciliationReport) error {
	switch r.CheckType {
	case CheckLineSpent:
		return tx.Model(&Line{}).Where("id = ?", r.EntityId).Update("budget_spent", r.Expected).Error
	case CheckLineIncome:
		return tx.Model(&Line{}).Where("id = ?", r.EntityId).Update("total_income", r.Expected).Error
	case CheckGrantLineSpent:
		return tx.Model(&GrantLine{}).Where("id = ?", r.EntityId).Update("budget_spent", r.Expected).Error
	case CheckGrantLineIncome:
		return tx.Model(&GrantLine{}).Where("id = ?", r.EntityId).Update("total_income", r.Expected).Error
	}
	return nil
}

func ListReconciliationReports(ctx context.Context, correlationId string) ([]*ReconciliationReport, error) {
	return utils.FetchAllModels[ReconciliationReport](ctx, func(db *gorm.DB) *gorm.DB {
		if correlationId != "" {
			return db.Where("correlation_id = ?", correlationId)
		}
		return db
	})
}
