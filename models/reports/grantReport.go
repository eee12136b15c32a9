package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/models"
	"github.com/wchd/budget_backend/utils"
)

const grantStatsCacheKey = "Report:GrantStats"

type GrantStats struct {
	GrantId     int             `json:"grant_id"`
	GrantName   string          `json:"grant_name"`
	AwardAmount decimal.Decimal `json:"award_amount"`
	Budgeted    decimal.Decimal `json:"budgeted"`
	Spent       decimal.Decimal `json:"spent"`
	Remaining   decimal.Decimal `json:"remaining"`
	Received    decimal.Decimal `json:"received"`
}

type GrantBreakdownLine struct {
	GrantLineId int             `json:"grant_line_id"`
	Name        string          `json:"name"`
	Type        models.LineType `json:"type"`
	Budgeted    decimal.Decimal `json:"budgeted"`
	Remaining   decimal.Decimal `json:"remaining"`
	Spent       decimal.Decimal `json:"spent"`
	Income      decimal.Decimal `json:"income"`
}

type GrantBreakdown struct {
	GrantId    int                  `json:"grant_id"`
	GrantName  string               `json:"grant_name"`
	Lines      []GrantBreakdownLine `json:"lines"`
	Unbudgeted decimal.Decimal      `json:"unbudgeted"`
}

func groupGrantLines(lines []models.GrantLine) map[int][]models.GrantLine {
	byGrant := make(map[int][]models.GrantLine)
	for _, l := range lines {
		byGrant[l.GrantId] = append(byGrant[l.GrantId], l)
	}
	return byGrant
}

func grantStats(grant models.Grant, lines []models.GrantLine) GrantStats {
	stats := GrantStats{
		GrantId:     grant.ID,
		GrantName:   grant.Name,
		AwardAmount: grant.AwardAmount,
	}
	for _, l := range lines {
		stats.Budgeted = stats.Budgeted.Add(l.Budgeted)
		stats.Spent = stats.Spent.Add(l.BudgetSpent)
		stats.Remaining = stats.Remaining.Add(l.Budgeted.Sub(l.BudgetSpent))
		if l.Type == models.LineTypeRevenue {
			stats.Received = stats.Received.Add(l.TotalIncome)
		}
	}
	return stats
}

// GetGrantStats totals every grant's lines. Results are cached briefly when report caching is on.
func GetGrantStats(ctx context.Context) ([]GrantStats, error) {
	var cached []GrantStats
	if ok, err := cacheGet(grantStatsCacheKey, &cached); err == nil && ok {
		return cached, nil
	}
	started := time.Now()
	defer logSlowReport(ctx, "GetGrantStats", started, nil)

	db := config.GetDB().WithContext(ctx)
	var grants []models.Grant
	if err := db.Order("id").Find(&grants).Error; err != nil {
		return nil, err
	}
	var lines []models.GrantLine
	if err := db.Order("id").Find(&lines).Error; err != nil {
		return nil, err
	}
	byGrant := groupGrantLines(lines)

	stats := make([]GrantStats, 0, len(grants))
	for _, g := range grants {
		stats = append(stats, grantStats(g, byGrant[g.ID]))
	}
	if err := cacheSet(grantStatsCacheKey, stats); err != nil {
		config.LogErrorCtx(ctx, "reports", "GetGrantStats", "cache", nil, err)
	}
	return stats, nil
}

func GetGrantBreakdown(ctx context.Context, grantId int) (*GrantBreakdown, error) {
	grant, err := utils.FetchModel[models.Grant](ctx, grantId)
	if err != nil {
		return nil, err
	}
	lines, err := models.ListGrantLines(ctx, grantId)
	if err != nil {
		return nil, err
	}
	breakdown := &GrantBreakdown{GrantId: grant.ID, GrantName: grant.Name}
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Budgeted)
		breakdown.Lines = append(breakdown.Lines, GrantBreakdownLine{
			GrantLineId: l.ID,
			Name:        l.Name,
			Type:        l.Type,
			Budgeted:    l.Budgeted,
			Remaining:   l.Budgeted.Sub(l.BudgetSpent),
			Spent:       l.BudgetSpent,
			Income:      l.TotalIncome,
		})
	}
	breakdown.Unbudgeted = grant.AwardAmount.Sub(total)
	return breakdown, nil
}

// GrantStatsReport lays the stats out for the PDF renderer.
func GrantStatsReport(stats []GrantStats) *TableReport {
	report := &TableReport{
		Subtitle: "Grant awards with budgeted, spent and received amounts.",
		Header:   []string{"Grant", "Name", "Award", "Budgeted", "Spent", "Remaining", "Received"},
	}
	var award, received decimal.Decimal
	for _, s := range stats {
		award = award.Add(s.AwardAmount)
		received = received.Add(s.Received)
		report.Rows = append(report.Rows, []string{
			fmt.Sprint(s.GrantId),
			s.GrantName,
			FormatUSD(s.AwardAmount),
			FormatUSD(s.Budgeted),
			FormatUSD(s.Spent),
			FormatUSD(s.Remaining),
			FormatUSD(s.Received),
		})
	}
	report.Totals = []ReportTotal{
		{Label: "Total Awards", Value: FormatUSD(award)},
		{Label: "Total Received", Value: FormatUSD(received)},
	}
	return report
}
