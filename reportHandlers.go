package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wchd/budget_backend/models/reports"
	"github.com/wchd/budget_backend/utils"
)

func wantsPDF(c *gin.Context) bool {
	return strings.EqualFold(c.Query("format"), "pdf")
}

func sendTableReport(c *gin.Context, funcName string, fileName string, report *reports.TableReport) {
	data, err := report.Bytes()
	if err != nil {
		respondError(c, funcName, err)
		return
	}
	sendFile(c, fileName, reports.ContentTypePDF, data)
}

func tablePDFHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tag := c.Param("table")
		data, err := reports.TablePDF(c.Request.Context(), tag)
		if err != nil {
			respondError(c, "tablePDF", err)
			return
		}
		sendFile(c, tag+".pdf", reports.ContentTypePDF, data)
	}
}

func dailyReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		day, err := postingDate(c.Query("date"))
		if err != nil {
			respondError(c, "dailyReport", err)
			return
		}
		if day.IsZero() {
			day = utils.Today()
		}
		data, err := reports.DailyReportPDF(c.Request.Context(), day)
		if err != nil {
			respondError(c, "dailyReport", err)
			return
		}
		sendFile(c, "daily-"+day.Format("2006-01-02")+".pdf", reports.ContentTypePDF, data)
	}
}

func grantStatsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := reports.GetGrantStats(c.Request.Context())
		if err != nil {
			respondError(c, "grantStats", err)
			return
		}
		if wantsPDF(c) {
			sendTableReport(c, "grantStats", "grants.pdf", reports.GrantStatsReport(stats))
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

func payrollSummaryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		payPeriodId := strings.TrimSpace(c.Query("pay_period"))
		if payPeriodId == "" {
			respondError(c, "payrollSummary", utils.NewValidationError("pay_period", "pay_period is required"))
			return
		}
		summary, err := reports.GetPayrollSummary(c.Request.Context(), payPeriodId)
		if err != nil {
			respondError(c, "payrollSummary", err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

func benefitsReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := reports.BenefitsReport(c.Request.Context())
		if err != nil {
			respondError(c, "benefitsReport", err)
			return
		}
		if wantsPDF(c) {
			sendTableReport(c, "benefitsReport", "benefits.pdf", report)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func registerReports(g *gin.RouterGroup) {
	g.GET("/reports/daily", dailyReportHandler())
	g.GET("/reports/grants", grantStatsHandler())
	g.GET("/reports/grants/:id", getHandler("/reports/grants.breakdown", intId, reports.GetGrantBreakdown))
	g.GET("/reports/payroll-summary", payrollSummaryHandler())
	g.GET("/reports/benefits", benefitsReportHandler())
	g.GET("/reports/archive", archivedReportHandler())
	g.GET("/reports/:table/pdf", tablePDFHandler())
}
