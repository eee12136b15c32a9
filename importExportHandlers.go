package main

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wchd/budget_backend/models"
	"github.com/wchd/budget_backend/models/reports"
	"github.com/wchd/budget_backend/utils"
	"github.com/wchd/budget_backend/workflow"
)

func importPayrollHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := readUpload(c, "file")
		if err != nil {
			respondError(c, "importPayroll", err)
			return
		}
		date, err := postingDate(c.PostForm("date"))
		if err != nil {
			respondError(c, "importPayroll", err)
			return
		}
		result, err := workflow.ImportPayroll(c.Request.Context(), bytes.NewReader(data), workflow.PayrollImportOptions{PostingDate: date})
		if err != nil {
			respondError(c, "importPayroll", err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func importTableHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tag := c.Param("table")
		if _, err := models.LookupTable(tag); err != nil {
			respondError(c, "importTable", err)
			return
		}
		data, err := readUpload(c, "file")
		if err != nil {
			respondError(c, "importTable", err)
			return
		}
		count, err := models.ImportTableCSV(c.Request.Context(), tag, bytes.NewReader(data))
		if err != nil {
			respondError(c, "importTable", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"table": tag, "rows": count})
	}
}

func exportTableHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tag := strings.TrimSuffix(c.Param("table"), ".csv")
		var buf bytes.Buffer
		if strings.EqualFold(c.Query("format"), "xlsx") {
			if err := reports.WriteTableXLSX(c.Request.Context(), tag, &buf); err != nil {
				respondError(c, "exportTable", err)
				return
			}
			sendFile(c, tag+".xlsx", reports.ContentTypeXLSX, buf.Bytes())
			return
		}
		if err := models.ExportTableCSV(c.Request.Context(), tag, &buf); err != nil {
			respondError(c, "exportTable", err)
			return
		}
		sendFile(c, tag+".csv", reports.ContentTypeCSV, buf.Bytes())
	}
}

func countyPayrollHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		payPeriodId := strings.TrimSpace(c.Query("pay_period"))
		if payPeriodId == "" {
			respondError(c, "countyPayroll", utils.NewValidationError("pay_period", "pay_period is required"))
			return
		}
		data, err := reports.CountyPayrollCSV(c.Request.Context(), payPeriodId)
		if err != nil {
			respondError(c, "countyPayroll", err)
			return
		}
		sendFile(c, "county-payroll-"+payPeriodId+".csv", reports.ContentTypeCSV, data)
	}
}

func reconcileFilesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		first, err := readUpload(c, "first_file")
		if err != nil {
			respondError(c, "reconcileFiles", err)
			return
		}
		second, err := readUpload(c, "second_file")
		if err != nil {
			respondError(c, "reconcileFiles", err)
			return
		}
		result, err := reports.ReconcileCSV(bytes.NewReader(first), bytes.NewReader(second))
		if err != nil {
			respondError(c, "reconcileFiles", err)
			return
		}
		var buf bytes.Buffer
		if err := result.WriteXLSX(&buf); err != nil {
			respondError(c, "reconcileFiles", err)
			return
		}
		sendFile(c, "reconciled.xlsx", reports.ContentTypeXLSX, buf.Bytes())
	}
}

func registerImportExport(g *gin.RouterGroup) {
	g.POST("/import/payroll", importPayrollHandler())
	g.POST("/import/:table", importTableHandler())
	g.GET("/export/county-payroll", countyPayrollHandler())
	g.GET("/export/:table", exportTableHandler())
	g.POST("/reconcile-files", reconcileFilesHandler())
}
