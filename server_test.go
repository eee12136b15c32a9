package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/models"
	"github.com/wchd/budget_backend/utils"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	conn, err := config.OpenSQLite(filepath.Join(t.TempDir(), "server.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	prev := config.GetDB()
	config.SetDB(conn)
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
		config.SetDB(prev)
	})
	if err := models.MigrateTable(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return newRouter(config.GetLogger())
}

func bearer(t *testing.T, role models.UserRole) string {
	t.Helper()
	token, err := utils.JwtGenerate(1, "scheduler", string(role))
	if err != nil {
		t.Fatalf("jwt: %v", err)
	}
	return "Bearer " + token
}

func do(router *gin.Engine, method string, path string, auth string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	router := setupRouter(t)
	rec := do(router, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec.Header().Get("X-Correlation-ID") == "" {
		t.Fatalf("expected a correlation id header")
	}
}

func TestRoutes_RequireCredentials(t *testing.T) {
	router := setupRouter(t)
	if rec := do(router, http.MethodGet, "/funds", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without credentials, got %d", rec.Code)
	}
	if rec := do(router, http.MethodGet, "/funds", "Bearer not-a-token", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a bad token, got %d", rec.Code)
	}
	if rec := do(router, http.MethodGet, "/internal/ops/outbox", bearer(t, models.UserRoleStaff), ""); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for staff on ops routes, got %d", rec.Code)
	}
}

func TestFunds_CreateAndValidate(t *testing.T) {
	router := setupRouter(t)
	auth := bearer(t, models.UserRoleStaff)

	rec := do(router, http.MethodPost, "/funds", auth, `{"code":"001","year":2024,"name":"General Health","cash_balance":"1000.00"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var fund models.Fund
	if err := json.Unmarshal(rec.Body.Bytes(), &fund); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if fund.ID != "2024-001" {
		t.Fatalf("unexpected fund id %q", fund.ID)
	}

	rec = do(router, http.MethodPost, "/lines", auth, `{"fund_id":"2024-001","code":"100","name":"Supplies","type":"Expense","budgeted":"1500"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Kind   string            `json:"kind"`
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Kind != "validation" || body.Fields["budgeted"] != "Not enough remaining balance in fund" {
		t.Fatalf("unexpected body %+v", body)
	}

	rec = do(router, http.MethodGet, "/funds/2024-404", auth, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestExport_UnknownTable(t *testing.T) {
	router := setupRouter(t)
	rec := do(router, http.MethodGet, "/export/invoices.csv", bearer(t, models.UserRoleStaff), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
