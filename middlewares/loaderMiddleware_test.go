package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/models"
	"github.com/wchd/budget_backend/utils"
)

func TestGenerateLoaderResults_FollowsIdOrder(t *testing.T) {
	rows := []models.Fund{{ID: "2024-002", Name: "Grants"}, {ID: "2024-001", Name: "General"}}
	results := generateLoaderResults(rows, []string{"2024-001", "2024-009", "2024-002"})

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Data.Name != "General" || results[2].Data.Name != "Grants" {
		t.Fatalf("results out of order: %+v %+v", results[0].Data, results[2].Data)
	}
	if results[1].Data.ID != "2024-009" || results[1].Data.Name != "" || results[1].Error != nil {
		t.Fatalf("missing id should get a default row, got %+v", results[1])
	}
}

func TestHandleError_RepeatsError(t *testing.T) {
	results := handleError[*models.Item](2, utils.ErrorRecordNotFound)
	if len(results) != 2 || results[0].Error != utils.ErrorRecordNotFound || results[1].Error != utils.ErrorRecordNotFound {
		t.Fatalf("unexpected results %+v", results)
	}
}

func TestLoaders_BatchNameLookups(t *testing.T) {
	conn, err := config.OpenSQLite(filepath.Join(t.TempDir(), "loaders.db"))
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
	ctx := context.Background()
	if _, err := models.CreateFund(ctx, &models.NewFund{Code: "001", Year: 2024, Name: "General", CashBalance: decimal.NewFromInt(10)}); err != nil {
		t.Fatalf("create fund: %v", err)
	}

	ctx = WithLoaders(ctx, conn)
	fund, err := GetFund(ctx, "2024-001")
	if err != nil || fund.Name != "General" {
		t.Fatalf("unexpected fund %+v, err %v", fund, err)
	}
	grantLine, err := GetGrantLine(ctx, nil)
	if err != nil || grantLine != nil {
		t.Fatalf("expected nil grant line, got %+v, err %v", grantLine, err)
	}
}

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if role := c.GetHeader("X-Test-Role"); role != "" {
			ctx := utils.SetUsernameInContext(c.Request.Context(), "tester")
			c.Request = c.Request.WithContext(utils.SetRoleInContext(ctx, role))
		}
		c.Next()
	}, RequireUser(), RequireAdmin())
	router.GET("/ops", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for role, want := range map[string]int{"": http.StatusUnauthorized, "S": http.StatusForbidden, "A": http.StatusNoContent} {
		req := httptest.NewRequest(http.MethodGet, "/ops", nil)
		if role != "" {
			req.Header.Set("X-Test-Role", role)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("role %q: expected %d, got %d", role, want, rec.Code)
		}
	}
}
