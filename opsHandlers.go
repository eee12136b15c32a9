package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/models"
	"github.com/wchd/budget_backend/utils"
	"github.com/wchd/budget_backend/workflow"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func loginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request")
			return
		}
		info, err := models.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			respondError(c, "login", err)
			return
		}
		c.JSON(http.StatusOK, info)
	}
}

func logoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := models.Logout(c.Request.Context())
		if err != nil {
			respondError(c, "logout", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": ok})
	}
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func changePasswordHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req changePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request")
			return
		}
		user, err := models.ChangePassword(c.Request.Context(), req.OldPassword, req.NewPassword)
		if err != nil {
			respondError(c, "changePassword", err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func reconcileBalancesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		repair := queryBool(c, "repair")
		result, err := workflow.RunBalanceReconciliation(c.Request.Context(), repair)
		if err != nil {
			respondError(c, "reconcileBalances", err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func reconciliationReportsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := models.ListReconciliationReports(c.Request.Context(), c.Query("correlation_id"))
		if err != nil {
			respondError(c, "reconciliationReports", err)
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

func outboxStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		counts, err := models.LedgerEventCounts(c.Request.Context())
		if err != nil {
			respondError(c, "outboxStatus", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"enabled": config.LedgerEventsEnabled(), "counts": counts})
	}
}

type outboxReplayRequest struct {
	IncludeFailed bool `json:"include_failed"`
	Limit         int  `json:"limit"`
}

func outboxReplayHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req outboxReplayRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request")
			return
		}
		n, err := models.ReplayDeadLedgerEvents(c.Request.Context(), req.IncludeFailed, req.Limit)
		if err != nil {
			respondError(c, "outboxReplay", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"requeued": n})
	}
}

// serviceTokenHandler issues a bearer token for the scheduler and other service callers.
func serviceTokenHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, _ := utils.GetUserIdFromContext(c.Request.Context())
		username, _ := utils.GetUsernameFromContext(c.Request.Context())
		token, err := utils.JwtGenerate(userId, username, string(models.UserRoleAdmin))
		if err != nil {
			respondError(c, "serviceToken", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}

func readyzHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		db := config.GetDB()
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"database": "not connected"})
			return
		}
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"database": "unreachable"})
			return
		}
		redisState := "disabled"
		if rdb := config.GetRedisDB(); rdb != nil {
			redisState = "ok"
			if err := rdb.Ping(c.Request.Context()).Err(); err != nil {
				redisState = "unreachable"
			}
		}
		c.JSON(http.StatusOK, gin.H{"database": "ok", "redis": redisState})
	}
}

func registerUsers(g *gin.RouterGroup) {
	g.GET("/users", listHandler("/users.list", func(c *gin.Context) ([]*models.User, error) {
		return models.ListUsers(c.Request.Context())
	}))
	g.POST("/users", createHandler("/users.create", models.CreateUser))
	g.GET("/users/:id", getHandler("/users.get", intId, models.GetUser))
}

func registerOps(g *gin.RouterGroup) {
	g.POST("/internal/ops/reconcile-balances", reconcileBalancesHandler())
	g.GET("/internal/ops/reconciliation-reports", reconciliationReportsHandler())
	g.GET("/internal/ops/outbox", outboxStatusHandler())
	g.POST("/internal/ops/outbox/replay", outboxReplayHandler())
	g.POST("/internal/ops/service-token", serviceTokenHandler())
}

