package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/middlewares"
	"github.com/wchd/budget_backend/models"
	"github.com/wchd/budget_backend/utils"
	"github.com/wchd/budget_backend/workflow"
)

const defaultPort = "8080"

func corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		cfg.AllowOrigins = utils.SplitAndTrim(allowedOrigins)
		if len(cfg.AllowOrigins) == 0 {
			cfg.AllowOrigins = []string{}
		}
	} else {
		cfg.AllowAllOrigins = true
	}
	cfg.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	cfg.AddAllowHeaders("token", "Origin", "Content-Type", "Authorization", "X-Correlation-ID")
	cfg.AddExposeHeaders("Content-Length", "Content-Disposition", "X-Correlation-ID")
	cfg.AllowCredentials = !cfg.AllowAllOrigins
	return cfg
}

// newRouter wires every route. The database must be reachable for app endpoints.
func newRouter(logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middlewares.CorrelationMiddleware())
	r.Use(cors.New(corsConfig()))
	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/readyz", readyzHandler())

	app := r.Group("/")
	app.Use(func(c *gin.Context) {
		if config.GetDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})
	app.Use(middlewares.SessionMiddleware())
	app.Use(middlewares.AuthMiddleware())
	app.Use(middlewares.LoaderMiddleware())

	app.POST("/login", loginHandler())

	authed := app.Group("/")
	authed.Use(middlewares.RequireUser())
	authed.POST("/logout", logoutHandler())
	authed.POST("/me/password", changePasswordHandler())
	registerMasterData(authed)
	registerPostings(authed)
	registerImportExport(authed)
	registerReports(authed)

	admin := authed.Group("/")
	admin.Use(middlewares.RequireAdmin())
	registerUsers(admin)
	registerOps(admin)

	r.NoRoute(customNotFoundHandler)
	return r
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	config.ConnectDatabaseWithRetry()
	if strings.TrimSpace(os.Getenv("REDIS_ADDRESS")) != "" {
		config.ConnectRedisWithRetry()
	} else {
		logger.WithFields(logrus.Fields{"field": "redis"}).Warn("REDIS_ADDRESS not set; sessions and report cache are disabled")
	}

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	if !config.SkipMigrations() {
		if err := models.MigrateTable(); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	dispatcherCtx, cancelDispatcher := context.WithCancel(context.Background())
	defer cancelDispatcher()
	if config.LedgerEventsEnabled() {
		go workflow.NewOutboxDispatcher(db, logger).Run(dispatcherCtx)
	}

	if spec := config.ReconciliationSchedule(); spec != "" {
		scheduler, err := workflow.StartReconciliationScheduler(spec)
		if err != nil {
			log.Fatalf("invalid RECONCILIATION_CRON %q: %v", spec, err)
		}
		defer scheduler.Stop()
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: newRouter(logger),
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()
	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("listening on :", port)

	select {
	case <-sigCtx.Done():
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	cancelDispatcher()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}

func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String())
		}
	}
}
