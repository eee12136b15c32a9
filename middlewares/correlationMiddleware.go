package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/utils"
)

const correlationHeader = "X-Correlation-ID"

// CorrelationMiddleware stamps every request with a correlation id and logs it on completion.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cid := c.GetHeader(correlationHeader)
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Writer.Header().Set(correlationHeader, cid)

		start := time.Now()
		c.Next()

		config.GetLogger().WithFields(logrus.Fields{
			"correlation_id": cid,
			"method":         c.Request.Method,
			"path":           c.FullPath(),
			"status":         c.Writer.Status(),
			"latency_ms":     time.Since(start).Milliseconds(),
		}).Info("request")
	}
}
