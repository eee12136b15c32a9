package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/models"
	"github.com/wchd/budget_backend/utils"
)

// respondError maps domain errors to HTTP responses. Only unexpected errors are logged.
func respondError(c *gin.Context, funcName string, err error) {
	var ve *utils.ValidationError
	var ie *utils.IntegrityError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"kind": "validation", "fields": ve.Fields})
	case errors.As(err, &ie):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"kind":   "integrity",
			"field":  ie.Field,
			"entity": ie.Entity,
			"key":    ie.Key,
			"error":  ie.Error(),
		})
	case errors.Is(err, utils.ErrorRecordNotFound), errors.Is(err, models.ErrUnknownTable):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidLogin), errors.Is(err, models.ErrUserDisabled), errors.Is(err, models.ErrSessionExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrSessionStoreUnset):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		config.LogErrorCtx(c.Request.Context(), "server", funcName, c.Request.Method+" "+c.FullPath(), nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}
