package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *Handler) loggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next()

	status := c.Writer.Status()
	fields := []zap.Field{
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", status),
		zap.Duration("duration", time.Since(start)),
		zap.String("from", c.ClientIP()),
	}
	if status >= 500 {
		h.logger.Error("request failed", fields...)
		return
	}
	h.logger.Debug("request", fields...)
}
