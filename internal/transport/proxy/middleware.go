package proxy

import (
	"log/slog"
	"time"

	"github.com/KotFed0t/portfolio_tracker/utils"
	"github.com/gin-gonic/gin"
)

const rqIDHeader = "X-Request-ID"

// RequestID reuses the caller's request id or generates one, exposing it via
// the request context and the response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := utils.CtxWithRqID(c.Request.Context(), c.GetHeader(rqIDHeader))
		c.Request = c.Request.WithContext(ctx)
		c.Header(rqIDHeader, utils.GetRequestIDFromCtx(ctx))
		c.Next()
	}
}

func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()
		rqID := utils.GetRequestIDFromCtx(c.Request.Context())

		slog.Info(
			"start request",
			slog.String("rqID", rqID),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("ip", c.ClientIP()),
		)

		c.Next()

		slog.Info(
			"request finished",
			slog.String("rqID", rqID),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(now)),
		)
	}
}
