package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"meeting-assistant-go/internal/logger"
)

const requestLogKey = "request_log"

// CORS allows the configured browser origins.
func CORS(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Requested-With", logger.RequestIDHeader},
		ExposeHeaders:    []string{logger.RequestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// RequestLogger stores a request-scoped entry on the context, echoes the
// request id and logs status and duration once the handler returns.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		entry := log.WithRequest(c.Request)
		reqID := logger.RequestID(entry)
		c.Set(requestLogKey, entry)
		c.Header(logger.RequestIDHeader, reqID)

		c.Next()

		status := c.Writer.Status()
		done := entry.
			WithField("status", status).
			WithField("duration_ms", time.Since(start).Milliseconds())
		switch {
		case status >= http.StatusInternalServerError:
			done.Warn("request completed")
		case c.Request.URL.Path == "/healthz" || c.Request.URL.Path == "/metrics":
			done.Debug("request completed")
		default:
			done.Info("request completed")
		}
	}
}

func requestLog(c *gin.Context) *logrus.Entry {
	if v, ok := c.Get(requestLogKey); ok {
		if e, ok := v.(*logrus.Entry); ok {
			return e
		}
	}
	return logger.Discard().Entry
}
