package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pageza/smartplate/internal/logger"
)

// RequestIDHeader is echoed back on every response
const RequestIDHeader = "X-Request-ID"

const ctxKeyRequestID = "request_id"

// RequestLogger puts a request scoped logger into the request context and
// logs the outcome once the handler chain is done.
func RequestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(ctxKeyRequestID, reqID)
		c.Header(RequestIDHeader, reqID)

		l := log.WithFields(logrus.Fields{
			"http.req.path":   c.Request.URL.Path,
			"http.req.method": c.Request.Method,
			"http.req.id":     reqID,
		})
		c.Request = c.Request.WithContext(logger.WithLogger(c.Request.Context(), l))
		l.Debug("request started")

		c.Next()

		entry := logger.FromContext(c.Request.Context()).WithFields(logrus.Fields{
			"http.resp.took_ms": time.Since(start).Milliseconds(),
			"http.resp.status":  c.Writer.Status(),
			"http.resp.bytes":   c.Writer.Size(),
		})
		if c.Writer.Status() >= 500 {
			entry.Error("request complete")
			return
		}
		entry.Info("request complete")
	}
}

// RequestID returns the id assigned by RequestLogger
func RequestID(c *gin.Context) string {
	return c.GetString(ctxKeyRequestID)
}
