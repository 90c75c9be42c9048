package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/smartplate/internal/logger"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// ErrorHandler turns panics and errors attached with c.Error into JSON
// error responses for the API group.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.FromContext(c.Request.Context()).WithField("panic", rec).Error("recovered from panic")
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal Server Error"})
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last()
		logger.FromContext(c.Request.Context()).WithError(err.Err).Error("request failed")

		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			status = http.StatusInternalServerError
		}
		c.JSON(status, ErrorResponse{Error: err.Error()})
	}
}
