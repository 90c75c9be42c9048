package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pageza/smartplate/internal/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the page templates. Each page is addressed by its file
// name, e.g. "results.html".
func Templates() (*template.Template, error) {
	return template.New("").ParseFS(templateFS, "templates/*.html")
}

// MustTemplates is Templates for program start-up
func MustTemplates() *template.Template {
	return template.Must(Templates())
}

func injectCommonTemplateData(c *gin.Context, payload gin.H) gin.H {
	data := gin.H{
		"session_id":   middleware.SessionID(c),
		"request_id":   middleware.RequestID(c),
		"current_year": time.Now().Year(),
	}
	for k, v := range payload {
		data[k] = v
	}
	return data
}

func renderHTTPError(log logrus.FieldLogger, c *gin.Context, err error, code int) {
	log.WithField("error", err).Error("request error")
	c.HTML(code, "error.html", injectCommonTemplateData(c, gin.H{
		"title":       http.StatusText(code),
		"error":       fmt.Sprintf("%v", err),
		"status_code": code,
		"status":      http.StatusText(code),
	}))
}
