// Package web serves the HTML pages: the profile and feedback forms and the
// results page rendered from the session cache.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/smartplate/internal/client"
	"github.com/pageza/smartplate/internal/logger"
	"github.com/pageza/smartplate/internal/session"
)

// APIClient is the part of the backend API the pages use
type APIClient interface {
	Recommend(ctx context.Context, fields map[string]string) (*client.RecommendResult, error)
	SubmitFeedback(ctx context.Context, fields map[string]string) (*client.FeedbackResult, error)
}

// Options tune the page handlers
type Options struct {
	// ChartEnabled puts the chart mount on the results page. Without it the
	// results page does not touch the session cache.
	ChartEnabled bool
	// Now stamps stored results and exports; defaults to time.Now
	Now func() time.Time
}

// Handler serves the HTML pages
type Handler struct {
	api          APIClient
	store        session.Store
	chartEnabled bool
	now          func() time.Time
}

// NewHandler creates the page handler
func NewHandler(api APIClient, store session.Store, opts Options) *Handler {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Handler{
		api:          api,
		store:        store,
		chartEnabled: opts.ChartEnabled,
		now:          now,
	}
}

// RegisterRoutes mounts the pages. The group must run the session middleware.
func (h *Handler) RegisterRoutes(router gin.IRoutes) {
	router.GET("/", h.Index)
	router.GET("/form", h.ProfileForm)
	router.POST("/form", h.SubmitProfile)
	router.GET("/results", h.Results)
	router.GET("/results/chart.svg", h.Chart)
	router.GET("/results/export.xlsx", h.ExportXLSX)
	router.GET("/results/export.pdf", h.ExportPDF)
	router.GET("/feedback", h.FeedbackForm)
	router.POST("/feedback", h.SubmitFeedback)
}

// Index renders the landing page
func (h *Handler) Index(c *gin.Context) {
	logger.FromContext(c.Request.Context()).Debug("home")
	c.HTML(http.StatusOK, "index.html", injectCommonTemplateData(c, gin.H{}))
}
