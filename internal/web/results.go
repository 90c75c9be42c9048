package web

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pageza/smartplate/internal/chart"
	"github.com/pageza/smartplate/internal/export"
	"github.com/pageza/smartplate/internal/logger"
	"github.com/pageza/smartplate/internal/middleware"
	"github.com/pageza/smartplate/internal/session"
	"github.com/pageza/smartplate/internal/types"
)

// Notices shown above the results
const (
	NoticeStale     = "You submitted the form again since these results were requested; the latest results are shown."
	NoticeExpired   = "These results are no longer available. Submit the form again to get new ones."
	NoticeMalformed = "Your saved results could not be read. Submit the form again to get new ones."
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type recommendationView struct {
	Name       string
	Category   string
	Cluster    string
	Similarity string
	Badge      string
}

// Results renders the summary, the recommendation list and the chart mount
// from the session cache.
func (h *Handler) Results(c *gin.Context) {
	data := gin.H{
		"title":         "Results",
		"chart_enabled": h.chartEnabled,
	}
	if !h.chartEnabled {
		c.HTML(http.StatusOK, "results.html", injectCommonTemplateData(c, data))
		return
	}

	res, notice, err := h.loadResults(c, c.Query("rid"))
	if err != nil {
		renderHTTPError(logger.FromContext(c.Request.Context()), c, err, http.StatusInternalServerError)
		return
	}

	views := make([]recommendationView, len(res.Recommendations))
	for i, r := range res.Recommendations {
		views[i] = recommendationView{
			Name:       r.Name,
			Category:   r.Category,
			Cluster:    string(r.Cluster),
			Similarity: types.FormatNumber(r.Similarity),
			Badge:      types.CaloriesBadge(r.Calories),
		}
	}

	data["summary"] = res.Targets.Summary()
	data["recommendations"] = views
	data["result_id"] = res.ResultID
	data["notice"] = notice
	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, "results.html", injectCommonTemplateData(c, data))
}

// Chart renders the macro targets bar chart as SVG
func (h *Handler) Chart(c *gin.Context) {
	if !h.chartEnabled {
		c.Status(http.StatusNotFound)
		return
	}

	log := logger.FromContext(c.Request.Context())
	res, _, err := h.loadResults(c, "")
	if err != nil {
		log.WithError(err).Error("could not load results for chart")
		c.Status(http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := chart.Render(&buf, res.Targets); err != nil {
		log.WithError(err).Error("could not render chart")
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/svg+xml", buf.Bytes())
}

// ExportXLSX downloads the cached results as a workbook
func (h *Handler) ExportXLSX(c *gin.Context) {
	h.export(c, "smartplate-results.xlsx", xlsxContentType, func(buf *bytes.Buffer, res *session.Results) error {
		return export.WriteXLSX(buf, res.Targets, res.Recommendations)
	})
}

// ExportPDF downloads the cached results as a one page PDF
func (h *Handler) ExportPDF(c *gin.Context) {
	h.export(c, "smartplate-results.pdf", "application/pdf", func(buf *bytes.Buffer, res *session.Results) error {
		return export.WritePDF(buf, res.Targets, res.Recommendations, h.now())
	})
}

func (h *Handler) export(c *gin.Context, filename, contentType string, write func(*bytes.Buffer, *session.Results) error) {
	log := logger.FromContext(c.Request.Context())
	res, _, err := h.loadResults(c, "")
	if err != nil {
		renderHTTPError(log, c, err, http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := write(&buf, res); err != nil {
		renderHTTPError(log, c, errors.Wrapf(err, "could not export %s", filename), http.StatusInternalServerError)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// loadResults reads the session's results. A missing or malformed payload
// yields empty results and a notice; only store failures are errors.
// When rid names a different submission than the cached one the cached
// payload is still returned, with a stale notice.
func (h *Handler) loadResults(c *gin.Context, rid string) (*session.Results, string, error) {
	log := logger.FromContext(c.Request.Context())
	empty := &session.Results{Recommendations: []types.RecommendationItem{}}

	res, err := session.GetResults(c.Request.Context(), h.store, middleware.SessionID(c))
	switch {
	case errors.Is(err, session.ErrNotFound):
		if rid != "" {
			return empty, NoticeExpired, nil
		}
		return empty, "", nil
	case errors.Is(err, session.ErrMalformedPayload):
		log.WithError(err).Warn("discarding malformed session results")
		return empty, NoticeMalformed, nil
	case err != nil:
		return nil, "", errors.Wrap(err, "could not load results")
	}

	if rid != "" && rid != res.ResultID {
		log.WithFields(logrus.Fields{"rid": rid, "cached": res.ResultID}).Info("stale results link")
		return res, NoticeStale, nil
	}
	return res, "", nil
}
