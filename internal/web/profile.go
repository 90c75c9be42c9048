package web

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/pageza/smartplate/internal/client"
	"github.com/pageza/smartplate/internal/logger"
	"github.com/pageza/smartplate/internal/middleware"
	"github.com/pageza/smartplate/internal/session"
)

var (
	activityLevels = []string{"sedentary", "light", "moderate", "active", "very_active"}
	goals          = []string{"weight_loss", "maintenance", "muscle_gain"}
)

// ProfileForm renders the empty profile form
func (h *Handler) ProfileForm(c *gin.Context) {
	h.renderProfileForm(c, http.StatusOK, map[string]string{}, "")
}

// SubmitProfile posts the form to /api/recommend. On success the response is
// cached for the session and the browser is sent to the results page; on any
// failure the form is shown again with the message in #formError.
func (h *Handler) SubmitProfile(c *gin.Context) {
	log := logger.FromContext(c.Request.Context())

	fields, err := formFields(c)
	if err != nil {
		renderHTTPError(log, c, err, http.StatusBadRequest)
		return
	}

	ctx := client.WithClientIP(c.Request.Context(), c.ClientIP())
	result, err := h.api.Recommend(ctx, fields)
	if err != nil {
		var rf *client.RequestFailed
		if !errors.As(err, &rf) {
			renderHTTPError(log, c, errors.Wrap(err, "could not request recommendations"), http.StatusInternalServerError)
			return
		}
		log.WithField("status", rf.Status).WithError(err).Info("recommend request failed")
		h.renderProfileForm(c, failureStatus(rf), fields, rf.Message)
		return
	}

	payload := &session.ResultsPayload{
		ResultID:        uuid.NewString(),
		Targets:         result.Targets,
		Recommendations: result.Recommendations,
		CreatedAt:       h.now(),
	}
	if err := h.store.SetResults(c.Request.Context(), middleware.SessionID(c), payload); err != nil {
		renderHTTPError(log, c, errors.Wrap(err, "could not store results"), http.StatusInternalServerError)
		return
	}

	log.WithField("result_id", payload.ResultID).Info("stored recommendations")
	c.Redirect(http.StatusSeeOther, "/results?"+url.Values{"rid": {payload.ResultID}}.Encode())
}

func (h *Handler) renderProfileForm(c *gin.Context, code int, values map[string]string, formError string) {
	c.HTML(code, "form.html", injectCommonTemplateData(c, gin.H{
		"title":           "Profile",
		"values":          values,
		"form_error":      formError,
		"activity_levels": activityLevels,
		"goals":           goals,
	}))
}

// failureStatus maps an API failure to the status of the re-rendered form:
// 502 when the API could not be reached or answered garbage, 422 otherwise.
func failureStatus(rf *client.RequestFailed) int {
	if rf.Status == 0 || rf.Status >= http.StatusInternalServerError {
		return http.StatusBadGateway
	}
	return http.StatusUnprocessableEntity
}
