package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/pageza/smartplate/internal/client"
	"github.com/pageza/smartplate/internal/logger"
)

// FeedbackForm renders the empty feedback form
func (h *Handler) FeedbackForm(c *gin.Context) {
	h.renderFeedbackForm(c, http.StatusOK, map[string]string{}, "")
}

// SubmitFeedback posts the form to /api/submit_feedback and shows the reply
// in #feedbackMsg: the message, else the error, else "Done".
func (h *Handler) SubmitFeedback(c *gin.Context) {
	log := logger.FromContext(c.Request.Context())

	fields, err := formFields(c)
	if err != nil {
		renderHTTPError(log, c, err, http.StatusBadRequest)
		return
	}

	ctx := client.WithClientIP(c.Request.Context(), c.ClientIP())
	result, err := h.api.SubmitFeedback(ctx, fields)
	if err != nil {
		var rf *client.RequestFailed
		if !errors.As(err, &rf) {
			renderHTTPError(log, c, errors.Wrap(err, "could not submit feedback"), http.StatusInternalServerError)
			return
		}
		log.WithError(err).Warn("feedback request failed")
		h.renderFeedbackForm(c, failureStatus(rf), fields, rf.Message)
		return
	}

	h.renderFeedbackForm(c, http.StatusOK, fields, result.Text())
}

func (h *Handler) renderFeedbackForm(c *gin.Context, code int, values map[string]string, msg string) {
	c.HTML(code, "feedback.html", injectCommonTemplateData(c, gin.H{
		"title":        "Feedback",
		"values":       values,
		"feedback_msg": msg,
	}))
}
