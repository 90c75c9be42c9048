package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/smartplate/internal/logger"
	"github.com/pageza/smartplate/internal/service"
	"github.com/pageza/smartplate/internal/validation"
)

type FeedbackHandler struct {
	feedbackService service.IFeedbackService
}

func NewFeedbackHandler(feedbackService service.IFeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

func (h *FeedbackHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/submit_feedback", h.SubmitFeedback)
}

// SubmitFeedback records a rating for a recommended food
func (h *FeedbackHandler) SubmitFeedback(c *gin.Context) {
	req, err := validation.ParseFeedbackPayload(readJSONPayload(c))
	if err != nil {
		respondInvalid(c, err)
		return
	}

	if _, err := h.feedbackService.CreateFeedback(c.Request.Context(), req); err != nil {
		logger.FromContext(c.Request.Context()).WithError(err).Error("create feedback")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create feedback"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "feedback_recorded"})
}
