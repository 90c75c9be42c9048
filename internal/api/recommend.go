package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/pageza/smartplate/internal/logger"
	"github.com/pageza/smartplate/internal/service"
	"github.com/pageza/smartplate/internal/validation"
)

// RecommendHandler serves registration, target prediction and recommendations
type RecommendHandler struct {
	recommendService service.IRecommendService
	userService      service.IUserService
	rateLimit        gin.HandlerFunc
}

// NewRecommendHandler creates a new RecommendHandler. rateLimit may be nil.
func NewRecommendHandler(recommendService service.IRecommendService, userService service.IUserService, rateLimit gin.HandlerFunc) *RecommendHandler {
	return &RecommendHandler{
		recommendService: recommendService,
		userService:      userService,
		rateLimit:        rateLimit,
	}
}

func (h *RecommendHandler) RegisterRoutes(router *gin.RouterGroup) {
	limited := []gin.HandlerFunc{}
	if h.rateLimit != nil {
		limited = append(limited, h.rateLimit)
	}

	router.POST("/register_user", h.RegisterUser)
	router.POST("/predict", h.Predict)
	router.POST("/recommend", append(limited, h.Recommend)...)
	router.GET("/get_recommendations", append(limited, h.GetRecommendations)...)
}

// RegisterUser validates and stores a profile
func (h *RecommendHandler) RegisterUser(c *gin.Context) {
	profile, err := validation.ParseUserPayload(readJSONPayload(c))
	if err != nil {
		respondInvalid(c, err)
		return
	}

	user, err := h.userService.Register(c.Request.Context(), profile)
	if err != nil {
		logger.FromContext(c.Request.Context()).WithError(err).Error("register user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "user_registered", "user_id": user.ID})
}

// Predict returns the daily targets for a profile
func (h *RecommendHandler) Predict(c *gin.Context) {
	profile, err := validation.ParseUserPayload(readJSONPayload(c))
	if err != nil {
		respondInvalid(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"targets": h.recommendService.Predict(c.Request.Context(), profile)})
}

// Recommend returns targets and recommendations for a JSON profile
func (h *RecommendHandler) Recommend(c *gin.Context) {
	h.recommend(c, readJSONPayload(c))
}

// GetRecommendations is Recommend with the profile in the query string
func (h *RecommendHandler) GetRecommendations(c *gin.Context) {
	h.recommend(c, queryPayload(c))
}

func (h *RecommendHandler) recommend(c *gin.Context, payload map[string]interface{}) {
	profile, err := validation.ParseUserPayload(payload)
	if err != nil {
		respondInvalid(c, err)
		return
	}

	c.JSON(http.StatusOK, h.recommendService.Recommend(c.Request.Context(), profile))
}

// respondInvalid answers 400 for validation errors and 500 for anything else
func respondInvalid(c *gin.Context, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
		return
	}
	c.Status(http.StatusInternalServerError)
	_ = c.Error(err)
}
