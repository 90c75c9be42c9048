package service

import (
	"context"

	"github.com/pageza/smartplate/internal/models"
	"github.com/pageza/smartplate/internal/pipeline"
	"github.com/pageza/smartplate/internal/types"
)

// IRecommendService defines the interface for target and recommendation operations
type IRecommendService interface {
	Predict(ctx context.Context, profile *types.UserProfile) types.NutrientTargets
	Recommend(ctx context.Context, profile *types.UserProfile) *types.RecommendResponse
}

// IUserService defines the interface for user registration
type IUserService interface {
	Register(ctx context.Context, profile *types.UserProfile) (*models.User, error)
}

// IFeedbackService defines the interface for feedback operations
type IFeedbackService interface {
	CreateFeedback(ctx context.Context, req *types.CreateFeedbackRequest) (*models.Feedback, error)
}

// IFoodService defines the interface for the persisted food catalogue
type IFoodService interface {
	ReplaceFoods(ctx context.Context, foods []pipeline.LabeledFood) (int, error)
	CountByCluster(ctx context.Context) (map[int]int64, error)
}
