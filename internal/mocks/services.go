package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/smartplate/internal/models"
	"github.com/pageza/smartplate/internal/types"
)

// MockRecommendService is a mock implementation of the IRecommendService interface
type MockRecommendService struct {
	mock.Mock
}

func (m *MockRecommendService) Predict(ctx context.Context, profile *types.UserProfile) types.NutrientTargets {
	args := m.Called(ctx, profile)
	return args.Get(0).(types.NutrientTargets)
}

func (m *MockRecommendService) Recommend(ctx context.Context, profile *types.UserProfile) *types.RecommendResponse {
	args := m.Called(ctx, profile)
	return args.Get(0).(*types.RecommendResponse)
}

// MockUserService is a mock implementation of the IUserService interface
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, profile *types.UserProfile) (*models.User, error) {
	args := m.Called(ctx, profile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockFeedbackService is a mock implementation of the IFeedbackService interface
type MockFeedbackService struct {
	mock.Mock
}

func (m *MockFeedbackService) CreateFeedback(ctx context.Context, req *types.CreateFeedbackRequest) (*models.Feedback, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Feedback), args.Error(1)
}
