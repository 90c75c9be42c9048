package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/smartplate/internal/client"
)

// MockAPIClient is a mock of the API client used by the page handlers
type MockAPIClient struct {
	mock.Mock
}

func (m *MockAPIClient) Recommend(ctx context.Context, fields map[string]string) (*client.RecommendResult, error) {
	args := m.Called(ctx, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.RecommendResult), args.Error(1)
}

func (m *MockAPIClient) SubmitFeedback(ctx context.Context, fields map[string]string) (*client.FeedbackResult, error) {
	args := m.Called(ctx, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.FeedbackResult), args.Error(1)
}
