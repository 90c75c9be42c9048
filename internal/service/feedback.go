package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/smartplate/internal/models"
	"github.com/pageza/smartplate/internal/types"
)

type FeedbackService struct {
	db *gorm.DB
}

func NewFeedbackService(db *gorm.DB) IFeedbackService {
	return &FeedbackService{db: db}
}

// CreateFeedback records a rating. Users and foods are not checked for
// existence; feedback may reference dataset ids that were never persisted.
func (s *FeedbackService) CreateFeedback(ctx context.Context, req *types.CreateFeedbackRequest) (*models.Feedback, error) {
	feedback := &models.Feedback{
		UserID:  req.UserID,
		FoodID:  req.FoodID,
		Rating:  req.Rating,
		Comment: req.Comment,
	}

	if err := s.db.WithContext(ctx).Create(feedback).Error; err != nil {
		return nil, fmt.Errorf("failed to create feedback: %w", err)
	}
	return feedback, nil
}
