package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/smartplate/internal/models"
	"github.com/pageza/smartplate/internal/types"
)

// UserService persists registered profiles
type UserService struct {
	db *gorm.DB
}

// Ensure UserService implements IUserService
var _ IUserService = (*UserService)(nil)

// NewUserService creates a new UserService instance
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Register stores a validated profile
func (s *UserService) Register(ctx context.Context, profile *types.UserProfile) (*models.User, error) {
	user := &models.User{
		Name:          profile.Name,
		Age:           profile.Age,
		Gender:        profile.Gender,
		HeightCm:      profile.HeightCm,
		WeightKg:      profile.WeightKg,
		ActivityLevel: profile.ActivityLevel,
		Allergies:     profile.Allergies,
		Goal:          profile.Goal,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}
