package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/pageza/smartplate/internal/logger"
	"github.com/pageza/smartplate/internal/pipeline"
	"github.com/pageza/smartplate/internal/types"
)

// RecommendService answers target and recommendation requests from the
// in-memory pipeline.
type RecommendService struct {
	pipeline *pipeline.Pipeline
}

// Ensure RecommendService implements IRecommendService
var _ IRecommendService = (*RecommendService)(nil)

// NewRecommendService creates a new RecommendService instance
func NewRecommendService(p *pipeline.Pipeline) *RecommendService {
	return &RecommendService{pipeline: p}
}

// Predict returns the daily targets for a profile
func (s *RecommendService) Predict(ctx context.Context, profile *types.UserProfile) types.NutrientTargets {
	targets := s.pipeline.PredictDailyTargets(profile)
	logger.FromContext(ctx).WithFields(logrus.Fields{
		"goal":     profile.Goal,
		"activity": profile.ActivityLevel,
		"calories": types.ValueOrZero(targets.Calories),
	}).Debug("predicted daily targets")
	return targets
}

// Recommend returns the targets and the foods closest to them, skipping
// anything matching the profile's allergies.
func (s *RecommendService) Recommend(ctx context.Context, profile *types.UserProfile) *types.RecommendResponse {
	targets := s.Predict(ctx, profile)
	recs := s.pipeline.Recommend(targets, profile.Allergies)
	logger.FromContext(ctx).WithField("count", len(recs)).Debug("built recommendations")
	return &types.RecommendResponse{Targets: targets, Recommendations: recs}
}
