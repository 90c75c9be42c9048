package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/smartplate/internal/logger"
	"github.com/pageza/smartplate/internal/models"
	"github.com/pageza/smartplate/internal/pipeline"
	"github.com/pageza/smartplate/internal/testdb"
	"github.com/pageza/smartplate/internal/types"
)

func testPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()
	rows := [][]string{
		{"id", "name", "category", "calories", "protein_g", "carbs_g", "fat_g", "fiber_g", "sodium_mg"},
		{"1", "Chicken Breast", "Poultry", "165", "31", "0", "3.6", "0", "74"},
		{"2", "Salmon", "Seafood", "208", "20", "0", "13", "0", "59"},
		{"3", "Peanut Butter", "Nuts", "588", "25", "20", "50", "6", "459"},
		{"4", "Brown Rice", "Grains", "112", "2.6", "24", "0.9", "1.8", "5"},
		{"5", "Broccoli", "Vegetables", "34", "2.8", "7", "0.4", "2.6", "33"},
		{"6", "Oats", "Grains", "389", "17", "66", "7", "11", "2"},
	}
	foods, err := pipeline.ParseRows(rows)
	require.NoError(t, err)

	p, err := pipeline.New(foods, pipeline.Options{Clusters: 2, Seed: 42, Restarts: 2, MaxIter: 50, PerCluster: 3, Limit: 4}, logger.Discard())
	require.NoError(t, err)
	return p
}

func sampleProfile() *types.UserProfile {
	return &types.UserProfile{
		Name: "Ada", Age: 30, Gender: "female", HeightCm: 165, WeightKg: 60,
		ActivityLevel: "light", Allergies: "nuts", Goal: "maintenance",
	}
}

func TestRecommendService(t *testing.T) {
	svc := NewRecommendService(testPipeline(t))
	ctx := context.Background()

	targets := svc.Predict(ctx, sampleProfile())
	require.NotNil(t, targets.Calories)

	resp := svc.Recommend(ctx, sampleProfile())
	assert.Equal(t, *targets.Calories, *resp.Targets.Calories)
	assert.NotEmpty(t, resp.Recommendations)
	assert.LessOrEqual(t, len(resp.Recommendations), 4)
	for _, r := range resp.Recommendations {
		assert.NotContains(t, strings.ToLower(r.Category), "nuts")
	}
}

func TestUserServiceRegister(t *testing.T) {
	db := testdb.SQLite(t)
	svc := NewUserService(db)

	user, err := svc.Register(context.Background(), sampleProfile())
	require.NoError(t, err)
	assert.NotZero(t, user.ID)

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, "Ada", stored.Name)
	assert.Equal(t, "nuts", stored.Allergies)
	assert.False(t, stored.CreatedAt.IsZero())
}

func TestFeedbackServiceCreate(t *testing.T) {
	db := testdb.SQLite(t)
	svc := NewFeedbackService(db)

	fb, err := svc.CreateFeedback(context.Background(), &types.CreateFeedbackRequest{
		UserID: 99, FoodID: 4, Rating: 5, Comment: "tasty",
	})
	require.NoError(t, err)
	assert.NotZero(t, fb.ID)

	var count int64
	require.NoError(t, db.Model(&models.Feedback{}).Where("user_id = ? AND food_id = ?", 99, 4).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestFoodServiceReplaceFoods(t *testing.T) {
	testReplaceFoods(t, testdb.SQLite(t))
}

func TestFoodServiceReplaceFoodsPostgres(t *testing.T) {
	testReplaceFoods(t, testdb.Postgres(t))
}

func testReplaceFoods(t *testing.T, db *gorm.DB) {
	svc := NewFoodService(db)
	ctx := context.Background()
	foods := testPipeline(t).Foods()

	n, err := svc.ReplaceFoods(ctx, foods)
	require.NoError(t, err)
	assert.Equal(t, len(foods), n)

	// a second run replaces instead of duplicating
	_, err = svc.ReplaceFoods(ctx, foods)
	require.NoError(t, err)

	var stored []models.FoodItem
	require.NoError(t, db.Order("id").Find(&stored).Error)
	require.Len(t, stored, len(foods))
	assert.Equal(t, uint(1), stored[0].ID)
	assert.Equal(t, "Chicken Breast", stored[0].Name)
	assert.Len(t, stored[0].Features.Slice(), len(pipeline.FeatureColumns))

	counts, err := svc.CountByCluster(ctx)
	require.NoError(t, err)
	var total int64
	for _, c := range counts {
		total += c
	}
	assert.Equal(t, int64(len(foods)), total)
}
