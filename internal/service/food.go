package service

import (
	"context"

	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/pageza/smartplate/internal/models"
	"github.com/pageza/smartplate/internal/pipeline"
)

const foodBatchSize = 200

// FoodService stores the clustered dataset
type FoodService struct {
	db *gorm.DB
}

// Ensure FoodService implements IFoodService
var _ IFoodService = (*FoodService)(nil)

// NewFoodService creates a new FoodService instance
func NewFoodService(db *gorm.DB) *FoodService {
	return &FoodService{db: db}
}

// ReplaceFoods swaps the stored catalogue for foods in one transaction,
// keeping dataset ids as primary keys so feedback food_ids line up.
func (s *FoodService) ReplaceFoods(ctx context.Context, foods []pipeline.LabeledFood) (int, error) {
	items := make([]models.FoodItem, len(foods))
	for i, f := range foods {
		items[i] = models.FoodItem{
			ID:           uint(f.ID),
			Name:         f.Name,
			Category:     f.Category,
			Calories:     f.Calories,
			ProteinG:     f.ProteinG,
			CarbsG:       f.CarbsG,
			FatG:         f.FatG,
			FiberG:       f.FiberG,
			SodiumMg:     f.SodiumMg,
			ClusterLabel: f.Cluster,
			Features:     pgvector.NewVector(toFloat32(f.Scaled)),
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.FoodItem{}).Error; err != nil {
			return errors.Wrap(err, "clear food items")
		}
		if len(items) == 0 {
			return nil
		}
		return errors.Wrap(tx.CreateInBatches(items, foodBatchSize).Error, "insert food items")
	})
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// CountByCluster returns how many stored foods fall in each cluster
func (s *FoodService) CountByCluster(ctx context.Context) (map[int]int64, error) {
	var rows []struct {
		ClusterLabel int
		Count        int64
	}
	err := s.db.WithContext(ctx).Model(&models.FoodItem{}).
		Select("cluster_label, count(*) as count").
		Group("cluster_label").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "count foods by cluster")
	}

	counts := make(map[int]int64, len(rows))
	for _, r := range rows {
		counts[r.ClusterLabel] = r.Count
	}
	return counts, nil
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
