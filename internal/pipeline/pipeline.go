// Package pipeline computes daily targets and content-based food
// recommendations: the dataset is standard-scaled, clustered with k-means,
// and ranked by cosine similarity to the target nutrient vector.
package pipeline

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pageza/smartplate/config"
	"github.com/pageza/smartplate/internal/types"
)

// Options tunes model fitting and ranking
type Options struct {
	Clusters   int
	Seed       int64
	Restarts   int
	MaxIter    int
	PerCluster int
	Limit      int
	// ModelDir holds the persisted scaler and clustering. Empty disables persistence.
	ModelDir string
}

// OptionsFromConfig maps the pipeline tuning file onto Options
func OptionsFromConfig(pc *config.PipelineConfig, modelDir string) Options {
	return Options{
		Clusters:   pc.Clustering.Clusters,
		Seed:       pc.Clustering.Seed,
		Restarts:   pc.Clustering.Restarts,
		MaxIter:    pc.Clustering.MaxIter,
		PerCluster: pc.Recommend.PerCluster,
		Limit:      pc.Recommend.Limit,
		ModelDir:   modelDir,
	}
}

// LabeledFood is a dataset row with its cluster and scaled feature vector
type LabeledFood struct {
	Food
	Cluster int
	Scaled  []float64
}

// Pipeline is immutable once built and safe for concurrent use
type Pipeline struct {
	opts   Options
	scaler *StandardScaler
	foods  []LabeledFood
}

// New fits (or loads) the scaler and clustering for foods
func New(foods []Food, opts Options, log logrus.FieldLogger) (*Pipeline, error) {
	if len(foods) == 0 {
		return nil, errors.New("pipeline needs at least one food")
	}
	if opts.PerCluster <= 0 {
		opts.PerCluster = 3
	}
	if opts.Limit <= 0 {
		opts.Limit = 12
	}

	features := make([][]float64, len(foods))
	for i, f := range foods {
		features[i] = f.Features()
	}

	var scaler *StandardScaler
	var km *KMeans
	if opts.ModelDir != "" {
		s, k, ok, err := loadModel(opts.ModelDir)
		if err != nil {
			return nil, err
		}
		if ok && len(s.Mean) == len(FeatureColumns) && len(k.Centroids) > 0 {
			log.WithField("dir", opts.ModelDir).Info("loaded persisted clustering model")
			scaler, km = s, k
		}
	}

	if scaler == nil {
		scaler = FitScaler(features)
		km = FitKMeans(scaler.Transform(features), KMeansOptions{
			Clusters: opts.Clusters,
			Seed:     opts.Seed,
			Restarts: opts.Restarts,
			MaxIter:  opts.MaxIter,
		})
		log.WithFields(logrus.Fields{
			"foods":    len(foods),
			"clusters": len(km.Centroids),
			"inertia":  km.Inertia,
		}).Info("fitted clustering model")

		if opts.ModelDir != "" {
			if err := saveModel(opts.ModelDir, scaler, km); err != nil {
				return nil, err
			}
		}
	}

	labeled := make([]LabeledFood, len(foods))
	for i, f := range foods {
		scaled := scaler.TransformRow(features[i])
		labeled[i] = LabeledFood{Food: f, Cluster: km.Predict(scaled), Scaled: scaled}
	}

	return &Pipeline{opts: opts, scaler: scaler, foods: labeled}, nil
}

// Load builds the pipeline cfg describes: the tuning file, the dataset
// (from S3 when a bucket is set) and the model directory.
func Load(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*Pipeline, error) {
	pc, err := config.LoadPipelineConfig(cfg.PipelineConfig)
	if err != nil {
		return nil, err
	}

	src, err := SourceFromConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	foods, err := LoadDataset(ctx, src)
	if err != nil {
		return nil, err
	}
	log.WithField("foods", len(foods)).Info("loaded nutrition dataset")

	return New(foods, OptionsFromConfig(pc, cfg.ModelDir), log)
}

// Foods returns the labeled dataset
func (p *Pipeline) Foods() []LabeledFood {
	return p.foods
}

// PredictDailyTargets estimates the targets for a profile
func (p *Pipeline) PredictDailyTargets(profile *types.UserProfile) types.NutrientTargets {
	return PredictDailyTargets(profile)
}
