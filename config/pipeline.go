package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PipelineConfig corresponds to configs/pipeline.yaml
type PipelineConfig struct {
	Clustering struct {
		Clusters int   `yaml:"clusters"`
		Seed     int64 `yaml:"seed"`
		Restarts int   `yaml:"restarts"`
		MaxIter  int   `yaml:"max_iter"`
	} `yaml:"clustering"`
	Recommend struct {
		PerCluster int `yaml:"per_cluster"`
		Limit      int `yaml:"limit"`
	} `yaml:"recommend"`
}

// DefaultPipelineConfig returns the tuning used when no file is present
func DefaultPipelineConfig() *PipelineConfig {
	pc := &PipelineConfig{}
	pc.Clustering.Clusters = 8
	pc.Clustering.Seed = 42
	pc.Clustering.Restarts = 10
	pc.Clustering.MaxIter = 300
	pc.Recommend.PerCluster = 3
	pc.Recommend.Limit = 12
	return pc
}

// LoadPipelineConfig reads the tuning file at path. A missing file yields the
// defaults; zero values in the file keep their defaults too.
func LoadPipelineConfig(path string) (*PipelineConfig, error) {
	pc := DefaultPipelineConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return pc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read pipeline config %s: %w", path, err)
	}

	var loaded PipelineConfig
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse pipeline config %s: %w", path, err)
	}

	if loaded.Clustering.Clusters > 0 {
		pc.Clustering.Clusters = loaded.Clustering.Clusters
	}
	if loaded.Clustering.Seed != 0 {
		pc.Clustering.Seed = loaded.Clustering.Seed
	}
	if loaded.Clustering.Restarts > 0 {
		pc.Clustering.Restarts = loaded.Clustering.Restarts
	}
	if loaded.Clustering.MaxIter > 0 {
		pc.Clustering.MaxIter = loaded.Clustering.MaxIter
	}
	if loaded.Recommend.PerCluster > 0 {
		pc.Recommend.PerCluster = loaded.Recommend.PerCluster
	}
	if loaded.Recommend.Limit > 0 {
		pc.Recommend.Limit = loaded.Recommend.Limit
	}

	return pc, nil
}
