package config

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds S3 client and the location of the nutrition dataset
type S3Config struct {
	Client     *s3.Client
	BucketName string
	Key        string
}

// NewS3Config initializes the S3 client for the dataset bucket.
// It returns nil when no bucket is configured.
func NewS3Config(ctx context.Context, cfg *Config) (*S3Config, error) {
	if cfg.DatasetS3Bucket == "" {
		return nil, nil
	}

	// Load AWS config from environment or shared config
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return nil, err
	}

	return &S3Config{
		Client:     s3.NewFromConfig(awsCfg),
		BucketName: cfg.DatasetS3Bucket,
		Key:        cfg.DatasetS3Key,
	}, nil
}
