package main

import (
	"context"
	"flag"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/pageza/smartplate/config"
	"github.com/pageza/smartplate/internal/database"
	"github.com/pageza/smartplate/internal/logger"
	"github.com/pageza/smartplate/internal/pipeline"
	"github.com/pageza/smartplate/internal/service"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "Fit the clustering and report cluster sizes without writing to the database")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	log := logger.New(cfg.LogLevel, config.IsProduction())
	ctx := context.Background()

	p, err := pipeline.Load(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to build recommendation pipeline")
	}

	if *dryRun {
		sizes := map[int]int64{}
		for _, f := range p.Foods() {
			sizes[f.Cluster]++
		}
		report(log, sizes)
		return
	}

	db, err := database.New(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	if err := database.RunMigrations(db); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}

	foods := service.NewFoodService(db)
	n, err := foods.ReplaceFoods(ctx, p.Foods())
	if err != nil {
		log.WithError(err).Fatal("Failed to seed foods")
	}
	log.WithField("foods", n).Info("Seeded food items")

	sizes, err := foods.CountByCluster(ctx)
	if err != nil {
		log.WithError(err).Fatal("Failed to count foods per cluster")
	}
	report(log, sizes)
}

func report(log logrus.FieldLogger, sizes map[int]int64) {
	clusters := make([]int, 0, len(sizes))
	for c := range sizes {
		clusters = append(clusters, c)
	}
	sort.Ints(clusters)
	for _, c := range clusters {
		log.WithFields(logrus.Fields{"cluster": c, "foods": sizes[c]}).Info("cluster size")
	}
}
