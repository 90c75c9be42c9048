package main

import (
	"flag"

	"github.com/sirupsen/logrus"

	"github.com/pageza/smartplate/config"
	"github.com/pageza/smartplate/internal/database"
	"github.com/pageza/smartplate/internal/logger"
)

func main() {
	// Parse command line flags
	rollback := flag.Bool("rollback", false, "Drop every SmartPlate table")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	log := logger.New(cfg.LogLevel, config.IsProduction())

	db, err := database.New(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}

	if *rollback {
		if err := database.DropTables(db); err != nil {
			log.WithError(err).Fatal("Failed to roll back schema")
		}
		log.Info("Successfully dropped all tables")
		return
	}

	if err := database.RunMigrations(db); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}
	log.Info("All migrations applied successfully")
}
