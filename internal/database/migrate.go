package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/smartplate/internal/models"
)

// RunMigrations creates or updates the schema for all models
func RunMigrations(db *gorm.DB) error {
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
			return fmt.Errorf("failed to enable pgvector: %w", err)
		}
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.FoodItem{},
		&models.Feedback{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// DropTables removes the schema, dependents first
func DropTables(db *gorm.DB) error {
	if err := db.Migrator().DropTable(
		&models.Feedback{},
		&models.FoodItem{},
		&models.User{},
	); err != nil {
		return fmt.Errorf("failed to drop schema: %w", err)
	}
	return nil
}
