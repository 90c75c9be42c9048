package models

import "github.com/pgvector/pgvector-go"

// FoodItem is a dataset row persisted with its cluster assignment
type FoodItem struct {
	ID           uint            `gorm:"primarykey" json:"id"`
	Name         string          `gorm:"size:200;not null" json:"name"`
	Category     string          `gorm:"size:100;not null" json:"category"`
	Calories     float64         `gorm:"not null" json:"calories"`
	ProteinG     float64         `gorm:"not null" json:"protein_g"`
	CarbsG       float64         `gorm:"not null" json:"carbs_g"`
	FatG         float64         `gorm:"not null" json:"fat_g"`
	FiberG       float64         `gorm:"default:0" json:"fiber_g"`
	SodiumMg     float64         `gorm:"default:0" json:"sodium_mg"`
	ClusterLabel int             `gorm:"index" json:"cluster_label"`
	Features     pgvector.Vector `gorm:"type:vector(6)" json:"-"`
}
