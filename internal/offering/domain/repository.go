package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Upsert(ctx context.Context, db *gorm.DB, offering *Offering) error
	FindBySKU(ctx context.Context, db *gorm.DB, sku string) (*Offering, error)
	FindBySKUs(ctx context.Context, db *gorm.DB, skus []string) ([]Offering, error)
	List(ctx context.Context, db *gorm.DB) ([]Offering, error)
}
