package repository

import (
	"context"
	"errors"

	offeringdomain "github.com/capwatch/capwatch/internal/offering/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() offeringdomain.Repository {
	return &repo{}
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, offering *offeringdomain.Offering) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sku"}},
		UpdateAll: true,
	}).Create(offering).Error
}

func (r *repo) FindBySKU(ctx context.Context, db *gorm.DB, sku string) (*offeringdomain.Offering, error) {
	var offering offeringdomain.Offering
	err := db.WithContext(ctx).Where("sku = ?", sku).First(&offering).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &offering, nil
}

func (r *repo) FindBySKUs(ctx context.Context, db *gorm.DB, skus []string) ([]offeringdomain.Offering, error) {
	if len(skus) == 0 {
		return nil, nil
	}
	var offerings []offeringdomain.Offering
	err := db.WithContext(ctx).Where("sku IN ?", skus).Find(&offerings).Error
	return offerings, err
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]offeringdomain.Offering, error) {
	var offerings []offeringdomain.Offering
	err := db.WithContext(ctx).Order("sku ASC").Find(&offerings).Error
	return offerings, err
}
