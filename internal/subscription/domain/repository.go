package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Upsert(ctx context.Context, db *gorm.DB, subscription *Subscription) error
	FindByKey(ctx context.Context, db *gorm.DB, subscriptionID string, startDate time.Time) (*Subscription, error)
	FindLatestByID(ctx context.Context, db *gorm.DB, subscriptionID string) (*Subscription, error)
	FindBySKU(ctx context.Context, db *gorm.DB, sku string, offset, limit int) ([]Subscription, error)
	FindOverlappingForOrg(ctx context.Context, db *gorm.DB, orgID string, begin, end time.Time) ([]Subscription, error)
	ReplaceMeasurements(ctx context.Context, db *gorm.DB, subscriptionID string, startDate time.Time, rows []Measurement) error
	SetUnlimited(ctx context.Context, db *gorm.DB, subscriptionID string, startDate time.Time, unlimited bool) error
	LoadMeasurements(ctx context.Context, db *gorm.DB, subscriptions []Subscription) ([]Subscription, error)
	Terminate(ctx context.Context, db *gorm.DB, subscriptionID string, startDate, endDate time.Time) error

	UpsertContract(ctx context.Context, db *gorm.DB, contract *Contract) error
	FindContractByProviderIDs(ctx context.Context, db *gorm.DB, customerAccountID, resourceID string) (*Contract, error)
}
