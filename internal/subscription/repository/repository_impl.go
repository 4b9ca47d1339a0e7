package repository

import (
	"context"
	"errors"
	"time"

	subscriptiondomain "github.com/capwatch/capwatch/internal/subscription/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() subscriptiondomain.Repository {
	return &repo{}
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, subscription *subscriptiondomain.Subscription) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "subscription_id"}, {Name: "start_date"}},
		UpdateAll: true,
	}).Create(subscription).Error
}

func (r *repo) FindByKey(ctx context.Context, db *gorm.DB, subscriptionID string, startDate time.Time) (*subscriptiondomain.Subscription, error) {
	var sub subscriptiondomain.Subscription
	err := db.WithContext(ctx).
		Where("subscription_id = ? AND start_date = ?", subscriptionID, startDate).
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (r *repo) FindLatestByID(ctx context.Context, db *gorm.DB, subscriptionID string) (*subscriptiondomain.Subscription, error) {
	var sub subscriptiondomain.Subscription
	err := db.WithContext(ctx).
		Where("subscription_id = ?", subscriptionID).
		Order("start_date DESC").
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (r *repo) FindBySKU(ctx context.Context, db *gorm.DB, sku string, offset, limit int) ([]subscriptiondomain.Subscription, error) {
	stmt := db.WithContext(ctx).
		Where("sku = ?", sku).
		Order("subscription_id ASC, start_date ASC")
	if offset > 0 {
		stmt = stmt.Offset(offset)
	}
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}

	var subs []subscriptiondomain.Subscription
	err := stmt.Find(&subs).Error
	return subs, err
}

// FindOverlappingForOrg returns org subscriptions whose validity interval
// intersects [begin, end], with measurements attached. EndDate is an
// exclusive bound, so rows ending exactly at begin are excluded.
func (r *repo) FindOverlappingForOrg(ctx context.Context, db *gorm.DB, orgID string, begin, end time.Time) ([]subscriptiondomain.Subscription, error) {
	var subs []subscriptiondomain.Subscription
	err := db.WithContext(ctx).
		Where("org_id = ? AND start_date <= ? AND end_date > ?", orgID, end, begin).
		Order("subscription_id ASC, start_date ASC").
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return r.LoadMeasurements(ctx, db, subs)
}

func (r *repo) ReplaceMeasurements(ctx context.Context, db *gorm.DB, subscriptionID string, startDate time.Time, rows []subscriptiondomain.Measurement) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("subscription_id = ? AND start_date = ?", subscriptionID, startDate).
			Delete(&subscriptiondomain.Measurement{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

func (r *repo) SetUnlimited(ctx context.Context, db *gorm.DB, subscriptionID string, startDate time.Time, unlimited bool) error {
	return db.WithContext(ctx).Model(&subscriptiondomain.Subscription{}).
		Where("subscription_id = ? AND start_date = ?", subscriptionID, startDate).
		Update("has_unlimited_usage", unlimited).Error
}

func (r *repo) LoadMeasurements(ctx context.Context, db *gorm.DB, subscriptions []subscriptiondomain.Subscription) ([]subscriptiondomain.Subscription, error) {
	if len(subscriptions) == 0 {
		return subscriptions, nil
	}

	ids := make([]string, 0, len(subscriptions))
	for _, sub := range subscriptions {
		ids = append(ids, sub.SubscriptionID)
	}

	var rows []subscriptiondomain.Measurement
	if err := db.WithContext(ctx).Where("subscription_id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}

	type key struct {
		id    string
		start time.Time
	}
	grouped := make(map[key][]subscriptiondomain.Measurement, len(subscriptions))
	for _, row := range rows {
		k := key{id: row.SubscriptionID, start: row.StartDate.UTC()}
		grouped[k] = append(grouped[k], row)
	}

	for i := range subscriptions {
		k := key{id: subscriptions[i].SubscriptionID, start: subscriptions[i].StartDate.UTC()}
		subscriptions[i].Measurements = grouped[k]
	}
	return subscriptions, nil
}

func (r *repo) Terminate(ctx context.Context, db *gorm.DB, subscriptionID string, startDate, endDate time.Time) error {
	return db.WithContext(ctx).Model(&subscriptiondomain.Subscription{}).
		Where("subscription_id = ? AND start_date = ?", subscriptionID, startDate).
		Updates(map[string]any{
			"end_date":        endDate,
			"next_event_type": subscriptiondomain.EventSubscriptionEnd,
			"next_event_date": endDate,
		}).Error
}

func (r *repo) UpsertContract(ctx context.Context, db *gorm.DB, contract *subscriptiondomain.Contract) error {
	existing, err := r.FindContractByProviderIDs(ctx, db, contract.CustomerAccountID, contract.ResourceID)
	if err != nil {
		return err
	}
	if existing != nil {
		contract.ID = existing.ID
		contract.CreatedAt = existing.CreatedAt
		return db.WithContext(ctx).Save(contract).Error
	}
	return db.WithContext(ctx).Create(contract).Error
}

func (r *repo) FindContractByProviderIDs(ctx context.Context, db *gorm.DB, customerAccountID, resourceID string) (*subscriptiondomain.Contract, error) {
	var contract subscriptiondomain.Contract
	err := db.WithContext(ctx).
		Where("customer_account_id = ? AND resource_id = ?", customerAccountID, resourceID).
		First(&contract).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &contract, nil
}
