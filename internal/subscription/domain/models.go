// Package domain contains persistence models for subscriptions, contracts
// and their reconciled capacity measurements.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// MeasurementType classifies which hardware layer a measurement applies to.
// PHYSICAL and HYPERVISOR are mutually exclusive per measurement row; their
// union covers all capacity of a subscription.
type MeasurementType string

const (
	MeasurementPhysical   MeasurementType = "PHYSICAL"
	MeasurementHypervisor MeasurementType = "HYPERVISOR"
)

// Metric identifiers measured by the capacity engine.
const (
	MetricCores   = "Cores"
	MetricSockets = "Sockets"
)

// Event types recorded as a subscription's next lifecycle event.
const (
	EventSubscriptionEnd = "Subscription End"
)

// Subscription is a purchased grant of capacity for an org over a half-open
// validity interval [StartDate, EndDate). The composite key includes
// StartDate because a subscription id can be re-issued.
type Subscription struct {
	SubscriptionID    string     `json:"subscription_id" gorm:"primaryKey;column:subscription_id;type:text"`
	StartDate         time.Time  `json:"start_date" gorm:"primaryKey;column:start_date"`
	EndDate           time.Time  `json:"end_date" gorm:"not null"`
	OrgID             string     `json:"org_id" gorm:"type:text;not null;index"`
	SKU               string     `json:"sku" gorm:"type:text;not null;index"`
	Quantity          int64      `json:"quantity" gorm:"not null;default:0"`
	BillingProvider   *string    `json:"billing_provider" gorm:"type:text"`
	BillingAccountID  *string    `json:"billing_account_id" gorm:"type:text"`
	ServiceLevel      *string    `json:"service_level" gorm:"type:text"`
	Usage             *string    `json:"usage" gorm:"type:text"`
	HasUnlimitedUsage bool       `json:"has_unlimited_usage" gorm:"not null;default:false"`
	NextEventType     *string    `json:"next_event_type" gorm:"type:text"`
	NextEventDate     *time.Time `json:"next_event_date" gorm:""`
	CreatedAt         time.Time  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time  `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`

	// Measurements are loaded alongside the subscription; they are not a
	// gorm association so the store never holds live back-references.
	Measurements []Measurement `json:"measurements" gorm:"-"`
}

// TableName sets the database table name.
func (Subscription) TableName() string { return "subscriptions" }

// ActiveAt reports whether the subscription contributes capacity at the
// instant t under half-open interval semantics: StartDate <= t < EndDate.
func (s *Subscription) ActiveAt(t time.Time) bool {
	return !t.Before(s.StartDate) && t.Before(s.EndDate)
}

// Measurement is one reconciled (metric, category) -> value entry for a
// subscription. Rows are fully replaced on every reconciliation.
type Measurement struct {
	ID              snowflake.ID    `json:"id" gorm:"primaryKey"`
	SubscriptionID  string          `json:"subscription_id" gorm:"type:text;not null;uniqueIndex:ux_measurement_key,priority:1"`
	StartDate       time.Time       `json:"start_date" gorm:"not null;uniqueIndex:ux_measurement_key,priority:2"`
	MetricID        string          `json:"metric_id" gorm:"type:text;not null;uniqueIndex:ux_measurement_key,priority:3"`
	MeasurementType MeasurementType `json:"measurement_type" gorm:"type:text;not null;uniqueIndex:ux_measurement_key,priority:4"`
	Value           float64         `json:"value" gorm:"not null"`
}

// TableName sets the database table name.
func (Measurement) TableName() string { return "subscription_measurements" }

// Contract is the prepaid marketplace variant of a subscription. It shares
// the interval and measurement shape through its backing subscription row;
// the billing provider id components exist only for upstream matching and
// carry no weight in aggregation.
type Contract struct {
	ID                snowflake.ID `json:"id" gorm:"primaryKey"`
	SubscriptionID    string       `json:"subscription_id" gorm:"type:text;not null;index"`
	StartDate         time.Time    `json:"start_date" gorm:"not null"`
	OrgID             string       `json:"org_id" gorm:"type:text;not null;index"`
	SKU               string       `json:"sku" gorm:"type:text;not null"`
	CustomerAccountID string       `json:"customer_account_id" gorm:"type:text;not null"`
	SellerAccountID   string       `json:"seller_account_id" gorm:"type:text"`
	ResourceID        string       `json:"resource_id" gorm:"type:text"`
	PlanID            string       `json:"plan_id" gorm:"type:text"`
	ClientID          string       `json:"client_id" gorm:"type:text"`
	CreatedAt         time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Contract) TableName() string { return "contracts" }
