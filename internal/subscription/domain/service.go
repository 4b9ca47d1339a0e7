package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Upsert(ctx context.Context, req UpsertRequest) (*Subscription, error)
	Get(ctx context.Context, subscriptionID string) (*Subscription, error)
	Terminate(ctx context.Context, req TerminateRequest) (*Subscription, error)
	IngestContract(ctx context.Context, req ContractRequest) (*Contract, error)
}

// UpsertRequest is the subscription sync payload from the upstream partner
// system. Measurements are never part of sync; reconciliation owns them.
type UpsertRequest struct {
	SubscriptionID   string    `json:"subscription_id"`
	OrgID            string    `json:"org_id"`
	SKU              string    `json:"sku"`
	Quantity         int64     `json:"quantity"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	BillingProvider  *string   `json:"billing_provider"`
	BillingAccountID *string   `json:"billing_account_id"`
	ServiceLevel     *string   `json:"service_level"`
	Usage            *string   `json:"usage"`
}

// TerminateRequest schedules or applies a termination by moving EndDate.
// EffectiveAt in the past terminates immediately; in the future it records a
// scheduled termination as the next lifecycle event.
type TerminateRequest struct {
	SubscriptionID string    `json:"subscription_id"`
	EffectiveAt    time.Time `json:"effective_at"`
}

// ContractRequest ingests a prepaid marketplace contract. The provider id
// components are used only to match the contract upstream.
type ContractRequest struct {
	SubscriptionID    string    `json:"subscription_id"`
	OrgID             string    `json:"org_id"`
	SKU               string    `json:"sku"`
	Quantity          int64     `json:"quantity"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	BillingProvider   *string   `json:"billing_provider"`
	BillingAccountID  *string   `json:"billing_account_id"`
	CustomerAccountID string    `json:"customer_account_id"`
	SellerAccountID   string    `json:"seller_account_id"`
	ResourceID        string    `json:"resource_id"`
	PlanID            string    `json:"plan_id"`
	ClientID          string    `json:"client_id"`
}

var (
	ErrInvalidSubscription = errors.New("invalid_subscription")
	ErrInvalidInterval     = errors.New("invalid_interval")
	ErrInvalidQuantity     = errors.New("invalid_quantity")
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrNotFound            = errors.New("subscription_not_found")
)
