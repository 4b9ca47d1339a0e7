package domain

import (
	"context"
	"errors"
)

type Service interface {
	Sync(ctx context.Context, req SyncRequest) (*Offering, error)
	GetBySKU(ctx context.Context, sku string) (*Offering, error)
	List(ctx context.Context) ([]Offering, error)
}

// SyncRequest is the catalog sync payload for one SKU. Nil capacity fields
// mean the metric does not apply to the SKU.
type SyncRequest struct {
	SKU               string   `json:"sku"`
	ProductName       string   `json:"product_name"`
	ServiceLevel      *string  `json:"service_level"`
	Usage             *string  `json:"usage"`
	Role              *string  `json:"role"`
	PhysicalCores     *int64   `json:"physical_cores"`
	PhysicalSockets   *int64   `json:"physical_sockets"`
	HypervisorCores   *int64   `json:"hypervisor_cores"`
	HypervisorSockets *int64   `json:"hypervisor_sockets"`
	HasUnlimitedUsage bool     `json:"has_unlimited_usage"`
	ProductIDs        []string `json:"product_ids"`
}

var (
	ErrInvalidSKU = errors.New("invalid_sku")
	ErrNotFound   = errors.New("not_found")
)
