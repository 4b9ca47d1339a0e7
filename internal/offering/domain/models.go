// Package domain contains persistence models for the offering catalog.
package domain

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Offering is a catalog entry for a SKU: its base per-unit capacity and
// billing classification. Capacity fields are nullable; nil means the SKU
// does not measure that metric, which is distinct from a measured zero.
type Offering struct {
	SKU               string         `json:"sku" gorm:"primaryKey;column:sku;type:text"`
	ProductName       string         `json:"product_name" gorm:"type:text"`
	ServiceLevel      *string        `json:"service_level" gorm:"type:text"`
	Usage             *string        `json:"usage" gorm:"type:text"`
	Role              *string        `json:"role" gorm:"type:text"`
	PhysicalCores     *int64         `json:"physical_cores" gorm:""`
	PhysicalSockets   *int64         `json:"physical_sockets" gorm:""`
	HypervisorCores   *int64         `json:"hypervisor_cores" gorm:""`
	HypervisorSockets *int64         `json:"hypervisor_sockets" gorm:""`
	HasUnlimitedUsage bool           `json:"has_unlimited_usage" gorm:"not null;default:false"`
	ProductIDs        datatypes.JSON `json:"product_ids" gorm:"type:jsonb"`
	CreatedAt         time.Time      `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time      `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Offering) TableName() string { return "offerings" }

// ProductIDList decodes the product id set. A corrupt column decodes to an
// empty set rather than failing the lookup.
func (o *Offering) ProductIDList() []string {
	if len(o.ProductIDs) == 0 {
		return nil
	}
	var ids []string
	if err := json.Unmarshal(o.ProductIDs, &ids); err != nil {
		return nil
	}
	return ids
}

// SetProductIDs encodes the product id set.
func (o *Offering) SetProductIDs(ids []string) error {
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	o.ProductIDs = datatypes.JSON(raw)
	return nil
}

// SupportsProduct reports whether the offering grants capacity for the
// given product id.
func (o *Offering) SupportsProduct(productID string) bool {
	for _, id := range o.ProductIDList() {
		if id == productID {
			return true
		}
	}
	return false
}
