// Package domain holds the capacity aggregation types: filters, usage
// results, snapshots and paged reports.
package domain

import (
	"time"

	"github.com/capwatch/capwatch/internal/capacity/granularity"
	"github.com/capwatch/capwatch/pkg/pagination"
)

// Usage is an aggregate over the subscriptions active at a single instant.
// HasData is false only when no subscription matched at all; matched
// subscriptions summing to zero report HasData true with a zero value.
type Usage struct {
	Value               float64 `json:"value"`
	HasData             bool    `json:"has_data"`
	HasInfiniteQuantity bool    `json:"has_infinite_quantity"`
}

// Add folds another usage result into u.
func (u *Usage) Add(other Usage) {
	u.Value += other.Value
	u.HasData = u.HasData || other.HasData
	u.HasInfiniteQuantity = u.HasInfiniteQuantity || other.HasInfiniteQuantity
}

// Snapshot is the aggregate at one bucket boundary.
type Snapshot struct {
	Date                time.Time `json:"date"`
	Value               float64   `json:"value"`
	HasData             bool      `json:"has_data"`
	HasInfiniteQuantity bool      `json:"has_infinite_quantity"`
}

// ReportMeta describes the report shape. Measurements lists the metric ids
// that contributed when the query did not pin one.
type ReportMeta struct {
	Product      string                  `json:"product"`
	MetricID     string                  `json:"metric_id,omitempty"`
	Granularity  granularity.Granularity `json:"granularity"`
	Count        int                     `json:"count"`
	Measurements []string                `json:"measurements,omitempty"`
}

// Report is one page of bucketed capacity snapshots.
type Report struct {
	Data  []Snapshot       `json:"data"`
	Meta  ReportMeta       `json:"meta"`
	Links pagination.Links `json:"links"`
}

// ReportRequest drives report generation. Offset/limit page the bucket
// sequence; a zero limit falls back to the configured default.
type ReportRequest struct {
	Filter      Filter
	Begin       time.Time
	End         time.Time
	Granularity granularity.Granularity
	Offset      int
	Limit       int
}
