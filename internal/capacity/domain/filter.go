package domain

import (
	subscriptiondomain "github.com/capwatch/capwatch/internal/subscription/domain"
)

type matchKind int

const (
	matchAny matchKind = iota
	matchEmpty
	matchExact
)

// Match is a three-way filter option for optional subscription attributes.
// The zero value matches any value including unset; MatchEmpty matches only
// records with no value set; MatchExact matches one concrete value. The
// distinction between "filter omitted" and "filter for unset" is
// load-bearing for billing attribution queries.
type Match struct {
	kind  matchKind
	value string
}

func MatchAny() Match { return Match{kind: matchAny} }

func MatchEmpty() Match { return Match{kind: matchEmpty} }

func MatchExact(value string) Match { return Match{kind: matchExact, value: value} }

// Accepts tests an optional attribute value against the filter option.
func (m Match) Accepts(value *string) bool {
	switch m.kind {
	case matchEmpty:
		return value == nil || *value == ""
	case matchExact:
		return value != nil && *value == m.value
	default:
		return true
	}
}

// IsAny reports whether the option places no constraint.
func (m Match) IsAny() bool { return m.kind == matchAny }

// Filter selects the subscriptions contributing to one aggregation. OrgID
// and ProductID are required; everything else narrows the result.
type Filter struct {
	OrgID     string
	ProductID string

	// MetricID empty means every metric aggregates separately.
	MetricID string

	// Category nil means all categories (PHYSICAL plus HYPERVISOR).
	Category *subscriptiondomain.MeasurementType

	// HardwareTypes, when non-empty, restrict which measurement categories
	// count toward the sum without excluding the subscription itself.
	HardwareTypes []subscriptiondomain.MeasurementType

	ServiceLevel     Match
	Usage            Match
	BillingProvider  Match
	BillingAccountID Match
}

// CountsCategory reports whether a measurement of the given category
// contributes to the numeric sum under this filter. A category filter zeroes
// out the other side rather than dropping the subscription, so totals remain
// comparable across buckets.
func (f Filter) CountsCategory(category subscriptiondomain.MeasurementType) bool {
	if f.Category != nil && *f.Category != category {
		return false
	}
	if len(f.HardwareTypes) == 0 {
		return true
	}
	for _, t := range f.HardwareTypes {
		if t == category {
			return true
		}
	}
	return false
}

// CountsMetric reports whether a measurement of the given metric id
// contributes to the numeric sum under this filter.
func (f Filter) CountsMetric(metricID string) bool {
	return f.MetricID == "" || f.MetricID == metricID
}
