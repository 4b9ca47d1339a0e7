package domain

import (
	"testing"

	subscriptiondomain "github.com/capwatch/capwatch/internal/subscription/domain"
	"github.com/stretchr/testify/assert"
)

func strptr(s string) *string { return &s }

func TestMatchThreeWaySemantics(t *testing.T) {
	premium := strptr("Premium")
	empty := strptr("")

	cases := []struct {
		name  string
		match Match
		value *string
		want  bool
	}{
		{"any accepts set", MatchAny(), premium, true},
		{"any accepts unset", MatchAny(), nil, true},
		{"empty accepts unset", MatchEmpty(), nil, true},
		{"empty accepts blank", MatchEmpty(), empty, true},
		{"empty rejects set", MatchEmpty(), premium, false},
		{"exact accepts equal", MatchExact("Premium"), premium, true},
		{"exact rejects other", MatchExact("Standard"), premium, false},
		{"exact rejects unset", MatchExact("Premium"), nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.match.Accepts(tc.value))
		})
	}
}

func TestMatchZeroValueIsAny(t *testing.T) {
	var m Match
	assert.True(t, m.IsAny())
	assert.True(t, m.Accepts(nil))
	assert.True(t, m.Accepts(strptr("anything")))
}

func TestFilterCountsCategory(t *testing.T) {
	physical := subscriptiondomain.MeasurementPhysical

	unfiltered := Filter{}
	assert.True(t, unfiltered.CountsCategory(subscriptiondomain.MeasurementPhysical))
	assert.True(t, unfiltered.CountsCategory(subscriptiondomain.MeasurementHypervisor))

	byCategory := Filter{Category: &physical}
	assert.True(t, byCategory.CountsCategory(subscriptiondomain.MeasurementPhysical))
	assert.False(t, byCategory.CountsCategory(subscriptiondomain.MeasurementHypervisor))

	byHardware := Filter{HardwareTypes: []subscriptiondomain.MeasurementType{subscriptiondomain.MeasurementHypervisor}}
	assert.False(t, byHardware.CountsCategory(subscriptiondomain.MeasurementPhysical))
	assert.True(t, byHardware.CountsCategory(subscriptiondomain.MeasurementHypervisor))
}

func TestFilterCountsMetric(t *testing.T) {
	all := Filter{}
	assert.True(t, all.CountsMetric(subscriptiondomain.MetricCores))
	assert.True(t, all.CountsMetric(subscriptiondomain.MetricSockets))

	cores := Filter{MetricID: subscriptiondomain.MetricCores}
	assert.True(t, cores.CountsMetric(subscriptiondomain.MetricCores))
	assert.False(t, cores.CountsMetric(subscriptiondomain.MetricSockets))
}
