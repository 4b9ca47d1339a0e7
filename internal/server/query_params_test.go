package server

import (
	"testing"
	"time"

	capacitydomain "github.com/capwatch/capwatch/internal/capacity/domain"
	subscriptiondomain "github.com/capwatch/capwatch/internal/subscription/domain"
	"github.com/capwatch/capwatch/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMatchParam(t *testing.T) {
	premium := "Premium"

	omitted := parseMatchParam("")
	assert.True(t, omitted.Accepts(&premium))
	assert.True(t, omitted.Accepts(nil))

	empty := parseMatchParam("EMPTY")
	assert.True(t, empty.Accepts(nil))
	assert.False(t, empty.Accepts(&premium))

	lower := parseMatchParam("empty")
	assert.True(t, lower.Accepts(nil))
	assert.False(t, lower.Accepts(&premium))

	exact := parseMatchParam(" Premium ")
	assert.True(t, exact.Accepts(&premium))
	assert.False(t, exact.Accepts(nil))
	assert.Equal(t, capacitydomain.MatchExact("Premium"), exact)
}

func TestParseCategoryParam(t *testing.T) {
	category, err := parseCategoryParam("physical")
	require.NoError(t, err)
	require.NotNil(t, category)
	assert.Equal(t, subscriptiondomain.MeasurementPhysical, *category)

	category, err = parseCategoryParam("")
	require.NoError(t, err)
	assert.Nil(t, category)

	_, err = parseCategoryParam("VIRTUAL")
	assert.Error(t, err)
}

func TestParseHardwareTypesParam(t *testing.T) {
	types, err := parseHardwareTypesParam("PHYSICAL,hypervisor")
	require.NoError(t, err)
	assert.Equal(t, []subscriptiondomain.MeasurementType{
		subscriptiondomain.MeasurementPhysical,
		subscriptiondomain.MeasurementHypervisor,
	}, types)

	types, err = parseHardwareTypesParam("")
	require.NoError(t, err)
	assert.Nil(t, types)

	_, err = parseHardwareTypesParam("PHYSICAL,bogus")
	assert.Error(t, err)
}

func TestParseRequiredTime(t *testing.T) {
	parsed, err := parseRequiredTime("2025-03-01T12:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.March, 1, 12, 30, 0, 0, time.UTC), parsed)

	parsed, err = parseRequiredTime("2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), parsed)

	_, err = parseRequiredTime("")
	assert.Error(t, err)

	_, err = parseRequiredTime("March 1st")
	assert.Error(t, err)
}

func TestParseWindowParams(t *testing.T) {
	offset, limit, err := parseWindowParams("", "20", "10")
	require.NoError(t, err)
	assert.Equal(t, 20, offset)
	assert.Equal(t, 10, limit)

	offset, limit, err = parseWindowParams("", "", "")
	require.NoError(t, err)
	assert.Zero(t, offset)
	assert.Zero(t, limit)

	token := pagination.EncodeCursor(pagination.Cursor{Offset: 30, Limit: 15})
	offset, limit, err = parseWindowParams(token, "0", "5")
	require.NoError(t, err)
	assert.Equal(t, 30, offset)
	assert.Equal(t, 15, limit)

	_, _, err = parseWindowParams("!!!", "", "")
	assert.Error(t, err)

	_, _, err = parseWindowParams("", "-1", "")
	assert.Error(t, err)
}
