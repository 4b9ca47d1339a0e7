package server

import (
	"errors"
	"strconv"
	"strings"
	"time"

	capacitydomain "github.com/capwatch/capwatch/internal/capacity/domain"
	subscriptiondomain "github.com/capwatch/capwatch/internal/subscription/domain"
	"github.com/capwatch/capwatch/pkg/pagination"
)

const dateOnlyLayout = "2006-01-02"

// The literal "EMPTY" query value selects records with no value set, which
// is distinct from omitting the parameter entirely.
const emptySentinel = "EMPTY"

func parseMatchParam(value string) capacitydomain.Match {
	trimmed := strings.TrimSpace(value)
	switch {
	case trimmed == "":
		return capacitydomain.MatchAny()
	case strings.EqualFold(trimmed, emptySentinel):
		return capacitydomain.MatchEmpty()
	default:
		return capacitydomain.MatchExact(trimmed)
	}
}

func parseCategoryParam(value string) (*subscriptiondomain.MeasurementType, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(value))
	if trimmed == "" {
		return nil, nil
	}
	switch subscriptiondomain.MeasurementType(trimmed) {
	case subscriptiondomain.MeasurementPhysical, subscriptiondomain.MeasurementHypervisor:
		category := subscriptiondomain.MeasurementType(trimmed)
		return &category, nil
	default:
		return nil, errors.New("invalid_category")
	}
}

func parseHardwareTypesParam(value string) ([]subscriptiondomain.MeasurementType, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}

	parts := strings.Split(trimmed, ",")
	types := make([]subscriptiondomain.MeasurementType, 0, len(parts))
	for _, part := range parts {
		category, err := parseCategoryParam(part)
		if err != nil {
			return nil, err
		}
		if category != nil {
			types = append(types, *category)
		}
	}
	return types, nil
}

func parseRequiredTime(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, errors.New("missing_time")
	}
	if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return parsed.UTC(), nil
	}
	if parsed, err := time.Parse(dateOnlyLayout, trimmed); err == nil {
		return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, errors.New("invalid_time")
}

// parseWindowParams resolves offset/limit either from an opaque page token
// or from explicit integer parameters.
func parseWindowParams(token, offsetRaw, limitRaw string) (offset, limit int, err error) {
	if trimmed := strings.TrimSpace(token); trimmed != "" {
		cursor, err := pagination.DecodeCursor(trimmed)
		if err != nil {
			return 0, 0, errors.New("invalid_page_token")
		}
		return cursor.Offset, cursor.Limit, nil
	}

	if trimmed := strings.TrimSpace(offsetRaw); trimmed != "" {
		offset, err = strconv.Atoi(trimmed)
		if err != nil || offset < 0 {
			return 0, 0, errors.New("invalid_offset")
		}
	}
	if trimmed := strings.TrimSpace(limitRaw); trimmed != "" {
		limit, err = strconv.Atoi(trimmed)
		if err != nil || limit < 0 {
			return 0, 0, errors.New("invalid_limit")
		}
	}
	return offset, limit, nil
}
