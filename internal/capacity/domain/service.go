package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Aggregate(ctx context.Context, instant time.Time, filter Filter) (Usage, error)
	AggregateByMetric(ctx context.Context, instant time.Time, filter Filter) (map[string]Usage, error)
	BuildReport(ctx context.Context, req ReportRequest) (*Report, error)
}

var (
	ErrInvalidQuery = errors.New("invalid_query")
)
