package service

import (
	"context"
	"sort"
	"strings"
	"time"

	capacitydomain "github.com/capwatch/capwatch/internal/capacity/domain"
	"github.com/capwatch/capwatch/internal/capacity/granularity"
	"github.com/capwatch/capwatch/internal/config"
	obsmetrics "github.com/capwatch/capwatch/internal/observability/metrics"
	offeringdomain "github.com/capwatch/capwatch/internal/offering/domain"
	subscriptiondomain "github.com/capwatch/capwatch/internal/subscription/domain"
	"github.com/capwatch/capwatch/pkg/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db               *gorm.DB
	log              *zap.Logger
	subscriptionRepo subscriptiondomain.Repository
	offeringRepo     offeringdomain.Repository
	metrics          *obsmetrics.Metrics

	defaultLimit int
	maxLimit     int
}

type ServiceParam struct {
	fx.In

	Cfg              config.Config
	DB               *gorm.DB
	Log              *zap.Logger
	SubscriptionRepo subscriptiondomain.Repository
	OfferingRepo     offeringdomain.Repository
	Metrics          *obsmetrics.Metrics `optional:"true"`
}

func NewService(p ServiceParam) capacitydomain.Service {
	defaultLimit := p.Cfg.ReportDefaultLimit
	if defaultLimit <= 0 {
		defaultLimit = 50
	}
	maxLimit := p.Cfg.ReportMaxLimit
	if maxLimit < defaultLimit {
		maxLimit = defaultLimit
	}
	return &Service{
		db:               p.DB,
		log:              p.Log.Named("capacity.service"),
		subscriptionRepo: p.SubscriptionRepo,
		offeringRepo:     p.OfferingRepo,
		metrics:          p.Metrics,
		defaultLimit:     defaultLimit,
		maxLimit:         maxLimit,
	}
}

// candidates loads every org subscription overlapping [begin, end] together
// with the offerings they reference, keyed by SKU. Aggregation afterwards is
// a pure computation over these value records.
func (s *Service) candidates(ctx context.Context, orgID string, begin, end time.Time) ([]subscriptiondomain.Subscription, map[string]*offeringdomain.Offering, error) {
	subs, err := s.subscriptionRepo.FindOverlappingForOrg(ctx, s.db, orgID, begin, end)
	if err != nil {
		return nil, nil, err
	}

	seen := make(map[string]struct{}, len(subs))
	skus := make([]string, 0, len(subs))
	for _, sub := range subs {
		if _, ok := seen[sub.SKU]; ok {
			continue
		}
		seen[sub.SKU] = struct{}{}
		skus = append(skus, sub.SKU)
	}

	offerings, err := s.offeringRepo.FindBySKUs(ctx, s.db, skus)
	if err != nil {
		return nil, nil, err
	}

	bySKU := make(map[string]*offeringdomain.Offering, len(offerings))
	for i := range offerings {
		bySKU[offerings[i].SKU] = &offerings[i]
	}
	return subs, bySKU, nil
}

// matches applies the filter predicate to one subscription. The effective
// service level and usage fall back to the offering classification when the
// subscription does not carry its own.
func matches(filter capacitydomain.Filter, sub *subscriptiondomain.Subscription, offering *offeringdomain.Offering) bool {
	if offering == nil || !offering.SupportsProduct(filter.ProductID) {
		return false
	}

	serviceLevel := sub.ServiceLevel
	if serviceLevel == nil {
		serviceLevel = offering.ServiceLevel
	}
	usage := sub.Usage
	if usage == nil {
		usage = offering.Usage
	}

	return filter.ServiceLevel.Accepts(serviceLevel) &&
		filter.Usage.Accepts(usage) &&
		filter.BillingProvider.Accepts(sub.BillingProvider) &&
		filter.BillingAccountID.Accepts(sub.BillingAccountID)
}

// instantTotals sums measurement values per metric for the subscriptions
// active at the instant. matched reports whether any subscription passed the
// filter at all, infinite whether an unlimited one did.
func instantTotals(
	filter capacitydomain.Filter,
	instant time.Time,
	subs []subscriptiondomain.Subscription,
	offerings map[string]*offeringdomain.Offering,
) (totals map[string]float64, matched, infinite bool) {
	totals = make(map[string]float64)

	for i := range subs {
		sub := &subs[i]
		if !sub.ActiveAt(instant) {
			continue
		}
		if !matches(filter, sub, offerings[sub.SKU]) {
			continue
		}

		matched = true
		if sub.HasUnlimitedUsage {
			infinite = true
			continue
		}

		for _, m := range sub.Measurements {
			if !filter.CountsMetric(m.MetricID) || !filter.CountsCategory(m.MeasurementType) {
				continue
			}
			totals[m.MetricID] += m.Value
		}
	}
	return totals, matched, infinite
}

func (s *Service) Aggregate(ctx context.Context, instant time.Time, filter capacitydomain.Filter) (capacitydomain.Usage, error) {
	if err := validateFilter(filter); err != nil {
		return capacitydomain.Usage{}, err
	}

	subs, offerings, err := s.candidates(ctx, filter.OrgID, instant, instant)
	if err != nil {
		return capacitydomain.Usage{}, err
	}

	return aggregateInstant(filter, instant, subs, offerings), nil
}

func aggregateInstant(
	filter capacitydomain.Filter,
	instant time.Time,
	subs []subscriptiondomain.Subscription,
	offerings map[string]*offeringdomain.Offering,
) capacitydomain.Usage {
	totals, matched, infinite := instantTotals(filter, instant, subs, offerings)

	var value float64
	for _, v := range totals {
		value += v
	}
	return capacitydomain.Usage{
		Value:               value,
		HasData:             matched,
		HasInfiniteQuantity: infinite,
	}
}

// AggregateByMetric aggregates each metric separately. When an unlimited
// subscription matches, every standard metric is reported with the infinite
// flag set since unlimited capacity is not attributable to one metric.
func (s *Service) AggregateByMetric(ctx context.Context, instant time.Time, filter capacitydomain.Filter) (map[string]capacitydomain.Usage, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	subs, offerings, err := s.candidates(ctx, filter.OrgID, instant, instant)
	if err != nil {
		return nil, err
	}

	totals, matched, infinite := instantTotals(filter, instant, subs, offerings)

	result := make(map[string]capacitydomain.Usage, len(totals))
	for metricID, value := range totals {
		result[metricID] = capacitydomain.Usage{
			Value:               value,
			HasData:             matched,
			HasInfiniteQuantity: infinite,
		}
	}
	if infinite {
		for _, metricID := range []string{subscriptiondomain.MetricCores, subscriptiondomain.MetricSockets} {
			if _, ok := result[metricID]; !ok {
				result[metricID] = capacitydomain.Usage{HasData: matched, HasInfiniteQuantity: true}
			}
		}
	}
	return result, nil
}

// BuildReport generates the aligned bucket sequence, aggregates each bucket
// and slices the result by offset/limit. Identical arguments over unchanged
// data yield bit-identical reports.
func (s *Service) BuildReport(ctx context.Context, req capacitydomain.ReportRequest) (*capacitydomain.Report, error) {
	started := time.Now()

	if err := validateFilter(req.Filter); err != nil {
		return nil, err
	}
	if _, err := granularity.Parse(string(req.Granularity)); err != nil {
		return nil, err
	}

	buckets, err := granularity.Buckets(req.Begin, req.End, req.Granularity)
	if err != nil {
		return nil, err
	}

	subs, offerings, err := s.candidates(ctx, req.Filter.OrgID, req.Begin, req.End)
	if err != nil {
		return nil, err
	}

	snapshots := make([]capacitydomain.Snapshot, 0, len(buckets))
	contributing := make(map[string]struct{})
	for _, bucket := range buckets {
		totals, matched, infinite := instantTotals(req.Filter, bucket, subs, offerings)

		var value float64
		for metricID, v := range totals {
			value += v
			contributing[metricID] = struct{}{}
		}
		snapshots = append(snapshots, capacitydomain.Snapshot{
			Date:                bucket,
			Value:               value,
			HasData:             matched,
			HasInfiniteQuantity: infinite,
		})
	}

	offset, limit := s.clampWindow(req.Offset, req.Limit)
	page := pagination.Slice(snapshots, offset, limit)
	links := pagination.BuildLinks(offset, limit, len(snapshots))

	meta := capacitydomain.ReportMeta{
		Product:     req.Filter.ProductID,
		MetricID:    req.Filter.MetricID,
		Granularity: req.Granularity,
		Count:       len(snapshots),
	}
	if req.Filter.MetricID == "" {
		names := make([]string, 0, len(contributing))
		for metricID := range contributing {
			names = append(names, metricID)
		}
		sort.Strings(names)
		meta.Measurements = names
	}

	if s.metrics != nil {
		s.metrics.ReportRequests.WithLabelValues(string(req.Granularity)).Inc()
		s.metrics.ReportDuration.Observe(time.Since(started).Seconds())
	}

	return &capacitydomain.Report{
		Data:  page,
		Meta:  meta,
		Links: links,
	}, nil
}

func (s *Service) clampWindow(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}
	return offset, limit
}

// validateFilter rejects query shapes before touching storage: an org
// without a product/metric group is a client error.
func validateFilter(filter capacitydomain.Filter) error {
	if strings.TrimSpace(filter.OrgID) == "" || strings.TrimSpace(filter.ProductID) == "" {
		return capacitydomain.ErrInvalidQuery
	}
	return nil
}
