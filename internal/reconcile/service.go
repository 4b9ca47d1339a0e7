// Package reconcile recomputes subscription capacity measurements from the
// offering catalog. Reconciliation is deterministic (offering capacity x
// purchased quantity) and replaces prior values wholesale, so duplicate or
// out-of-order delivery of the same instruction is harmless.
package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	obsmetrics "github.com/capwatch/capwatch/internal/observability/metrics"
	offeringdomain "github.com/capwatch/capwatch/internal/offering/domain"
	subscriptiondomain "github.com/capwatch/capwatch/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db               *gorm.DB
	log              *zap.Logger
	genID            *snowflake.Node
	offeringRepo     offeringdomain.Repository
	subscriptionRepo subscriptiondomain.Repository
	metrics          *obsmetrics.Metrics
}

type ServiceParam struct {
	fx.In

	DB               *gorm.DB
	Log              *zap.Logger
	GenID            *snowflake.Node
	OfferingRepo     offeringdomain.Repository
	SubscriptionRepo subscriptiondomain.Repository
	Metrics          *obsmetrics.Metrics `optional:"true"`
}

func NewService(p ServiceParam) *Service {
	return &Service{
		db:               p.DB,
		log:              p.Log.Named("reconcile"),
		genID:            p.GenID,
		offeringRepo:     p.OfferingRepo,
		subscriptionRepo: p.SubscriptionRepo,
		metrics:          p.Metrics,
	}
}

// Reconcile recomputes measurements for up to limit subscriptions of the
// SKU starting at offset. A SKU missing from the catalog is a graceful
// no-op: callers may request reconciliation for SKUs that were removed
// upstream. The returned count is the number of subscriptions visited; a
// failure on one subscription does not abort the rest, the collected errors
// come back joined.
func (s *Service) Reconcile(ctx context.Context, sku string, offset, limit int) (int, error) {
	offering, err := s.offeringRepo.FindBySKU(ctx, s.db, sku)
	if err != nil {
		s.countRun("error")
		return 0, err
	}
	if offering == nil {
		s.log.Info("skipping reconciliation for unknown sku", zap.String("sku", sku))
		s.countRun("skipped")
		return 0, nil
	}

	subs, err := s.subscriptionRepo.FindBySKU(ctx, s.db, sku, offset, limit)
	if err != nil {
		s.countRun("error")
		return 0, err
	}

	var jobErr error
	for _, sub := range subs {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		if err := s.reconcileSubscription(ctx, offering, sub); err != nil {
			jobErr = errors.Join(jobErr, fmt.Errorf("subscription %s: %w", sub.SubscriptionID, err))
			if s.metrics != nil {
				s.metrics.ReconcileFailures.Inc()
			}
			s.log.Warn("failed to reconcile subscription",
				zap.Error(err),
				zap.String("sku", sku),
				zap.String("subscription_id", sub.SubscriptionID),
			)
		} else if s.metrics != nil {
			s.metrics.ReconciledSubscriptions.Inc()
		}
	}

	if jobErr != nil {
		s.countRun("partial")
	} else {
		s.countRun("ok")
	}
	return len(subs), jobErr
}

func (s *Service) reconcileSubscription(ctx context.Context, offering *offeringdomain.Offering, sub subscriptiondomain.Subscription) error {
	if offering.HasUnlimitedUsage {
		// Unlimited capacity never carries numeric measurements; its
		// presence is signaled via the unlimited flag alone.
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := s.subscriptionRepo.ReplaceMeasurements(ctx, tx, sub.SubscriptionID, sub.StartDate, nil); err != nil {
				return err
			}
			return s.subscriptionRepo.SetUnlimited(ctx, tx, sub.SubscriptionID, sub.StartDate, true)
		})
	}

	rows := s.computeMeasurements(offering, sub)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.subscriptionRepo.ReplaceMeasurements(ctx, tx, sub.SubscriptionID, sub.StartDate, rows); err != nil {
			return err
		}
		return s.subscriptionRepo.SetUnlimited(ctx, tx, sub.SubscriptionID, sub.StartDate, false)
	})
}

// computeMeasurements derives the full measurement set. Offering fields that
// are nil are omitted entirely: the SKU does not measure that metric, which
// is different from measuring zero.
func (s *Service) computeMeasurements(offering *offeringdomain.Offering, sub subscriptiondomain.Subscription) []subscriptiondomain.Measurement {
	type capacity struct {
		metricID string
		category subscriptiondomain.MeasurementType
		base     *int64
	}

	fields := []capacity{
		{subscriptiondomain.MetricCores, subscriptiondomain.MeasurementPhysical, offering.PhysicalCores},
		{subscriptiondomain.MetricSockets, subscriptiondomain.MeasurementPhysical, offering.PhysicalSockets},
		{subscriptiondomain.MetricCores, subscriptiondomain.MeasurementHypervisor, offering.HypervisorCores},
		{subscriptiondomain.MetricSockets, subscriptiondomain.MeasurementHypervisor, offering.HypervisorSockets},
	}

	rows := make([]subscriptiondomain.Measurement, 0, len(fields))
	for _, f := range fields {
		if f.base == nil {
			continue
		}
		rows = append(rows, subscriptiondomain.Measurement{
			ID:              s.genID.Generate(),
			SubscriptionID:  sub.SubscriptionID,
			StartDate:       sub.StartDate,
			MetricID:        f.metricID,
			MeasurementType: f.category,
			Value:           float64(*f.base) * float64(sub.Quantity),
		})
	}
	return rows
}

func (s *Service) countRun(result string) {
	if s.metrics != nil {
		s.metrics.ReconcileRuns.WithLabelValues(result).Inc()
	}
}
