package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/capwatch/capwatch/internal/clock"
	subscriptiondomain "github.com/capwatch/capwatch/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  subscriptiondomain.Repository
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  subscriptiondomain.Repository
}

func NewService(p ServiceParam) subscriptiondomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("subscription.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Upsert(ctx context.Context, req subscriptiondomain.UpsertRequest) (*subscriptiondomain.Subscription, error) {
	sub, err := s.buildSubscription(req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Upsert(ctx, s.db, sub); err != nil {
		return nil, err
	}

	s.log.Info("subscription synced",
		zap.String("subscription_id", sub.SubscriptionID),
		zap.String("org_id", sub.OrgID),
		zap.String("sku", sub.SKU),
	)
	return sub, nil
}

func (s *Service) Get(ctx context.Context, subscriptionID string) (*subscriptiondomain.Subscription, error) {
	if strings.TrimSpace(subscriptionID) == "" {
		return nil, subscriptiondomain.ErrInvalidSubscription
	}

	sub, err := s.repo.FindLatestByID(ctx, s.db, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, subscriptiondomain.ErrNotFound
	}

	loaded, err := s.repo.LoadMeasurements(ctx, s.db, []subscriptiondomain.Subscription{*sub})
	if err != nil {
		return nil, err
	}
	return &loaded[0], nil
}

// Terminate moves the subscription's end date to the effective instant and
// records the termination as the next lifecycle event. The row is never
// deleted; a past effective date simply makes every later instant fall
// outside the half-open validity interval.
func (s *Service) Terminate(ctx context.Context, req subscriptiondomain.TerminateRequest) (*subscriptiondomain.Subscription, error) {
	if strings.TrimSpace(req.SubscriptionID) == "" {
		return nil, subscriptiondomain.ErrInvalidSubscription
	}

	sub, err := s.repo.FindLatestByID(ctx, s.db, req.SubscriptionID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, subscriptiondomain.ErrNotFound
	}

	effective := req.EffectiveAt.UTC()
	if effective.IsZero() {
		effective = s.clock.Now()
	}
	if !effective.After(sub.StartDate) {
		return nil, subscriptiondomain.ErrInvalidInterval
	}

	if err := s.repo.Terminate(ctx, s.db, sub.SubscriptionID, sub.StartDate, effective); err != nil {
		return nil, err
	}

	sub.EndDate = effective
	eventType := subscriptiondomain.EventSubscriptionEnd
	sub.NextEventType = &eventType
	sub.NextEventDate = &effective

	s.log.Info("subscription terminated",
		zap.String("subscription_id", sub.SubscriptionID),
		zap.Time("effective_at", effective),
	)
	return sub, nil
}

// IngestContract stores the marketplace contract and its backing
// subscription row in one transaction so the contract immediately
// participates in reconciliation and aggregation.
func (s *Service) IngestContract(ctx context.Context, req subscriptiondomain.ContractRequest) (*subscriptiondomain.Contract, error) {
	if strings.TrimSpace(req.CustomerAccountID) == "" {
		return nil, subscriptiondomain.ErrInvalidSubscription
	}

	sub, err := s.buildSubscription(subscriptiondomain.UpsertRequest{
		SubscriptionID:   req.SubscriptionID,
		OrgID:            req.OrgID,
		SKU:              req.SKU,
		Quantity:         req.Quantity,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		BillingProvider:  req.BillingProvider,
		BillingAccountID: req.BillingAccountID,
	})
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	contract := &subscriptiondomain.Contract{
		ID:                s.genID.Generate(),
		SubscriptionID:    sub.SubscriptionID,
		StartDate:         sub.StartDate,
		OrgID:             sub.OrgID,
		SKU:               sub.SKU,
		CustomerAccountID: req.CustomerAccountID,
		SellerAccountID:   req.SellerAccountID,
		ResourceID:        req.ResourceID,
		PlanID:            req.PlanID,
		ClientID:          req.ClientID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Upsert(ctx, tx, sub); err != nil {
			return err
		}
		return s.repo.UpsertContract(ctx, tx, contract)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("contract ingested",
		zap.String("subscription_id", contract.SubscriptionID),
		zap.String("customer_account_id", contract.CustomerAccountID),
	)
	return contract, nil
}

func (s *Service) buildSubscription(req subscriptiondomain.UpsertRequest) (*subscriptiondomain.Subscription, error) {
	if strings.TrimSpace(req.SubscriptionID) == "" || strings.TrimSpace(req.SKU) == "" {
		return nil, subscriptiondomain.ErrInvalidSubscription
	}
	if strings.TrimSpace(req.OrgID) == "" {
		return nil, subscriptiondomain.ErrInvalidOrganization
	}
	if req.Quantity < 0 {
		return nil, subscriptiondomain.ErrInvalidQuantity
	}

	start := req.StartDate.UTC()
	end := req.EndDate.UTC()
	if start.IsZero() || !end.After(start) {
		return nil, subscriptiondomain.ErrInvalidInterval
	}

	now := s.clock.Now()
	return &subscriptiondomain.Subscription{
		SubscriptionID:   strings.TrimSpace(req.SubscriptionID),
		StartDate:        start,
		EndDate:          end,
		OrgID:            strings.TrimSpace(req.OrgID),
		SKU:              strings.TrimSpace(req.SKU),
		Quantity:         req.Quantity,
		BillingProvider:  req.BillingProvider,
		BillingAccountID: req.BillingAccountID,
		ServiceLevel:     req.ServiceLevel,
		Usage:            req.Usage,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}
