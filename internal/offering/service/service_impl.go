package service

import (
	"context"
	"strings"

	"github.com/capwatch/capwatch/internal/clock"
	offeringdomain "github.com/capwatch/capwatch/internal/offering/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  offeringdomain.Repository
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  offeringdomain.Repository
}

func NewService(p ServiceParam) offeringdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("offering.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

// Sync upserts a catalog entry. Re-syncing the same SKU replaces the prior
// definition wholesale.
func (s *Service) Sync(ctx context.Context, req offeringdomain.SyncRequest) (*offeringdomain.Offering, error) {
	sku := strings.TrimSpace(req.SKU)
	if sku == "" {
		return nil, offeringdomain.ErrInvalidSKU
	}

	now := s.clock.Now()
	offering := &offeringdomain.Offering{
		SKU:               sku,
		ProductName:       strings.TrimSpace(req.ProductName),
		ServiceLevel:      req.ServiceLevel,
		Usage:             req.Usage,
		Role:              req.Role,
		PhysicalCores:     req.PhysicalCores,
		PhysicalSockets:   req.PhysicalSockets,
		HypervisorCores:   req.HypervisorCores,
		HypervisorSockets: req.HypervisorSockets,
		HasUnlimitedUsage: req.HasUnlimitedUsage,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := offering.SetProductIDs(req.ProductIDs); err != nil {
		return nil, err
	}

	if err := s.repo.Upsert(ctx, s.db, offering); err != nil {
		return nil, err
	}

	s.log.Info("offering synced", zap.String("sku", sku))
	return offering, nil
}

func (s *Service) GetBySKU(ctx context.Context, sku string) (*offeringdomain.Offering, error) {
	offering, err := s.repo.FindBySKU(ctx, s.db, sku)
	if err != nil {
		return nil, err
	}
	if offering == nil {
		return nil, offeringdomain.ErrNotFound
	}
	return offering, nil
}

func (s *Service) List(ctx context.Context) ([]offeringdomain.Offering, error) {
	return s.repo.List(ctx, s.db)
}
