package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/capwatch/capwatch/internal/clock"
	subscriptiondomain "github.com/capwatch/capwatch/internal/subscription/domain"
	subscriptionrepo "github.com/capwatch/capwatch/internal/subscription/repository"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	testNow   = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	testStart = time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	testEnd   = time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
)

func setupService(t *testing.T) (subscriptiondomain.Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&subscriptiondomain.Subscription{},
		&subscriptiondomain.Measurement{},
		&subscriptiondomain.Contract{},
	))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	svc := NewService(ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(testNow),
		Repo:  subscriptionrepo.Provide(),
	})
	return svc, db
}

func validUpsert() subscriptiondomain.UpsertRequest {
	return subscriptiondomain.UpsertRequest{
		SubscriptionID: "sub-1",
		OrgID:          "org-123",
		SKU:            "SKU001",
		Quantity:       2,
		StartDate:      testStart,
		EndDate:        testEnd,
	}
}

func TestUpsertCreatesSubscription(t *testing.T) {
	svc, db := setupService(t)

	sub, err := svc.Upsert(context.Background(), validUpsert())
	require.NoError(t, err)
	assert.Equal(t, "sub-1", sub.SubscriptionID)

	var stored subscriptiondomain.Subscription
	require.NoError(t, db.Where("subscription_id = ?", "sub-1").First(&stored).Error)
	assert.Equal(t, int64(2), stored.Quantity)
	assert.Equal(t, testStart, stored.StartDate.UTC())
}

func TestUpsertIsIdempotent(t *testing.T) {
	svc, db := setupService(t)

	req := validUpsert()
	_, err := svc.Upsert(context.Background(), req)
	require.NoError(t, err)

	req.Quantity = 5
	_, err = svc.Upsert(context.Background(), req)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&subscriptiondomain.Subscription{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var stored subscriptiondomain.Subscription
	require.NoError(t, db.Where("subscription_id = ?", "sub-1").First(&stored).Error)
	assert.Equal(t, int64(5), stored.Quantity)
}

func TestUpsertValidation(t *testing.T) {
	svc, _ := setupService(t)

	cases := []struct {
		name    string
		mutate  func(*subscriptiondomain.UpsertRequest)
		wantErr error
	}{
		{"missing id", func(r *subscriptiondomain.UpsertRequest) { r.SubscriptionID = " " }, subscriptiondomain.ErrInvalidSubscription},
		{"missing sku", func(r *subscriptiondomain.UpsertRequest) { r.SKU = "" }, subscriptiondomain.ErrInvalidSubscription},
		{"missing org", func(r *subscriptiondomain.UpsertRequest) { r.OrgID = "" }, subscriptiondomain.ErrInvalidOrganization},
		{"negative quantity", func(r *subscriptiondomain.UpsertRequest) { r.Quantity = -1 }, subscriptiondomain.ErrInvalidQuantity},
		{"zero start", func(r *subscriptiondomain.UpsertRequest) { r.StartDate = time.Time{} }, subscriptiondomain.ErrInvalidInterval},
		{"end before start", func(r *subscriptiondomain.UpsertRequest) { r.EndDate = testStart.AddDate(0, -1, 0) }, subscriptiondomain.ErrInvalidInterval},
		{"end equals start", func(r *subscriptiondomain.UpsertRequest) { r.EndDate = testStart }, subscriptiondomain.ErrInvalidInterval},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validUpsert()
			tc.mutate(&req)
			_, err := svc.Upsert(context.Background(), req)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestGetReturnsNotFound(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.Get(context.Background(), "sub-404")
	assert.ErrorIs(t, err, subscriptiondomain.ErrNotFound)
}

func TestTerminateMovesEndDate(t *testing.T) {
	svc, db := setupService(t)

	_, err := svc.Upsert(context.Background(), validUpsert())
	require.NoError(t, err)

	effective := testStart.AddDate(0, 6, 0)
	sub, err := svc.Terminate(context.Background(), subscriptiondomain.TerminateRequest{
		SubscriptionID: "sub-1",
		EffectiveAt:    effective,
	})
	require.NoError(t, err)
	assert.Equal(t, effective, sub.EndDate)
	require.NotNil(t, sub.NextEventType)
	assert.Equal(t, subscriptiondomain.EventSubscriptionEnd, *sub.NextEventType)

	// The row survives: earlier instants still fall inside the interval.
	var stored subscriptiondomain.Subscription
	require.NoError(t, db.Where("subscription_id = ?", "sub-1").First(&stored).Error)
	assert.True(t, stored.ActiveAt(effective.AddDate(0, 0, -1)))
	assert.False(t, stored.ActiveAt(effective))
}

func TestTerminateDefaultsToNow(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.Upsert(context.Background(), validUpsert())
	require.NoError(t, err)

	sub, err := svc.Terminate(context.Background(), subscriptiondomain.TerminateRequest{SubscriptionID: "sub-1"})
	require.NoError(t, err)
	assert.Equal(t, testNow, sub.EndDate)
}

func TestTerminateRejectsEffectiveBeforeStart(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.Upsert(context.Background(), validUpsert())
	require.NoError(t, err)

	_, err = svc.Terminate(context.Background(), subscriptiondomain.TerminateRequest{
		SubscriptionID: "sub-1",
		EffectiveAt:    testStart,
	})
	assert.ErrorIs(t, err, subscriptiondomain.ErrInvalidInterval)
}

func TestTerminateUnknownSubscription(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.Terminate(context.Background(), subscriptiondomain.TerminateRequest{SubscriptionID: "sub-404"})
	assert.ErrorIs(t, err, subscriptiondomain.ErrNotFound)
}

func TestIngestContract(t *testing.T) {
	svc, db := setupService(t)

	provider := "aws"
	contract, err := svc.IngestContract(context.Background(), subscriptiondomain.ContractRequest{
		SubscriptionID:    "sub-1",
		OrgID:             "org-123",
		SKU:               "SKU001",
		Quantity:          4,
		StartDate:         testStart,
		EndDate:           testEnd,
		BillingProvider:   &provider,
		CustomerAccountID: "cust-1",
		SellerAccountID:   "seller-1",
		ResourceID:        "res-1",
		PlanID:            "plan-1",
		ClientID:          "client-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "cust-1", contract.CustomerAccountID)

	// The backing subscription row is written in the same transaction.
	var sub subscriptiondomain.Subscription
	require.NoError(t, db.Where("subscription_id = ?", "sub-1").First(&sub).Error)
	assert.Equal(t, int64(4), sub.Quantity)
	require.NotNil(t, sub.BillingProvider)
	assert.Equal(t, "aws", *sub.BillingProvider)

	var stored subscriptiondomain.Contract
	require.NoError(t, db.Where("subscription_id = ?", "sub-1").First(&stored).Error)
	assert.Equal(t, "plan-1", stored.PlanID)
}

func TestIngestContractRequiresCustomerAccount(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.IngestContract(context.Background(), subscriptiondomain.ContractRequest{
		SubscriptionID: "sub-1",
		OrgID:          "org-123",
		SKU:            "SKU001",
		StartDate:      testStart,
		EndDate:        testEnd,
	})
	assert.ErrorIs(t, err, subscriptiondomain.ErrInvalidSubscription)
}
