package reconcile

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	obsmetrics "github.com/capwatch/capwatch/internal/observability/metrics"
	offeringdomain "github.com/capwatch/capwatch/internal/offering/domain"
	subscriptiondomain "github.com/capwatch/capwatch/internal/subscription/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestConsumer(t *testing.T) (*Consumer, *Service, *obsmetrics.Metrics) {
	t.Helper()

	svc, _ := setupReconcile(t)
	metrics := obsmetrics.New(prometheus.NewRegistry())
	consumer := NewConsumer(nil, zap.NewNop(), svc, nil, "capwatch:reconcile", 100, metrics)
	return consumer, svc, metrics
}

func TestHandleDropsUndecodablePayload(t *testing.T) {
	consumer, _, metrics := newTestConsumer(t)

	consumer.Handle(context.Background(), []byte("{not-json"))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.InstructionsDropped))
}

func TestHandleDropsMissingSKU(t *testing.T) {
	consumer, _, metrics := newTestConsumer(t)

	payload, err := json.Marshal(Instruction{SKU: "  ", Limit: 10})
	require.NoError(t, err)
	consumer.Handle(context.Background(), payload)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.InstructionsDropped))
}

func TestHandleUnknownSKUIsNotDropped(t *testing.T) {
	consumer, _, metrics := newTestConsumer(t)

	payload, err := json.Marshal(Instruction{SKU: "SKU404"})
	require.NoError(t, err)
	consumer.Handle(context.Background(), payload)

	assert.Zero(t, testutil.ToFloat64(metrics.InstructionsDropped))
}

func TestHandleDefaultsLimitToPageSize(t *testing.T) {
	consumer, svc, _ := newTestConsumer(t)

	db := svc.db
	createOffering(t, db, "SKU001", func(o *offeringdomain.Offering) {
		o.PhysicalCores = int64ptr(2)
	})
	for _, id := range []string{"sub-1", "sub-2", "sub-3"} {
		createSubscription(t, db, id, "SKU001", 1)
	}

	payload, err := json.Marshal(Instruction{SKU: "SKU001"})
	require.NoError(t, err)
	consumer.Handle(context.Background(), payload)

	var total int64
	require.NoError(t, db.Model(&subscriptiondomain.Measurement{}).Count(&total).Error)
	assert.Equal(t, int64(3), total)
}

func TestRunStopsDuringPollBackoff(t *testing.T) {
	svc, _ := setupReconcile(t)

	// Nothing listens on this address, so every poll fails immediately and
	// the loop enters its retry pause.
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { _ = rdb.Close() })

	consumer := NewConsumer(rdb, zap.NewNop(), svc, nil, "capwatch:reconcile", 100, nil)
	consumer.retryDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		consumer.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not stop after cancellation")
	}
}
