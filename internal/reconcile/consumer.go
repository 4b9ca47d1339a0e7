package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	obsmetrics "github.com/capwatch/capwatch/internal/observability/metrics"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	popTimeout = 2 * time.Second
	pollRetry  = time.Second
)

// Consumer drains reconcile instructions from the redis task list. Each
// message is an isolated unit of work: a malformed payload is logged and
// dropped, and a failed reconciliation never stops the loop.
type Consumer struct {
	rdb      *redis.Client
	log      *zap.Logger
	service  *Service
	producer *Producer
	queue      string
	pageSize   int
	metrics    *obsmetrics.Metrics
	retryDelay time.Duration
}

func NewConsumer(rdb *redis.Client, log *zap.Logger, service *Service, producer *Producer, queue string, pageSize int, metrics *obsmetrics.Metrics) *Consumer {
	if pageSize <= 0 {
		pageSize = 500
	}
	return &Consumer{
		rdb:        rdb,
		log:        log.Named("reconcile.consumer"),
		service:    service,
		producer:   producer,
		queue:      queue,
		pageSize:   pageSize,
		metrics:    metrics,
		retryDelay: pollRetry,
	}
}

func (c *Consumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if err := c.runOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			c.log.Warn("reconcile consumer poll failed", zap.Error(err))

			// An unreachable broker fails BRPop immediately; pause before
			// re-polling so the outage does not spin the loop.
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.retryDelay):
			}
		}
	}
}

func (c *Consumer) runOnce(ctx context.Context) error {
	result, err := c.rdb.BRPop(ctx, popTimeout, c.queue).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}
	if len(result) < 2 {
		return nil
	}

	c.Handle(ctx, []byte(result[1]))
	return nil
}

// Handle processes one raw instruction payload.
func (c *Consumer) Handle(ctx context.Context, payload []byte) {
	var instruction Instruction
	if err := json.Unmarshal(payload, &instruction); err != nil {
		c.drop("undecodable reconcile instruction", payload, err)
		return
	}
	if strings.TrimSpace(instruction.SKU) == "" {
		c.drop("reconcile instruction missing sku", payload, nil)
		return
	}
	if instruction.Limit <= 0 {
		instruction.Limit = c.pageSize
	}
	if instruction.Offset < 0 {
		instruction.Offset = 0
	}

	count, err := c.service.Reconcile(ctx, instruction.SKU, instruction.Offset, instruction.Limit)
	if err != nil {
		// Partial failures were already isolated per subscription; the
		// instruction itself is done.
		c.log.Warn("reconciliation completed with failures",
			zap.Error(err),
			zap.String("sku", instruction.SKU),
		)
	}

	if count == instruction.Limit && c.producer != nil {
		next := Instruction{
			SKU:    instruction.SKU,
			Offset: instruction.Offset + instruction.Limit,
			Limit:  instruction.Limit,
		}
		if err := c.producer.Enqueue(ctx, next); err != nil {
			c.log.Warn("failed to enqueue next reconcile page",
				zap.Error(err),
				zap.String("sku", instruction.SKU),
				zap.Int("offset", next.Offset),
			)
		}
	}
}

func (c *Consumer) drop(msg string, payload []byte, err error) {
	if c.metrics != nil {
		c.metrics.InstructionsDropped.Inc()
	}
	c.log.Error(msg, zap.Error(err), zap.ByteString("payload", payload))
}
