package reconcile

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// Instruction asks for one page of a SKU's subscriptions to be reconciled.
// Offset/limit bound how much work a single invocation performs; a full page
// re-enqueues the next one, and an empty page ends the task.
type Instruction struct {
	SKU    string `json:"sku"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
}

// Producer pushes reconcile instructions onto the redis task list.
type Producer struct {
	rdb   *redis.Client
	queue string
}

func NewProducer(rdb *redis.Client, queue string) *Producer {
	return &Producer{rdb: rdb, queue: queue}
}

func (p *Producer) Enqueue(ctx context.Context, instruction Instruction) error {
	payload, err := json.Marshal(instruction)
	if err != nil {
		return err
	}
	return p.rdb.LPush(ctx, p.queue, payload).Err()
}
