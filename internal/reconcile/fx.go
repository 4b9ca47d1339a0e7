package reconcile

import (
	"context"

	"github.com/capwatch/capwatch/internal/config"
	obsmetrics "github.com/capwatch/capwatch/internal/observability/metrics"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newRedisClient(cfg config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func newProducer(cfg config.Config, rdb *redis.Client) *Producer {
	return NewProducer(rdb, cfg.ReconcileQueue)
}

func newConsumer(cfg config.Config, rdb *redis.Client, log *zap.Logger, service *Service, producer *Producer, metrics *obsmetrics.Metrics) *Consumer {
	return NewConsumer(rdb, log, service, producer, cfg.ReconcileQueue, cfg.ReconcileBatchSize, metrics)
}

var Module = fx.Module("reconcile",
	fx.Provide(newRedisClient),
	fx.Provide(NewService),
	fx.Provide(newProducer),
	fx.Provide(newConsumer),
	fx.Invoke(runConsumer),
)

func runConsumer(lc fx.Lifecycle, consumer *Consumer, rdb *redis.Client) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go consumer.Run(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return rdb.Close()
		},
	})
}
