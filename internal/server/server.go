package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	capacitydomain "github.com/capwatch/capwatch/internal/capacity/domain"
	"github.com/capwatch/capwatch/internal/config"
	obsmetrics "github.com/capwatch/capwatch/internal/observability/metrics"
	offeringdomain "github.com/capwatch/capwatch/internal/offering/domain"
	"github.com/capwatch/capwatch/internal/reconcile"
	subscriptiondomain "github.com/capwatch/capwatch/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, metrics *obsmetrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogMiddleware(log))
	r.Use(MetricsMiddleware(metrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	offeringSvc     offeringdomain.Service
	subscriptionSvc subscriptiondomain.Service
	capacitySvc     capacitydomain.Service
	reconciler      *reconcile.Producer
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	OfferingSvc     offeringdomain.Service
	SubscriptionSvc subscriptiondomain.Service
	CapacitySvc     capacitydomain.Service
	Reconciler      *reconcile.Producer
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		offeringSvc:     p.OfferingSvc,
		subscriptionSvc: p.SubscriptionSvc,
		capacitySvc:     p.CapacitySvc,
		reconciler:      p.Reconciler,
	}
}

func registerRoutes(s *Server) {
	api := s.engine.Group("/api/capacity/v1")

	api.GET("/products/:product_id", s.GetCapacityReport)
	api.GET("/products/:product_id/:metric_id", s.GetCapacityReport)

	api.GET("/offerings", s.ListOfferings)
	api.GET("/offerings/:sku", s.GetOffering)
	api.PUT("/offerings/:sku", s.SyncOffering)

	api.POST("/subscriptions", s.UpsertSubscription)
	api.GET("/subscriptions/:subscription_id", s.GetSubscription)
	api.POST("/subscriptions/:subscription_id/terminate", s.TerminateSubscription)
	api.POST("/contracts", s.IngestContract)

	api.POST("/reconcile", s.EnqueueReconcile)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
