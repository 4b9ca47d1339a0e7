package subscription

import (
	"github.com/capwatch/capwatch/internal/subscription/repository"
	"github.com/capwatch/capwatch/internal/subscription/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
