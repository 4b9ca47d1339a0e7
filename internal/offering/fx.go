package offering

import (
	"github.com/capwatch/capwatch/internal/offering/repository"
	"github.com/capwatch/capwatch/internal/offering/service"
	"go.uber.org/fx"
)

var Module = fx.Module("offering.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
