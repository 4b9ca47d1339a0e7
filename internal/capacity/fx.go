package capacity

import (
	"github.com/capwatch/capwatch/internal/capacity/service"
	"go.uber.org/fx"
)

var Module = fx.Module("capacity.service",
	fx.Provide(service.NewService),
)
