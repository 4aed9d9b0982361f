package loyalty

import (
	"github.com/brewpass/brewpass/internal/loyalty/repository"
	"github.com/brewpass/brewpass/internal/loyalty/service"
	"go.uber.org/fx"
)

var Module = fx.Module("loyalty.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
