package tenant

import (
	"github.com/brewpass/brewpass/internal/tenant/repository"
	"github.com/brewpass/brewpass/internal/tenant/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tenant.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
