package catalog

import (
	"github.com/brewpass/brewpass/internal/catalog/repository"
	"github.com/brewpass/brewpass/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
