package order

import (
	"github.com/brewpass/brewpass/internal/order/repository"
	"github.com/brewpass/brewpass/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
