package activity

import (
	"github.com/brewpass/brewpass/internal/activity/repository"
	"github.com/brewpass/brewpass/internal/activity/service"
	"go.uber.org/fx"
)

var Module = fx.Module("activity.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
