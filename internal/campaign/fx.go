package campaign

import (
	"github.com/brewpass/brewpass/internal/campaign/repository"
	"github.com/brewpass/brewpass/internal/campaign/service"
	"go.uber.org/fx"
)

var Module = fx.Module("campaign.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
