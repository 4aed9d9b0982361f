package referral

import (
	"github.com/brewpass/brewpass/internal/referral/repository"
	"github.com/brewpass/brewpass/internal/referral/service"
	"go.uber.org/fx"
)

var Module = fx.Module("referral.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewBonusHook),
	fx.Provide(service.New),
)
