package member

import (
	"github.com/brewpass/brewpass/internal/member/repository"
	"github.com/brewpass/brewpass/internal/member/service"
	"go.uber.org/fx"
)

var Module = fx.Module("member.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
