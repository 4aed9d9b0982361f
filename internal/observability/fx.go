package observability

import (
	"github.com/brewpass/brewpass/internal/observability/metrics"
	"go.uber.org/fx"
)

// Module provides the prometheus metrics registry.
var Module = fx.Module("observability",
	fx.Provide(metrics.New),
)
