package identity

import (
	"github.com/chopchop-market/chopchop/internal/identity/service"
	"go.uber.org/fx"
)

var Module = fx.Module("identity.service",
	fx.Provide(service.New),
)
