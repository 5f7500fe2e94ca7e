package purchase

import (
	"github.com/chopchop-market/chopchop/internal/purchase/repository"
	"github.com/chopchop-market/chopchop/internal/purchase/service"
	"go.uber.org/fx"
)

var Module = fx.Module("purchase.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
