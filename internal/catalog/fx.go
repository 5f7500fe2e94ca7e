package catalog

import (
	"github.com/chopchop-market/chopchop/internal/catalog/repository"
	"github.com/chopchop-market/chopchop/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
