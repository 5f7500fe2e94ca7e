package rating

import (
	"github.com/chopchop-market/chopchop/internal/rating/repository"
	"github.com/chopchop-market/chopchop/internal/rating/service"
	"go.uber.org/fx"
)

var Module = fx.Module("rating.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
