package search

import (
	"github.com/chopchop-market/chopchop/internal/search/repository"
	"github.com/chopchop-market/chopchop/internal/search/service"
	"go.uber.org/fx"
)

var Module = fx.Module("search.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
