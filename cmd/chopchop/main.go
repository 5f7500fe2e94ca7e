package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/chopchop-market/chopchop/internal/clock"
	"github.com/chopchop-market/chopchop/internal/config"
	"github.com/chopchop-market/chopchop/internal/migration"
	"github.com/chopchop-market/chopchop/internal/observability"
	"github.com/chopchop-market/chopchop/internal/server"
	"github.com/chopchop-market/chopchop/pkg/db"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	).Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
