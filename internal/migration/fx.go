package migration

import (
	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/chopchop-market/chopchop/internal/catalog/domain"
	"github.com/chopchop-market/chopchop/internal/config"
	purchasedomain "github.com/chopchop-market/chopchop/internal/purchase/domain"
	ratingdomain "github.com/chopchop-market/chopchop/internal/rating/domain"
	"github.com/chopchop-market/chopchop/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, genID *snowflake.Node) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite and mysql are dev conveniences; the schema is
			// derived from the models instead of the SQL migrations.
			if err := conn.AutoMigrate(
				&catalogdomain.ProductID{},
				&catalogdomain.VerifiedProduct{},
				&catalogdomain.SecondhandProduct{},
				&purchasedomain.Purchase{},
				&purchasedomain.PurchaseItem{},
				&ratingdomain.Rating{},
			); err != nil {
				return err
			}
		}

		if cfg.SeedDemoData {
			return seed.EnsureDemoCatalog(conn, genID)
		}
		return nil
	}),
)
