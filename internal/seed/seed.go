package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/chopchop-market/chopchop/internal/catalog/domain"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

const demoOwnerID = snowflake.ID(1)

type demoProduct struct {
	kind      catalogdomain.Kind
	name      string
	price     float64
	category  catalogdomain.Category
	condition catalogdomain.Condition
	sku       string
	stock     int64
}

var demoCatalog = []demoProduct{
	{
		kind:      catalogdomain.KindVerified,
		name:      "Cafetera italiana",
		price:     24.9,
		category:  catalogdomain.CategoryCuina,
		condition: catalogdomain.ConditionNew,
		sku:       "DEMO-CAF-01",
		stock:     40,
	},
	{
		kind:      catalogdomain.KindVerified,
		name:      "Auriculars sense fil",
		price:     59.0,
		category:  catalogdomain.CategoryElectronica,
		condition: catalogdomain.ConditionNew,
		sku:       "DEMO-AUR-01",
		stock:     25,
	},
	{
		kind:      catalogdomain.KindSecondhand,
		name:      "Bicicleta de muntanya",
		price:     120.0,
		category:  catalogdomain.CategoryEsports,
		condition: catalogdomain.ConditionLikeNew,
	},
	{
		kind:      catalogdomain.KindSecondhand,
		name:      "Llibre de cuina catalana",
		price:     6.5,
		category:  catalogdomain.CategoryLlibres,
		condition: catalogdomain.ConditionUsed,
	},
}

// EnsureDemoCatalog seeds a handful of listings for local development.
// It is idempotent: a non-empty catalog is left untouched.
func EnsureDemoCatalog(db *gorm.DB, genID *snowflake.Node) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if genID == nil {
		return errors.New("seed id generator is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.WithContext(ctx).Model(&catalogdomain.ProductID{}).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return nil
		}

		now := time.Now().UTC()
		for _, demo := range demoCatalog {
			id := genID.Generate()
			if err := tx.WithContext(ctx).Create(&catalogdomain.ProductID{ID: id, CreatedAt: now}).Error; err != nil {
				return err
			}

			switch demo.kind {
			case catalogdomain.KindVerified:
				record := catalogdomain.VerifiedProduct{
					ID:        id,
					OwnerID:   demoOwnerID,
					SKU:       demo.sku,
					Name:      demo.name,
					Slug:      slug.Make(demo.name),
					Stock:     demo.stock,
					Price:     demo.price,
					Category:  demo.category,
					Condition: demo.condition,
					CreatedAt: now,
					UpdatedAt: now,
				}
				if err := tx.WithContext(ctx).Create(&record).Error; err != nil {
					return err
				}
			case catalogdomain.KindSecondhand:
				record := catalogdomain.SecondhandProduct{
					ID:        id,
					OwnerID:   demoOwnerID,
					Name:      demo.name,
					Slug:      slug.Make(demo.name),
					Price:     demo.price,
					Category:  demo.category,
					Condition: demo.condition,
					CreatedAt: now,
					UpdatedAt: now,
				}
				if err := tx.WithContext(ctx).Create(&record).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}
