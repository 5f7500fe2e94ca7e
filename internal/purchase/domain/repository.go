package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertPurchase(ctx context.Context, db *gorm.DB, purchase *Purchase) error
	InsertItem(ctx context.Context, db *gorm.DB, item *PurchaseItem) error

	// ApplyVerifiedSale bumps the sold counter and draws down stock on
	// a verified row. Secondhand rows have neither counter.
	ApplyVerifiedSale(ctx context.Context, db *gorm.DB, productID snowflake.ID, count int64) error

	FindByID(ctx context.Context, db *gorm.DB, id, userID snowflake.ID) (*Purchase, error)
	ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID, date *time.Time) ([]Purchase, error)
	ItemsFor(ctx context.Context, db *gorm.DB, purchaseIDs []snowflake.ID) ([]PurchaseItem, error)
}
