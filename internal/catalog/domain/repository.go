package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository persists the product union. Mutations take an owner
// filter: nil drops the ownership check (admin override) and a zero
// row count means "absent or not yours", which callers surface as
// not-found.
type Repository interface {
	AllocateID(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	ResolveKind(ctx context.Context, db *gorm.DB, id snowflake.ID) (Kind, error)

	InsertVerified(ctx context.Context, db *gorm.DB, product *VerifiedProduct) error
	InsertSecondhand(ctx context.Context, db *gorm.DB, product *SecondhandProduct) error

	FindVerifiedByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*VerifiedProduct, error)
	FindSecondhandByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*SecondhandProduct, error)

	UpdateVerified(ctx context.Context, db *gorm.DB, product *VerifiedProduct, owner *snowflake.ID) (int64, error)
	UpdateSecondhand(ctx context.Context, db *gorm.DB, product *SecondhandProduct, owner *snowflake.ID) (int64, error)

	SoftDeleteVerified(ctx context.Context, db *gorm.DB, id snowflake.ID, owner *snowflake.ID) (int64, error)
	SoftDeleteSecondhand(ctx context.Context, db *gorm.DB, id snowflake.ID, owner *snowflake.ID) (int64, error)
}
