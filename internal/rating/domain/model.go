package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/chopchop-market/chopchop/internal/catalog/domain"
	identitydomain "github.com/chopchop-market/chopchop/internal/identity/domain"
	"gorm.io/gorm"
)

// Rating is one buyer's score for one product. The (owner, product)
// pair is unique; a resubmission overwrites the previous value.
type Rating struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OwnerID   snowflake.ID `gorm:"not null;index:ux_ratings_owner_product,unique,priority:1" json:"owner_id"`
	ProductID snowflake.ID `gorm:"not null;index:ux_ratings_owner_product,unique,priority:2" json:"product_id"`
	Value     float64      `gorm:"not null" json:"value"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Rating) TableName() string { return "ratings" }

type SubmitRequest struct {
	ProductID snowflake.ID `json:"product_id"`
	Value     float64      `json:"value"`
}

type Service interface {
	Submit(ctx context.Context, principal identitydomain.Principal, req SubmitRequest) error
	Get(ctx context.Context, ownerID, productID snowflake.ID) (Rating, error)
	ProductRating(ctx context.Context, productID snowflake.ID) (float64, error)
}

type Repository interface {
	// IsEligible reports whether the owner has ever bought the product.
	IsEligible(ctx context.Context, db *gorm.DB, ownerID, productID snowflake.ID) (bool, error)

	Find(ctx context.Context, db *gorm.DB, ownerID, productID snowflake.ID) (*Rating, error)
	Insert(ctx context.Context, db *gorm.DB, rating *Rating) error
	Update(ctx context.Context, db *gorm.DB, ownerID, productID snowflake.ID, value float64, updatedAt time.Time) error

	// Average recomputes the product's mean rating from the ledger.
	Average(ctx context.Context, db *gorm.DB, productID snowflake.ID) (float64, error)
	RefreshProductRating(ctx context.Context, db *gorm.DB, kind catalogdomain.Kind, productID snowflake.ID, value float64) error
}

var (
	ErrInvalidValue   = errors.New("invalid_value")
	ErrInvalidProduct = errors.New("invalid_product")
	ErrNotEligible    = errors.New("not_eligible")
	ErrNotFound       = errors.New("not_found")
	ErrConflict       = errors.New("conflict")
)
