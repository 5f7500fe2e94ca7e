package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	identitydomain "github.com/chopchop-market/chopchop/internal/identity/domain"
)

// CreateRequest is the discriminated "new product" payload. SKU and
// Stock are required for verified products and ignored for secondhand
// ones.
type CreateRequest struct {
	Kind        string         `json:"kind"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Price       float64        `json:"price"`
	Image       string         `json:"image"`
	Category    string         `json:"category"`
	Condition   string         `json:"condition"`
	SKU         *string        `json:"sku"`
	Stock       *int64         `json:"stock"`
	Metadata    map[string]any `json:"metadata"`
}

// UpdateRequest rewrites every mutable field of the resolved variant.
// The SKU of a verified product is immutable.
type UpdateRequest struct {
	ID          snowflake.ID   `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Price       float64        `json:"price"`
	Image       string         `json:"image"`
	Category    string         `json:"category"`
	Condition   string         `json:"condition"`
	Discount    float64        `json:"discount"`
	Stock       *int64         `json:"stock"`
	Metadata    map[string]any `json:"metadata"`
}

type Service interface {
	Create(ctx context.Context, principal identitydomain.Principal, req CreateRequest) (snowflake.ID, error)
	Get(ctx context.Context, id snowflake.ID) (Product, error)
	Update(ctx context.Context, principal identitydomain.Principal, req UpdateRequest) error
	Delete(ctx context.Context, principal identitydomain.Principal, id snowflake.ID) error
}

var (
	ErrInvalidKind        = errors.New("invalid_kind")
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidDescription = errors.New("invalid_description")
	ErrInvalidPrice       = errors.New("invalid_price")
	ErrInvalidCategory    = errors.New("invalid_category")
	ErrInvalidCondition   = errors.New("invalid_condition")
	ErrInvalidID          = errors.New("invalid_id")
	ErrMissingSKU         = errors.New("missing_sku")
	ErrMissingStock       = errors.New("missing_stock")
	ErrDuplicateSKU       = errors.New("duplicate_sku")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not_found")
)
