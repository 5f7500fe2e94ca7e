package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	identitydomain "github.com/chopchop-market/chopchop/internal/identity/domain"
)

type ItemRequest struct {
	ProductID snowflake.ID `json:"product_id"`
	Count     int64        `json:"count"`
	Paid      float64      `json:"paid"`
}

type CreateRequest struct {
	Items []ItemRequest `json:"items"`
}

type Service interface {
	Create(ctx context.Context, principal identitydomain.Principal, req CreateRequest) (snowflake.ID, error)
	Get(ctx context.Context, principal identitydomain.Principal, id snowflake.ID) (Purchase, error)
	ListMine(ctx context.Context, principal identitydomain.Principal, date *time.Time) ([]Purchase, error)
}

var (
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not_found")
	ErrEmptyItems     = errors.New("empty_items")
	ErrTooManyItems   = errors.New("too_many_items")
	ErrInvalidCount   = errors.New("invalid_count")
	ErrInvalidPaid    = errors.New("invalid_paid")
	ErrUnknownProduct = errors.New("unknown_product")
	ErrDuplicateItem  = errors.New("duplicate_item")
)
