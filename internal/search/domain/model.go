package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/chopchop-market/chopchop/internal/catalog/domain"
	"gorm.io/gorm"
)

// Summary is the common projection both variant tables share. It is
// what catalog search pages are made of.
type Summary struct {
	ID        snowflake.ID            `json:"id"`
	Kind      catalogdomain.Kind      `json:"kind"`
	Name      string                  `json:"name"`
	Slug      string                  `json:"slug"`
	Image     string                  `json:"image"`
	Price     float64                 `json:"price"`
	Category  catalogdomain.Category  `json:"category"`
	Condition catalogdomain.Condition `json:"condition,omitempty"`
	Rating    float64                 `json:"rating"`
	Discount  float64                 `json:"discount"`
}

// Filter narrows a search. Every set field is conjunctive. Name
// matches as a case-insensitive substring.
type Filter struct {
	Name      string
	Category  string
	Condition string
	OwnerID   snowflake.ID
	MinRating *float64
	MinPrice  *float64
	MaxPrice  *float64

	// Page is zero based. A page past the end yields an empty list.
	Page int
}

type Service interface {
	Search(ctx context.Context, filter Filter) ([]Summary, error)
	Populars(ctx context.Context) ([]Summary, error)
}

type Repository interface {
	Search(ctx context.Context, db *gorm.DB, filter Filter, limit, offset int) ([]Summary, error)
	Populars(ctx context.Context, db *gorm.DB, limit int) ([]Summary, error)
}

var (
	ErrInvalidPage      = errors.New("invalid_page")
	ErrInvalidCategory  = errors.New("invalid_category")
	ErrInvalidCondition = errors.New("invalid_condition")
)
