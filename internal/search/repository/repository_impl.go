package repository

import (
	"context"
	"strings"

	catalogdomain "github.com/chopchop-market/chopchop/internal/catalog/domain"
	"github.com/chopchop-market/chopchop/internal/search/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const verifiedProjection = `SELECT id, 'verified' AS kind, name, slug, image, price, category, condition, rating, discount, owner_id
	FROM verified_products`

const secondhandProjection = `SELECT id, 'secondhand' AS kind, name, slug, image, price, category, condition, rating, discount, owner_id
	FROM secondhand_products`

// Search pages the union of both variant tables under one projection.
// The filter is applied per branch so each table scan stays narrow.
func (r *repo) Search(ctx context.Context, db *gorm.DB, filter domain.Filter, limit, offset int) ([]domain.Summary, error) {
	where, params := buildWhere(filter)

	query := `SELECT id, kind, name, slug, image, price, category, condition, rating, discount FROM (` +
		verifiedProjection + where +
		` UNION ALL ` +
		secondhandProjection + where +
		`) AS products`

	args := append(append([]interface{}{}, params...), params...)

	if filter.MinRating != nil {
		query += ` ORDER BY rating DESC, id DESC`
	} else {
		query += ` ORDER BY id DESC`
	}
	query += ` LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	var items []domain.Summary
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Populars(ctx context.Context, db *gorm.DB, limit int) ([]domain.Summary, error) {
	query := `SELECT id, kind, name, slug, image, price, category, condition, rating, discount FROM (` +
		verifiedProjection + ` WHERE deleted = ?` +
		` UNION ALL ` +
		secondhandProjection + ` WHERE deleted = ?` +
		`) AS products ORDER BY rating DESC, id DESC LIMIT ?`

	var items []domain.Summary
	err := db.WithContext(ctx).Raw(query, false, false, limit).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func buildWhere(filter domain.Filter) (string, []interface{}) {
	clauses := []string{"deleted = ?"}
	params := []interface{}{false}

	if name := strings.TrimSpace(filter.Name); name != "" {
		clauses = append(clauses, "LOWER(name) LIKE ?")
		params = append(params, "%"+strings.ToLower(name)+"%")
	}
	if filter.Category != "" {
		clauses = append(clauses, "category = ?")
		params = append(params, catalogdomain.Category(filter.Category))
	}
	if filter.Condition != "" {
		clauses = append(clauses, "condition = ?")
		params = append(params, catalogdomain.Condition(filter.Condition))
	}
	if filter.OwnerID != 0 {
		clauses = append(clauses, "owner_id = ?")
		params = append(params, filter.OwnerID)
	}
	if filter.MinRating != nil {
		clauses = append(clauses, "rating >= ?")
		params = append(params, *filter.MinRating)
	}
	if filter.MinPrice != nil {
		clauses = append(clauses, "price >= ?")
		params = append(params, *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		clauses = append(clauses, "price <= ?")
		params = append(params, *filter.MaxPrice)
	}

	return ` WHERE ` + strings.Join(clauses, " AND "), params
}
