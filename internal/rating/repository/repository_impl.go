package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/chopchop-market/chopchop/internal/catalog/domain"
	"github.com/chopchop-market/chopchop/internal/rating/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) IsEligible(ctx context.Context, db *gorm.DB, ownerID, productID snowflake.ID) (bool, error) {
	var result struct {
		N int64
	}
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) AS n
		 FROM purchase_items pi
		 JOIN purchases p ON p.id = pi.purchase_id
		 WHERE p.user_id = ? AND pi.product_id = ?`,
		ownerID,
		productID,
	).Scan(&result).Error
	if err != nil {
		return false, err
	}
	return result.N > 0, nil
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, ownerID, productID snowflake.ID) (*domain.Rating, error) {
	var rating domain.Rating
	err := db.WithContext(ctx).Raw(
		`SELECT id, owner_id, product_id, value, created_at, updated_at
		 FROM ratings
		 WHERE owner_id = ? AND product_id = ?`,
		ownerID,
		productID,
	).Scan(&rating).Error
	if err != nil {
		return nil, err
	}
	if rating.ID == 0 {
		return nil, nil
	}
	return &rating, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, rating *domain.Rating) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO ratings (id, owner_id, product_id, value, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rating.ID,
		rating.OwnerID,
		rating.ProductID,
		rating.Value,
		rating.CreatedAt,
		rating.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, ownerID, productID snowflake.ID, value float64, updatedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE ratings SET value = ?, updated_at = ? WHERE owner_id = ? AND product_id = ?`,
		value,
		updatedAt,
		ownerID,
		productID,
	).Error
}

func (r *repo) Average(ctx context.Context, db *gorm.DB, productID snowflake.ID) (float64, error) {
	var result struct {
		Avg float64
	}
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(AVG(value), 0) AS avg FROM ratings WHERE product_id = ?`,
		productID,
	).Scan(&result).Error
	if err != nil {
		return 0, err
	}
	return result.Avg, nil
}

func (r *repo) RefreshProductRating(ctx context.Context, db *gorm.DB, kind catalogdomain.Kind, productID snowflake.ID, value float64) error {
	table := "secondhand_products"
	if kind == catalogdomain.KindVerified {
		table = "verified_products"
	}
	return db.WithContext(ctx).Exec(
		`UPDATE `+table+` SET rating = ? WHERE id = ?`,
		value,
		productID,
	).Error
}
