package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/chopchop-market/chopchop/internal/purchase/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertPurchase(ctx context.Context, db *gorm.DB, purchase *domain.Purchase) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO purchases (id, user_id, date) VALUES (?, ?, ?)`,
		purchase.ID,
		purchase.UserID,
		purchase.Date,
	).Error
}

func (r *repo) InsertItem(ctx context.Context, db *gorm.DB, item *domain.PurchaseItem) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO purchase_items (purchase_id, product_id, count, paid) VALUES (?, ?, ?, ?)`,
		item.PurchaseID,
		item.ProductID,
		item.Count,
		item.Paid,
	).Error
}

func (r *repo) ApplyVerifiedSale(ctx context.Context, db *gorm.DB, productID snowflake.ID, count int64) error {
	return db.WithContext(ctx).Exec(
		`UPDATE verified_products SET sold = sold + ?, stock = stock - ? WHERE id = ?`,
		count,
		count,
		productID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id, userID snowflake.ID) (*domain.Purchase, error) {
	var purchase domain.Purchase
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, date FROM purchases WHERE id = ? AND user_id = ?`,
		id,
		userID,
	).Scan(&purchase).Error
	if err != nil {
		return nil, err
	}
	if purchase.ID == 0 {
		return nil, nil
	}
	return &purchase, nil
}

func (r *repo) ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID, date *time.Time) ([]domain.Purchase, error) {
	query := `SELECT id, user_id, date FROM purchases WHERE user_id = ?`
	params := []interface{}{userID}
	if date != nil {
		dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
		query += ` AND date >= ? AND date < ?`
		params = append(params, dayStart, dayStart.AddDate(0, 0, 1))
	}
	query += ` ORDER BY date DESC, id DESC`

	var purchases []domain.Purchase
	if err := db.WithContext(ctx).Raw(query, params...).Scan(&purchases).Error; err != nil {
		return nil, err
	}
	return purchases, nil
}

func (r *repo) ItemsFor(ctx context.Context, db *gorm.DB, purchaseIDs []snowflake.ID) ([]domain.PurchaseItem, error) {
	if len(purchaseIDs) == 0 {
		return nil, nil
	}
	var items []domain.PurchaseItem
	err := db.WithContext(ctx).Raw(
		`SELECT purchase_id, product_id, count, paid FROM purchase_items WHERE purchase_id IN ?`,
		purchaseIDs,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
