package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/chopchop-market/chopchop/internal/catalog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) AllocateID(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO product_ids (id) VALUES (?)`,
		id,
	).Error
}

// ResolveKind discriminates the variant a product id belongs to
// without touching variant-specific columns.
func (r *repo) ResolveKind(ctx context.Context, db *gorm.DB, id snowflake.ID) (domain.Kind, error) {
	var result struct {
		Kind string
	}
	err := db.WithContext(ctx).Raw(
		`SELECT CASE
			WHEN vp.id IS NOT NULL THEN 'verified'
			WHEN sp.id IS NOT NULL THEN 'secondhand'
			ELSE ''
		 END AS kind
		 FROM product_ids p
		 LEFT JOIN verified_products vp ON p.id = vp.id
		 LEFT JOIN secondhand_products sp ON p.id = sp.id
		 WHERE p.id = ?`,
		id,
	).Scan(&result).Error
	if err != nil {
		return "", err
	}
	if result.Kind == "" {
		return "", nil
	}
	return domain.Kind(result.Kind), nil
}

func (r *repo) InsertVerified(ctx context.Context, db *gorm.DB, product *domain.VerifiedProduct) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO verified_products
		 (id, owner_id, sku, name, slug, description, stock, price, image, category, condition, sold, rating, discount, deleted, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID,
		product.OwnerID,
		product.SKU,
		product.Name,
		product.Slug,
		product.Description,
		product.Stock,
		product.Price,
		product.Image,
		product.Category,
		product.Condition,
		product.Sold,
		product.Rating,
		product.Discount,
		product.Deleted,
		product.Metadata,
		product.CreatedAt,
		product.UpdatedAt,
	).Error
}

func (r *repo) InsertSecondhand(ctx context.Context, db *gorm.DB, product *domain.SecondhandProduct) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO secondhand_products
		 (id, owner_id, name, slug, description, price, image, category, condition, rating, discount, deleted, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID,
		product.OwnerID,
		product.Name,
		product.Slug,
		product.Description,
		product.Price,
		product.Image,
		product.Category,
		product.Condition,
		product.Rating,
		product.Discount,
		product.Deleted,
		product.Metadata,
		product.CreatedAt,
		product.UpdatedAt,
	).Error
}

func (r *repo) FindVerifiedByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.VerifiedProduct, error) {
	var product domain.VerifiedProduct
	err := db.WithContext(ctx).Raw(
		`SELECT id, owner_id, sku, name, slug, description, stock, price, image, category, condition, sold, rating, discount, deleted, metadata, created_at, updated_at
		 FROM verified_products
		 WHERE id = ? AND deleted = ?`,
		id,
		false,
	).Scan(&product).Error
	if err != nil {
		return nil, err
	}
	if product.ID == 0 {
		return nil, nil
	}
	return &product, nil
}

func (r *repo) FindSecondhandByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.SecondhandProduct, error) {
	var product domain.SecondhandProduct
	err := db.WithContext(ctx).Raw(
		`SELECT id, owner_id, name, slug, description, price, image, category, condition, rating, discount, deleted, metadata, created_at, updated_at
		 FROM secondhand_products
		 WHERE id = ? AND deleted = ?`,
		id,
		false,
	).Scan(&product).Error
	if err != nil {
		return nil, err
	}
	if product.ID == 0 {
		return nil, nil
	}
	return &product, nil
}

func (r *repo) UpdateVerified(ctx context.Context, db *gorm.DB, product *domain.VerifiedProduct, owner *snowflake.ID) (int64, error) {
	query := `UPDATE verified_products
		 SET name = ?, slug = ?, description = ?, stock = ?, price = ?, image = ?, category = ?, condition = ?, discount = ?, metadata = ?, updated_at = ?
		 WHERE id = ? AND deleted = ?`
	params := []interface{}{
		product.Name,
		product.Slug,
		product.Description,
		product.Stock,
		product.Price,
		product.Image,
		product.Category,
		product.Condition,
		product.Discount,
		product.Metadata,
		product.UpdatedAt,
		product.ID,
		false,
	}
	if owner != nil {
		query += ` AND owner_id = ?`
		params = append(params, *owner)
	}

	stmt := db.WithContext(ctx).Exec(query, params...)
	return stmt.RowsAffected, stmt.Error
}

func (r *repo) UpdateSecondhand(ctx context.Context, db *gorm.DB, product *domain.SecondhandProduct, owner *snowflake.ID) (int64, error) {
	query := `UPDATE secondhand_products
		 SET name = ?, slug = ?, description = ?, price = ?, image = ?, category = ?, condition = ?, discount = ?, metadata = ?, updated_at = ?
		 WHERE id = ? AND deleted = ?`
	params := []interface{}{
		product.Name,
		product.Slug,
		product.Description,
		product.Price,
		product.Image,
		product.Category,
		product.Condition,
		product.Discount,
		product.Metadata,
		product.UpdatedAt,
		product.ID,
		false,
	}
	if owner != nil {
		query += ` AND owner_id = ?`
		params = append(params, *owner)
	}

	stmt := db.WithContext(ctx).Exec(query, params...)
	return stmt.RowsAffected, stmt.Error
}

func (r *repo) SoftDeleteVerified(ctx context.Context, db *gorm.DB, id snowflake.ID, owner *snowflake.ID) (int64, error) {
	query := `UPDATE verified_products SET deleted = ? WHERE id = ? AND deleted = ?`
	params := []interface{}{true, id, false}
	if owner != nil {
		query += ` AND owner_id = ?`
		params = append(params, *owner)
	}

	stmt := db.WithContext(ctx).Exec(query, params...)
	return stmt.RowsAffected, stmt.Error
}

func (r *repo) SoftDeleteSecondhand(ctx context.Context, db *gorm.DB, id snowflake.ID, owner *snowflake.ID) (int64, error) {
	query := `UPDATE secondhand_products SET deleted = ? WHERE id = ? AND deleted = ?`
	params := []interface{}{true, id, false}
	if owner != nil {
		query += ` AND owner_id = ?`
		params = append(params, *owner)
	}

	stmt := db.WithContext(ctx).Exec(query, params...)
	return stmt.RowsAffected, stmt.Error
}
