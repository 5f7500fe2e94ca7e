package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/chopchop-market/chopchop/internal/catalog/domain"
	catalogrepository "github.com/chopchop-market/chopchop/internal/catalog/repository"
	"github.com/chopchop-market/chopchop/internal/clock"
	identitydomain "github.com/chopchop-market/chopchop/internal/identity/domain"
	purchasedomain "github.com/chopchop-market/chopchop/internal/purchase/domain"
	"github.com/chopchop-market/chopchop/internal/rating/domain"
	"github.com/chopchop-market/chopchop/internal/rating/repository"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupRatingService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	err = db.AutoMigrate(
		&catalogdomain.ProductID{},
		&catalogdomain.VerifiedProduct{},
		&catalogdomain.SecondhandProduct{},
		&purchasedomain.Purchase{},
		&purchasedomain.PurchaseItem{},
		&domain.Rating{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		Repo:     repository.Provide(),
		Products: catalogrepository.Provide(),
	})
	return svc, db, node
}

func ratingBuyer(node *snowflake.Node) identitydomain.Principal {
	return identitydomain.Principal{
		ID:   node.Generate(),
		Role: identitydomain.RoleParticular,
	}
}

func seedSecondhandForRating(t *testing.T, db *gorm.DB, node *snowflake.Node) snowflake.ID {
	t.Helper()
	id := node.Generate()
	if err := db.Create(&catalogdomain.ProductID{ID: id}).Error; err != nil {
		t.Fatalf("seed product id: %v", err)
	}
	product := catalogdomain.SecondhandProduct{
		ID:       id,
		OwnerID:  node.Generate(),
		Name:     "Disc de vinil",
		Slug:     "disc-de-vinil",
		Price:    12,
		Category: catalogdomain.CategoryAltres,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return id
}

func seedPurchaseOf(t *testing.T, db *gorm.DB, node *snowflake.Node, userID, productID snowflake.ID) {
	t.Helper()
	purchaseID := node.Generate()
	header := purchasedomain.Purchase{ID: purchaseID, UserID: userID, Date: time.Now().UTC()}
	if err := db.Create(&header).Error; err != nil {
		t.Fatalf("seed purchase: %v", err)
	}
	item := purchasedomain.PurchaseItem{PurchaseID: purchaseID, ProductID: productID, Count: 1, Paid: 12}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}
}

func TestSubmitRequiresPriorPurchase(t *testing.T) {
	svc, db, node := setupRatingService(t)
	productID := seedSecondhandForRating(t, db, node)
	owner := ratingBuyer(node)

	err := svc.Submit(context.Background(), owner, domain.SubmitRequest{ProductID: productID, Value: 4})
	if err != domain.ErrNotEligible {
		t.Fatalf("expected ErrNotEligible, got %v", err)
	}

	seedPurchaseOf(t, db, node, owner.ID, productID)
	if err := svc.Submit(context.Background(), owner, domain.SubmitRequest{ProductID: productID, Value: 4}); err != nil {
		t.Fatalf("submit after purchase: %v", err)
	}

	got, err := svc.Get(context.Background(), owner.ID, productID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Value != 4 {
		t.Fatalf("expected value 4, got %v", got.Value)
	}
}

func TestSubmitRejectsOutOfRangeValue(t *testing.T) {
	svc, db, node := setupRatingService(t)
	productID := seedSecondhandForRating(t, db, node)
	owner := ratingBuyer(node)

	for _, value := range []float64{0.5, 5.5, -1, 0} {
		err := svc.Submit(context.Background(), owner, domain.SubmitRequest{ProductID: productID, Value: value})
		if err != domain.ErrInvalidValue {
			t.Fatalf("value %v: expected ErrInvalidValue, got %v", value, err)
		}
	}
}

func TestSubmitBoundaryValues(t *testing.T) {
	svc, db, node := setupRatingService(t)
	productID := seedSecondhandForRating(t, db, node)
	owner := ratingBuyer(node)
	seedPurchaseOf(t, db, node, owner.ID, productID)

	if err := svc.Submit(context.Background(), owner, domain.SubmitRequest{ProductID: productID, Value: 1.0}); err != nil {
		t.Fatalf("value 1.0: %v", err)
	}
	if err := svc.Submit(context.Background(), owner, domain.SubmitRequest{ProductID: productID, Value: 5.0}); err != nil {
		t.Fatalf("value 5.0: %v", err)
	}
}

func TestSubmitUnknownProduct(t *testing.T) {
	svc, _, node := setupRatingService(t)

	err := svc.Submit(context.Background(), ratingBuyer(node), domain.SubmitRequest{ProductID: node.Generate(), Value: 3})
	if err != domain.ErrInvalidProduct {
		t.Fatalf("expected ErrInvalidProduct, got %v", err)
	}
}

func TestResubmitUpdatesInsteadOfDuplicating(t *testing.T) {
	svc, db, node := setupRatingService(t)
	productID := seedSecondhandForRating(t, db, node)
	owner := ratingBuyer(node)
	seedPurchaseOf(t, db, node, owner.ID, productID)

	if err := svc.Submit(context.Background(), owner, domain.SubmitRequest{ProductID: productID, Value: 2}); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if err := svc.Submit(context.Background(), owner, domain.SubmitRequest{ProductID: productID, Value: 5}); err != nil {
		t.Fatalf("second submit: %v", err)
	}

	var count int64
	if err := db.Model(&domain.Rating{}).Where("owner_id = ? AND product_id = ?", owner.ID, productID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single rating row, got %d", count)
	}

	got, err := svc.Get(context.Background(), owner.ID, productID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Value != 5 {
		t.Fatalf("expected updated value 5, got %v", got.Value)
	}
}

func TestSubmitRefreshesProductRating(t *testing.T) {
	svc, db, node := setupRatingService(t)
	productID := seedSecondhandForRating(t, db, node)

	first := ratingBuyer(node)
	second := ratingBuyer(node)
	seedPurchaseOf(t, db, node, first.ID, productID)
	seedPurchaseOf(t, db, node, second.ID, productID)

	if err := svc.Submit(context.Background(), first, domain.SubmitRequest{ProductID: productID, Value: 2}); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if err := svc.Submit(context.Background(), second, domain.SubmitRequest{ProductID: productID, Value: 4}); err != nil {
		t.Fatalf("second submit: %v", err)
	}

	avg, err := svc.ProductRating(context.Background(), productID)
	if err != nil {
		t.Fatalf("product rating: %v", err)
	}
	if avg != 3 {
		t.Fatalf("expected denormalized rating 3, got %v", avg)
	}
}

func TestGetMissingRating(t *testing.T) {
	svc, db, node := setupRatingService(t)
	productID := seedSecondhandForRating(t, db, node)

	if _, err := svc.Get(context.Background(), node.Generate(), productID); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProductRatingUnknownProduct(t *testing.T) {
	svc, _, node := setupRatingService(t)

	if _, err := svc.ProductRating(context.Background(), node.Generate()); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
