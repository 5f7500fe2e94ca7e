package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/chopchop-market/chopchop/internal/catalog/domain"
	"github.com/chopchop-market/chopchop/internal/config"
	"github.com/chopchop-market/chopchop/internal/search/domain"
	"github.com/chopchop-market/chopchop/internal/search/repository"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupSearchService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.AutoMigrate(&catalogdomain.ProductID{}, &catalogdomain.VerifiedProduct{}, &catalogdomain.SecondhandProduct{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	svc := New(Params{
		DB:     db,
		Log:    zap.NewNop(),
		Repo:   repository.Provide(),
		Holder: config.NewStaticMarketplaceConfigHolder(config.DefaultMarketplaceConfig()),
	})
	return svc, db, node
}

func seedVerified(t *testing.T, db *gorm.DB, node *snowflake.Node, name string, price, rating float64, category catalogdomain.Category) snowflake.ID {
	t.Helper()
	id := node.Generate()
	product := catalogdomain.VerifiedProduct{
		ID:       id,
		OwnerID:  node.Generate(),
		SKU:      fmt.Sprintf("SKU-%d", id),
		Name:     name,
		Slug:     name,
		Price:    price,
		Category: category,
		Rating:   rating,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed verified: %v", err)
	}
	return id
}

func seedSecondhand(t *testing.T, db *gorm.DB, node *snowflake.Node, name string, price, rating float64, category catalogdomain.Category, condition catalogdomain.Condition) snowflake.ID {
	t.Helper()
	id := node.Generate()
	product := catalogdomain.SecondhandProduct{
		ID:        id,
		OwnerID:   node.Generate(),
		Name:      name,
		Slug:      name,
		Price:     price,
		Category:  category,
		Condition: condition,
		Rating:    rating,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed secondhand: %v", err)
	}
	return id
}

func floatPtr(v float64) *float64 { return &v }

func TestSearchUnionsBothKinds(t *testing.T) {
	svc, db, node := setupSearchService(t)

	seedVerified(t, db, node, "Torradora", 30, 4, catalogdomain.CategoryCuina)
	seedSecondhand(t, db, node, "Batedora", 10, 3, catalogdomain.CategoryCuina, catalogdomain.ConditionUsed)

	items, err := svc.Search(context.Background(), domain.Filter{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	kinds := map[catalogdomain.Kind]bool{}
	for _, item := range items {
		kinds[item.Kind] = true
	}
	if !kinds[catalogdomain.KindVerified] || !kinds[catalogdomain.KindSecondhand] {
		t.Fatalf("expected both kinds, got %v", kinds)
	}
}

func TestSearchNameSubstringCaseInsensitive(t *testing.T) {
	svc, db, node := setupSearchService(t)

	seedVerified(t, db, node, "Guitarra Espanyola", 200, 5, catalogdomain.CategoryInstruments)
	seedSecondhand(t, db, node, "Flauta", 20, 4, catalogdomain.CategoryInstruments, catalogdomain.ConditionLikeNew)

	items, err := svc.Search(context.Background(), domain.Filter{Name: "guitarra"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Guitarra Espanyola" {
		t.Fatalf("expected a single guitarra, got %+v", items)
	}
}

func TestSearchConjunctiveFilters(t *testing.T) {
	svc, db, node := setupSearchService(t)

	seedSecondhand(t, db, node, "Taula de fusta", 80, 4, catalogdomain.CategoryMobles, catalogdomain.ConditionUsed)
	seedSecondhand(t, db, node, "Taula de vidre", 150, 5, catalogdomain.CategoryMobles, catalogdomain.ConditionLikeNew)
	seedSecondhand(t, db, node, "Cadira", 90, 5, catalogdomain.CategoryMobles, catalogdomain.ConditionLikeNew)

	items, err := svc.Search(context.Background(), domain.Filter{
		Name:      "taula",
		Category:  "mobles",
		Condition: "seminou",
		MinPrice:  floatPtr(100),
		MaxPrice:  floatPtr(200),
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Taula de vidre" {
		t.Fatalf("expected only the glass table, got %+v", items)
	}
}

func TestSearchMinRatingOrdersByRating(t *testing.T) {
	svc, db, node := setupSearchService(t)

	seedVerified(t, db, node, "Mitja", 5, 3.5, catalogdomain.CategoryRoba)
	seedSecondhand(t, db, node, "Alta", 5, 4.8, catalogdomain.CategoryRoba, catalogdomain.ConditionUsed)
	seedVerified(t, db, node, "Baixa", 5, 3.0, catalogdomain.CategoryRoba)

	items, err := svc.Search(context.Background(), domain.Filter{MinRating: floatPtr(3.2)})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items above threshold, got %d", len(items))
	}
	if items[0].Name != "Alta" || items[1].Name != "Mitja" {
		t.Fatalf("expected rating DESC order, got %+v", items)
	}
}

func TestSearchPagination(t *testing.T) {
	svc, db, node := setupSearchService(t)

	for i := 0; i < 15; i++ {
		seedVerified(t, db, node, fmt.Sprintf("Producte %02d", i), 10, 3, catalogdomain.CategoryAltres)
	}

	first, err := svc.Search(context.Background(), domain.Filter{Page: 0})
	if err != nil {
		t.Fatalf("page 0: %v", err)
	}
	if len(first) != 12 {
		t.Fatalf("expected full page of 12, got %d", len(first))
	}

	second, err := svc.Search(context.Background(), domain.Filter{Page: 1})
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if len(second) != 3 {
		t.Fatalf("expected remainder of 3, got %d", len(second))
	}

	empty, err := svc.Search(context.Background(), domain.Filter{Page: 7})
	if err != nil {
		t.Fatalf("page 7: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty page, got %d", len(empty))
	}
}

func TestSearchRejectsNegativePage(t *testing.T) {
	svc, _, _ := setupSearchService(t)

	if _, err := svc.Search(context.Background(), domain.Filter{Page: -1}); err != domain.ErrInvalidPage {
		t.Fatalf("expected ErrInvalidPage, got %v", err)
	}
}

func TestSearchRejectsUnknownCategory(t *testing.T) {
	svc, _, _ := setupSearchService(t)

	if _, err := svc.Search(context.Background(), domain.Filter{Category: "nope"}); err != domain.ErrInvalidCategory {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestSearchSkipsDeleted(t *testing.T) {
	svc, db, node := setupSearchService(t)

	id := seedVerified(t, db, node, "Esborrat", 10, 5, catalogdomain.CategoryAltres)
	if err := db.Exec("UPDATE verified_products SET deleted = ? WHERE id = ?", true, id).Error; err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	seedVerified(t, db, node, "Viu", 10, 5, catalogdomain.CategoryAltres)

	items, err := svc.Search(context.Background(), domain.Filter{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Viu" {
		t.Fatalf("expected only the live product, got %+v", items)
	}
}

func TestSearchByOwner(t *testing.T) {
	svc, db, node := setupSearchService(t)

	owner := node.Generate()
	product := catalogdomain.SecondhandProduct{
		ID:       node.Generate(),
		OwnerID:  owner,
		Name:     "Meva",
		Slug:     "meva",
		Price:    10,
		Category: catalogdomain.CategoryAltres,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	seedSecondhand(t, db, node, "Aliena", 10, 0, catalogdomain.CategoryAltres, catalogdomain.ConditionUsed)

	items, err := svc.Search(context.Background(), domain.Filter{OwnerID: owner})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Meva" {
		t.Fatalf("expected only the owner's product, got %+v", items)
	}
}

func TestPopularsTopRated(t *testing.T) {
	svc, db, node := setupSearchService(t)

	for i := 0; i < 14; i++ {
		seedVerified(t, db, node, fmt.Sprintf("P%02d", i), 10, float64(i)*0.3, catalogdomain.CategoryAltres)
	}

	items, err := svc.Populars(context.Background())
	if err != nil {
		t.Fatalf("populars: %v", err)
	}
	if len(items) != 12 {
		t.Fatalf("expected populars limit 12, got %d", len(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i].Rating > items[i-1].Rating {
			t.Fatalf("populars not ordered by rating: %+v", items)
		}
	}
}
