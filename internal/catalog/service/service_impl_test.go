package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/chopchop-market/chopchop/internal/catalog/domain"
	"github.com/chopchop-market/chopchop/internal/catalog/repository"
	"github.com/chopchop-market/chopchop/internal/clock"
	"github.com/chopchop-market/chopchop/internal/config"
	identitydomain "github.com/chopchop-market/chopchop/internal/identity/domain"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupCatalogService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
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

	if err := db.AutoMigrate(&domain.ProductID{}, &domain.VerifiedProduct{}, &domain.SecondhandProduct{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	svc := New(Params{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Clock:  clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		Repo:   repository.Provide(),
		Holder: config.NewStaticMarketplaceConfigHolder(config.DefaultMarketplaceConfig()),
	})
	return svc, db, node
}

func professional(node *snowflake.Node) identitydomain.Principal {
	return identitydomain.Principal{
		ID:      node.Generate(),
		Name:    "Mireia",
		Surname: "Soler",
		Role:    identitydomain.RoleProfessional,
		TaxID:   "B12345678",
	}
}

func particular(node *snowflake.Node) identitydomain.Principal {
	return identitydomain.Principal{
		ID:      node.Generate(),
		Name:    "Pau",
		Surname: "Ferrer",
		Role:    identitydomain.RoleParticular,
	}
}

func admin(node *snowflake.Node) identitydomain.Principal {
	return identitydomain.Principal{
		ID:   node.Generate(),
		Name: "Root",
		Role: identitydomain.RoleAdmin,
	}
}

func strPtr(s string) *string { return &s }
func intPtr(v int64) *int64   { return &v }

func TestCreateVerifiedAndGet(t *testing.T) {
	svc, _, node := setupCatalogService(t)
	seller := professional(node)

	id, err := svc.Create(context.Background(), seller, domain.CreateRequest{
		Kind:        "verified",
		Name:        "Cafetera italiana",
		Description: "Cafetera de sis tasses",
		Price:       24.90,
		Category:    "cuina",
		SKU:         strPtr("CAF-001"),
		Stock:       intPtr(10),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero id")
	}

	product, err := svc.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if product.Kind != domain.KindVerified {
		t.Fatalf("expected verified kind, got %s", product.Kind)
	}
	if product.SKU == nil || *product.SKU != "CAF-001" {
		t.Fatalf("expected sku CAF-001, got %v", product.SKU)
	}
	if product.Stock == nil || *product.Stock != 10 {
		t.Fatalf("expected stock 10, got %v", product.Stock)
	}
	if product.Slug != "cafetera-italiana" {
		t.Fatalf("expected slug, got %s", product.Slug)
	}
}

func TestCreateSecondhandIgnoresStock(t *testing.T) {
	svc, _, node := setupCatalogService(t)
	seller := particular(node)

	id, err := svc.Create(context.Background(), seller, domain.CreateRequest{
		Kind:      "secondhand",
		Name:      "Bicicleta de muntanya",
		Price:     120,
		Category:  "esports",
		Condition: "usat",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	product, err := svc.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if product.Kind != domain.KindSecondhand {
		t.Fatalf("expected secondhand kind, got %s", product.Kind)
	}
	if product.SKU != nil || product.Stock != nil || product.Sold != nil {
		t.Fatal("secondhand product must not carry sku, stock or sold")
	}
	if product.Condition != domain.ConditionUsed {
		t.Fatalf("expected condition usat, got %s", product.Condition)
	}
}

func TestCreateVerifiedRequiresCapability(t *testing.T) {
	svc, _, node := setupCatalogService(t)

	_, err := svc.Create(context.Background(), particular(node), domain.CreateRequest{
		Kind:     "verified",
		Name:     "Monitor",
		Price:    80,
		Category: "electronica",
		SKU:      strPtr("MON-1"),
		Stock:    intPtr(3),
	})
	if err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCreateSecondhandRejectsEnterprise(t *testing.T) {
	svc, _, node := setupCatalogService(t)

	seller := identitydomain.Principal{
		ID:    node.Generate(),
		Role:  identitydomain.RoleEnterprise,
		TaxID: "A00000001",
	}
	_, err := svc.Create(context.Background(), seller, domain.CreateRequest{
		Kind:     "secondhand",
		Name:     "Cadira",
		Price:    15,
		Category: "mobles",
	})
	if err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCreateVerifiedMissingSKU(t *testing.T) {
	svc, _, node := setupCatalogService(t)

	_, err := svc.Create(context.Background(), professional(node), domain.CreateRequest{
		Kind:     "verified",
		Name:     "Teclat",
		Price:    30,
		Category: "electronica",
		Stock:    intPtr(5),
	})
	if err != domain.ErrMissingSKU {
		t.Fatalf("expected ErrMissingSKU, got %v", err)
	}
}

func TestCreateVerifiedDuplicateSKU(t *testing.T) {
	svc, _, node := setupCatalogService(t)
	seller := professional(node)

	req := domain.CreateRequest{
		Kind:     "verified",
		Name:     "Ratoli",
		Price:    12,
		Category: "electronica",
		SKU:      strPtr("RAT-1"),
		Stock:    intPtr(5),
	}
	if _, err := svc.Create(context.Background(), seller, req); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create(context.Background(), seller, req)
	if err != domain.ErrDuplicateSKU {
		t.Fatalf("expected ErrDuplicateSKU, got %v", err)
	}
}

func TestCreateDuplicateSKUAcrossOwnersAllowed(t *testing.T) {
	svc, _, node := setupCatalogService(t)

	req := domain.CreateRequest{
		Kind:     "verified",
		Name:     "Auriculars",
		Price:    45,
		Category: "electronica",
		SKU:      strPtr("AUR-1"),
		Stock:    intPtr(2),
	}
	if _, err := svc.Create(context.Background(), professional(node), req); err != nil {
		t.Fatalf("first owner: %v", err)
	}
	if _, err := svc.Create(context.Background(), professional(node), req); err != nil {
		t.Fatalf("second owner: %v", err)
	}
}

func TestCreateRejectsUnknownCategory(t *testing.T) {
	svc, _, node := setupCatalogService(t)

	_, err := svc.Create(context.Background(), particular(node), domain.CreateRequest{
		Kind:     "secondhand",
		Name:     "Cosa",
		Price:    1,
		Category: "inexistent",
	})
	if err != domain.ErrInvalidCategory {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestCreateRejectsNegativePrice(t *testing.T) {
	svc, _, node := setupCatalogService(t)

	_, err := svc.Create(context.Background(), particular(node), domain.CreateRequest{
		Kind:     "secondhand",
		Name:     "Cosa",
		Price:    -1,
		Category: "altres",
	})
	if err != domain.ErrInvalidPrice {
		t.Fatalf("expected ErrInvalidPrice, got %v", err)
	}
}

func TestCreateRejectsLongDescription(t *testing.T) {
	svc, _, node := setupCatalogService(t)
	seller := particular(node)

	limit := config.DefaultMarketplaceConfig().MaxDescriptionLen
	_, err := svc.Create(context.Background(), seller, domain.CreateRequest{
		Kind:        "secondhand",
		Name:        "Puzle",
		Description: strings.Repeat("a", limit+1),
		Price:       5,
		Category:    "jocs_de_taula",
	})
	if err != domain.ErrInvalidDescription {
		t.Fatalf("expected ErrInvalidDescription, got %v", err)
	}
}

func TestUpdateRejectsLongDescription(t *testing.T) {
	svc, _, node := setupCatalogService(t)
	owner := particular(node)

	id, err := svc.Create(context.Background(), owner, domain.CreateRequest{
		Kind:     "secondhand",
		Name:     "Puzle",
		Price:    5,
		Category: "jocs_de_taula",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	limit := config.DefaultMarketplaceConfig().MaxDescriptionLen
	err = svc.Update(context.Background(), owner, domain.UpdateRequest{
		ID:          id,
		Name:        "Puzle",
		Description: strings.Repeat("a", limit+1),
		Price:       5,
		Category:    "jocs_de_taula",
	})
	if err != domain.ErrInvalidDescription {
		t.Fatalf("expected ErrInvalidDescription, got %v", err)
	}
}

func TestGetUnknownID(t *testing.T) {
	svc, _, node := setupCatalogService(t)

	_, err := svc.Get(context.Background(), node.Generate())
	if err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateOwnScopedToOwner(t *testing.T) {
	svc, _, node := setupCatalogService(t)
	owner := particular(node)
	stranger := particular(node)

	id, err := svc.Create(context.Background(), owner, domain.CreateRequest{
		Kind:     "secondhand",
		Name:     "Llum de taula",
		Price:    18,
		Category: "mobles",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	update := domain.UpdateRequest{
		ID:       id,
		Name:     "Llum de taula vintage",
		Price:    22,
		Category: "antiguitats",
	}

	if err := svc.Update(context.Background(), stranger, update); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound for stranger, got %v", err)
	}
	if err := svc.Update(context.Background(), owner, update); err != nil {
		t.Fatalf("owner update: %v", err)
	}

	product, err := svc.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if product.Name != "Llum de taula vintage" || product.Category != domain.CategoryAntiguitats {
		t.Fatalf("update not applied: %+v", product)
	}
}

func TestUpdateVerifiedRequiresStock(t *testing.T) {
	svc, _, node := setupCatalogService(t)
	seller := professional(node)

	id, err := svc.Create(context.Background(), seller, domain.CreateRequest{
		Kind:     "verified",
		Name:     "Molinet de cafe",
		Price:    35,
		Category: "cuina",
		SKU:      strPtr("MOL-001"),
		Stock:    intPtr(25),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	err = svc.Update(context.Background(), seller, domain.UpdateRequest{
		ID:       id,
		Name:     "Molinet de cafe manual",
		Price:    32,
		Category: "cuina",
	})
	if err != domain.ErrMissingStock {
		t.Fatalf("expected ErrMissingStock, got %v", err)
	}

	product, err := svc.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if product.Stock == nil || *product.Stock != 25 {
		t.Fatalf("stock changed by rejected update: %+v", product.Stock)
	}

	err = svc.Update(context.Background(), seller, domain.UpdateRequest{
		ID:       id,
		Name:     "Molinet de cafe manual",
		Price:    32,
		Category: "cuina",
		Stock:    intPtr(18),
	})
	if err != nil {
		t.Fatalf("update with stock: %v", err)
	}
	product, err = svc.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if product.Stock == nil || *product.Stock != 18 {
		t.Fatalf("stock not applied: %+v", product.Stock)
	}
}

func TestUpdateAdminBypassesOwnership(t *testing.T) {
	svc, _, node := setupCatalogService(t)
	owner := particular(node)

	id, err := svc.Create(context.Background(), owner, domain.CreateRequest{
		Kind:     "secondhand",
		Name:     "Jaqueta",
		Price:    25,
		Category: "roba",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	err = svc.Update(context.Background(), admin(node), domain.UpdateRequest{
		ID:       id,
		Name:     "Jaqueta de pell",
		Price:    40,
		Category: "roba",
	})
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
}

func TestDeleteHidesProduct(t *testing.T) {
	svc, _, node := setupCatalogService(t)
	owner := professional(node)

	id, err := svc.Create(context.Background(), owner, domain.CreateRequest{
		Kind:     "verified",
		Name:     "Taladre",
		Price:    60,
		Category: "ferramentes",
		SKU:      strPtr("TAL-1"),
		Stock:    intPtr(4),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(context.Background(), owner, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), id); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	// A second delete sees no live row.
	if err := svc.Delete(context.Background(), owner, id); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound on repeat delete, got %v", err)
	}
}

func TestDeleteStrangerNotFound(t *testing.T) {
	svc, _, node := setupCatalogService(t)
	owner := particular(node)

	id, err := svc.Create(context.Background(), owner, domain.CreateRequest{
		Kind:     "secondhand",
		Name:     "Puzle",
		Price:    8,
		Category: "jocs_de_taula",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(context.Background(), particular(node), id); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	// Still visible: the stranger's delete must not have touched it.
	if _, err := svc.Get(context.Background(), id); err != nil {
		t.Fatalf("get after failed delete: %v", err)
	}
}
