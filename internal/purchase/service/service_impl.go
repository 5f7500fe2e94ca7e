package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/chopchop-market/chopchop/internal/catalog/domain"
	"github.com/chopchop-market/chopchop/internal/clock"
	"github.com/chopchop-market/chopchop/internal/config"
	identitydomain "github.com/chopchop-market/chopchop/internal/identity/domain"
	"github.com/chopchop-market/chopchop/internal/purchase/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	Products catalogdomain.Repository
	Holder   *config.MarketplaceConfigHolder
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	products catalogdomain.Repository
	holder   *config.MarketplaceConfigHolder
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("purchase.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		products: p.Products,
		holder:   p.Holder,
	}
}

func (s *Service) Create(ctx context.Context, principal identitydomain.Principal, req domain.CreateRequest) (snowflake.ID, error) {
	if !principal.CanPurchase() {
		return 0, domain.ErrForbidden
	}
	if len(req.Items) == 0 {
		return 0, domain.ErrEmptyItems
	}
	if max := s.holder.Get().MaxPurchaseItems; len(req.Items) > max {
		return 0, domain.ErrTooManyItems
	}

	seen := make(map[snowflake.ID]struct{}, len(req.Items))
	for _, item := range req.Items {
		if item.ProductID == 0 {
			return 0, domain.ErrUnknownProduct
		}
		if item.Count <= 0 {
			return 0, domain.ErrInvalidCount
		}
		if item.Paid < 0 {
			return 0, domain.ErrInvalidPaid
		}
		if _, dup := seen[item.ProductID]; dup {
			return 0, domain.ErrDuplicateItem
		}
		seen[item.ProductID] = struct{}{}
	}

	id := s.genID.Generate()
	purchase := &domain.Purchase{
		ID:     id,
		UserID: principal.ID,
		Date:   s.clock.Now(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.InsertPurchase(ctx, tx, purchase); err != nil {
			return err
		}
		for _, item := range req.Items {
			kind, err := s.products.ResolveKind(ctx, tx, item.ProductID)
			if err != nil {
				return err
			}
			if kind == "" {
				return domain.ErrUnknownProduct
			}
			err = s.repo.InsertItem(ctx, tx, &domain.PurchaseItem{
				PurchaseID: id,
				ProductID:  item.ProductID,
				Count:      item.Count,
				Paid:       item.Paid,
			})
			if err != nil {
				return err
			}
			if kind == catalogdomain.KindVerified {
				if err := s.repo.ApplyVerifiedSale(ctx, tx, item.ProductID, item.Count); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("purchase created",
		zap.Int64("purchase_id", id.Int64()),
		zap.Int64("user_id", principal.ID.Int64()),
		zap.Int("items", len(req.Items)),
	)
	return id, nil
}

func (s *Service) Get(ctx context.Context, principal identitydomain.Principal, id snowflake.ID) (domain.Purchase, error) {
	if id == 0 {
		return domain.Purchase{}, domain.ErrNotFound
	}

	purchase, err := s.repo.FindByID(ctx, s.db, id, principal.ID)
	if err != nil {
		return domain.Purchase{}, err
	}
	if purchase == nil {
		return domain.Purchase{}, domain.ErrNotFound
	}

	items, err := s.repo.ItemsFor(ctx, s.db, []snowflake.ID{purchase.ID})
	if err != nil {
		return domain.Purchase{}, err
	}
	purchase.Items = items
	return *purchase, nil
}

func (s *Service) ListMine(ctx context.Context, principal identitydomain.Principal, date *time.Time) ([]domain.Purchase, error) {
	purchases, err := s.repo.ListByUser(ctx, s.db, principal.ID, date)
	if err != nil {
		return nil, err
	}
	if len(purchases) == 0 {
		return []domain.Purchase{}, nil
	}

	ids := make([]snowflake.ID, 0, len(purchases))
	for _, p := range purchases {
		ids = append(ids, p.ID)
	}
	items, err := s.repo.ItemsFor(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}

	byPurchase := make(map[snowflake.ID][]domain.PurchaseItem, len(purchases))
	for _, item := range items {
		byPurchase[item.PurchaseID] = append(byPurchase[item.PurchaseID], item)
	}
	for i := range purchases {
		purchases[i].Items = byPurchase[purchases[i].ID]
	}
	return purchases, nil
}
