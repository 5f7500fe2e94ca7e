package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/chopchop-market/chopchop/internal/catalog/domain"
	"github.com/chopchop-market/chopchop/internal/clock"
	identitydomain "github.com/chopchop-market/chopchop/internal/identity/domain"
	"github.com/chopchop-market/chopchop/internal/rating/domain"
	chopdb "github.com/chopchop-market/chopchop/pkg/db"
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
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	products catalogdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("rating.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		products: p.Products,
	}
}

func (s *Service) Submit(ctx context.Context, principal identitydomain.Principal, req domain.SubmitRequest) error {
	if req.Value < 1.0 || req.Value > 5.0 {
		return domain.ErrInvalidValue
	}
	if req.ProductID == 0 {
		return domain.ErrInvalidProduct
	}

	now := s.clock.Now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		kind, err := s.products.ResolveKind(ctx, tx, req.ProductID)
		if err != nil {
			return err
		}
		if kind == "" {
			return domain.ErrInvalidProduct
		}

		eligible, err := s.repo.IsEligible(ctx, tx, principal.ID, req.ProductID)
		if err != nil {
			return err
		}
		if !eligible {
			return domain.ErrNotEligible
		}

		existing, err := s.repo.Find(ctx, tx, principal.ID, req.ProductID)
		if err != nil {
			return err
		}
		if existing != nil {
			if err := s.repo.Update(ctx, tx, principal.ID, req.ProductID, req.Value, now); err != nil {
				return err
			}
		} else {
			err := s.repo.Insert(ctx, tx, &domain.Rating{
				ID:        s.genID.Generate(),
				OwnerID:   principal.ID,
				ProductID: req.ProductID,
				Value:     req.Value,
				CreatedAt: now,
				UpdatedAt: now,
			})
			if err != nil {
				if chopdb.IsDuplicateKeyErr(err) {
					return domain.ErrConflict
				}
				return err
			}
		}

		avg, err := s.repo.Average(ctx, tx, req.ProductID)
		if err != nil {
			return err
		}
		return s.repo.RefreshProductRating(ctx, tx, kind, req.ProductID, avg)
	})
	if err != nil {
		return err
	}

	s.log.Info("rating submitted",
		zap.Int64("product_id", req.ProductID.Int64()),
		zap.Int64("owner_id", principal.ID.Int64()),
		zap.Float64("value", req.Value),
	)
	return nil
}

func (s *Service) Get(ctx context.Context, ownerID, productID snowflake.ID) (domain.Rating, error) {
	if ownerID == 0 || productID == 0 {
		return domain.Rating{}, domain.ErrNotFound
	}
	rating, err := s.repo.Find(ctx, s.db, ownerID, productID)
	if err != nil {
		return domain.Rating{}, err
	}
	if rating == nil {
		return domain.Rating{}, domain.ErrNotFound
	}
	return *rating, nil
}

func (s *Service) ProductRating(ctx context.Context, productID snowflake.ID) (float64, error) {
	if productID == 0 {
		return 0, domain.ErrNotFound
	}

	kind, err := s.products.ResolveKind(ctx, s.db, productID)
	if err != nil {
		return 0, err
	}
	switch kind {
	case catalogdomain.KindVerified:
		product, err := s.products.FindVerifiedByID(ctx, s.db, productID)
		if err != nil {
			return 0, err
		}
		if product == nil {
			return 0, domain.ErrNotFound
		}
		return product.Rating, nil
	case catalogdomain.KindSecondhand:
		product, err := s.products.FindSecondhandByID(ctx, s.db, productID)
		if err != nil {
			return 0, err
		}
		if product == nil {
			return 0, domain.ErrNotFound
		}
		return product.Rating, nil
	default:
		return 0, domain.ErrNotFound
	}
}
