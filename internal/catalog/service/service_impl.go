package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/chopchop-market/chopchop/internal/catalog/domain"
	"github.com/chopchop-market/chopchop/internal/clock"
	"github.com/chopchop-market/chopchop/internal/config"
	identitydomain "github.com/chopchop-market/chopchop/internal/identity/domain"
	chopdb "github.com/chopchop-market/chopchop/pkg/db"
	"github.com/gosimple/slug"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Repo   domain.Repository
	Holder *config.MarketplaceConfigHolder
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	repo   domain.Repository
	holder *config.MarketplaceConfigHolder
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("catalog.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		repo:   p.Repo,
		holder: p.Holder,
	}
}

func (s *Service) Create(ctx context.Context, principal identitydomain.Principal, req domain.CreateRequest) (snowflake.ID, error) {
	kind, err := domain.ParseKind(req.Kind)
	if err != nil {
		return 0, err
	}

	switch kind {
	case domain.KindVerified:
		if !principal.CanCreateVerified() {
			return 0, domain.ErrForbidden
		}
	case domain.KindSecondhand:
		if !principal.CanCreateSecondhand() {
			return 0, domain.ErrForbidden
		}
	}

	limits := s.holder.Get()

	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > limits.MaxProductNameLen {
		return 0, domain.ErrInvalidName
	}
	description := strings.TrimSpace(req.Description)
	if len(description) > limits.MaxDescriptionLen {
		return 0, domain.ErrInvalidDescription
	}
	if req.Price < 0 {
		return 0, domain.ErrInvalidPrice
	}
	category, err := domain.ParseCategory(req.Category)
	if err != nil {
		return 0, err
	}
	condition, err := domain.ParseCondition(req.Condition)
	if err != nil {
		return 0, err
	}

	id := s.genID.Generate()
	now := s.clock.Now()

	switch kind {
	case domain.KindVerified:
		if req.SKU == nil || strings.TrimSpace(*req.SKU) == "" {
			return 0, domain.ErrMissingSKU
		}
		if req.Stock == nil || *req.Stock < 0 {
			return 0, domain.ErrMissingStock
		}
		product := &domain.VerifiedProduct{
			ID:          id,
			OwnerID:     principal.ID,
			SKU:         strings.TrimSpace(*req.SKU),
			Name:        name,
			Slug:        slug.Make(name),
			Description: description,
			Stock:       *req.Stock,
			Price:       req.Price,
			Image:       strings.TrimSpace(req.Image),
			Category:    category,
			Condition:   condition,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if req.Metadata != nil {
			product.Metadata = datatypes.JSONMap(req.Metadata)
		}
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := s.repo.AllocateID(ctx, tx, id); err != nil {
				return err
			}
			return s.repo.InsertVerified(ctx, tx, product)
		})
		if err != nil {
			if chopdb.IsDuplicateKeyErr(err) {
				return 0, domain.ErrDuplicateSKU
			}
			return 0, err
		}

	case domain.KindSecondhand:
		product := &domain.SecondhandProduct{
			ID:          id,
			OwnerID:     principal.ID,
			Name:        name,
			Slug:        slug.Make(name),
			Description: description,
			Price:       req.Price,
			Image:       strings.TrimSpace(req.Image),
			Category:    category,
			Condition:   condition,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if req.Metadata != nil {
			product.Metadata = datatypes.JSONMap(req.Metadata)
		}
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := s.repo.AllocateID(ctx, tx, id); err != nil {
				return err
			}
			return s.repo.InsertSecondhand(ctx, tx, product)
		})
		if err != nil {
			return 0, err
		}
	}

	s.log.Info("product created",
		zap.String("kind", string(kind)),
		zap.Int64("product_id", id.Int64()),
		zap.Int64("owner_id", principal.ID.Int64()),
	)
	return id, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (domain.Product, error) {
	if id == 0 {
		return domain.Product{}, domain.ErrInvalidID
	}

	kind, err := s.repo.ResolveKind(ctx, s.db, id)
	if err != nil {
		return domain.Product{}, err
	}

	switch kind {
	case domain.KindVerified:
		item, err := s.repo.FindVerifiedByID(ctx, s.db, id)
		if err != nil {
			return domain.Product{}, err
		}
		if item == nil {
			return domain.Product{}, domain.ErrNotFound
		}
		return item.ToProduct(), nil
	case domain.KindSecondhand:
		item, err := s.repo.FindSecondhandByID(ctx, s.db, id)
		if err != nil {
			return domain.Product{}, err
		}
		if item == nil {
			return domain.Product{}, domain.ErrNotFound
		}
		return item.ToProduct(), nil
	default:
		return domain.Product{}, domain.ErrNotFound
	}
}

func (s *Service) Update(ctx context.Context, principal identitydomain.Principal, req domain.UpdateRequest) error {
	if req.ID == 0 {
		return domain.ErrInvalidID
	}

	limits := s.holder.Get()

	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > limits.MaxProductNameLen {
		return domain.ErrInvalidName
	}
	description := strings.TrimSpace(req.Description)
	if len(description) > limits.MaxDescriptionLen {
		return domain.ErrInvalidDescription
	}
	if req.Price < 0 {
		return domain.ErrInvalidPrice
	}
	category, err := domain.ParseCategory(req.Category)
	if err != nil {
		return err
	}
	condition, err := domain.ParseCondition(req.Condition)
	if err != nil {
		return err
	}

	owner := ownerFilter(principal)
	now := s.clock.Now()

	kind, err := s.repo.ResolveKind(ctx, s.db, req.ID)
	if err != nil {
		return err
	}

	var affected int64
	switch kind {
	case domain.KindVerified:
		if req.Stock == nil || *req.Stock < 0 {
			return domain.ErrMissingStock
		}
		product := &domain.VerifiedProduct{
			ID:          req.ID,
			Name:        name,
			Slug:        slug.Make(name),
			Description: description,
			Stock:       *req.Stock,
			Price:       req.Price,
			Image:       strings.TrimSpace(req.Image),
			Category:    category,
			Condition:   condition,
			Discount:    req.Discount,
			UpdatedAt:   now,
		}
		if req.Metadata != nil {
			product.Metadata = datatypes.JSONMap(req.Metadata)
		}
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			affected, err = s.repo.UpdateVerified(ctx, tx, product, owner)
			return err
		})
	case domain.KindSecondhand:
		product := &domain.SecondhandProduct{
			ID:          req.ID,
			Name:        name,
			Slug:        slug.Make(name),
			Description: description,
			Price:       req.Price,
			Image:       strings.TrimSpace(req.Image),
			Category:    category,
			Condition:   condition,
			Discount:    req.Discount,
			UpdatedAt:   now,
		}
		if req.Metadata != nil {
			product.Metadata = datatypes.JSONMap(req.Metadata)
		}
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			affected, err = s.repo.UpdateSecondhand(ctx, tx, product, owner)
			return err
		})
	default:
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, principal identitydomain.Principal, id snowflake.ID) error {
	if id == 0 {
		return domain.ErrInvalidID
	}

	owner := ownerFilter(principal)

	kind, err := s.repo.ResolveKind(ctx, s.db, id)
	if err != nil {
		return err
	}

	var affected int64
	switch kind {
	case domain.KindVerified:
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			affected, err = s.repo.SoftDeleteVerified(ctx, tx, id, owner)
			return err
		})
	case domain.KindSecondhand:
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			affected, err = s.repo.SoftDeleteSecondhand(ctx, tx, id, owner)
			return err
		})
	default:
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	s.log.Info("product deleted",
		zap.String("kind", string(kind)),
		zap.Int64("product_id", id.Int64()),
	)
	return nil
}

// ownerFilter returns the ownership constraint for mutations. Admins
// operate on any row.
func ownerFilter(principal identitydomain.Principal) *snowflake.ID {
	if principal.CanBypassOwnership() {
		return nil
	}
	owner := principal.ID
	return &owner
}
