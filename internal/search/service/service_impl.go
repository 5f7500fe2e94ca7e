package service

import (
	"context"
	"encoding/json"
	"time"

	catalogdomain "github.com/chopchop-market/chopchop/internal/catalog/domain"
	"github.com/chopchop-market/chopchop/internal/config"
	"github.com/chopchop-market/chopchop/internal/search/domain"
	"github.com/chopchop-market/chopchop/pkg/db/pagination"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const popularsCacheKey = "search:populars"

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Repo   domain.Repository
	Holder *config.MarketplaceConfigHolder
	Redis  *redis.Client `optional:"true"`
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	repo   domain.Repository
	holder *config.MarketplaceConfigHolder
	redis  *redis.Client
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("search.service"),
		repo:   p.Repo,
		holder: p.Holder,
		redis:  p.Redis,
	}
}

func (s *Service) Search(ctx context.Context, filter domain.Filter) ([]domain.Summary, error) {
	if filter.Page < 0 {
		return nil, domain.ErrInvalidPage
	}
	if filter.Category != "" {
		if _, err := catalogdomain.ParseCategory(filter.Category); err != nil {
			return nil, domain.ErrInvalidCategory
		}
	}
	if filter.Condition != "" {
		if _, err := catalogdomain.ParseCondition(filter.Condition); err != nil {
			return nil, domain.ErrInvalidCondition
		}
	}

	page := pagination.New(filter.Page)
	items, err := s.repo.Search(ctx, s.db, filter, page.Limit(), page.Offset())
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Summary{}
	}
	return items, nil
}

func (s *Service) Populars(ctx context.Context) ([]domain.Summary, error) {
	cfg := s.holder.Get()

	if cached, ok := s.popularsFromCache(ctx); ok {
		return cached, nil
	}

	items, err := s.repo.Populars(ctx, s.db, cfg.PopularsLimit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Summary{}
	}

	s.popularsToCache(ctx, items, time.Duration(cfg.PopularsCacheTTL)*time.Second)
	return items, nil
}

func (s *Service) popularsFromCache(ctx context.Context) ([]domain.Summary, bool) {
	if s.redis == nil {
		return nil, false
	}
	raw, err := s.redis.Get(ctx, popularsCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.Warn("populars cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var items []domain.Summary
	if err := json.Unmarshal(raw, &items); err != nil {
		s.log.Warn("populars cache entry corrupt", zap.Error(err))
		return nil, false
	}
	return items, true
}

func (s *Service) popularsToCache(ctx context.Context, items []domain.Summary, ttl time.Duration) {
	if s.redis == nil || ttl <= 0 {
		return
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, popularsCacheKey, raw, ttl).Err(); err != nil {
		s.log.Warn("populars cache write failed", zap.Error(err))
	}
}
