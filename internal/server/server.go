package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/chopchop-market/chopchop/internal/authorization"
	"github.com/chopchop-market/chopchop/internal/catalog"
	catalogdomain "github.com/chopchop-market/chopchop/internal/catalog/domain"
	"github.com/chopchop-market/chopchop/internal/config"
	"github.com/chopchop-market/chopchop/internal/identity"
	identitydomain "github.com/chopchop-market/chopchop/internal/identity/domain"
	"github.com/chopchop-market/chopchop/internal/observability"
	obsmiddleware "github.com/chopchop-market/chopchop/internal/observability/logger"
	obsmetrics "github.com/chopchop-market/chopchop/internal/observability/metrics"
	obstracing "github.com/chopchop-market/chopchop/internal/observability/tracing"
	"github.com/chopchop-market/chopchop/internal/purchase"
	purchasedomain "github.com/chopchop-market/chopchop/internal/purchase/domain"
	"github.com/chopchop-market/chopchop/internal/ratelimit"
	"github.com/chopchop-market/chopchop/internal/rating"
	ratingdomain "github.com/chopchop-market/chopchop/internal/rating/domain"
	"github.com/chopchop-market/chopchop/internal/search"
	searchdomain "github.com/chopchop-market/chopchop/internal/search/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	identity.Module,
	catalog.Module,
	search.Module,
	purchase.Module,
	rating.Module,
	ratelimit.Module,
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	log          *zap.Logger
	db           *gorm.DB
	genID        *snowflake.Node
	identitySvc  identitydomain.Service
	authzSvc     authorization.Service
	catalogSvc   catalogdomain.Service
	searchSvc    searchdomain.Service
	purchaseSvc  purchasedomain.Service
	ratingSvc    ratingdomain.Service
	writeLimiter *ratelimit.WriteLimiter
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	Log          *zap.Logger
	DB           *gorm.DB
	GenID        *snowflake.Node
	IdentitySvc  identitydomain.Service
	AuthzSvc     authorization.Service
	CatalogSvc   catalogdomain.Service
	SearchSvc    searchdomain.Service
	PurchaseSvc  purchasedomain.Service
	RatingSvc    ratingdomain.Service
	WriteLimiter *ratelimit.WriteLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		log:          p.Log.Named("http.server"),
		db:           p.DB,
		genID:        p.GenID,
		identitySvc:  p.IdentitySvc,
		authzSvc:     p.AuthzSvc,
		catalogSvc:   p.CatalogSvc,
		searchSvc:    p.SearchSvc,
		purchaseSvc:  p.PurchaseSvc,
		ratingSvc:    p.RatingSvc,
		writeLimiter: p.WriteLimiter,
	}
}

func registerRoutes(s *Server) {
	s.RegisterAPIRoutes()
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) RegisterAPIRoutes() {
	v1 := s.engine.Group("/v1")

	// Catalog reads are public.
	v1.GET("/products", s.SearchProducts)
	v1.GET("/products/popular", s.PopularProducts)
	v1.GET("/products/:id", s.GetProduct)
	v1.GET("/products/:id/rating", s.GetProductRating)
	v1.GET("/ratings/:owner/:product", s.GetRating)

	authed := v1.Group("")
	authed.Use(s.AuthRequired())

	writes := authed.Group("")
	writes.Use(s.RateLimitWrites())

	writes.POST("/products", s.CreateProduct)
	writes.PUT("/products/:id",
		s.requireAuthorization(authorization.ObjectProduct, authorization.ActionProductUpdate),
		s.UpdateProduct)
	writes.DELETE("/products/:id",
		s.requireAuthorization(authorization.ObjectProduct, authorization.ActionProductDelete),
		s.DeleteProduct)

	writes.POST("/purchases",
		s.requireAuthorization(authorization.ObjectPurchase, authorization.ActionPurchaseCreate),
		s.CreatePurchase)
	authed.GET("/purchases/:id",
		s.requireAuthorization(authorization.ObjectPurchase, authorization.ActionPurchaseView),
		s.GetPurchase)
	authed.GET("/my/purchases",
		s.requireAuthorization(authorization.ObjectPurchase, authorization.ActionPurchaseView),
		s.ListMyPurchases)

	writes.POST("/ratings",
		s.requireAuthorization(authorization.ObjectRating, authorization.ActionRatingSubmit),
		s.SubmitRating)
}
