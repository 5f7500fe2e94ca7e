package authorization

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	identitydomain "github.com/chopchop-market/chopchop/internal/identity/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectProduct  = "product"
	ObjectPurchase = "purchase"
	ObjectRating   = "rating"
)

const (
	ActionProductView             = "product.view"
	ActionProductCreateVerified   = "product.create_verified"
	ActionProductCreateSecondhand = "product.create_secondhand"
	ActionProductUpdate           = "product.update"
	ActionProductDelete           = "product.delete"

	ActionPurchaseCreate = "purchase.create"
	ActionPurchaseView   = "purchase.view"

	ActionRatingSubmit = "rating.submit"
	ActionRatingView   = "rating.view"
)

var (
	ErrInvalidActor  = errors.New("invalid_actor")
	ErrInvalidObject = errors.New("invalid_object")
	ErrInvalidAction = errors.New("invalid_action")
	ErrForbidden     = errors.New("forbidden")
)

// Service answers "may this principal perform this action on this
// object class". Row-level ownership stays with the feature services;
// this layer only gates the route.
type Service interface {
	Authorize(ctx context.Context, principal identitydomain.Principal, object, action string) error
}

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, principal identitydomain.Principal, object, action string) error {
	if principal.ID == 0 {
		return ErrInvalidActor
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}
	if _, err := identitydomain.ParseRole(string(principal.Role)); err != nil {
		return ErrForbidden
	}

	subject := fmt.Sprintf("user:%d", principal.ID.Int64())
	roleName := fmt.Sprintf("role:%s", principal.Role)
	if err := s.ensureGrouping(subject, roleName); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Debug("authorization denied",
			zap.String("subject", subject),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

// ensureGrouping binds the subject to exactly one role. A principal
// whose role changed between tokens loses the old grouping.
func (s *ServiceImpl) ensureGrouping(subject, roleName string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 || rule[1] == roleName {
			continue
		}
		params := make([]interface{}, 0, len(rule))
		for _, value := range rule {
			params = append(params, value)
		}
		_, _ = s.enforcer.RemoveGroupingPolicy(params...)
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName)
	return err
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Particular accounts sell their own things and buy.
		{"role:particular", ObjectProduct, ActionProductView},
		{"role:particular", ObjectProduct, ActionProductCreateSecondhand},
		{"role:particular", ObjectProduct, ActionProductUpdate},
		{"role:particular", ObjectProduct, ActionProductDelete},
		{"role:particular", ObjectPurchase, ActionPurchaseCreate},
		{"role:particular", ObjectPurchase, ActionPurchaseView},
		{"role:particular", ObjectRating, ActionRatingSubmit},
		{"role:particular", ObjectRating, ActionRatingView},

		// Professionals run verified listings and may also sell and buy
		// as individuals.
		{"role:professional", ObjectProduct, ActionProductView},
		{"role:professional", ObjectProduct, ActionProductCreateVerified},
		{"role:professional", ObjectProduct, ActionProductCreateSecondhand},
		{"role:professional", ObjectProduct, ActionProductUpdate},
		{"role:professional", ObjectProduct, ActionProductDelete},
		{"role:professional", ObjectPurchase, ActionPurchaseCreate},
		{"role:professional", ObjectPurchase, ActionPurchaseView},
		{"role:professional", ObjectRating, ActionRatingSubmit},
		{"role:professional", ObjectRating, ActionRatingView},

		// Enterprises only sell verified stock. They never buy.
		{"role:enterprise", ObjectProduct, ActionProductView},
		{"role:enterprise", ObjectProduct, ActionProductCreateVerified},
		{"role:enterprise", ObjectProduct, ActionProductUpdate},
		{"role:enterprise", ObjectProduct, ActionProductDelete},
		{"role:enterprise", ObjectRating, ActionRatingView},

		// Admins moderate the catalog but do not trade.
		{"role:admin", ObjectProduct, ActionProductView},
		{"role:admin", ObjectProduct, ActionProductUpdate},
		{"role:admin", ObjectProduct, ActionProductDelete},
		{"role:admin", ObjectRating, ActionRatingView},
	}

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
