package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/chopchop-market/chopchop/internal/clock"
	"github.com/chopchop-market/chopchop/internal/config"
	"github.com/chopchop-market/chopchop/internal/identity/domain"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Cfg   config.Config
	Log   *zap.Logger
	Clock clock.Clock
}

type Service struct {
	secret []byte
	log    *zap.Logger
	clock  clock.Clock
}

type claims struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Role    string `json:"role"`
	TaxID   string `json:"tax_id,omitempty"`
	jwt.RegisteredClaims
}

func New(p Params) (domain.Service, error) {
	secret := strings.TrimSpace(p.Cfg.AuthJWTSecret)
	if secret == "" {
		return nil, errors.New("identity: AUTH_JWT_SECRET is required")
	}
	return &Service{
		secret: []byte(secret),
		log:    p.Log.Named("identity.service"),
		clock:  p.Clock,
	}, nil
}

// Authenticate parses and verifies a bearer token and rebuilds the
// Principal. Every failure collapses into ErrUnauthenticated so the
// caller cannot distinguish a bad signature from an unknown role.
func (s *Service) Authenticate(ctx context.Context, credential string) (domain.Principal, error) {
	_ = ctx

	credential = strings.TrimSpace(credential)
	if credential == "" {
		return domain.Principal{}, domain.ErrUnauthenticated
	}

	var parsed claims
	token, err := jwt.ParseWithClaims(credential, &parsed, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.clock.Now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		s.log.Debug("token rejected", zap.Error(err))
		return domain.Principal{}, domain.ErrUnauthenticated
	}

	role, err := domain.ParseRole(parsed.Role)
	if err != nil {
		s.log.Warn("token carries unknown role", zap.String("role", parsed.Role))
		return domain.Principal{}, domain.ErrUnauthenticated
	}

	id, err := snowflake.ParseString(strings.TrimSpace(parsed.Subject))
	if err != nil || id == 0 {
		return domain.Principal{}, domain.ErrUnauthenticated
	}

	return domain.Principal{
		ID:      id,
		Name:    parsed.Name,
		Surname: parsed.Surname,
		Role:    role,
		TaxID:   parsed.TaxID,
	}, nil
}

// Issue signs a token for the principal. Used by tests and dev tooling;
// credential issuance proper lives outside this service.
func (s *Service) Issue(ctx context.Context, principal domain.Principal, ttl time.Duration) (string, error) {
	_ = ctx

	if principal.ID == 0 {
		return "", domain.ErrUnauthenticated
	}
	if _, err := domain.ParseRole(string(principal.Role)); err != nil {
		return "", err
	}

	now := s.clock.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Name:    principal.Name,
		Surname: principal.Surname,
		Role:    string(principal.Role),
		TaxID:   principal.TaxID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(s.secret)
}
