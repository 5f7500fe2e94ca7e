package domain

import (
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// Role is the closed set of account categories.
type Role string

const (
	RoleParticular   Role = "particular"
	RoleProfessional Role = "professional"
	RoleEnterprise   Role = "enterprise"
	RoleAdmin        Role = "admin"
)

// ParseRole fails closed: an unknown role value is rejected, never
// mapped to a permissive default.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleParticular:
		return RoleParticular, nil
	case RoleProfessional:
		return RoleProfessional, nil
	case RoleEnterprise:
		return RoleEnterprise, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", ErrUnknownRole
	}
}

// Principal is an authenticated actor. It is rebuilt per request from
// the bearer credential and never persisted.
type Principal struct {
	ID      snowflake.ID
	Name    string
	Surname string
	Role    Role

	// TaxID is set for professional and enterprise accounts.
	TaxID string
}

// CanCreateVerified reports whether the principal may list verified products.
func (p Principal) CanCreateVerified() bool {
	return p.Role == RoleProfessional || p.Role == RoleEnterprise
}

// CanCreateSecondhand reports whether the principal may list secondhand products.
func (p Principal) CanCreateSecondhand() bool {
	return p.Role == RoleParticular || p.Role == RoleProfessional
}

// CanPurchase reports whether the principal may buy products.
func (p Principal) CanPurchase() bool {
	return p.Role == RoleParticular || p.Role == RoleProfessional
}

// CanBypassOwnership reports whether the principal may mutate products
// it does not own.
func (p Principal) CanBypassOwnership() bool {
	return p.Role == RoleAdmin
}

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUnknownRole     = errors.New("unknown_role")
)
