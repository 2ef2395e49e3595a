package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Permission is one fixed action tag a role may grant. The set is closed;
// extend it, never renumber.
type Permission string

const (
	PermManageUser            Permission = "MANAGE_USER"
	PermManageTicket          Permission = "MANAGE_TICKET"
	PermUpdateTicket          Permission = "UPDATE_TICKET"
	PermManageRequisition     Permission = "MANAGE_REQUISITION"
	PermManageRequisitionItem Permission = "MANAGE_REQUISITION_ITEM"
)

var AllPermissions = []Permission{
	PermManageUser,
	PermManageTicket,
	PermUpdateTicket,
	PermManageRequisition,
	PermManageRequisitionItem,
}

func (p Permission) Valid() bool {
	for _, known := range AllPermissions {
		if p == known {
			return true
		}
	}
	return false
}

// BootstrapRoleName is seeded with MANAGE_USER at first run; without it no
// user can ever be created through the authorized path.
const BootstrapRoleName = "user_admin"

// PermissionSet is the per-request snapshot of a role's grants.
type PermissionSet map[Permission]struct{}

func NewPermissionSet(perms []Permission) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// User is the authenticated principal attached to each request.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	RoleID   *int64 `json:"role_id,omitempty"`
	IsActive bool   `json:"is_active"`
}

// TokenGenerator creates and validates bearer tokens.
type TokenGenerator interface {
	GenerateToken(subject string, ttl time.Duration) (string, error)
	ValidateToken(tokenString string) (subject string, err error)
}

type Claims struct {
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	Secret     []byte
	DefaultTTL time.Duration
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNoRoleAssigned     = errors.New("user has no role assigned")
	ErrMissingPermission  = errors.New("missing permission")
)

type ctxKey string

const ContextUserKey ctxKey = "user"

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}
