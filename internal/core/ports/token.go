package ports

import (
	"context"
	"time"

	"github.com/quincy-permits/permit-portal/internal/core/domain"
)

// TokenClaims is the validated content of a session token.
type TokenClaims struct {
	TokenID   string
	UserID    string
	Email     string
	Role      domain.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Principal converts the claims into the caller identity passed to services.
func (c *TokenClaims) Principal() domain.Principal {
	return domain.Principal{UserID: c.UserID, Email: c.Email, Role: c.Role}
}

// TokenService issues and validates signed session tokens.
type TokenService interface {
	Issue(user *domain.User) (token string, expiresAt time.Time, err error)
	Validate(ctx context.Context, token string) (*TokenClaims, error)
	Revoke(ctx context.Context, claims *TokenClaims) error
}

// TokenDenylist records revoked token ids until they would have expired.
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
