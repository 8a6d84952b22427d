package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller. Portal callers carry the
// contact partner whose helpdesk level scopes what they may read.
type Principal struct {
	User    *domain.User
	Partner *domain.Partner
}

// Level returns the caller's helpdesk level, defaulting to the narrow one.
func (p *Principal) Level() domain.HelpdeskLevel {
	if p.Partner != nil && p.Partner.HelpdeskLevel == domain.HelpdeskLevelManager {
		return domain.HelpdeskLevelManager
	}
	return domain.HelpdeskLevelUser
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens   *TokenManager
	users    repository.UserRepository
	partners repository.PartnerRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository, partners repository.PartnerRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, partners: partners}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	user, err := m.users.GetByID(c.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.MapError(err)
	}
	if !user.Active {
		return apperrors.NewUnauthorized("account disabled")
	}

	principal := &Principal{User: user}
	if user.PartnerID != nil {
		partner, err := m.partners.GetByID(c.Context(), *user.PartnerID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return apperrors.MapError(err)
		}
		principal.Partner = partner
	}

	c.Locals(principalKey, principal)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

// RequireAPIKey guards the HR facade. An empty configured key leaves the
// routes open, matching the legacy deployment.
func RequireAPIKey(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if key == "" {
			return c.Next()
		}
		if c.Get("Authorization") != key {
			return apperrors.NewUnauthorized("API key invalid")
		}
		return c.Next()
	}
}
