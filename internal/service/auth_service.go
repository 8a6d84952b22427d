package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// RegisterInput carries a portal sign-up form. Company accounts provision
// their own ticket numbering sequence.
type RegisterInput struct {
	Name      string
	Email     string
	Password  string
	Phone     string
	City      string
	State     string
	IsCompany bool
	ParentID  *string
}

// LoginInput carries credentials.
type LoginInput struct {
	Login    string
	Password string
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
	Partner   *domain.Partner
}

// AuthService registers and authenticates portal accounts.
type AuthService struct {
	users     repository.UserRepository
	partners  repository.PartnerRepository
	numbering *NumberingService
	tokens    *auth.TokenManager
	logger    *zap.Logger
	cfg       config.AuthConfig
}

// NewAuthService constructs the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository, partners repository.PartnerRepository, numbering *NumberingService, tokens *auth.TokenManager, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:     users,
		partners:  partners,
		numbering: numbering,
		tokens:    tokens,
		logger:    logger,
		cfg:       cfg,
	}
}

// Register creates the partner and its portal account. A company partner also
// gets its client ticket sequence provisioned.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("name and email are required", nil)
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters", nil)
	}

	if _, err := s.users.GetByLogin(ctx, email); err == nil {
		return nil, apperrors.NewConflict("account already exists", map[string]any{"login": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	partner := &domain.Partner{
		Name:          strings.TrimSpace(input.Name),
		Email:         email,
		Phone:         input.Phone,
		City:          input.City,
		State:         input.State,
		IsCompany:     input.IsCompany,
		ParentID:      input.ParentID,
		HelpdeskLevel: domain.HelpdeskLevelUser,
	}
	if err := s.partners.Create(ctx, partner); err != nil {
		return nil, apperrors.MapError(err)
	}
	if partner.IsCompany {
		if err := s.numbering.ProvisionClientSequence(ctx, partner); err != nil {
			return nil, err
		}
	}

	hash, err := auth.HashPassword(input.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.User{
		Name:         partner.Name,
		Login:        email,
		PasswordHash: hash,
		PartnerID:    &partner.ID,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("account registered", zap.String("login", email), zap.Bool("company", partner.IsCompany))
	return user, nil
}

// Login verifies credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*Session, error) {
	login := strings.ToLower(strings.TrimSpace(input.Login))
	user, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if !user.Active {
		return nil, apperrors.NewUnauthorized("account disabled")
	}
	if err := auth.ComparePassword(user.PasswordHash, input.Password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	session := &Session{Token: token, ExpiresAt: expiresAt, User: user}
	if user.PartnerID != nil {
		partner, err := s.partners.GetByID(ctx, *user.PartnerID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.MapError(err)
		}
		session.Partner = partner
	}
	return session, nil
}
