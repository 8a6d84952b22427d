package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

func newAuthFixture() (*AuthService, *fakeUserRepo, *fakePartnerRepo) {
	users := newFakeUserRepo()
	partners := newFakePartnerRepo()
	numbering := NewNumberingService(config.HelpdeskConfig{DefaultSequenceCode: "helpdesk.ticket"}, newFakeSequenceRepo(), partners)
	tokens := auth.NewTokenManager("test-secret", 60)
	cfg := config.AuthConfig{BcryptCost: 4}
	return NewAuthService(cfg, users, partners, numbering, tokens, nil), users, partners
}

func TestRegisterThenLogin(t *testing.T) {
	svc, _, partners := newAuthFixture()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Name:     "Jo Smith",
		Email:    "Jo@Example.Test",
		Password: "s3cret-enough",
	})
	require.NoError(t, err)
	assert.Equal(t, "jo@example.test", user.Login)
	assert.True(t, user.Active)
	require.NotNil(t, user.PartnerID)

	partner, err := partners.GetByID(ctx, *user.PartnerID)
	require.NoError(t, err)
	assert.Equal(t, "Jo Smith", partner.Name)
	assert.False(t, partner.IsCompany)
	assert.Nil(t, partner.SequenceCode)

	session, err := svc.Login(ctx, LoginInput{Login: "jo@example.test", Password: "s3cret-enough"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	require.NotNil(t, session.Partner)
	assert.Equal(t, partner.ID, session.Partner.ID)
}

func TestRegisterCompanyProvisionsSequence(t *testing.T) {
	svc, _, partners := newAuthFixture()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Name:      "Acme Rockets",
		Email:     "ops@acme.test",
		Password:  "s3cret-enough",
		IsCompany: true,
	})
	require.NoError(t, err)

	partner, err := partners.GetByID(ctx, *user.PartnerID)
	require.NoError(t, err)
	require.NotNil(t, partner.SequenceCode)
	assert.Equal(t, "helpdesk.ticket.acm", *partner.SequenceCode)
}

func TestRegisterDuplicateLoginConflicts(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Jo", Email: "jo@example.test", Password: "s3cret-enough"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Name: "Other Jo", Email: "JO@example.test", Password: "s3cret-enough"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc, _, _ := newAuthFixture()
	_, err := svc.Register(context.Background(), RegisterInput{Name: "Jo", Email: "jo@example.test", Password: "short"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, users, _ := newAuthFixture()
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Name: "Jo", Email: "jo@example.test", Password: "s3cret-enough"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginInput{Login: "jo@example.test", Password: "wrong-password"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))

	_, err = svc.Login(ctx, LoginInput{Login: "nobody@example.test", Password: "s3cret-enough"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))

	// disabled accounts cannot sign in even with the right password
	user, err := users.GetByLogin(ctx, "jo@example.test")
	require.NoError(t, err)
	user.Active = false
	require.NoError(t, users.Update(ctx, user))
	_, err = svc.Login(ctx, LoginInput{Login: "jo@example.test", Password: "s3cret-enough"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))
}
