package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

func newNumberingFixture() (*NumberingService, *fakeSequenceRepo, *fakePartnerRepo) {
	sequences := newFakeSequenceRepo()
	partners := newFakePartnerRepo()
	cfg := config.HelpdeskConfig{DefaultSequenceCode: "helpdesk.ticket"}
	return NewNumberingService(cfg, sequences, partners), sequences, partners
}

func TestNextNumberUsesClientSequence(t *testing.T) {
	svc, sequences, partners := newNumberingFixture()
	code := "helpdesk.ticket.acm"
	client := &domain.Partner{ID: "client-1", Name: "Acme", IsCompany: true, SequenceCode: &code}
	require.NoError(t, partners.Create(context.Background(), client))
	require.NoError(t, sequences.Create(context.Background(), &repository.Sequence{
		Code: code, Prefix: "TICK/ACM/", Padding: 5, NextValue: 7,
	}))

	number, err := svc.NextNumber(context.Background(), &client.ID)
	require.NoError(t, err)
	assert.Equal(t, "TICK/ACM/00007", number)

	// the sequence advanced
	number, err = svc.NextNumber(context.Background(), &client.ID)
	require.NoError(t, err)
	assert.Equal(t, "TICK/ACM/00008", number)
}

func TestNextNumberFallsBackToDefaultSequence(t *testing.T) {
	svc, sequences, partners := newNumberingFixture()
	client := &domain.Partner{ID: "client-1", Name: "Acme", IsCompany: true}
	require.NoError(t, partners.Create(context.Background(), client))
	require.NoError(t, sequences.Create(context.Background(), &repository.Sequence{
		Code: "helpdesk.ticket", Prefix: "TICK/", Padding: 5, NextValue: 1,
	}))

	number, err := svc.NextNumber(context.Background(), &client.ID)
	require.NoError(t, err)
	assert.Equal(t, "TICK/00001", number)
}

func TestNextNumberWithoutClientUsesDefault(t *testing.T) {
	svc, sequences, _ := newNumberingFixture()
	require.NoError(t, sequences.Create(context.Background(), &repository.Sequence{
		Code: "helpdesk.ticket", Prefix: "TICK/", Padding: 5, NextValue: 42,
	}))

	number, err := svc.NextNumber(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "TICK/00042", number)
}

func TestNextNumberWithoutAnySequenceIsConfigurationError(t *testing.T) {
	svc, _, _ := newNumberingFixture()
	_, err := svc.NextNumber(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "CONFIGURATION_ERROR"))
}

func TestProvisionClientSequence(t *testing.T) {
	svc, sequences, partners := newNumberingFixture()
	client := &domain.Partner{ID: "client-1", Name: "Acme Rockets", IsCompany: true}
	require.NoError(t, partners.Create(context.Background(), client))

	require.NoError(t, svc.ProvisionClientSequence(context.Background(), client))

	require.NotNil(t, client.SequenceCode)
	assert.Equal(t, "helpdesk.ticket.acm", *client.SequenceCode)

	number, err := sequences.NextNumber(context.Background(), *client.SequenceCode)
	require.NoError(t, err)
	assert.Equal(t, "TICK/ACM/00001", number)

	// the code is persisted on the partner
	stored, err := partners.GetByID(context.Background(), client.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.SequenceCode)
	assert.Equal(t, "helpdesk.ticket.acm", *stored.SequenceCode)
}

func TestProvisionClientSequenceSkipsIndividuals(t *testing.T) {
	svc, sequences, partners := newNumberingFixture()
	contact := &domain.Partner{ID: "contact-1", Name: "Jo Smith", IsCompany: false}
	require.NoError(t, partners.Create(context.Background(), contact))

	require.NoError(t, svc.ProvisionClientSequence(context.Background(), contact))
	assert.Nil(t, contact.SequenceCode)
	assert.Empty(t, sequences.sequences)
}

func TestClientTagDerivation(t *testing.T) {
	assert.Equal(t, "ACM", clientTag("Acme Rockets"))
	assert.Equal(t, "IO", clientTag("io systems"))
	assert.Equal(t, "TCK", clientTag("   "))
}
