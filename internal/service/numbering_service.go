package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// NumberingService hands out ticket numbers from client-scoped sequences.
type NumberingService struct {
	sequences repository.SequenceRepository
	partners  repository.PartnerRepository
	cfg       config.HelpdeskConfig
}

// NewNumberingService constructs the service.
func NewNumberingService(cfg config.HelpdeskConfig, sequences repository.SequenceRepository, partners repository.PartnerRepository) *NumberingService {
	return &NumberingService{sequences: sequences, partners: partners, cfg: cfg}
}

// NextNumber resolves the sequence scoped to the ticket's client and consumes
// its next value. Falls back to the default sequence code when the client has
// none; a ConfigurationError is returned when neither sequence exists.
func (s *NumberingService) NextNumber(ctx context.Context, clientID *string) (string, error) {
	codes := make([]string, 0, 2)
	if clientID != nil {
		client, err := s.partners.GetByID(ctx, *clientID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.MapError(err)
		}
		if client != nil && client.SequenceCode != nil && *client.SequenceCode != "" {
			codes = append(codes, *client.SequenceCode)
		}
	}
	codes = append(codes, s.cfg.DefaultSequenceCode)

	for _, code := range codes {
		number, err := s.sequences.NextNumber(ctx, code)
		if err == nil {
			return number, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.MapError(err)
		}
	}
	return "", apperrors.NewConfigurationError("no ticket sequence configured", map[string]any{
		"client_id": clientID,
		"codes":     codes,
	})
}

// ProvisionClientSequence creates the numbering sequence for a new client
// organization and stamps its code on the partner. The code and prefix carry
// the first three letters of the client name, e.g. "TICK/ACM/00001".
func (s *NumberingService) ProvisionClientSequence(ctx context.Context, client *domain.Partner) error {
	if !client.IsCompany {
		return nil
	}
	tag := clientTag(client.Name)
	code := s.cfg.DefaultSequenceCode + "." + strings.ToLower(tag)
	seq := &repository.Sequence{
		Code:      code,
		Prefix:    "TICK/" + tag + "/",
		Padding:   5,
		NextValue: 1,
		ClientID:  &client.ID,
	}
	if err := s.sequences.Create(ctx, seq); err != nil {
		return apperrors.MapError(err)
	}
	client.SequenceCode = &code
	if err := s.partners.Update(ctx, client); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func clientTag(name string) string {
	first := strings.Fields(name)
	if len(first) == 0 {
		return "TCK"
	}
	tag := first[0]
	if len(tag) > 3 {
		tag = tag[:3]
	}
	return strings.ToUpper(tag)
}
