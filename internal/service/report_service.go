package service

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// ReportService exposes the client-hours projection. The numbers come from a
// SQL view computed per query; nothing is cached or maintained incrementally.
type ReportService struct {
	reports repository.ReportRepository
}

// NewReportService constructs the service.
func NewReportService(reports repository.ReportRepository) *ReportService {
	return &ReportService{reports: reports}
}

// ClientHours lists contracted, consumed and remaining hours per client
// project.
func (s *ReportService) ClientHours(ctx context.Context) ([]domain.ClientHoursLine, error) {
	lines, err := s.reports.ListClientHours(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return lines, nil
}
