package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// ReportsHandler serves the read-only reporting endpoints.
type ReportsHandler struct {
	reports *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reportService *service.ReportService) *ReportsHandler {
	return &ReportsHandler{reports: reportService}
}

// ClientHours GET /reports/client-hours.
func (h *ReportsHandler) ClientHours(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	lines, err := h.reports.ClientHours(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.ClientHoursResponse, 0, len(lines))
	for _, line := range lines {
		items = append(items, dto.ClientHoursResponse{
			Name:            line.Name,
			ClientName:      line.ClientName,
			ProjectID:       line.ProjectID,
			ProjectName:     line.ProjectName,
			ContractedHours: line.ContractedHours,
			ConsumedHours:   line.ConsumedHours,
			RemainingHours:  line.RemainingHours,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}
