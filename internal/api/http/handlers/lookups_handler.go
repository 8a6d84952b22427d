package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// LookupsHandler serves intake classifier data.
type LookupsHandler struct {
	lookups *service.LookupService
}

// NewLookupsHandler constructs handler.
func NewLookupsHandler(lookupService *service.LookupService) *LookupsHandler {
	return &LookupsHandler{lookups: lookupService}
}

// Intake GET /lookups.
func (h *LookupsHandler) Intake(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	data, err := h.lookups.Intake(c.Context())
	if err != nil {
		return err
	}

	categories := make([]fiber.Map, 0, len(data.Categories))
	for _, item := range data.Categories {
		categories = append(categories, fiber.Map{"id": item.ID, "name": item.Name})
	}
	modules := make([]fiber.Map, 0, len(data.Modules))
	for _, item := range data.Modules {
		modules = append(modules, fiber.Map{"id": item.ID, "name": item.Name})
	}
	channels := make([]fiber.Map, 0, len(data.Channels))
	for _, item := range data.Channels {
		channels = append(channels, fiber.Map{"id": item.ID, "name": item.Name})
	}
	stages := make([]fiber.Map, 0, len(data.Stages))
	for _, item := range data.Stages {
		stages = append(stages, fiber.Map{
			"id":     item.ID,
			"name":   item.Name,
			"key":    item.Key,
			"closed": item.Closed,
		})
	}

	return c.JSON(fiber.Map{"data": fiber.Map{
		"categories": categories,
		"modules":    modules,
		"channels":   channels,
		"stages":     stages,
	}})
}
