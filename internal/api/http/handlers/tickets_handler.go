package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketsHandler exposes portal ticket endpoints and lifecycle transitions.
type TicketsHandler struct {
	tickets   *service.TicketService
	lifecycle *service.LifecycleService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, lifecycleService *service.LifecycleService) *TicketsHandler {
	return &TicketsHandler{tickets: ticketService, lifecycle: lifecycleService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Title) == "" {
		return apperrors.NewValidationError("title required", nil)
	}

	input := service.CreateTicketInput{
		Title:       req.Title,
		Description: req.Description,
		ContactID:   req.ContactID,
		CategoryID:  req.CategoryID,
		ModuleID:    req.ModuleID,
		ChannelID:   req.ChannelID,
		UrgencyKey:  req.UrgencyKey,
		ImpactLevel: req.ImpactLevel,
		TeamID:      req.TeamID,
		FixedFee:    req.FixedFee,
	}
	// portal callers raise tickets as themselves
	if input.ContactID == nil && principal.Partner != nil {
		input.ContactID = &principal.Partner.ID
	}

	ticket, err := h.tickets.CreateTicket(c.Context(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	filter := parseTicketQuery(c)
	tickets, total, err := h.tickets.ListTicketsFor(c.Context(), principal, filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": dto.TicketListResponse{Items: items, Total: total}})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	ticket, err := h.tickets.GetTicketFor(c.Context(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// UpdateTicket PATCH /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.UpdateTicket(c.Context(), principal, c.Params("id"), service.UpdateTicketInput{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		ModuleID:    req.ModuleID,
		ChannelID:   req.ChannelID,
		UrgencyKey:  req.UrgencyKey,
		ImpactLevel: req.ImpactLevel,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// ListMessages GET /tickets/:id/messages.
func (h *TicketsHandler) ListMessages(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	msgs, err := h.tickets.ListMessages(c.Context(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.TicketMessageResponse, 0, len(msgs))
	for i := range msgs {
		items = append(items, messageResponse(&msgs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// SendReply POST /tickets/:id/reply. Records the outbound message and moves
// the ticket into waiting.
func (h *TicketsHandler) SendReply(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.SendReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Body) == "" {
		return apperrors.NewValidationError("body required", nil)
	}

	ticket, err := h.tickets.SendReply(c.Context(), c.Params("id"), &principal.User.ID, service.SendReplyInput{
		Subject: req.Subject,
		Body:    req.Body,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// ReceiveMessage POST /tickets/:id/messages. Inbound customer mail; work
// resumes automatically when the ticket contact replies in waiting.
func (h *TicketsHandler) ReceiveMessage(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.InboundMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Body) == "" {
		return apperrors.NewValidationError("body required", nil)
	}
	authorID := req.AuthorPartnerID
	if authorID == "" && principal.Partner != nil {
		authorID = principal.Partner.ID
	}
	if authorID == "" {
		return apperrors.NewValidationError("author_partner_id required", nil)
	}

	ticket, err := h.tickets.ReceiveMessage(c.Context(), c.Params("id"), service.InboundMessageInput{
		AuthorPartnerID: authorID,
		Subject:         req.Subject,
		Body:            req.Body,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// StartWorking POST /tickets/:id/start.
func (h *TicketsHandler) StartWorking(c *fiber.Ctx) error {
	return h.transition(c, h.lifecycle.StartWorking)
}

// Resolve POST /tickets/:id/resolve.
func (h *TicketsHandler) Resolve(c *fiber.Ctx) error {
	return h.transition(c, h.lifecycle.Resolve)
}

// Cancel POST /tickets/:id/cancel.
func (h *TicketsHandler) Cancel(c *fiber.Ctx) error {
	return h.transition(c, h.lifecycle.Cancel)
}

// Draft POST /tickets/:id/draft.
func (h *TicketsHandler) Draft(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	ticket, err := h.lifecycle.Draft(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// CreateTask POST /tickets/:id/task.
func (h *TicketsHandler) CreateTask(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	task, err := h.tickets.CreateTaskForTicket(c.Context(), c.Params("id"), service.CreateTaskInput{
		Name:         req.Name,
		PlannedHours: req.PlannedHours,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": taskResponse(task)})
}

func (h *TicketsHandler) transition(c *fiber.Ctx, op func(ctx context.Context, ticketID string, actorUserID *string) (*domain.Ticket, error)) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	ticket, err := op(c.Context(), c.Params("id"), &principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

func parseTicketQuery(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{OrderBy: c.Query("order")}

	if stageID := c.Query("stage_id"); stageID != "" {
		filter.StageID = &stageID
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	switch c.Query("state") {
	case "open":
		open := false
		filter.Closed = &open
	case "closed":
		closed := true
		filter.Closed = &closed
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:          ticket.ID,
		Number:      ticket.Number,
		Title:       ticket.Title,
		Priority:    ticket.Priority,
		StageID:     ticket.StageID,
		KanbanState: ticket.KanbanState,
		Working:     ticket.Working,
		Waiting:     ticket.Waiting,
		Resolved:    ticket.Resolved,
		Cancelled:   ticket.Cancelled,
		ClientID:    ticket.ClientID,
		ContactID:   ticket.ContactID,
		AssigneeID:  ticket.AssigneeID,
		TeamID:      ticket.TeamID,
		EntryDate:   ticket.EntryDate,
		ClosedDate:  ticket.ClosedDate,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
}

func ticketDetail(ticket *domain.Ticket) dto.TicketDetailResponse {
	return dto.TicketDetailResponse{
		TicketSummary:       ticketSummary(ticket),
		Description:         ticket.Description,
		FixedFee:            ticket.FixedFee,
		NeedsEmail:          ticket.NeedsEmail,
		TaskRequired:        ticket.TaskRequired,
		Color:               ticket.Color,
		ProjectID:           ticket.ProjectID,
		TaskID:              ticket.TaskID,
		EndDate:             ticket.EndDate,
		LastStageUpdate:     ticket.LastStageUpdate,
		PlannedDurationDays: ticket.PlannedDurationDays,
		RealDurationDays:    ticket.RealDurationDays,
		DedicatedHours:      ticket.DedicatedHours,
	}
}

func messageResponse(msg *domain.TicketMessage) dto.TicketMessageResponse {
	return dto.TicketMessageResponse{
		ID:              msg.ID,
		Direction:       msg.Direction,
		AuthorUserID:    msg.AuthorUserID,
		AuthorPartnerID: msg.AuthorPartnerID,
		Subject:         msg.Subject,
		Body:            msg.Body,
		CreatedAt:       msg.CreatedAt,
	}
}

func taskResponse(task *domain.Task) dto.TaskResponse {
	return dto.TaskResponse{
		ID:             task.ID,
		ProjectID:      task.ProjectID,
		TicketID:       task.TicketID,
		Name:           task.Name,
		PlannedHours:   task.PlannedHours,
		EffectiveHours: task.EffectiveHours,
	}
}
