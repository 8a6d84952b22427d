package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// HRHandler serves the legacy employee lookup facade. Responses keep the
// historical status/response/message envelope instead of the data/error shape
// used elsewhere.
type HRHandler struct {
	hr *service.HRService
}

// NewHRHandler constructs handler.
func NewHRHandler(hrService *service.HRService) *HRHandler {
	return &HRHandler{hr: hrService}
}

// SearchUsers GET /hr/users.
func (h *HRHandler) SearchUsers(c *fiber.Ctx) error {
	employees, err := h.hr.ListActiveEmployees(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	items := make([]dto.EmployeeResponse, 0, len(employees))
	for i := range employees {
		items = append(items, employeeResponse(&employees[i]))
	}
	return c.JSON(dto.HREnvelope{Status: "success", Response: items})
}

// GetUser GET /hr/users/:login.
func (h *HRHandler) GetUser(c *fiber.Ctx) error {
	employee, err := h.hr.GetEmployee(c.Context(), c.Params("login"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.HREnvelope{Status: "success", Response: employeeResponse(employee)})
}

// GetExperiences GET /hr/users/:login/experiences.
func (h *HRHandler) GetExperiences(c *fiber.Ctx) error {
	experiences, err := h.hr.ListExperiences(c.Context(), c.Params("login"))
	if err != nil {
		return h.fail(c, err)
	}
	items := make([]dto.ExperienceResponse, 0, len(experiences))
	for i := range experiences {
		items = append(items, experienceResponse(&experiences[i]))
	}
	return c.JSON(dto.HREnvelope{Status: "success", Response: items})
}

// GetSkills GET /hr/users/:login/skills.
func (h *HRHandler) GetSkills(c *fiber.Ctx) error {
	skills, err := h.hr.ListSkills(c.Context(), c.Params("login"))
	if err != nil {
		return h.fail(c, err)
	}
	items := make([]dto.SkillResponse, 0, len(skills))
	for _, skill := range skills {
		items = append(items, dto.SkillResponse{Name: skill.Name, Level: skill.Level})
	}
	return c.JSON(dto.HREnvelope{Status: "success", Response: items})
}

// fail renders errors in the facade's envelope with the domain status code.
func (h *HRHandler) fail(c *fiber.Ctx, err error) error {
	domainErr := apperrors.ToDomainError(err)
	return c.Status(domainErr.HTTPStatus).JSON(dto.HREnvelope{
		Status:  "error",
		Message: domainErr.Message,
	})
}

func employeeResponse(e *domain.Employee) dto.EmployeeResponse {
	return dto.EmployeeResponse{
		ID:    e.ID,
		Login: e.Login,
		Name:  e.Name,
		City:  e.City,
		State: e.State,
		Phone: e.Phone,
		Level: e.Level,
		Field: e.Field,
		Study: e.Study,
	}
}

func experienceResponse(e *domain.Experience) dto.ExperienceResponse {
	resp := dto.ExperienceResponse{
		Company:     e.Company,
		Role:        e.Role,
		StartDate:   e.StartDate.Format(time.DateOnly),
		Description: e.Description,
	}
	if e.EndDate != nil {
		end := e.EndDate.Format(time.DateOnly)
		resp.EndDate = &end
	}
	return resp
}
