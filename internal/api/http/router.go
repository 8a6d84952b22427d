package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Lookups        *handlers.LookupsHandler
	Reports        *handlers.ReportsHandler
	HR             *handlers.HRHandler
	AuthMiddleware *auth.AuthMiddleware
	HRAPIKey       string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)
	tickets.Get("/:id/messages", cfg.Tickets.ListMessages)
	tickets.Post("/:id/messages", cfg.Tickets.ReceiveMessage)
	tickets.Post("/:id/reply", cfg.Tickets.SendReply)
	tickets.Post("/:id/start", cfg.Tickets.StartWorking)
	tickets.Post("/:id/resolve", cfg.Tickets.Resolve)
	tickets.Post("/:id/cancel", cfg.Tickets.Cancel)
	tickets.Post("/:id/draft", cfg.Tickets.Draft)
	tickets.Post("/:id/task", cfg.Tickets.CreateTask)

	app.Get("/lookups", cfg.AuthMiddleware.Handle, cfg.Lookups.Intake)

	reports := app.Group("/reports", cfg.AuthMiddleware.Handle)
	reports.Get("/client-hours", cfg.Reports.ClientHours)

	hr := app.Group("/hr", auth.RequireAPIKey(cfg.HRAPIKey))
	hr.Get("/users", cfg.HR.SearchUsers)
	hr.Get("/users/:login", cfg.HR.GetUser)
	hr.Get("/users/:login/experiences", cfg.HR.GetExperiences)
	hr.Get("/users/:login/skills", cfg.HR.GetSkills)
}
