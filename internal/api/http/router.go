package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/deskhub/support-portal/internal/api/http/handlers"
	"github.com/deskhub/support-portal/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	AdminTickets   *handlers.AdminTicketsHandler
	Dashboard      *handlers.DashboardHandler
	Articles       *handlers.ArticlesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Get("/articles", cfg.Articles.List)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/password/reset/request", cfg.Users.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Users.ConfirmPasswordReset)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	protected.Post("/auth/password/change", cfg.Users.ChangePassword)
	protected.Get("/profile", cfg.Users.Profile)
	protected.Patch("/profile", cfg.Users.UpdateProfile)

	tickets := protected.Group("/tickets")
	tickets.Post("", cfg.Tickets.Create)
	tickets.Get("", cfg.Tickets.ListMine)
	tickets.Get("/:id", cfg.Tickets.GetMine)

	admin := protected.Group("/admin", auth.RequireAdmin())
	admin.Get("/dashboard", cfg.Dashboard.Stats)
	admin.Get("/notifications", cfg.Dashboard.Notifications)
	admin.Post("/notifications/toggle", cfg.Dashboard.ToggleNotifications)

	admin.Get("/admins", cfg.AdminTickets.Assignees)

	admin.Get("/selection", cfg.AdminTickets.Selection)
	admin.Post("/selection/toggle", cfg.AdminTickets.ToggleSelection)
	admin.Delete("/selection", cfg.AdminTickets.ClearSelection)

	adminTickets := admin.Group("/tickets")
	adminTickets.Get("", cfg.AdminTickets.List)
	adminTickets.Post("/detail/close", cfg.AdminTickets.CloseDetail)
	adminTickets.Post("/bulk/status", cfg.AdminTickets.BulkSetStatus)
	adminTickets.Post("/bulk/assign", cfg.AdminTickets.BulkAssign)
	adminTickets.Post("/bulk/delete", cfg.AdminTickets.BulkDelete)
	adminTickets.Get("/:id", cfg.AdminTickets.Get)
	adminTickets.Patch("/:id/status", cfg.AdminTickets.SetStatus)
	adminTickets.Patch("/:id/assign", cfg.AdminTickets.Assign)
	adminTickets.Delete("/:id", cfg.AdminTickets.Delete)
}
