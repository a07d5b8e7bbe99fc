package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/deskhub/support-portal/internal/api/dto"
	"github.com/deskhub/support-portal/internal/live"
)

const recentNotifications = 10

// DashboardHandler serves the admin dashboard aggregates and the
// notification bell.
type DashboardHandler struct {
	view     *live.View
	sessions *AdminSessions
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(view *live.View, sessions *AdminSessions) *DashboardHandler {
	return &DashboardHandler{view: view, sessions: sessions}
}

// Stats handles GET /admin/dashboard.
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	if _, err := adminPrincipal(c); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"counts": dto.NewTicketCountsResponse(h.view.Counts()),
		"seq":    h.view.Seq(),
	}})
}

// Notifications handles GET /admin/notifications, the current bell state.
func (h *DashboardHandler) Notifications(c *fiber.Ctx) error {
	admin, err := adminPrincipal(c)
	if err != nil {
		return err
	}

	tracker := h.sessions.Tracker(admin.User.ID)
	return c.JSON(fiber.Map{"data": notificationsResponse(tracker)})
}

// ToggleNotifications handles POST /admin/notifications/toggle. Opening the
// panel marks everything unread at that moment as seen; closing has no side
// effect.
func (h *DashboardHandler) ToggleNotifications(c *fiber.Ctx) error {
	admin, err := adminPrincipal(c)
	if err != nil {
		return err
	}

	tracker := h.sessions.Tracker(admin.User.ID)
	open, res := tracker.Toggle(c.UserContext())
	return c.JSON(fiber.Map{"data": fiber.Map{
		"open":   open,
		"swept":  dto.NewBulkResultResponse(res),
		"unread": tracker.UnreadCount(),
	}})
}

func notificationsResponse(tracker *live.Tracker) dto.NotificationsResponse {
	recent := tracker.Recent(recentNotifications)
	items := make([]dto.AdminTicketResponse, 0, len(recent))
	for _, t := range recent {
		items = append(items, dto.NewAdminTicketResponse(t, false))
	}
	return dto.NotificationsResponse{
		Open:   tracker.IsOpen(),
		Unread: tracker.UnreadCount(),
		Recent: items,
	}
}
