package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/deskhub/support-portal/internal/api/dto"
	"github.com/deskhub/support-portal/internal/auth"
	"github.com/deskhub/support-portal/internal/domain"
	"github.com/deskhub/support-portal/internal/live"
	"github.com/deskhub/support-portal/internal/service"
)

// AdminTicketsHandler serves the admin portal's live request list, selection
// and bulk mutation endpoints. Reads come from the in-memory live view, never
// straight from Postgres.
type AdminTicketsHandler struct {
	view     *live.View
	sessions *AdminSessions
	tickets  *service.TicketService
	auth     *service.AuthService
}

// NewAdminTicketsHandler constructs handler.
func NewAdminTicketsHandler(view *live.View, sessions *AdminSessions, ticketService *service.TicketService, authService *service.AuthService) *AdminTicketsHandler {
	return &AdminTicketsHandler{view: view, sessions: sessions, tickets: ticketService, auth: authService}
}

// List handles GET /admin/tickets. Query params `query` and `status` filter
// the display; counts always describe the whole collection.
func (h *AdminTicketsHandler) List(c *fiber.Ctx) error {
	admin, err := adminPrincipal(c)
	if err != nil {
		return err
	}

	status := live.StatusFilter(c.Query("status", string(live.FilterAll)))
	if !status.Valid() {
		return fiber.NewError(http.StatusBadRequest, "unknown status filter")
	}

	ctrl := h.sessions.Controller(admin.User.ID)
	visible := live.Filter(h.view.Tickets(), c.Query("query"), status)

	items := make([]dto.AdminTicketResponse, 0, len(visible))
	for _, t := range visible {
		items = append(items, dto.NewAdminTicketResponse(t, ctrl.IsSelected(t.ID)))
	}

	return c.JSON(fiber.Map{"data": dto.AdminTicketListResponse{
		Tickets:       items,
		Counts:        dto.NewTicketCountsResponse(h.view.Counts()),
		Seq:           h.view.Seq(),
		SelectedCount: ctrl.Count(),
	}})
}

// Get handles GET /admin/tickets/:id. Reading a ticket opens its detail panel.
func (h *AdminTicketsHandler) Get(c *fiber.Ctx) error {
	admin, err := adminPrincipal(c)
	if err != nil {
		return err
	}

	id := c.Params("id")
	ticket, ok := h.view.Get(id)
	if !ok {
		return fiber.NewError(http.StatusNotFound, "request not found")
	}

	ctrl := h.sessions.Controller(admin.User.ID)
	ctrl.OpenDetail(id)
	return c.JSON(fiber.Map{"data": dto.NewAdminTicketResponse(ticket, ctrl.IsSelected(id))})
}

// CloseDetail handles POST /admin/tickets/detail/close.
func (h *AdminTicketsHandler) CloseDetail(c *fiber.Ctx) error {
	admin, err := adminPrincipal(c)
	if err != nil {
		return err
	}
	h.sessions.Controller(admin.User.ID).CloseDetail()
	return c.SendStatus(http.StatusNoContent)
}

// ToggleSelection handles POST /admin/selection/toggle.
func (h *AdminTicketsHandler) ToggleSelection(c *fiber.Ctx) error {
	admin, err := adminPrincipal(c)
	if err != nil {
		return err
	}

	var req dto.ToggleSelectionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.TicketID == "" {
		return fiber.NewError(http.StatusBadRequest, "ticket_id required")
	}

	ctrl := h.sessions.Controller(admin.User.ID)
	selected := ctrl.Toggle(req.TicketID)
	return c.JSON(fiber.Map{"data": fiber.Map{
		"ticket_id": req.TicketID,
		"selected":  selected,
		"count":     ctrl.Count(),
	}})
}

// Selection handles GET /admin/selection.
func (h *AdminTicketsHandler) Selection(c *fiber.Ctx) error {
	admin, err := adminPrincipal(c)
	if err != nil {
		return err
	}
	ctrl := h.sessions.Controller(admin.User.ID)
	return c.JSON(fiber.Map{"data": fiber.Map{
		"ids":   ctrl.Selected(),
		"count": ctrl.Count(),
	}})
}

// ClearSelection handles DELETE /admin/selection.
func (h *AdminTicketsHandler) ClearSelection(c *fiber.Ctx) error {
	admin, err := adminPrincipal(c)
	if err != nil {
		return err
	}
	h.sessions.Controller(admin.User.ID).Clear()
	return c.SendStatus(http.StatusNoContent)
}

// BulkSetStatus handles POST /admin/tickets/bulk/status.
func (h *AdminTicketsHandler) BulkSetStatus(c *fiber.Ctx) error {
	admin, err := adminPrincipal(c)
	if err != nil {
		return err
	}

	var req dto.BulkStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	ctrl := h.sessions.Controller(admin.User.ID)
	res, err := ctrl.BulkSetStatus(c.UserContext(), req.Status)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(fiber.Map{"data": dto.NewBulkResultResponse(res)})
}

// BulkAssign handles POST /admin/tickets/bulk/assign.
func (h *AdminTicketsHandler) BulkAssign(c *fiber.Ctx) error {
	admin, err := adminPrincipal(c)
	if err != nil {
		return err
	}

	var req dto.BulkAssignRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	ctrl := h.sessions.Controller(admin.User.ID)
	res := ctrl.BulkAssign(c.UserContext(), req.Admin)
	return c.JSON(fiber.Map{"data": dto.NewBulkResultResponse(res)})
}

// BulkDelete handles POST /admin/tickets/bulk/delete. Nothing happens unless
// the request carries confirm=true.
func (h *AdminTicketsHandler) BulkDelete(c *fiber.Ctx) error {
	admin, err := adminPrincipal(c)
	if err != nil {
		return err
	}

	var req dto.BulkDeleteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	ctrl := h.sessions.Controller(admin.User.ID)
	res, proceeded := ctrl.BulkDelete(c.UserContext(), live.ConfirmerFunc(func(string) bool {
		return req.Confirm
	}))
	return c.JSON(fiber.Map{"data": fiber.Map{
		"proceeded": proceeded,
		"result":    dto.NewBulkResultResponse(res),
	}})
}

// SetStatus handles PATCH /admin/tickets/:id/status.
func (h *AdminTicketsHandler) SetStatus(c *fiber.Ctx) error {
	if _, err := adminPrincipal(c); err != nil {
		return err
	}

	var req dto.BulkStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	if err := h.tickets.SetStatus(c.UserContext(), c.Params("id"), req.Status); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidStatus):
			return fiber.NewError(http.StatusBadRequest, "unknown status")
		case errors.Is(err, domain.ErrTicketNotFound):
			return fiber.NewError(http.StatusNotFound, "request not found")
		}
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Assign handles PATCH /admin/tickets/:id/assign.
func (h *AdminTicketsHandler) Assign(c *fiber.Ctx) error {
	if _, err := adminPrincipal(c); err != nil {
		return err
	}

	var req dto.BulkAssignRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	if err := h.tickets.Assign(c.UserContext(), c.Params("id"), req.Admin); err != nil {
		if errors.Is(err, domain.ErrTicketNotFound) {
			return fiber.NewError(http.StatusNotFound, "request not found")
		}
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Delete handles DELETE /admin/tickets/:id?confirm=true. The delete runs
// through the admin's controller so panel and selection state stay coherent;
// a ticket already gone is treated as done.
func (h *AdminTicketsHandler) Delete(c *fiber.Ctx) error {
	admin, err := adminPrincipal(c)
	if err != nil {
		return err
	}

	confirm := c.QueryBool("confirm")
	ctrl := h.sessions.Controller(admin.User.ID)
	proceeded, err := ctrl.DeleteOne(c.UserContext(), c.Params("id"), live.ConfirmerFunc(func(string) bool {
		return confirm
	}))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"proceeded": proceeded}})
}

// Assignees handles GET /admin/admins, the directory tickets can be assigned to.
func (h *AdminTicketsHandler) Assignees(c *fiber.Ctx) error {
	if _, err := adminPrincipal(c); err != nil {
		return err
	}

	admins, err := h.auth.ListAdmins(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.UserResponse, 0, len(admins))
	for i := range admins {
		out = append(out, dto.NewUserResponse(&admins[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}

func adminPrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || !principal.IsAdmin() {
		return nil, fiber.NewError(http.StatusForbidden, "admin required")
	}
	return principal, nil
}
