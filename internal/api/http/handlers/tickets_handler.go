package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/deskhub/support-portal/internal/api/dto"
	"github.com/deskhub/support-portal/internal/auth"
	"github.com/deskhub/support-portal/internal/domain"
	"github.com/deskhub/support-portal/internal/service"
)

// TicketsHandler exposes the customer portal's request endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{tickets: ticketService}
}

// Create handles POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "authentication required")
	}

	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	ticket, err := h.tickets.Create(c.UserContext(), principal.User.ID, service.CreateTicketInput{
		IssueType:   req.IssueType,
		Device:      req.Device,
		Description: req.Description,
	})
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.NewCustomerTicketResponse(*ticket),
	})
}

// ListMine handles GET /tickets.
func (h *TicketsHandler) ListMine(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "authentication required")
	}

	tickets, err := h.tickets.ListForUser(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}

	out := make([]dto.CustomerTicketResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, dto.NewCustomerTicketResponse(t))
	}
	return c.JSON(fiber.Map{"data": out})
}

// GetMine handles GET /tickets/:id.
func (h *TicketsHandler) GetMine(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "authentication required")
	}

	ticket, err := h.tickets.GetForUser(c.UserContext(), principal.User.ID, c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			return fiber.NewError(http.StatusForbidden, "not your request")
		case errors.Is(err, domain.ErrTicketNotFound):
			return fiber.NewError(http.StatusNotFound, "request not found")
		}
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCustomerTicketResponse(*ticket)})
}
