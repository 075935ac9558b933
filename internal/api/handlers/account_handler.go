package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/thegymcollege/reelflow/internal/models"
	"github.com/thegymcollege/reelflow/internal/service"
	"github.com/thegymcollege/reelflow/internal/transfer"
)

type AccountHandler struct {
	s service.AccountService
}

func NewAccountHandler(s service.AccountService) *AccountHandler {
	return &AccountHandler{s: s}
}

func (h *AccountHandler) ConnectAccount(c *fiber.Ctx) error {
	ownerID := GetOwnerID(c)

	var req transfer.AccountConnection
	if err := c.BodyParser(&req); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	id, err := h.s.Connect(c.Context(), ownerID, &req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(transfer.AccountID{ID: id})
}

func (h *AccountHandler) DisconnectAccount(c *fiber.Ctx) error {
	ownerID := GetOwnerID(c)

	var req transfer.AccountRemoval
	if err := c.BodyParser(&req); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	err := h.s.Disconnect(c.Context(), ownerID, req.Brand, models.Platform(req.Platform))
	if err != nil {
		status := fiber.StatusBadRequest
		if errors.Is(err, service.ErrAccountNotFound) {
			status = fiber.StatusNotFound
		}
		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
