package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/thegymcollege/reelflow/internal/service"
)

type SlotHandler struct {
	s service.SlotService
}

func NewSlotHandler(s service.SlotService) *SlotHandler {
	return &SlotHandler{s: s}
}

func (h *SlotHandler) NextSlot(c *fiber.Ctx) error {
	brand := c.Query("brand")
	mode := c.Query("mode")

	next, err := h.s.NextAvailableSlot(c.Context(), brand, mode, time.Now().UTC())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"brand": brand,
		"mode":  mode,
		"next":  next,
	})
}

func (h *SlotHandler) SlotMatrix(c *fiber.Ctx) error {
	matrix, err := h.s.SlotMatrix(c.Context(), time.Now().UTC())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to compute slot matrix",
		})
	}

	return c.Status(fiber.StatusOK).JSON(matrix)
}
