package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/thegymcollege/reelflow/internal/service"
	"github.com/thegymcollege/reelflow/internal/transfer"
)

type ScheduleHandler struct {
	s service.ScheduleService
}

func NewScheduleHandler(s service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{s: s}
}

func (h *ScheduleHandler) CreateSchedule(c *fiber.Ctx) error {
	ownerID := GetOwnerID(c)

	var req transfer.ScheduleCreation
	if err := c.BodyParser(&req); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	post, err := h.s.Create(c.Context(), ownerID, &req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *ScheduleHandler) ListSchedules(c *fiber.Ctx) error {
	ownerID := GetOwnerID(c)

	posts, err := h.s.List(c.Context(), ownerID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list schedules",
		})
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *ScheduleHandler) RemoveSchedule(c *fiber.Ctx) error {
	ownerID := GetOwnerID(c)

	var req transfer.ScheduleID
	if err := c.BodyParser(&req); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	if err := h.s.Remove(c.Context(), ownerID, req.ScheduleID); err != nil {
		return c.Status(statusForScheduleError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *ScheduleHandler) RetrySchedule(c *fiber.Ctx) error {
	ownerID := GetOwnerID(c)

	var req transfer.ScheduleID
	if err := c.BodyParser(&req); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	post, err := h.s.Retry(c.Context(), ownerID, req.ScheduleID)
	if err != nil {
		return c.Status(statusForScheduleError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *ScheduleHandler) ScheduleHistory(c *fiber.Ctx) error {
	ownerID := GetOwnerID(c)

	scheduleID := c.Query("schedule_id")
	if scheduleID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "schedule_id is required",
		})
	}

	attempts, err := h.s.History(c.Context(), ownerID, scheduleID)
	if err != nil {
		return c.Status(statusForScheduleError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(attempts)
}

func statusForScheduleError(err error) int {
	switch {
	case errors.Is(err, service.ErrScheduleNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrAlreadyPublished), errors.Is(err, service.ErrAttemptInProgress):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
