package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	config "github.com/thegymcollege/reelflow/configs"
	"github.com/thegymcollege/reelflow/pkg/utils"
)

const sessionDuration = 24 * time.Hour

// SessionHandler trades an API-key-authenticated request for a signed
// session cookie, so browser callers do not replay the key on every
// request.
type SessionHandler struct {
	cfg config.Config
}

func NewSessionHandler(cfg config.Config) *SessionHandler {
	return &SessionHandler{cfg: cfg}
}

func (h *SessionHandler) CreateSession(c *fiber.Ctx) error {
	ownerID := GetOwnerID(c)
	if ownerID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "owner is not valid",
		})
	}

	token, err := utils.GenerateToken(h.cfg.SecretKey, ownerID, sessionDuration)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to create session",
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    token,
		Expires:  time.Now().Add(sessionDuration),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})

	return c.SendStatus(fiber.StatusOK)
}
