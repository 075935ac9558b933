package handlers

import (
	"github.com/gofiber/fiber/v2"
)

func GetOwnerID(c *fiber.Ctx) string {
	ownerID, _ := c.Locals("owner_id").(string)
	return ownerID
}
