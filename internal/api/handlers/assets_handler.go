package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/thegymcollege/reelflow/internal/service"
	"github.com/thegymcollege/reelflow/internal/transfer"
)

type AssetsHandler struct {
	s service.AssetService
}

func NewAssetsHandler(s service.AssetService) *AssetsHandler {
	return &AssetsHandler{s: s}
}

// UploadAssets stores every file in the multipart form and returns the
// public locators in form order. Callers paste these into content refs.
func (h *AssetsHandler) UploadAssets(c *fiber.Ctx) error {
	ownerID := GetOwnerID(c)

	form, err := c.MultipartForm()
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse form",
		})
	}

	files := form.File["files"]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No files selected",
		})
	}

	uploaded := make([]*transfer.UploadedAsset, 0, len(files))
	for _, file := range files {
		asset, err := h.s.Upload(c.Context(), ownerID, file)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		uploaded = append(uploaded, asset)
	}

	return c.Status(fiber.StatusOK).JSON(uploaded)
}
