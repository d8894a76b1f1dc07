package handlers

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// UploadRoute is where stored files are served from.
const UploadRoute = "/uploads"

// HandleUpload stores an image sent as multipart field "file" under a random name and returns its URL.
// POST /api/upload
func (h *Handler) HandleUpload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Missing file")
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExts[ext] {
		return fail(c, fiber.StatusBadRequest, "Only image files are allowed")
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		logFor(c).Error("Error creating upload directory", zap.Error(err))
		return fail(c, fiber.StatusInternalServerError, "Could not store file")
	}
	name := uuid.New().String() + ext
	if err := c.SaveFile(file, filepath.Join(h.uploadDir, name)); err != nil {
		logFor(c).Error("Error saving upload", zap.String("file", file.Filename), zap.Error(err))
		return fail(c, fiber.StatusInternalServerError, "Could not store file")
	}
	h.metrics.UploadedBytes.Add(float64(file.Size))
	logFor(c).Info("file uploaded", zap.String("name", name), zap.Int64("size", file.Size))
	return c.JSON(fiber.Map{"url": UploadRoute + "/" + name})
}
