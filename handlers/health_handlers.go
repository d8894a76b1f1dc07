package handlers

import (
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// HandleHealth reports whether the store answers.
// GET /health
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	if err := h.store.Ping(c.UserContext()); err != nil {
		logFor(c).Warn("Database ping failed", zap.Error(err))
		return fail(c, fiber.StatusServiceUnavailable, "Database ping failed")
	}
	return c.JSON(fiber.Map{"status": "success", "message": "ok"})
}

// HandleVersion prints the build information of the running binary.
// GET /version
func (h *Handler) HandleVersion(c *fiber.Ctx) error {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return fail(c, fiber.StatusInternalServerError, "no build information available")
	}
	return c.JSON(fiber.Map{"status": "success", "go": info.GoVersion, "module": info.Main.Path, "version": info.Main.Version})
}
