package handlers

import (
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
)

// HandleVersion reports build information for the running binary.
// GET /version
func HandleVersion(c *fiber.Ctx) error {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "no build information available"})
	}
	return c.JSON(fiber.Map{
		"go_version": info.GoVersion,
		"module":     info.Main.Path,
		"version":    info.Main.Version,
	})
}
