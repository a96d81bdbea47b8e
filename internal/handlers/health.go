package handlers

import (
	"github.com/gofiber/fiber/v3"

	"github.com/dreamdigital/landing/internal/geoip"
)

// HandleHealth reports liveness
// GET /healthz
func HandleHealth(d *Deps) fiber.Handler {
	return func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"storage": d.Config.Storage,
			"geoip":   geoip.Available(),
		})
	}
}
