package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/dreamdigital/landing/internal/submission"
)

// genericSubmissionError is shown for both verification and relay failures
const genericSubmissionError = "Submission error. Try again or contact us directly"

// HandleSubmitLead runs the contact form through the submission flow
// POST /api/leads
func HandleSubmitLead(d *Deps) fiber.Handler {
	return func(c fiber.Ctx) error {
		var req submission.Request
		if err := c.Bind().Body(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request payload",
			})
		}
		req.RemoteIP = getClientIP(c, d.Config.ProxyMode)

		lead, err := d.Flow.Submit(c.Context(), req)
		switch {
		case err == nil:
			return c.Status(fiber.StatusCreated).JSON(fiber.Map{
				"success": true,
				"id":      lead.ID,
			})
		case errors.Is(err, submission.ErrInvalidRequest):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		default:
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": genericSubmissionError,
			})
		}
	}
}
