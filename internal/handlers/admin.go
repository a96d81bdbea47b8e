package handlers

import (
	"bytes"
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/dreamdigital/landing/internal/analytics"
	"github.com/dreamdigital/landing/internal/leads"
	"github.com/dreamdigital/landing/internal/logging"
	"github.com/dreamdigital/landing/internal/middleware"
	"github.com/dreamdigital/landing/internal/models"
	"github.com/dreamdigital/landing/internal/seo"
)

// LoginRequest is the operator login body
type LoginRequest struct {
	Password string `json:"password" form:"password"`
}

// StatusRequest changes the pipeline status of a lead
type StatusRequest struct {
	Status string `json:"status" form:"status"`
}

// HandleAdminLogin exchanges the operator password for an admin token
// POST /api/admin/login
func HandleAdminLogin(d *Deps) fiber.Handler {
	return func(c fiber.Ctx) error {
		if !d.Config.AdminEnabled() {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "Admin access is not configured",
			})
		}

		var req LoginRequest
		if err := c.Bind().Body(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request payload",
			})
		}

		if err := middleware.CheckPassword(d.Config.Admin.PasswordHash, req.Password); err != nil {
			logging.L().Warn("admin login failed", zap.String("ip", getClientIP(c, d.Config.ProxyMode)))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid password",
			})
		}

		token, expiresAt, err := middleware.IssueAdminToken(d.adminSecret(), d.Config.Admin.TokenTTL)
		if err != nil {
			logging.L().Error("failed to sign admin token", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to create session",
			})
		}

		c.Cookie(&fiber.Cookie{
			Name:     middleware.AdminCookie,
			Value:    token,
			Path:     "/",
			Expires:  expiresAt,
			HTTPOnly: true,
			Secure:   d.Config.SecureCookies,
			SameSite: "Strict",
		})
		return c.JSON(fiber.Map{
			"token":     token,
			"expiresAt": expiresAt,
		})
	}
}

// HandleAdminLogout clears the admin cookie
// POST /api/admin/logout
func HandleAdminLogout(d *Deps) fiber.Handler {
	return func(c fiber.Ctx) error {
		c.Cookie(&fiber.Cookie{
			Name:     middleware.AdminCookie,
			Value:    "",
			Path:     "/",
			Expires:  time.Now().Add(-1 * time.Hour),
			HTTPOnly: true,
			Secure:   d.Config.SecureCookies,
			SameSite: "Strict",
		})
		return c.JSON(fiber.Map{"success": true})
	}
}

// HandleAdminSession describes the token that authorized the request
// GET /api/admin/session
func HandleAdminSession(_ *Deps) fiber.Handler {
	return func(c fiber.Ctx) error {
		claims := middleware.GetAdminClaims(c)
		if claims == nil || claims.ExpiresAt == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}
		return c.JSON(fiber.Map{
			"subject":   claims.Subject,
			"expiresAt": claims.ExpiresAt.Time,
		})
	}
}

// HandleListLeads returns all leads with dashboard counters.
// An optional ?status= filter narrows the list, not the counters.
// GET /api/admin/leads
func HandleListLeads(d *Deps) fiber.Handler {
	return func(c fiber.Ctx) error {
		all := d.Ledger.ListAll(c.Context())
		stats := leads.ComputeStats(all, d.now())

		list := all
		if raw := c.Query("status"); raw != "" {
			status, err := models.ParseLeadStatus(raw)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": err.Error(),
				})
			}
			list = make([]models.Lead, 0, len(all))
			for _, l := range all {
				if l.Status == status {
					list = append(list, l)
				}
			}
		}

		return c.JSON(fiber.Map{
			"leads": list,
			"stats": stats,
		})
	}
}

// HandleUpdateLeadStatus sets the status of one lead. Unknown ids are not an error.
// PATCH /api/admin/leads/:id
func HandleUpdateLeadStatus(d *Deps) fiber.Handler {
	return func(c fiber.Ctx) error {
		var req StatusRequest
		if err := c.Bind().Body(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request payload",
			})
		}
		status, err := models.ParseLeadStatus(req.Status)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		id := c.Params("id")
		updated, err := d.Ledger.SetStatus(c.Context(), id, status)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"id":      id,
			"status":  status,
			"updated": updated,
		})
	}
}

// HandleExportLeads downloads the ledger as CSV
// GET /api/admin/leads.csv
func HandleExportLeads(d *Deps) fiber.Handler {
	return func(c fiber.Ctx) error {
		var buf bytes.Buffer
		if err := leads.ExportCSV(&buf, d.Ledger.ListAll(c.Context())); err != nil {
			logging.L().Error("failed to export leads", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Export failed",
			})
		}
		return sendCSV(c, leads.ExportFilename(d.now()), buf.Bytes())
	}
}

// HandleAnalytics returns the analytics record with dashboard highlights
// GET /api/admin/analytics
func HandleAnalytics(d *Deps) fiber.Handler {
	return func(c fiber.Ctx) error {
		rec := d.Analytics.Snapshot(c.Context())
		live := 0
		if d.Hub != nil {
			live = d.Hub.Clients()
		}
		return c.JSON(fiber.Map{
			"analytics":       rec,
			"activeSessions":  d.Analytics.ActiveSessions(c.Context()),
			"liveSubscribers": live,
			"topBrowser":      analytics.TopBrowser(rec),
			"topDevice":       analytics.TopDevice(rec),
			"topCountry":      analytics.TopCountry(rec),
			"averageTime":     analytics.FormatDuration(rec.AverageTimeOnSite),
		})
	}
}

// HandleExportAnalytics downloads the analytics record as CSV
// GET /api/admin/analytics.csv
func HandleExportAnalytics(d *Deps) fiber.Handler {
	return func(c fiber.Ctx) error {
		var buf bytes.Buffer
		if err := analytics.ExportCSV(&buf, d.Analytics.Snapshot(c.Context())); err != nil {
			logging.L().Error("failed to export analytics", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Export failed",
			})
		}
		return sendCSV(c, analytics.ExportFilename(d.now()), buf.Bytes())
	}
}

// HandleResetAnalytics wipes analytics; requires ?confirm=true
// POST /api/admin/analytics/reset
func HandleResetAnalytics(d *Deps) fiber.Handler {
	return func(c fiber.Ctx) error {
		err := d.Analytics.Reset(c.Context(), c.Query("confirm") == "true")
		switch {
		case errors.Is(err, analytics.ErrResetNotConfirmed):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Reset requires confirm=true",
			})
		case err != nil:
			logging.L().Error("analytics reset failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Reset failed",
			})
		}
		return c.JSON(fiber.Map{"success": true})
	}
}

// HandleSEOReport inspects the rendered landing page
// GET /api/admin/seo
func HandleSEOReport(d *Deps) fiber.Handler {
	return func(c fiber.Ctx) error {
		page, err := d.RenderLanding(d.Content.Site())
		if err != nil {
			logging.L().Error("failed to render landing page", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Render failed",
			})
		}
		report, err := seo.Inspect(bytes.NewReader(page))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		missing := report.Missing()
		if missing == nil {
			missing = []string{}
		}
		return c.JSON(fiber.Map{
			"report":  report,
			"missing": missing,
		})
	}
}

func sendCSV(c fiber.Ctx, filename string, data []byte) error {
	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	return c.Send(data)
}
