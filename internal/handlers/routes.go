package handlers

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"github.com/dreamdigital/landing/internal/middleware"
	"github.com/dreamdigital/landing/internal/models"
	"github.com/dreamdigital/landing/internal/realtime"
)

// Register mounts every route on router
func Register(router fiber.Router, d *Deps) {
	router.Get("/", HandleLandingPage(d))
	router.Get("/healthz", HandleHealth(d))

	api := router.Group("/api")
	api.Post("/leads", HandleSubmitLead(d))
	api.Post("/track/timing", HandleTimingBeacon(d))
	api.Post("/track/leave", HandleLeaveBeacon(d))
	api.Get("/consent", HandleGetConsent(d))
	api.Put("/consent", HandleUpdateConsent(d))

	api.Post("/admin/login", HandleAdminLogin(d))
	api.Post("/admin/logout", HandleAdminLogout(d))

	admin := api.Group("/admin", middleware.AdminAuth(d.adminSecret()))
	admin.Get("/session", HandleAdminSession(d))
	admin.Get("/leads", HandleListLeads(d))
	admin.Get("/leads.csv", HandleExportLeads(d))
	admin.Patch("/leads/:id", HandleUpdateLeadStatus(d))
	admin.Get("/analytics", HandleAnalytics(d))
	admin.Get("/analytics.csv", HandleExportAnalytics(d))
	admin.Post("/analytics/reset", HandleResetAnalytics(d))
	admin.Get("/seo", HandleSEOReport(d))

	if d.Hub != nil {
		snapshot := func() models.AnalyticsRecord {
			return d.Analytics.Snapshot(context.Background())
		}
		router.Get("/ws/analytics",
			middleware.AdminAuth(d.adminSecret()),
			realtime.RequireUpgrade,
			realtime.Handler(d.Hub, snapshot),
		)
	}
}
