package handlers

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/dreamdigital/landing/internal/analytics"
	"github.com/dreamdigital/landing/internal/config"
	"github.com/dreamdigital/landing/internal/consent"
	"github.com/dreamdigital/landing/internal/content"
	"github.com/dreamdigital/landing/internal/leads"
	"github.com/dreamdigital/landing/internal/realtime"
	"github.com/dreamdigital/landing/internal/submission"
)

// Deps is everything the HTTP handlers read from or write to
type Deps struct {
	Config    *config.Config
	Content   *content.Provider
	Analytics *analytics.Aggregator
	Ledger    *leads.Ledger
	Consent   *consent.Store
	Flow      *submission.Flow
	Hub       *realtime.Hub
	Views     fiber.Views

	// Now is the clock for cookies and dashboard stats; nil means time.Now
	Now func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Deps) adminSecret() []byte {
	return []byte(d.Config.Admin.JWTSecret)
}
