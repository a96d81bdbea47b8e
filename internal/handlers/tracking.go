package handlers

import (
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/dreamdigital/landing/internal/logging"
)

const (
	MaxURLSize = 2000 // Max referrer length recorded (Plausible standard)

	maxLoadTime  = 5 * time.Minute
	maxVisitTime = 24 * time.Hour
)

// Spam referrer domains (from Plausible patterns)
var spamReferrers = []string{
	"semalt.com",
	"buttons-for-website.com",
	"darodar.com",
	"best-seo-offer.com",
	"free-share-buttons.com",
	"blackhatworth.com",
	"hulfingtonpost.com",
	"o-o-6-o-o.com",
	"priceg.com",
	"make-money-online",
	"simple-share-buttons.com",
	"kambasoft.com",
}

// TimingBeacon is posted once the page finished loading
type TimingBeacon struct {
	LoadTimeMS float64 `json:"loadTimeMs"`
}

// LeaveBeacon is posted when the visitor leaves the page
type LeaveBeacon struct {
	DurationMS int64 `json:"durationMs"`
}

// HandleTimingBeacon records a page load time sample
// POST /api/track/timing
func HandleTimingBeacon(d *Deps) fiber.Handler {
	return func(c fiber.Ctx) error {
		var beacon TimingBeacon
		if err := c.Bind().Body(&beacon); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid JSON payload",
			})
		}
		ms := beacon.LoadTimeMS
		if ms < 0 || math.IsNaN(ms) || math.IsInf(ms, 0) || ms > float64(maxLoadTime.Milliseconds()) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid load time",
			})
		}

		visitor, _ := d.visitorID(c)
		if d.trackingAllowed(c, visitor) {
			d.Analytics.RecordLoadSample(c.Context(), ms)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// HandleLeaveBeacon records the time spent on the site
// POST /api/track/leave
func HandleLeaveBeacon(d *Deps) fiber.Handler {
	return func(c fiber.Ctx) error {
		var beacon LeaveBeacon
		if err := c.Bind().Body(&beacon); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid JSON payload",
			})
		}
		duration := time.Duration(beacon.DurationMS) * time.Millisecond
		if duration <= 0 || duration > maxVisitTime {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid duration",
			})
		}

		visitor, _ := d.visitorID(c)
		if d.trackingAllowed(c, visitor) {
			d.Analytics.RecordTimeOnSite(c.Context(), duration)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// trackingAllowed applies consent and spam filtering to an analytics write
func (d *Deps) trackingAllowed(c fiber.Ctx, visitor string) bool {
	if d.Config.RequireConsent && !d.Consent.Get(c.Context(), visitor).Analytics {
		return false
	}
	ref := c.Get(fiber.HeaderReferer)
	if len(ref) > MaxURLSize {
		logging.L().Debug("referrer too long, not tracked", zap.Int("length", len(ref)))
		return false
	}
	if isSpamReferrer(ref) {
		logging.L().Debug("spam referrer blocked", zap.String("referrer", ref))
		return false
	}
	return true
}

// isSpamReferrer checks if referrer is from known spam domain
func isSpamReferrer(referrer string) bool {
	if referrer == "" {
		return false
	}

	u, err := url.Parse(referrer)
	if err != nil {
		return false
	}

	domain := strings.ToLower(u.Hostname())
	domain = strings.TrimPrefix(domain, "www.")

	for _, spam := range spamReferrers {
		if strings.Contains(domain, spam) {
			return true
		}
	}
	return false
}
