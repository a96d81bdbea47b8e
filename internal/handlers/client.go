package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const (
	visitorCookie = "landing_vid"
	sessionCookie = "landing_sid"

	visitorLifetime = 365 * 24 * time.Hour
)

// getClientIP extracts client IP based on proxy_mode configuration
// - "cloudflare": CF-Connecting-IP header
// - "xforwarded": X-Forwarded-For header (first IP from comma-separated list)
// - anything else: direct connection IP
func getClientIP(c fiber.Ctx, proxyMode string) string {
	switch proxyMode {
	case "cloudflare":
		if cfIP := c.Get("CF-Connecting-IP"); cfIP != "" {
			return strings.TrimSpace(cfIP)
		}
	case "xforwarded":
		if xff := c.Get("X-Forwarded-For"); xff != "" {
			return strings.TrimSpace(strings.Split(xff, ",")[0])
		}
	}
	return c.IP()
}

// visitorID returns the visitor cookie, issuing one when absent.
// The second result is true for a visitor seen for the first time.
func (d *Deps) visitorID(c fiber.Ctx) (string, bool) {
	if id := c.Cookies(visitorCookie); isCookieID(id) {
		return id, false
	}
	id := uuid.NewString()
	d.setCookie(c, visitorCookie, id, d.now().Add(visitorLifetime))
	return id, true
}

// sessionID returns the session cookie, issuing one when absent, and
// pushes its expiry out by the session timeout.
func (d *Deps) sessionID(c fiber.Ctx) string {
	id := c.Cookies(sessionCookie)
	if !isCookieID(id) {
		id = uuid.NewString()
	}
	d.setCookie(c, sessionCookie, id, d.now().Add(d.Config.SessionTimeout))
	return id
}

func (d *Deps) setCookie(c fiber.Ctx, name, value string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   d.Config.SecureCookies,
		SameSite: "Lax",
	})
}

func isCookieID(id string) bool {
	if id == "" {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
