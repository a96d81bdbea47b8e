package handlers

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v3"
	fiberhtml "github.com/gofiber/template/html/v2"
	"go.uber.org/zap"

	"github.com/dreamdigital/landing/internal/analytics"
	"github.com/dreamdigital/landing/internal/content"
	"github.com/dreamdigital/landing/internal/geoip"
	"github.com/dreamdigital/landing/internal/logging"
	"github.com/dreamdigital/landing/internal/submission"
)

const landingView = "landing"

//go:embed views/*.html
var viewsFS embed.FS

// NewViews returns the template engine for the embedded views
func NewViews() *fiberhtml.Engine {
	sub, err := fs.Sub(viewsFS, "views")
	if err != nil {
		panic(err)
	}
	engine := fiberhtml.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("inc", func(i int) int { return i + 1 })
	return engine
}

// PageData is the binding of the landing view
type PageData struct {
	Site             *content.Site
	StructuredData   template.JS
	RecaptchaSiteKey string
	// FallbackToken is submitted instead of a reCAPTCHA token without a site key
	FallbackToken    string
	ConsentDecided   bool
	Year             int
}

func (d *Deps) pageData(site *content.Site, consentDecided bool) PageData {
	return PageData{
		Site:             site,
		StructuredData:   structuredData(site),
		RecaptchaSiteKey: d.Config.Recaptcha.SiteKey,
		FallbackToken:    fallbackToken(d.Config.Recaptcha.SiteKey),
		ConsentDecided:   consentDecided,
		Year:             d.now().Year(),
	}
}

func fallbackToken(siteKey string) string {
	if siteKey != "" {
		return ""
	}
	return submission.DevelopmentToken
}

// structuredData builds the schema.org Organization block of the page
func structuredData(site *content.Site) template.JS {
	offers := make([]map[string]string, 0, len(site.Pricing))
	for _, p := range site.Pricing {
		offers = append(offers, map[string]string{
			"@type":       "Offer",
			"name":        p.Name,
			"price":       p.Price,
			"description": p.Description,
		})
	}
	doc := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "ProfessionalService",
		"name":        site.Brand.Name,
		"description": site.Meta.Description,
		"url":         site.Meta.URL,
		"image":       site.Meta.Image,
		"makesOffer":  offers,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return template.JS("{}")
	}
	return template.JS(data)
}

// RenderLanding renders the landing page for site into a byte slice
func (d *Deps) RenderLanding(site *content.Site) ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Views.Render(&buf, landingView, d.pageData(site, true)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// HandleLandingPage renders the landing page and records the page view
// GET /
func HandleLandingPage(d *Deps) fiber.Handler {
	return func(c fiber.Ctx) error {
		visitor, newVisitor := d.visitorID(c)
		session := d.sessionID(c)

		decided := d.Consent.Decided(c.Context(), visitor)
		if d.trackingAllowed(c, visitor) {
			ip := getClientIP(c, d.Config.ProxyMode)
			env := analytics.UserAgentEnvironment{
				UserAgent:   c.Get(fiber.HeaderUserAgent),
				Referrer:    externalReferrer(c),
				CountryCode: geoip.LookupCountry(ip),
			}
			d.Analytics.RecordPageView(c.Context(), analytics.Visit{SessionID: session, NewVisitor: newVisitor}, env)
		}

		c.Set(fiber.HeaderCacheControl, "no-store")
		if err := c.Render(landingView, d.pageData(d.Content.Site(), decided)); err != nil {
			logging.L().Error("failed to render landing page", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).SendString("Page unavailable")
		}
		return nil
	}
}

// externalReferrer drops same-host referrers so in-site navigation is not
// counted as referral traffic
func externalReferrer(c fiber.Ctx) string {
	ref := c.Get(fiber.HeaderReferer)
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err == nil && (strings.EqualFold(u.Host, c.Host()) || strings.EqualFold(u.Hostname(), c.Hostname())) {
		return ""
	}
	return ref
}
