package analytics

import (
	"strings"

	"github.com/dreamdigital/landing/internal/models"
)

// Environment describes the client a page view came from
type Environment interface {
	DeviceClass() string
	BrowserName() string
	ReferrerSource() string
	// NavigationTiming returns the page load time in milliseconds, if measured
	NavigationTiming() (float64, bool)
}

// CountryEnvironment is implemented by environments that can geolocate the client
type CountryEnvironment interface {
	Country() string
}

// UserAgentEnvironment classifies a client from its raw request metadata
type UserAgentEnvironment struct {
	UserAgent   string
	Referrer    string
	CountryCode string
	LoadTimeMS  *float64
}

func (e UserAgentEnvironment) DeviceClass() string    { return ClassifyDevice(e.UserAgent) }
func (e UserAgentEnvironment) BrowserName() string    { return ClassifyBrowser(e.UserAgent) }
func (e UserAgentEnvironment) ReferrerSource() string { return ClassifyReferrer(e.Referrer) }
func (e UserAgentEnvironment) Country() string        { return e.CountryCode }

func (e UserAgentEnvironment) NavigationTiming() (float64, bool) {
	if e.LoadTimeMS == nil {
		return 0, false
	}
	return *e.LoadTimeMS, true
}

var mobileMarkers = []string{"android", "webos", "iphone", "ipod", "blackberry", "iemobile", "opera mini"}

// ClassifyDevice buckets a user agent into mobile, tablet or desktop
func ClassifyDevice(ua string) string {
	ua = strings.ToLower(ua)

	// Android tablets omit the "Mobile" token
	android := strings.Contains(ua, "android")
	if strings.Contains(ua, "ipad") || strings.Contains(ua, "tablet") || (android && !strings.Contains(ua, "mobile")) {
		return models.DeviceTablet
	}
	for _, marker := range mobileMarkers {
		if strings.Contains(ua, marker) {
			return models.DeviceMobile
		}
	}
	return models.DeviceDesktop
}

// ClassifyBrowser names the browser family of a user agent.
// Edge is checked first since its user agent also carries Chrome and Safari tokens.
func ClassifyBrowser(ua string) string {
	ua = strings.ToLower(ua)
	switch {
	case strings.Contains(ua, "edg"):
		return "Edge"
	case strings.Contains(ua, "chrome"):
		return "Chrome"
	case strings.Contains(ua, "firefox"):
		return "Firefox"
	case strings.Contains(ua, "safari"):
		return "Safari"
	}
	return "Other"
}

var (
	searchReferrers = []string{"google", "bing", "yahoo"}
	socialReferrers = []string{"facebook", "instagram", "twitter"}
)

// ClassifyReferrer maps a referrer URL to a traffic source
func ClassifyReferrer(referrer string) string {
	referrer = strings.ToLower(strings.TrimSpace(referrer))
	if referrer == "" {
		return models.TrafficDirect
	}
	for _, s := range searchReferrers {
		if strings.Contains(referrer, s) {
			return models.TrafficSearch
		}
	}
	for _, s := range socialReferrers {
		if strings.Contains(referrer, s) {
			return models.TrafficSocial
		}
	}
	return models.TrafficReferral
}
