package models

import "time"

// LoadTimeWindow is the number of most recent load-time samples kept
const LoadTimeWindow = 10

// Device classes
const (
	DeviceMobile  = "mobile"
	DeviceDesktop = "desktop"
	DeviceTablet  = "tablet"
)

// Traffic sources
const (
	TrafficDirect   = "direct"
	TrafficSearch   = "search"
	TrafficSocial   = "social"
	TrafficReferral = "referral"
)

// DeviceTally counts first page views per device class
type DeviceTally struct {
	Mobile  int `json:"mobile"`
	Desktop int `json:"desktop"`
	Tablet  int `json:"tablet"`
}

// Add increments the bucket for class; unknown classes count as desktop
func (d *DeviceTally) Add(class string) {
	switch class {
	case DeviceMobile:
		d.Mobile++
	case DeviceTablet:
		d.Tablet++
	default:
		d.Desktop++
	}
}

// Total is the sum of all buckets
func (d DeviceTally) Total() int {
	return d.Mobile + d.Desktop + d.Tablet
}

// AnalyticsRecord is the single aggregate of site usage counters.
// Derived fields are caches refreshed by Recompute.
type AnalyticsRecord struct {
	TotalPageViews  int `json:"totalPageViews"`
	UniqueVisitors  int `json:"uniqueVisitors"`
	Sessions        int `json:"sessions"`
	BouncedSessions int `json:"bouncedSessions"`

	TotalSubmissions     int        `json:"totalSubmissions"`
	SubmissionsThisMonth int        `json:"submissionsThisMonth"`
	SubmissionsThisWeek  int        `json:"submissionsThisWeek"`
	LastSubmissionDate   *time.Time `json:"lastSubmissionDate"`

	DirectTraffic   int `json:"directTraffic"`
	SearchTraffic   int `json:"searchTraffic"`
	SocialTraffic   int `json:"socialTraffic"`
	ReferralTraffic int `json:"referralTraffic"`

	DeviceTypes DeviceTally    `json:"deviceTypes"`
	Browsers    map[string]int `json:"browsers"`
	Countries   map[string]int `json:"countries"`

	PageLoadTimes []float64 `json:"pageLoadTimes"`

	// Milliseconds summed over every reported visit
	TotalTimeOnSite int64 `json:"totalTimeOnSite"`
	TimedSessions   int   `json:"timedSessions"`

	AverageLoadTime   float64 `json:"averageLoadTime"`
	ConversionRate    float64 `json:"conversionRate"`
	BounceRate        float64 `json:"bounceRate"`
	PagesPerSession   float64 `json:"pagesPerSession"`
	AverageTimeOnSite float64 `json:"averageTimeOnSite"`
}

// NewAnalyticsRecord returns the zero-valued default record
func NewAnalyticsRecord() *AnalyticsRecord {
	return &AnalyticsRecord{
		Browsers:      map[string]int{},
		Countries:     map[string]int{},
		PageLoadTimes: []float64{},
	}
}

// Normalize fills collections left nil by older or partial documents
func (a *AnalyticsRecord) Normalize() {
	if a.Browsers == nil {
		a.Browsers = map[string]int{}
	}
	if a.Countries == nil {
		a.Countries = map[string]int{}
	}
	if a.PageLoadTimes == nil {
		a.PageLoadTimes = []float64{}
	}
	if len(a.PageLoadTimes) > LoadTimeWindow {
		a.PageLoadTimes = append([]float64{}, a.PageLoadTimes[len(a.PageLoadTimes)-LoadTimeWindow:]...)
	}
}

// AddTraffic increments the counter for a traffic source
func (a *AnalyticsRecord) AddTraffic(source string) {
	switch source {
	case TrafficDirect:
		a.DirectTraffic++
	case TrafficSearch:
		a.SearchTraffic++
	case TrafficSocial:
		a.SocialTraffic++
	default:
		a.ReferralTraffic++
	}
}

// AddLoadSample appends ms, evicting the oldest sample past LoadTimeWindow
func (a *AnalyticsRecord) AddLoadSample(ms float64) {
	a.PageLoadTimes = append(a.PageLoadTimes, ms)
	if over := len(a.PageLoadTimes) - LoadTimeWindow; over > 0 {
		a.PageLoadTimes = append([]float64{}, a.PageLoadTimes[over:]...)
	}
}

// Recompute refreshes every derived value from the counters
func (a *AnalyticsRecord) Recompute() {
	a.AverageLoadTime = 0
	if n := len(a.PageLoadTimes); n > 0 {
		var sum float64
		for _, v := range a.PageLoadTimes {
			sum += v
		}
		a.AverageLoadTime = sum / float64(n)
	}

	a.ConversionRate = 0
	if a.TotalPageViews > 0 {
		a.ConversionRate = float64(a.TotalSubmissions) / float64(a.TotalPageViews) * 100
	}

	a.BounceRate = 0
	a.PagesPerSession = 0
	if a.Sessions > 0 {
		a.BounceRate = float64(a.BouncedSessions) / float64(a.Sessions) * 100
		a.PagesPerSession = float64(a.TotalPageViews) / float64(a.Sessions)
	}

	a.AverageTimeOnSite = 0
	if a.TimedSessions > 0 {
		a.AverageTimeOnSite = float64(a.TotalTimeOnSite) / float64(a.TimedSessions)
	}
}
