package analytics

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dreamdigital/landing/internal/models"
)

// ExportCSV writes the dashboard summary as plain comma-joined Metric,Value rows
func ExportCSV(w io.Writer, rec models.AnalyticsRecord) error {
	last := "None"
	if rec.LastSubmissionDate != nil {
		last = rec.LastSubmissionDate.UTC().Format(time.RFC3339)
	}

	rows := [][]string{
		{"Metric", "Value"},
		{"Total Page Views", fmt.Sprint(rec.TotalPageViews)},
		{"Unique Visitors", fmt.Sprint(rec.UniqueVisitors)},
		{"Total Sessions", fmt.Sprint(rec.Sessions)},
		{"Total Submissions", fmt.Sprint(rec.TotalSubmissions)},
		{"Submissions This Month", fmt.Sprint(rec.SubmissionsThisMonth)},
		{"Submissions This Week", fmt.Sprint(rec.SubmissionsThisWeek)},
		{"Conversion Rate", fmt.Sprintf("%.2f%%", rec.ConversionRate)},
		{"Average Time on Site", FormatDuration(rec.AverageTimeOnSite)},
		{"Bounce Rate", fmt.Sprintf("%.2f%%", rec.BounceRate)},
		{"Pages per Session", fmt.Sprintf("%.2f", rec.PagesPerSession)},
		{"Average Load Time", fmt.Sprintf("%.2fms", rec.AverageLoadTime)},
		{"Direct Traffic", fmt.Sprint(rec.DirectTraffic)},
		{"Search Traffic", fmt.Sprint(rec.SearchTraffic)},
		{"Social Traffic", fmt.Sprint(rec.SocialTraffic)},
		{"Referral Traffic", fmt.Sprint(rec.ReferralTraffic)},
		{"Mobile Users", fmt.Sprint(rec.DeviceTypes.Mobile)},
		{"Desktop Users", fmt.Sprint(rec.DeviceTypes.Desktop)},
		{"Tablet Users", fmt.Sprint(rec.DeviceTypes.Tablet)},
		{"Top Browser", TopBrowser(rec)},
		{"Top Country", TopCountry(rec)},
		{"Last Submission", last},
	}

	bw := bufio.NewWriter(w)
	for _, row := range rows {
		_, _ = bw.WriteString(strings.Join(row, ","))
		_ = bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write analytics csv: %w", err)
	}
	return nil
}

// FormatDuration renders milliseconds as "3m 5s" or "42s"
func FormatDuration(ms float64) string {
	seconds := int64(ms / 1000)
	if minutes := seconds / 60; minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds%60)
	}
	return fmt.Sprintf("%ds", seconds)
}

// Tally is one named counter
type Tally struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// Ranked orders counts descending, ties broken by name
func Ranked(counts map[string]int) []Tally {
	out := make([]Tally, 0, len(counts))
	for name, n := range counts {
		out = append(out, Tally{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// TopBrowser returns the most counted browser, or "None"
func TopBrowser(rec models.AnalyticsRecord) string {
	return top(rec.Browsers)
}

// TopCountry returns the most counted country code, or "None"
func TopCountry(rec models.AnalyticsRecord) string {
	return top(rec.Countries)
}

// TopDevice returns the most counted device class, or "None" before any view
func TopDevice(rec models.AnalyticsRecord) string {
	return top(map[string]int{
		models.DeviceMobile:  rec.DeviceTypes.Mobile,
		models.DeviceDesktop: rec.DeviceTypes.Desktop,
		models.DeviceTablet:  rec.DeviceTypes.Tablet,
	})
}

func top(counts map[string]int) string {
	ranked := Ranked(counts)
	if len(ranked) == 0 || ranked[0].Count == 0 {
		return "None"
	}
	return ranked[0].Name
}

// ExportFilename is the download name for an export made at now
func ExportFilename(now time.Time) string {
	return "dream-digital-analytics-" + now.UTC().Format("2006-01-02") + ".csv"
}
