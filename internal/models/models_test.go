package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLeadStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    LeadStatus
		wantErr bool
	}{
		{"new", LeadNew, false},
		{"Contacted", LeadContacted, false},
		{" CONVERTED ", LeadConverted, false},
		{"lost", LeadLost, false},
		{"archived", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLeadStatus(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLeadPersistsSubmittedAtAsDate(t *testing.T) {
	ts := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	raw, err := json.Marshal(Lead{ID: "1", Name: "Acme", Phone: "555-0100", SubmittedAt: ts, Status: LeadNew})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"date":"2025-03-14T09:30:00Z"`)
	assert.Contains(t, string(raw), `"pricingType":""`)
}

func TestLeadPlaceholders(t *testing.T) {
	l := Lead{}
	assert.Equal(t, "Not provided", l.EmailOrDefault())
	assert.Equal(t, "Not selected", l.PricingOrDefault())

	l = Lead{Email: "a@b.c", PricingType: "pro"}
	assert.Equal(t, "a@b.c", l.EmailOrDefault())
	assert.Equal(t, "pro", l.PricingOrDefault())
}

func TestRecomputeDerivedValues(t *testing.T) {
	a := NewAnalyticsRecord()
	a.Recompute()
	assert.Zero(t, a.ConversionRate)
	assert.Zero(t, a.BounceRate)
	assert.Zero(t, a.AverageLoadTime)

	a.TotalPageViews = 8
	a.Sessions = 4
	a.BouncedSessions = 1
	a.TotalSubmissions = 2
	a.TotalTimeOnSite = 9000
	a.TimedSessions = 3
	a.PageLoadTimes = []float64{100, 200, 300}
	a.Recompute()

	assert.InDelta(t, 25.0, a.ConversionRate, 1e-9)
	assert.InDelta(t, 25.0, a.BounceRate, 1e-9)
	assert.InDelta(t, 2.0, a.PagesPerSession, 1e-9)
	assert.InDelta(t, 3000.0, a.AverageTimeOnSite, 1e-9)
	assert.InDelta(t, 200.0, a.AverageLoadTime, 1e-9)
}

func TestAddLoadSampleEvictsOldest(t *testing.T) {
	a := NewAnalyticsRecord()
	for i := 1; i <= 12; i++ {
		a.AddLoadSample(float64(i))
	}
	require.Len(t, a.PageLoadTimes, LoadTimeWindow)
	assert.Equal(t, 3.0, a.PageLoadTimes[0])
	assert.Equal(t, 12.0, a.PageLoadTimes[LoadTimeWindow-1])
}

func TestNormalizeFillsPartialDocuments(t *testing.T) {
	var a AnalyticsRecord
	require.NoError(t, json.Unmarshal([]byte(`{"totalPageViews":3,"pageLoadTimes":[1,2,3,4,5,6,7,8,9,10,11]}`), &a))
	a.Normalize()

	assert.NotNil(t, a.Browsers)
	assert.NotNil(t, a.Countries)
	assert.Len(t, a.PageLoadTimes, LoadTimeWindow)
	assert.Equal(t, 2.0, a.PageLoadTimes[0])
}

func TestAddTrafficAndDevice(t *testing.T) {
	a := NewAnalyticsRecord()
	a.AddTraffic(TrafficDirect)
	a.AddTraffic(TrafficSearch)
	a.AddTraffic(TrafficSocial)
	a.AddTraffic("newsletter")
	assert.Equal(t, 1, a.DirectTraffic)
	assert.Equal(t, 1, a.SearchTraffic)
	assert.Equal(t, 1, a.SocialTraffic)
	assert.Equal(t, 1, a.ReferralTraffic)

	a.DeviceTypes.Add(DeviceMobile)
	a.DeviceTypes.Add(DeviceTablet)
	a.DeviceTypes.Add("fridge")
	assert.Equal(t, DeviceTally{Mobile: 1, Desktop: 1, Tablet: 1}, a.DeviceTypes)
	assert.Equal(t, 3, a.DeviceTypes.Total())
}

func TestSessionsPrune(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := Sessions{
		"fresh": {StartTime: now.Add(-time.Hour), LastSeen: now.Add(-5 * time.Minute), Pages: 3},
		"stale": {StartTime: now.Add(-2 * time.Hour), LastSeen: now.Add(-time.Hour), Pages: 1},
	}
	assert.Equal(t, 1, s.Prune(now, 30*time.Minute))
	assert.Contains(t, s, "fresh")
	assert.NotContains(t, s, "stale")
}

func TestCookieConsentAllows(t *testing.T) {
	c := DefaultConsent()
	assert.True(t, c.Allows(ConsentNecessary))
	assert.False(t, c.Allows(ConsentAnalytics))

	// Necessary is always allowed, even when a document says otherwise
	c = CookieConsent{Analytics: true}
	assert.True(t, c.Allows(ConsentNecessary))
	assert.True(t, c.Allows(ConsentAnalytics))
	assert.False(t, c.Allows(ConsentFunctional))
	assert.False(t, c.Allows(ConsentAdvertising))
	assert.False(t, c.Allows("unknown"))
}
