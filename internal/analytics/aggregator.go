// Package analytics maintains the site-wide AnalyticsRecord.
//
// Every operation is a read-modify-write of the whole record against the
// storage port. Storage faults never reach callers: unreadable data is
// replaced by a default record and failed writes are logged.
package analytics

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dreamdigital/landing/internal/logging"
	"github.com/dreamdigital/landing/internal/models"
	"github.com/dreamdigital/landing/internal/storage"
)

// ErrResetNotConfirmed is returned by Reset without operator confirmation
var ErrResetNotConfirmed = errors.New("analytics reset requires confirmation")

// DefaultSessionTimeout ends a session after this much inactivity
const DefaultSessionTimeout = 30 * time.Minute

const week = 7 * 24 * time.Hour

// Visit identifies who produced a page view
type Visit struct {
	SessionID  string
	NewVisitor bool
}

// Observer receives the record after every successful update
type Observer func(models.AnalyticsRecord)

// Option configures an Aggregator
type Option func(*Aggregator)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// WithSessionTimeout sets the inactivity window of a session
func WithSessionTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.sessionTimeout = d
		}
	}
}

// WithObserver registers a change observer
func WithObserver(fn Observer) Option {
	return func(a *Aggregator) { a.observer = fn }
}

// Aggregator owns the analytics and session documents
type Aggregator struct {
	store          storage.Storage
	now            func() time.Time
	sessionTimeout time.Duration
	observer       Observer
	log            *zap.Logger

	mu sync.Mutex
}

// New returns an Aggregator over store
func New(store storage.Storage, opts ...Option) *Aggregator {
	a := &Aggregator{
		store:          store,
		now:            time.Now,
		sessionTimeout: DefaultSessionTimeout,
		log:            logging.Named("analytics"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetObserver replaces the change observer
func (a *Aggregator) SetObserver(fn Observer) {
	a.mu.Lock()
	a.observer = fn
	a.mu.Unlock()
}

// RecordPageView counts one page view. The first view of a session also
// classifies its traffic source, device, browser and country.
func (a *Aggregator) RecordPageView(ctx context.Context, visit Visit, env Environment) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	rec := a.load(ctx)
	sessions := a.loadSessions(ctx)
	sessions.Prune(now, a.sessionTimeout)

	rec.TotalPageViews++

	meta, ok := sessions[visit.SessionID]
	if !ok || visit.SessionID == "" {
		meta = models.SessionMeta{StartTime: now}
		rec.Sessions++
		rec.BouncedSessions++
		rec.AddTraffic(env.ReferrerSource())
		rec.DeviceTypes.Add(env.DeviceClass())
		rec.Browsers[env.BrowserName()]++
		if ce, ok := env.(CountryEnvironment); ok {
			if code := ce.Country(); code != "" {
				rec.Countries[code]++
			}
		}
	}
	meta.Pages++
	meta.LastSeen = now
	if meta.Pages == 2 && rec.BouncedSessions > 0 {
		rec.BouncedSessions--
	}

	if visit.NewVisitor {
		rec.UniqueVisitors++
	}
	if ms, ok := env.NavigationTiming(); ok && validSample(ms) {
		rec.AddLoadSample(ms)
	}

	if visit.SessionID != "" {
		sessions[visit.SessionID] = meta
	}
	a.saveSessions(ctx, sessions)
	a.save(ctx, rec)
}

// RecordSubmission counts one successful lead submission. The month and week
// counters continue when the previous submission falls in the same calendar
// month, or less than seven days back, and restart at 1 otherwise.
func (a *Aggregator) RecordSubmission(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	rec := a.load(ctx)

	sameMonth, sameWeek := false, false
	if prev := rec.LastSubmissionDate; prev != nil {
		p := prev.In(now.Location())
		sameMonth = p.Year() == now.Year() && p.Month() == now.Month()
		sameWeek = now.Sub(p) < week
	}

	rec.TotalSubmissions++
	if sameMonth {
		rec.SubmissionsThisMonth++
	} else {
		rec.SubmissionsThisMonth = 1
	}
	if sameWeek {
		rec.SubmissionsThisWeek++
	} else {
		rec.SubmissionsThisWeek = 1
	}
	rec.LastSubmissionDate = &now

	a.save(ctx, rec)
}

// RecordLoadSample adds a page load time in milliseconds to the rolling window
func (a *Aggregator) RecordLoadSample(ctx context.Context, ms float64) {
	if !validSample(ms) {
		a.log.Debug("dropping invalid load sample", zap.Float64("ms", ms))
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	rec := a.load(ctx)
	rec.AddLoadSample(ms)
	a.save(ctx, rec)
}

// RecordTimeOnSite adds the duration of one visit to the time-on-site average
func (a *Aggregator) RecordTimeOnSite(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	rec := a.load(ctx)
	rec.TotalTimeOnSite += d.Milliseconds()
	rec.TimedSessions++
	a.save(ctx, rec)
}

// Reset wipes all analytics and session data. It cannot be undone.
func (a *Aggregator) Reset(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return ErrResetNotConfirmed
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.store.Remove(ctx, models.AnalyticsKey); err != nil {
		return err
	}
	if err := a.store.Remove(ctx, models.SessionKey); err != nil {
		return err
	}
	a.log.Info("analytics reset")

	rec := models.NewAnalyticsRecord()
	a.notify(*rec)
	return nil
}

// Snapshot returns the current record with derived values refreshed
func (a *Aggregator) Snapshot(ctx context.Context) models.AnalyticsRecord {
	a.mu.Lock()
	defer a.mu.Unlock()

	rec := a.load(ctx)
	rec.Recompute()
	return *rec
}

// ActiveSessions returns the number of sessions seen within the timeout
func (a *Aggregator) ActiveSessions(ctx context.Context) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	sessions := a.loadSessions(ctx)
	sessions.Prune(a.now(), a.sessionTimeout)
	return len(sessions)
}

func (a *Aggregator) load(ctx context.Context) *models.AnalyticsRecord {
	rec := models.NewAnalyticsRecord()
	err := storage.GetJSON(ctx, a.store, models.AnalyticsKey, rec)
	switch {
	case err == nil:
		rec.Normalize()
		return rec
	case errors.Is(err, storage.ErrNotFound):
		return models.NewAnalyticsRecord()
	default:
		a.log.Warn("analytics data unreadable, starting from defaults", zap.Error(err))
		return models.NewAnalyticsRecord()
	}
}

func (a *Aggregator) save(ctx context.Context, rec *models.AnalyticsRecord) {
	rec.Recompute()
	if err := storage.SetJSON(ctx, a.store, models.AnalyticsKey, rec); err != nil {
		a.log.Error("failed to save analytics", zap.Error(err))
		return
	}
	a.notify(*rec)
}

func (a *Aggregator) notify(rec models.AnalyticsRecord) {
	if a.observer != nil {
		a.observer(rec)
	}
}

func (a *Aggregator) loadSessions(ctx context.Context) models.Sessions {
	sessions := models.Sessions{}
	err := storage.GetJSON(ctx, a.store, models.SessionKey, &sessions)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			a.log.Warn("session data unreadable, starting fresh", zap.Error(err))
		}
		return models.Sessions{}
	}
	if sessions == nil {
		return models.Sessions{}
	}
	return sessions
}

func (a *Aggregator) saveSessions(ctx context.Context, sessions models.Sessions) {
	if err := storage.SetJSON(ctx, a.store, models.SessionKey, sessions); err != nil {
		a.log.Error("failed to save sessions", zap.Error(err))
	}
}

func validSample(ms float64) bool {
	return ms >= 0 && !math.IsNaN(ms) && !math.IsInf(ms, 0)
}
