// Package leads is the append-only ledger of contact requests.
package leads

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dreamdigital/landing/internal/logging"
	"github.com/dreamdigital/landing/internal/models"
	"github.com/dreamdigital/landing/internal/storage"
)

// Ledger stores leads in insertion order under a single key
type Ledger struct {
	store storage.Storage
	now   func() time.Time
	newID func() string
	log   *zap.Logger

	mu sync.Mutex
}

// NewLedger returns a Ledger over store
func NewLedger(store storage.Storage) *Ledger {
	return &Ledger{
		store: store,
		now:   time.Now,
		newID: newLeadID,
		log:   logging.Named("leads"),
	}
}

// newLeadID returns a UUIDv7, which sorts by creation time
func newLeadID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Append stores lead at the end of the ledger with a fresh id, the current
// time and status new. Storage write failures are logged, not returned.
func (l *Ledger) Append(ctx context.Context, lead models.Lead) models.Lead {
	l.mu.Lock()
	defer l.mu.Unlock()

	lead.ID = l.newID()
	lead.SubmittedAt = l.now()
	lead.Status = models.LeadNew

	all := l.load(ctx)
	all = append(all, lead)
	l.save(ctx, all)

	l.log.Info("lead captured", zap.String("id", lead.ID), zap.String("pricing", lead.PricingType))
	return lead
}

// SetStatus changes the status of the lead with id.
// An unknown id leaves the ledger untouched and reports false.
func (l *Ledger) SetStatus(ctx context.Context, id string, status models.LeadStatus) (bool, error) {
	if !status.Valid() {
		return false, fmt.Errorf("invalid lead status %q", status)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	all := l.load(ctx)
	for i := range all {
		if all[i].ID != id {
			continue
		}
		if all[i].Status == status {
			return false, nil
		}
		all[i].Status = status
		l.save(ctx, all)
		return true, nil
	}
	l.log.Debug("status update for unknown lead ignored", zap.String("id", id))
	return false, nil
}

// ListAll returns every lead in submission order
func (l *Ledger) ListAll(ctx context.Context) []models.Lead {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx)
}

// Get returns the lead with id
func (l *Ledger) Get(ctx context.Context, id string) (models.Lead, bool) {
	for _, lead := range l.ListAll(ctx) {
		if lead.ID == id {
			return lead, true
		}
	}
	return models.Lead{}, false
}

func (l *Ledger) load(ctx context.Context) []models.Lead {
	var all []models.Lead
	if err := storage.GetJSON(ctx, l.store, models.LeadsKey, &all); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			l.log.Warn("lead ledger unreadable, treating as empty", zap.Error(err))
		}
		return []models.Lead{}
	}
	if all == nil {
		return []models.Lead{}
	}
	return all
}

func (l *Ledger) save(ctx context.Context, all []models.Lead) {
	if err := storage.SetJSON(ctx, l.store, models.LeadsKey, all); err != nil {
		l.log.Error("failed to save lead ledger", zap.Error(err), zap.Int("leads", len(all)))
	}
}
