// Package consent persists per-visitor cookie category choices.
package consent

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/dreamdigital/landing/internal/logging"
	"github.com/dreamdigital/landing/internal/models"
	"github.com/dreamdigital/landing/internal/storage"
)

// Store reads and writes consent documents
type Store struct {
	store storage.Storage
}

// NewStore returns a consent Store over store
func NewStore(store storage.Storage) *Store {
	return &Store{store: store}
}

// Key is the storage key of a visitor's consent. An empty visitor maps to
// the shared cookieConsent key.
func Key(visitor string) string {
	if visitor == "" {
		return models.ConsentKey
	}
	return models.ConsentKey + ":" + visitor
}

// Get returns the visitor's consent. Missing or unreadable documents yield
// the default of necessary cookies only.
func (s *Store) Get(ctx context.Context, visitor string) models.CookieConsent {
	c, _ := s.lookup(ctx, visitor)
	return c
}

// lookup returns the stored choice and whether one could be read
func (s *Store) lookup(ctx context.Context, visitor string) (models.CookieConsent, bool) {
	var c models.CookieConsent
	if err := storage.GetJSON(ctx, s.store, Key(visitor), &c); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logging.L().Warn("cookie consent unreadable, using defaults", zap.String("visitor", visitor), zap.Error(err))
		}
		return models.DefaultConsent(), false
	}
	c.Necessary = true
	return c, true
}

// Update stores the visitor's choices; necessary cookies are always on
func (s *Store) Update(ctx context.Context, visitor string, c models.CookieConsent) (models.CookieConsent, error) {
	c.Necessary = true
	if err := storage.SetJSON(ctx, s.store, Key(visitor), c); err != nil {
		return c, err
	}
	return c, nil
}

// Decided reports whether the visitor has a readable saved choice.
// An unreadable document counts as undecided so the banner asks again.
func (s *Store) Decided(ctx context.Context, visitor string) bool {
	_, ok := s.lookup(ctx, visitor)
	return ok
}
