package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dreamdigital/landing/internal/analytics"
	"github.com/dreamdigital/landing/internal/config"
	"github.com/dreamdigital/landing/internal/consent"
	"github.com/dreamdigital/landing/internal/content"
	"github.com/dreamdigital/landing/internal/leads"
	"github.com/dreamdigital/landing/internal/storage"
)

// loadConfig resolves configuration with the global flags applied (can be replaced in tests)
var loadConfig = func() (*config.Config, error) {
	cfg, err := config.LoadWithOverrides(databaseURL, "", dataDir)
	if err != nil {
		return nil, err
	}
	if storageBackend != "" {
		cfg.Storage = strings.ToLower(storageBackend)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openStorage opens the configured backend (can be replaced in tests)
var openStorage = storage.Open

// services are the domain objects shared by the commands
type services struct {
	cfg       *config.Config
	store     storage.Storage
	ledger    *leads.Ledger
	analytics *analytics.Aggregator
	consent   *consent.Store
}

func openServices(ctx context.Context) (*services, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("storage unavailable: %w", err)
	}
	return &services{
		cfg:       cfg,
		store:     store,
		ledger:    leads.NewLedger(store),
		analytics: analytics.New(store, analytics.WithSessionTimeout(cfg.SessionTimeout)),
		consent:   consent.NewStore(store),
	}, nil
}

func (s *services) Close() error {
	return storage.Close(s.store)
}

// loadContent returns the configured landing content, or the built-in copy
func loadContent(cfg *config.Config) (*content.Site, error) {
	if cfg.ContentFile == "" {
		return content.Default(), nil
	}
	return content.Load(cfg.ContentFile)
}
