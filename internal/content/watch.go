package content

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/dreamdigital/landing/internal/logging"
)

const reloadDebounce = 250 * time.Millisecond

// Watch reloads path into p whenever the file changes, until ctx is done.
// The parent directory is watched so editors that replace the file on save
// are followed. A file that fails to load leaves the current content in place.
func Watch(ctx context.Context, path string, p *Provider) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create content watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve content path: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	log := logging.Named("content").With(zap.String("path", abs))
	log.Info("watching content file")

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			// Debounce bursts of writes from a single save
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(reloadDebounce)
			pending = timer.C

		case <-pending:
			pending = nil
			site, err := Load(abs)
			if err != nil {
				log.Warn("content reload failed, keeping previous content", zap.Error(err))
				continue
			}
			p.Store(site)
			log.Info("content reloaded")

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("content watcher error", zap.Error(err))
		}
	}
}
