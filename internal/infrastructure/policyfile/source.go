package policyfile

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
)

// Source holds the current pricing policy snapshot. Readers get an immutable
// value; a reload swaps the whole snapshot.
type Source struct {
	path    string
	current atomic.Pointer[domain.PricingPolicy]
}

// Static returns a Source that always serves p.
func Static(p domain.PricingPolicy) *Source {
	s := &Source{}
	s.current.Store(&p)
	return s
}

// Load reads path once. An empty path serves the built-in defaults.
func Load(path string) (*Source, error) {
	if path == "" {
		return Static(domain.DefaultPricingPolicy()), nil
	}
	s := &Source{path: path}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Source) Current() domain.PricingPolicy {
	return *s.current.Load()
}

func (s *Source) reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read policy file: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return err
	}
	s.current.Store(&p)
	return nil
}

// Watch reloads the policy when the file changes until ctx is done. A file that
// fails to parse leaves the previous snapshot in place.
func (s *Source) Watch(ctx context.Context) error {
	if s.path == "" {
		<-ctx.Done()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create policy watcher: %w", err)
	}
	defer watcher.Close()

	// Editors replace files by rename, so watch the directory.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("watch policy dir: %w", err)
	}
	target := filepath.Clean(s.path)

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			debounce = time.After(100 * time.Millisecond)
		case <-debounce:
			debounce = nil
			if err := s.reload(); err != nil {
				slog.Error("policy_reload_failed", "path", s.path, "error", err)
				continue
			}
			slog.Info("policy_reloaded", "path", s.path, "version", s.Current().Version)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("policy_watch_error", "error", err)
		}
	}
}
