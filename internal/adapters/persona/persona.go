// Package persona provides the system prompt source.
// Clean Architecture: Adapter implementing ports.PersonaSource.
package persona

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pizza-alchemy/chatbot-go/internal/domain/ports"
	applog "github.com/pizza-alchemy/chatbot-go/internal/infrastructure/log"
)

// Source serves the persona text loaded from a plain-text prompt file.
// Reads are lock-protected so a background reload never races a request.
type Source struct {
	path   string
	mu     sync.RWMutex
	text   string
	logger *slog.Logger
}

// NewSource loads the prompt file at path. A missing or empty file is a
// startup failure, not something to paper over with a default persona.
func NewSource(path string) (*Source, error) {
	s := &Source{
		path:   path,
		logger: applog.NewModuleLogger("adapters", "persona"),
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// System returns the current persona text.
func (s *Source) System() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text
}

// Reload re-reads the prompt file. On failure the previous text is kept.
func (s *Source) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("reading persona file: %w", err)
	}

	text := cleanPrompt(string(data))
	if text == "" {
		return fmt.Errorf("persona file %s is empty", s.path)
	}

	s.mu.Lock()
	s.text = text
	s.mu.Unlock()
	return nil
}

// WatchForChanges reloads the persona when its file is created or modified.
// Events for other files in the same directory are ignored. Blocks until the
// context is cancelled or the event channel closes.
func (s *Source) WatchForChanges(ctx context.Context, watcher ports.FileWatcher) error {
	dir := filepath.Dir(s.path)
	events, err := watcher.Watch(ctx, dir)
	if err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	target := filepath.Clean(s.path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Path) != target {
				continue
			}
			if event.Operation != ports.FileCreated && event.Operation != ports.FileModified {
				continue
			}
			if err := s.Reload(); err != nil {
				s.logger.Warn("persona reload failed, keeping previous text", "error", err)
				continue
			}
			s.logger.Info("persona reloaded", "path", s.path)
		}
	}
}

// cleanPrompt strips whitespace and the triple-quote fences some prompt
// files are wrapped in.
func cleanPrompt(raw string) string {
	text := strings.TrimSpace(raw)
	text = strings.Trim(text, "\"")
	return strings.TrimSpace(text)
}
