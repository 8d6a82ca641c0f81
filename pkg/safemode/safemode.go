// Package safemode implements the store's single fail-closed flag: a
// boolean persisted as the presence of a marker file at the
// storage root. Any write path consults Enabled and refuses while it
// reports true; the load path enables it automatically on integrity
// failure.
package safemode

import (
	"os"
	"path/filepath"

	"github.com/cuemby/silo/pkg/log"
)

// MarkerName is the file whose presence signals safe-mode, relative to
// the storage root (`<root>/safemode`).
const MarkerName = "safemode"

// Handler tracks the marker file for one storage root.
type Handler struct {
	path string
}

// New returns a Handler for the given storage root.
func New(root string) *Handler {
	return &Handler{path: filepath.Join(root, MarkerName)}
}

// Enabled reports whether the marker file currently exists.
func (h *Handler) Enabled() bool {
	_, err := os.Stat(h.path)
	return err == nil
}

// Enable creates the marker file, entering safe-mode. It is idempotent.
func (h *Handler) Enable(reason string) error {
	if h.Enabled() {
		return nil
	}
	f, err := os.OpenFile(h.path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if reason != "" {
		_, _ = f.WriteString(reason)
	}
	logger := log.WithComponent("safemode")
	logger.Error().Str("reason", reason).Msg("safe-mode enabled")
	return nil
}

// Disable removes the marker file, leaving safe-mode. It is idempotent.
func (h *Handler) Disable() error {
	if err := os.Remove(h.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	logger := log.WithComponent("safemode")
	logger.Info().Msg("safe-mode disabled")
	return nil
}
