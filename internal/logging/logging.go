// Package logging builds the file-backed logger used by the TUI.
// Logs go to a file instead of stderr so they never corrupt the
// terminal while the program owns the screen.
package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// New returns a logger writing JSON lines to path. The parent
// directory is created if missing. Any setup failure degrades to a
// no-op logger rather than breaking the UI.
func New(path string) *zap.Logger {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return zap.NewNop()
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}

	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}
