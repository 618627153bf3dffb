// Package resultio persists trajectory search results and diagnostic
// planes, always via the temp-file-then-rename pattern so a concurrent
// reader never observes a partially written file.
package resultio

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kbmod/kbmod/internal/search"
)

// WriteResults writes trajectories to path, one per line, as
// "lh flux x y vx vy obs_count", ordered exactly as given.
func WriteResults(path string, trajectories []search.Trajectory) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create results directory: %w", err)
		}
	}

	tempPath := path + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temp results file: %w", err)
	}

	w := bufio.NewWriter(f)
	for _, t := range trajectories {
		if _, err := fmt.Fprintf(w, "%g %g %d %d %g %g %d\n", t.Lh, t.Flux, t.X, t.Y, t.VX, t.VY, t.ObsCount); err != nil {
			f.Close()
			os.Remove(tempPath)
			return fmt.Errorf("failed to write results: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to flush results: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp results file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename results file: %w", err)
	}

	slog.Debug("results written", "path", path, "count", len(trajectories))
	return nil
}
