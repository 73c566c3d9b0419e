package render

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

// RunSweeper periodically removes scratch files older than ttl until the
// context is cancelled. Renders are transient artifacts; callers upload
// them promptly, so anything past the TTL is garbage.
func (r *Renderer) RunSweeper(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep(ttl)
		}
	}
}

// sweep removes expired PNG files from the scratch directory.
func (r *Renderer) sweep(ttl time.Duration) {
	entries, err := os.ReadDir(r.scratchDir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("dir", r.scratchDir).Msg("failed to read scratch dir")
		}
		return
	}

	cutoff := r.now().Add(-ttl)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".png" {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(r.scratchDir, entry.Name())); err != nil {
			log.Warn().Err(err).Str("file", entry.Name()).Msg("failed to remove scratch file")
			continue
		}
		removed++
	}

	if removed > 0 {
		log.Debug().Int("removed", removed).Msg("swept expired scratch images")
	}
}
