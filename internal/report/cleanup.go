package report

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// CleanupAfter removes paths once delay passes, without blocking the caller.
// Artifacts are transient; they go away whether or not delivery succeeded.
func CleanupAfter(log zerolog.Logger, delay time.Duration, paths ...string) {
	for _, path := range paths {
		path := path
		time.AfterFunc(delay, func() {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				log.Warn().Err(err).Str("path", path).Msg("artifact cleanup failed")
			}
		})
	}
}
