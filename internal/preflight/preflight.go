package preflight

import (
	"context"

	"github.com/oloynet/tinals-player/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the filesystem checks a run cannot do without.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Audio directory", cfg.AudioDirPath()),
		CheckDirectoryAccess("Images directory", cfg.ImagesDirPath()),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckDataFile(cfg.Paths.DataFile),
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
