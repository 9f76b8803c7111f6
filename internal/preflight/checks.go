package preflight

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/oloynet/tinals-player/internal/config"
	"github.com/oloynet/tinals-player/internal/deps"
	"github.com/oloynet/tinals-player/internal/profiles"
	"github.com/oloynet/tinals-player/internal/store"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDataFile verifies that the item store parses as a JSON array.
func CheckDataFile(path string) Result {
	const name = "Item store"
	items, err := store.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d items)", path, len(items))}
}

// CheckProfiles reports which size profiles a run would use.
func CheckProfiles(path string) Result {
	const name = "Size profiles"
	set, err := profiles.Load(path)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if set.Fallback {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("built-in sizes (%s)", set.Reason)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d sizes)", set.Path, len(set.Profiles))}
}

// CheckManifest verifies that the remote manifest answers.
func CheckManifest(ctx context.Context, source, userAgent string) Result {
	const name = "Remote manifest"

	source = strings.TrimSpace(source)
	if source == "" {
		return Result{Name: name, Detail: "missing url"}
	}
	u, err := url.Parse(source)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("invalid url (%v)", err)}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		path := source
		if u.Scheme == "file" {
			path = u.Path
		}
		if _, err := os.Stat(path); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
		}
		return Result{Name: name, Passed: true, Detail: path + " (local file)"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := &http.Client{Timeout: 10 * time.Second}
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, source, nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("request failed (%v)", err)}
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("unreachable (%v)", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{Name: name, Detail: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}
	return Result{Name: name, Passed: true, Detail: "Reachable"}
}

// CheckSystemDeps evaluates the external tools used by the sync workflows.
// The doctor command reports each entry.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.Requirements(cfg.YtDlpBinary(), cfg.WgetBinary()))
}
