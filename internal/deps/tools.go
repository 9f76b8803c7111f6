package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Requirement names an external program and the passes that shell out to it.
type Requirement struct {
	Name        string
	Command     string
	Description string
	UsedBy      []string
	Optional    bool
	// Sidecar resolves the program next to another binary before PATH.
	Sidecar string
}

// Status reports whether a Requirement resolved to an executable.
type Status struct {
	Name        string
	Command     string
	Description string
	UsedBy      []string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the tools behind the sync passes. ffmpeg is looked up
// beside yt-dlp first since standalone yt-dlp bundles ship it there.
func Requirements(ytDlp, wget string) []Requirement {
	return []Requirement{
		{Name: "yt-dlp", Command: ytDlp, Description: "Extracts audio from video pages", UsedBy: []string{"sync-audio (video)"}},
		{Name: "ffmpeg", Command: "ffmpeg", Description: "Converts extracted audio to mp3", UsedBy: []string{"sync-audio (video)"}, Sidecar: ytDlp},
		{Name: "wget", Command: wget, Description: "Downloads mp3 files and master images", UsedBy: []string{"sync-audio (direct)", "sync-images"}},
	}
}

// CheckBinaries resolves every requirement.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		results = append(results, check(req))
	}
	return results
}

func check(req Requirement) Status {
	status := Status{
		Name:        req.Name,
		Command:     strings.TrimSpace(req.Command),
		Description: strings.TrimSpace(req.Description),
		UsedBy:      req.UsedBy,
		Optional:    req.Optional,
	}
	if status.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	if path, ok := sidecar(req.Sidecar, status.Command); ok {
		status.Command = path
		status.Available = true
		return status
	}
	resolved, err := exec.LookPath(executableName(status.Command))
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", status.Command)
		if len(status.UsedBy) > 0 {
			status.Detail += "; needed by " + strings.Join(status.UsedBy, ", ")
		}
		return status
	}
	status.Command = resolved
	status.Available = true
	return status
}

// sidecar looks for name in the directory holding the anchor binary.
func sidecar(anchor, name string) (string, bool) {
	anchor = strings.TrimSpace(anchor)
	if anchor == "" || strings.ContainsRune(name, os.PathSeparator) {
		return "", false
	}
	resolved, err := exec.LookPath(anchor)
	if err != nil {
		return "", false
	}
	candidate := filepath.Join(filepath.Dir(resolved), executableName(name))
	info, err := os.Stat(candidate)
	if err != nil || !isExecutable(info) {
		return "", false
	}
	return candidate, true
}

func executableName(name string) string {
	if runtime.GOOS == "windows" && filepath.Ext(name) == "" {
		return name + ".exe"
	}
	return name
}

func isExecutable(info os.FileInfo) bool {
	if info.IsDir() {
		return false
	}
	return runtime.GOOS == "windows" || info.Mode().Perm()&0o111 != 0
}
