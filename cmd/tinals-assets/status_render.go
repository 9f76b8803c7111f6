package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/oloynet/tinals-player/internal/deps"
	"github.com/oloynet/tinals-player/internal/preflight"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset = "\x1b[0m"
	ansiGreen = "\x1b[32m"
	ansiBlue  = "\x1b[34m"
)

// statusStyles holds the bracketed label and ANSI colour of each kind.
var statusStyles = [...]struct{ label, color string }{
	statusInfo:  {"INFO", ansiBlue},
	statusOK:    {"OK", ansiGreen},
	statusWarn:  {"WARN", "\x1b[33m"},
	statusError: {"ERROR", "\x1b[31m"},
}

// renderStatusLine prints "  Label:              [KIND] message", the
// layout shared by status and doctor.
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	style := statusStyles[kind]
	line := fmt.Sprintf("  %-20s [%s]", label+":", style.label)
	if message != "" {
		line += " " + message
	}
	if colorize {
		return style.color + line + ansiReset
	}
	return line
}

func renderSectionHeader(title string, colorize bool) []string {
	line := "== " + strings.TrimSpace(title) + " =="
	lines := []string{line, strings.Repeat("-", len(line))}
	if colorize {
		for i := range lines {
			lines[i] = ansiBlue + lines[i] + ansiReset
		}
	}
	return lines
}

func checkLine(result preflight.Result, failKind statusKind, colorize bool) string {
	if result.Passed {
		return renderStatusLine(result.Name, statusOK, result.Detail, colorize)
	}
	return renderStatusLine(result.Name, failKind, result.Detail, colorize)
}

// dependencyLines renders one line per tool plus a trailing line naming the
// missing required ones.
func dependencyLines(statuses []deps.Status, colorize bool) ([]string, bool) {
	lines := make([]string, 0, len(statuses)+1)
	var missing []string
	for _, dep := range statuses {
		if dep.Available {
			message := "Ready"
			if dep.Command != "" {
				message = fmt.Sprintf("Ready (command: %s)", dep.Command)
			}
			lines = append(lines, renderStatusLine(dep.Name, statusOK, message, colorize))
			continue
		}
		detail := strings.TrimSpace(dep.Detail)
		if detail == "" {
			detail = "not available"
		}
		if dep.Optional {
			lines = append(lines, renderStatusLine(dep.Name, statusWarn, detail, colorize))
			continue
		}
		lines = append(lines, renderStatusLine(dep.Name, statusError, detail, colorize))
		missing = append(missing, dep.Name)
	}
	if len(missing) > 0 {
		lines = append(lines, renderStatusLine("Missing tools", statusError, strings.Join(missing, ", "), colorize))
	}
	return lines, len(missing) == 0
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
