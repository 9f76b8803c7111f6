// Package cachepath maps between the logical paths recorded in items
// ("data/2026/images/x.webp") and their physical location on disk.
package cachepath

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// ErrForeignPath reports a logical path outside the configured logical root.
var ErrForeignPath = errors.New("path outside cache root")

// Mapper translates logical cache paths to physical paths and back.
type Mapper struct {
	LogicalRoot  string
	PhysicalRoot string
}

// New builds a mapper from a slash-separated logical root and a physical directory.
func New(logicalRoot, physicalRoot string) Mapper {
	return Mapper{
		LogicalRoot:  strings.Trim(path.Clean(filepath.ToSlash(logicalRoot)), "/"),
		PhysicalRoot: filepath.Clean(physicalRoot),
	}
}

// Physical resolves a logical path to its location on disk.
func (m Mapper) Physical(logical string) (string, error) {
	rel, err := m.relative(logical)
	if err != nil {
		return "", err
	}
	return filepath.Join(m.PhysicalRoot, filepath.FromSlash(rel)), nil
}

// Logical converts a physical path under the physical root into the path
// recorded in items.
func (m Mapper) Logical(physical string) (string, error) {
	rel, err := filepath.Rel(m.PhysicalRoot, filepath.Clean(physical))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrForeignPath, physical)
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%w: %s", ErrForeignPath, physical)
	}
	return path.Join(m.LogicalRoot, rel), nil
}

// Join builds a logical path below the logical root.
func (m Mapper) Join(elem ...string) string {
	return path.Join(append([]string{m.LogicalRoot}, elem...)...)
}

func (m Mapper) relative(logical string) (string, error) {
	value := strings.TrimSpace(filepath.ToSlash(logical))
	if value == "" {
		return "", fmt.Errorf("%w: empty path", ErrForeignPath)
	}
	cleaned := strings.TrimPrefix(path.Clean(value), "./")
	prefix := m.LogicalRoot + "/"
	if !strings.HasPrefix(cleaned, prefix) {
		return "", fmt.Errorf("%w: %s", ErrForeignPath, logical)
	}
	rel := strings.TrimPrefix(cleaned, prefix)
	if rel == "" || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%w: %s", ErrForeignPath, logical)
	}
	return rel, nil
}
