package cachepath

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestPhysicalMapsUnderRoot(t *testing.T) {
	root := t.TempDir()
	m := New("data/2026", root)

	got, err := m.Physical("data/2026/images/black-country-new-road.mobile.webp")
	if err != nil {
		t.Fatalf("Physical: %v", err)
	}
	want := filepath.Join(root, "images", "black-country-new-road.mobile.webp")
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}

	if got, err := m.Physical("./data/2026/mp3/x.mp3"); err != nil || got != filepath.Join(root, "mp3", "x.mp3") {
		t.Fatalf("expected leading ./ accepted, got %q %v", got, err)
	}
}

func TestPhysicalRejectsForeignAndTraversal(t *testing.T) {
	m := New("data/2026", t.TempDir())
	for _, logical := range []string{
		"",
		"data/2025/mp3/x.mp3",
		"data/20261/mp3/x.mp3",
		"/etc/passwd",
		"data/2026",
		"data/2026/../../etc/passwd",
		"data/2026/mp3/../../secret",
	} {
		if _, err := m.Physical(logical); !errors.Is(err, ErrForeignPath) {
			t.Fatalf("expected ErrForeignPath for %q, got %v", logical, err)
		}
	}
}

func TestLogicalRoundTrip(t *testing.T) {
	root := t.TempDir()
	m := New("data/2026/", root)
	physical := filepath.Join(root, "mp3", "rosalia.mp3")

	logical, err := m.Logical(physical)
	if err != nil {
		t.Fatalf("Logical: %v", err)
	}
	if logical != "data/2026/mp3/rosalia.mp3" {
		t.Fatalf("unexpected logical path %q", logical)
	}
	back, err := m.Physical(logical)
	if err != nil || back != physical {
		t.Fatalf("round trip mismatch: %q %v", back, err)
	}
	if _, err := m.Logical(filepath.Join(filepath.Dir(root), "elsewhere.mp3")); !errors.Is(err, ErrForeignPath) {
		t.Fatalf("expected foreign error, got %v", err)
	}
	if got := m.Join("images", "a.webp"); got != "data/2026/images/a.webp" {
		t.Fatalf("unexpected join %q", got)
	}
}
