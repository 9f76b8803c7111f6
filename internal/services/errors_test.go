package services_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/oloynet/tinals-player/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "audio", "extract", "yt-dlp failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"audio", "extract", "yt-dlp failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestIsBatchFatal(t *testing.T) {
	missing := services.Wrap(services.ErrToolMissing, "images", "download", "wget not found", nil)
	if !services.IsBatchFatal(missing) {
		t.Fatal("expected missing tool to be batch fatal")
	}
	fetch := services.Wrap(services.ErrFetch, "images", "download", "exit status 8", errors.New("exit"))
	if services.IsBatchFatal(fetch) {
		t.Fatal("expected fetch failure to stay per item")
	}
	if services.IsBatchFatal(nil) {
		t.Fatal("nil error must not be fatal")
	}
}
