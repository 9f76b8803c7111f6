package profiles

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadFallbackCases(t *testing.T) {
	cases := map[string]string{
		"missing":    "",
		"empty":      "   \n",
		"undecoded":  "{not json",
		"no sizes":   `{"app": {"name": "tinals"}}`,
		"array root": `[1, 2]`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			if name != "missing" {
				path = writeConfig(t, "config.json", content)
			}
			set, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if !set.Fallback || set.Reason == "" {
				t.Fatalf("expected fallback with reason, got %+v", set)
			}
			if got := strings.Join(set.Fields(), ","); got != "image,image_mobile,image_thumbnail" {
				t.Fatalf("unexpected fallback fields %q", got)
			}
			widths := []int{1920, 768, 128}
			for i, p := range set.Profiles {
				if p.MaxWidth != widths[i] || p.Quality != 80 || p.Format != FormatWebP || !p.Has(ActionResize) || p.Has(ActionCrop) {
					t.Fatalf("unexpected fallback profile %+v", p)
				}
			}
		})
	}
}

func TestLoadJSONAcceptsStringsAndAuto(t *testing.T) {
	path := writeConfig(t, "config.json", `{
  "sizes": [
    {"id": "image", "max-width": "1920", "max-height": "auto", "action": ["resize"], "format": "webp", "compress": "80"},
    {"id": "image_square", "width": 400, "height": "400", "action": ["resize", "crop"], "format": "jpg", "compress": 70},
    {"id": "image_original", "action": [], "format": "png"}
  ]
}`)
	set, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if set.Fallback {
		t.Fatal("did not expect fallback")
	}
	if len(set.Profiles) != 3 {
		t.Fatalf("expected 3 profiles, got %d", len(set.Profiles))
	}
	master := set.Profiles[0]
	if master.MaxWidth != 1920 || master.MaxHeight != 0 || master.Quality != 80 {
		t.Fatalf("unexpected master profile %+v", master)
	}
	square := set.Profiles[1]
	if square.Width != 400 || square.Height != 400 || !square.Has(ActionCrop) || square.Format != FormatJPEG || square.Quality != 70 {
		t.Fatalf("unexpected square profile %+v", square)
	}
	if square.Suffix() != ".square.jpg" {
		t.Fatalf("unexpected suffix %q", square.Suffix())
	}
	if set.Profiles[2].Quality != DefaultQuality {
		t.Fatalf("expected default quality, got %d", set.Profiles[2].Quality)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "sizes.yaml", `
sizes:
  - id: image
    max-width: 1600
    action: [resize]
  - id: image_thumbnail
    width: 128
    height: 128
    action: [resize, crop]
    compress: 60
`)
	set, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(set.Profiles) != 2 || set.Profiles[0].MaxWidth != 1600 || set.Profiles[1].Quality != 60 {
		t.Fatalf("unexpected yaml profiles %+v", set.Profiles)
	}
}

func TestLoadRejectsMalformedEntries(t *testing.T) {
	cases := map[string]string{
		"missing id":      `{"sizes": [{"max-width": 100}]}`,
		"duplicate id":    `{"sizes": [{"id": "image"}, {"id": "image"}]}`,
		"unknown action":  `{"sizes": [{"id": "image", "action": ["rotate"]}]}`,
		"bad geometry":    `{"sizes": [{"id": "image", "max-width": "wide"}]}`,
		"quality range":   `{"sizes": [{"id": "image", "compress": 0}]}`,
		"bad format":      `{"sizes": [{"id": "image", "format": "avif"}]}`,
		"crop no size":    `{"sizes": [{"id": "image_sq", "action": ["crop"]}]}`,
		"reserved id":     `{"sizes": [{"id": "audio"}]}`,
		"sizes not array": `{"sizes": {"id": "image"}}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeConfig(t, "config.json", content)
			if _, err := Load(path); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestSuffixAndFileName(t *testing.T) {
	master := SizeProfile{ID: "image", Format: FormatWebP}
	mobile := SizeProfile{ID: "image_mobile", Format: FormatWebP}
	if master.FileName("black-country-new-road") != "black-country-new-road.webp" {
		t.Fatalf("unexpected master name %q", master.FileName("black-country-new-road"))
	}
	if mobile.FileName("black-country-new-road") != "black-country-new-road.mobile.webp" {
		t.Fatalf("unexpected mobile name %q", mobile.FileName("black-country-new-road"))
	}
}

func TestWithDefaultQualityKeepsExplicitValues(t *testing.T) {
	set, err := Load(writeConfig(t, "config.json", `{"sizes":[{"id":"image","max-width":1920},{"id":"image_square","width":400,"height":400,"action":["crop"],"compress":70}]}`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	tuned := set.WithDefaultQuality(55)
	if tuned.Profiles[0].Quality != 55 || tuned.Profiles[1].Quality != 70 {
		t.Fatalf("unexpected qualities %d %d", tuned.Profiles[0].Quality, tuned.Profiles[1].Quality)
	}
	if set.Profiles[0].Quality != DefaultQuality {
		t.Fatalf("original set mutated: %d", set.Profiles[0].Quality)
	}
	if same := set.WithDefaultQuality(0); same.Profiles[0].Quality != DefaultQuality {
		t.Fatalf("out of range quality applied: %d", same.Profiles[0].Quality)
	}
}

func TestLoadExplicitEmptySizesManagesNoImages(t *testing.T) {
	path := writeConfig(t, "config.json", `{"sizes": []}`)
	set, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if set.Fallback || len(set.Profiles) != 0 || len(set.Fields()) != 0 {
		t.Fatalf("expected an empty registry, got %+v", set)
	}
}
