package store

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const fixture = `[
  {"id": 7, "event_name": "Black Country, New Road", "day": "2026-05-02", "audio": "", "image": "", "tags": ["indie", "rock"]},
  {"id": "a-12", "event_name": "Rosalía", "audio": "data/2026/mp3/rosalia.mp3", "lineup": {"stage": "Grande <Scène> & co"}},
  "legacy entry"
]`

func TestDecodePreservesOrderAndUnknownFields(t *testing.T) {
	items, err := Decode([]byte(fixture))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}

	first := items[0]
	if got := strings.Join(first.Keys(), ","); got != "id,event_name,day,audio,image,tags" {
		t.Fatalf("unexpected key order %q", got)
	}
	if id, ok := first.ID(); !ok || id != "7" {
		t.Fatalf("unexpected id %q %v", id, ok)
	}
	if key, _ := first.Key(); key != "7" {
		t.Fatalf("unexpected key %q", key)
	}
	if first.Asset(FieldAudio).IsPresent() {
		t.Fatal("empty audio must be absent")
	}

	second := items[1]
	if id, _ := second.ID(); id != "a-12" {
		t.Fatalf("unexpected id %q", id)
	}
	if key, _ := second.Key(); key != `"a-12"` {
		t.Fatalf("string ids keep their quotes in the lookup key, got %q", key)
	}
	if got := second.Asset(FieldAudio).Path(); got != "data/2026/mp3/rosalia.mp3" {
		t.Fatalf("unexpected audio %q", got)
	}
	if items[2].IsObject() {
		t.Fatal("string entry must be opaque")
	}
}

func TestEncodeMatchesIndentedLayout(t *testing.T) {
	items, err := Decode([]byte(fixture))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	items[0].SetAsset(FieldAudio, Present("data/2026/mp3/black-country-new-road.mp3"))
	items[0].SetAsset("image_mobile", Present("data/2026/images/black-country-new-road.mobile.webp"))

	data, err := Encode(items)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out := string(data)

	for _, fragment := range []string{
		"[\n    {\n        \"id\": 7,\n        \"event_name\": \"Black Country, New Road\",",
		"\"audio\": \"data/2026/mp3/black-country-new-road.mp3\",",
		"\"tags\": [\n            \"indie\",\n            \"rock\"\n        ],\n        \"image_mobile\": \"data/2026/images/black-country-new-road.mobile.webp\"\n    },",
		"\"event_name\": \"Rosalía\"",
		"\"stage\": \"Grande <Scène> & co\"",
		"    \"legacy entry\"\n]",
	} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("expected %q in output:\n%s", fragment, out)
		}
	}
	if strings.HasSuffix(out, "\n") {
		t.Fatal("expected no trailing newline")
	}
}

func TestSaveLoadIsStable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	items, err := Decode([]byte(fixture))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if err := Save(path, items); err != nil {
		t.Fatalf("Save: %v", err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := Save(path, reloaded); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Fatalf("store not byte-stable:\n%s\n---\n%s", first, second)
	}
}

func TestSetAssetAbsentOnMissingFieldIsNoop(t *testing.T) {
	item, err := NewItem("id", 1, "event_name", "X")
	if err != nil {
		t.Fatalf("NewItem: %v", err)
	}
	item.SetAsset("image", Absent())
	if _, ok := item.Raw("image"); ok {
		t.Fatal("absent on a missing field must not create it")
	}
	item.SetAsset("image", Present("data/2026/images/x.webp"))
	item.SetAsset("image", Absent())
	if raw, ok := item.Raw("image"); !ok || string(raw) != `""` {
		t.Fatalf("expected empty string at the boundary, got %s %v", raw, ok)
	}
}

func TestIDHandling(t *testing.T) {
	noID, _ := NewItem("event_name", "X")
	if _, ok := noID.ID(); ok {
		t.Fatal("expected missing id")
	}
	nullID, _ := NewItem("id", nil)
	if _, ok := nullID.Key(); ok {
		t.Fatal("null id must be treated as missing")
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.json")); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"id": 1}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected malformed error, got %v", err)
	}
	truncated := filepath.Join(dir, "truncated.json")
	if err := os.WriteFile(truncated, []byte(`[{"id": 1},`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(truncated); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected malformed error, got %v", err)
	}
}

func TestEncodeEmptyCollection(t *testing.T) {
	data, err := Encode(nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(data) != "[]" {
		t.Fatalf("unexpected empty encoding %q", data)
	}
}

func TestAcquireLockIsExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json.lock")
	lock, err := AcquireLock(path)
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}
	if _, err := AcquireLock(path); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	again, err := AcquireLock(path)
	if err != nil {
		t.Fatalf("expected lock after release: %v", err)
	}
	_ = again.Release()
}
