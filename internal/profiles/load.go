package profiles

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Set is the loaded registry together with where it came from.
type Set struct {
	Profiles []SizeProfile
	Path     string
	Fallback bool
	Reason   string
}

// Fields returns the managed image field names.
func (s Set) Fields() []string {
	return Fields(s.Profiles)
}

// WithDefaultQuality returns a copy of the set where every profile without
// its own quality encodes at quality. Values outside 1..100 are ignored.
func (s Set) WithDefaultQuality(quality int) Set {
	if quality < 1 || quality > 100 {
		return s
	}
	list := make([]SizeProfile, len(s.Profiles))
	for i, p := range s.Profiles {
		if !p.QualitySet {
			p.Quality = quality
		}
		list[i] = p
	}
	s.Profiles = list
	return s
}

// Load reads the "sizes" array from a JSON or YAML document. A missing,
// empty, or undecodable file, or a document without "sizes", yields the
// built-in fallback. Entries that are present but malformed are errors.
func Load(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fallback(path, "profile config not found"), nil
		}
		return Set{}, fmt.Errorf("read profile config: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return fallback(path, "profile config is empty"), nil
	}

	var doc any
	if isYAML(path) {
		err = yaml.Unmarshal(data, &doc)
	} else {
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return fallback(path, fmt.Sprintf("profile config undecodable: %v", err)), nil
	}

	root, ok := doc.(map[string]any)
	if !ok {
		return fallback(path, "profile config is not an object"), nil
	}
	rawSizes, ok := root["sizes"]
	if !ok || rawSizes == nil {
		return fallback(path, "profile config has no sizes"), nil
	}
	entries, ok := rawSizes.([]any)
	if !ok {
		return Set{}, fmt.Errorf("profile config %s: sizes must be an array", path)
	}

	list, err := Parse(entries)
	if err != nil {
		return Set{}, fmt.Errorf("profile config %s: %w", path, err)
	}
	return Set{Profiles: list, Path: path}, nil
}

func fallback(path, reason string) Set {
	return Set{Profiles: Fallback(), Path: path, Fallback: true, Reason: reason}
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Parse validates decoded profile entries.
func Parse(entries []any) ([]SizeProfile, error) {
	out := make([]SizeProfile, 0, len(entries))
	seen := make(map[string]int, len(entries))
	for i, raw := range entries {
		entry, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("sizes[%d]: entry must be an object", i)
		}
		p, err := parseEntry(entry)
		if err != nil {
			return nil, fmt.Errorf("sizes[%d]: %w", i, err)
		}
		if prev, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("sizes[%d]: duplicate id %q (first at sizes[%d])", i, p.ID, prev)
		}
		seen[p.ID] = i
		out = append(out, p)
	}
	return out, nil
}

func parseEntry(entry map[string]any) (SizeProfile, error) {
	var p SizeProfile

	id, _ := entry["id"].(string)
	p.ID = strings.TrimSpace(id)
	if p.ID == "" {
		return p, errors.New("id is required")
	}
	switch p.ID {
	case "id", "event_name", "audio":
		return p, fmt.Errorf("id %q collides with an item field", p.ID)
	}

	var err error
	if p.MaxWidth, err = dimension(entry, "max-width"); err != nil {
		return p, err
	}
	if p.MaxHeight, err = dimension(entry, "max-height"); err != nil {
		return p, err
	}
	if p.Width, err = dimension(entry, "width"); err != nil {
		return p, err
	}
	if p.Height, err = dimension(entry, "height"); err != nil {
		return p, err
	}

	if p.Actions, err = actions(entry["action"]); err != nil {
		return p, err
	}
	if p.Has(ActionCrop) && (p.Width <= 0 || p.Height <= 0) {
		return p, errors.New("crop requires width and height")
	}

	if p.Format, err = format(entry["format"]); err != nil {
		return p, err
	}

	p.Quality = DefaultQuality
	if _, present := entry["compress"]; present {
		q, err := dimension(entry, "compress")
		if err != nil {
			return p, err
		}
		if q < 1 || q > 100 {
			return p, fmt.Errorf("compress must be between 1 and 100, got %d", q)
		}
		p.Quality = q
		p.QualitySet = true
	}
	return p, nil
}

// dimension reads an integer that may be written as a number, a numeric
// string, "auto", or left out. Unset values return 0.
func dimension(entry map[string]any, key string) (int, error) {
	raw, ok := entry[key]
	if !ok || raw == nil {
		return 0, nil
	}
	switch v := raw.(type) {
	case int:
		return nonNegative(key, v)
	case int64:
		return nonNegative(key, int(v))
	case uint64:
		return nonNegative(key, int(v))
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%s must be an integer, got %v", key, v)
		}
		return nonNegative(key, int(v))
	case string:
		s := strings.TrimSpace(v)
		if s == "" || strings.EqualFold(s, "auto") {
			return 0, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer or \"auto\", got %q", key, v)
		}
		return nonNegative(key, n)
	default:
		return 0, fmt.Errorf("%s has unsupported type %T", key, raw)
	}
}

func nonNegative(key string, v int) (int, error) {
	if v < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %d", key, v)
	}
	return v, nil
}

func actions(raw any) ([]Action, error) {
	if raw == nil {
		return nil, nil
	}
	var names []string
	switch v := raw.(type) {
	case string:
		names = []string{v}
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("action entries must be strings, got %T", item)
			}
			names = append(names, s)
		}
	default:
		return nil, fmt.Errorf("action must be a list, got %T", raw)
	}
	out := make([]Action, 0, len(names))
	for _, name := range names {
		switch a := Action(strings.ToLower(strings.TrimSpace(name))); a {
		case ActionResize, ActionCrop:
			out = append(out, a)
		default:
			return nil, fmt.Errorf("unknown action %q", name)
		}
	}
	return out, nil
}

func format(raw any) (Format, error) {
	if raw == nil {
		return FormatWebP, nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("format must be a string, got %T", raw)
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "webp":
		return FormatWebP, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("unsupported format %q", s)
	}
}
