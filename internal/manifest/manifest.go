package manifest

import (
	"strings"

	"github.com/oloynet/tinals-player/internal/store"
)

const (
	FieldVideoURL = "video_url"
	FieldAudio    = "audio"
	FieldImage    = "image"
)

// Record is one remote manifest entry.
type Record struct {
	item *store.Item
}

// ID returns the record identifier in display form.
func (r Record) ID() string {
	id, _ := r.item.ID()
	return id
}

// Field returns a string field, or "" when missing or not a string.
func (r Record) Field(name string) string {
	if r.item == nil {
		return ""
	}
	s, _ := r.item.StringField(name)
	return s
}

// VideoURL returns the page URL handed to the audio extractor.
func (r Record) VideoURL() string {
	return r.Field(FieldVideoURL)
}

// AudioURL returns the direct audio URL when it is an http(s) URL.
func (r Record) AudioURL() string {
	return httpOnly(r.Field(FieldAudio))
}

// MasterImageURL resolves the single master image: the "image" field, else the
// first per-profile field (in the order given) holding an http(s) URL.
func (r Record) MasterImageURL(profileFields []string) string {
	if u := httpOnly(r.Field(FieldImage)); u != "" {
		return u
	}
	for _, field := range profileFields {
		if field == FieldImage {
			continue
		}
		if u := httpOnly(r.Field(field)); u != "" {
			return u
		}
	}
	return ""
}

// Manifest indexes remote records by the canonical JSON form of their id.
type Manifest struct {
	byKey map[string]Record
}

// Index builds a manifest from decoded records. Records without an id are
// dropped; a later duplicate id replaces the earlier record.
func Index(records []*store.Item) Manifest {
	m := Manifest{byKey: make(map[string]Record, len(records))}
	for _, rec := range records {
		key, ok := rec.Key()
		if !ok {
			continue
		}
		m.byKey[key] = Record{item: rec}
	}
	return m
}

// Len returns the number of indexed records.
func (m Manifest) Len() int {
	return len(m.byKey)
}

// Lookup finds the record sharing the item's id.
func (m Manifest) Lookup(item *store.Item) (Record, bool) {
	key, ok := item.Key()
	if !ok || m.byKey == nil {
		return Record{}, false
	}
	rec, ok := m.byKey[key]
	return rec, ok
}

// IsHTTPURL reports whether value is an absolute http or https URL.
func IsHTTPURL(value string) bool {
	return strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://")
}

func httpOnly(value string) string {
	if IsHTTPURL(value) {
		return value
	}
	return ""
}
