package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	// FieldID holds the item identifier.
	FieldID = "id"
	// FieldEventName holds the display name used to derive cache filenames.
	FieldEventName = "event_name"
	// FieldAudio holds the logical path of the cached mp3.
	FieldAudio = "audio"
)

// Item is one event record. Keys keep their original order and values
// their original encoding, so fields this tool does not manage survive a
// load/save cycle untouched. Entries that are not JSON objects are carried
// through as opaque values.
type Item struct {
	keys   []string
	values map[string]json.RawMessage
	opaque json.RawMessage
}

// NewItem builds an item from ordered key/value pairs. Values are encoded
// with encoding/json. It is mainly used by tests and fixtures.
func NewItem(pairs ...any) (*Item, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.New("store: NewItem expects key/value pairs")
	}
	item := &Item{values: map[string]json.RawMessage{}}
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("store: key %v is not a string", pairs[i])
		}
		raw, err := encodeValue(pairs[i+1])
		if err != nil {
			return nil, fmt.Errorf("store: encode %s: %w", key, err)
		}
		item.set(key, raw)
	}
	return item, nil
}

// IsObject reports whether the entry is a JSON object that can carry assets.
func (it *Item) IsObject() bool {
	return it != nil && it.opaque == nil
}

// Keys returns the field names in document order.
func (it *Item) Keys() []string {
	return append([]string(nil), it.keys...)
}

// Raw returns the undecoded value of a field.
func (it *Item) Raw(key string) (json.RawMessage, bool) {
	if !it.IsObject() {
		return nil, false
	}
	raw, ok := it.values[key]
	return raw, ok
}

// ID returns the identifier in display form: strings unquoted, numbers as written.
func (it *Item) ID() (string, bool) {
	raw, ok := it.Raw(FieldID)
	if !ok || isNull(raw) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	return compactString(raw), true
}

// Key returns the canonical JSON encoding of the identifier. The integer 1 and
// the string "1" produce different keys, matching a typed lookup.
func (it *Item) Key() (string, bool) {
	raw, ok := it.Raw(FieldID)
	if !ok || isNull(raw) {
		return "", false
	}
	return compactString(raw), true
}

// EventName returns the event name, or "" when missing or not a string.
func (it *Item) EventName() string {
	s, _ := it.StringField(FieldEventName)
	return s
}

// StringField returns a field decoded as a JSON string.
func (it *Item) StringField(key string) (string, bool) {
	raw, ok := it.Raw(key)
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Asset returns the tagged state of a managed field. Missing keys, null,
// empty strings, and non-string values are all Absent.
func (it *Item) Asset(field string) AssetRef {
	s, ok := it.StringField(field)
	if !ok {
		return Absent()
	}
	return Present(s)
}

// SetAsset records the state of a managed field. Marking a field that does
// not exist as Absent leaves the item unchanged; new fields are appended.
func (it *Item) SetAsset(field string, ref AssetRef) {
	if !it.IsObject() {
		return
	}
	if _, exists := it.values[field]; !exists && !ref.IsPresent() {
		return
	}
	raw, _ := encodeValue(ref.Path())
	it.set(field, raw)
}

func (it *Item) set(key string, raw json.RawMessage) {
	if it.values == nil {
		it.values = map[string]json.RawMessage{}
	}
	if _, exists := it.values[key]; !exists {
		it.keys = append(it.keys, key)
	}
	it.values[key] = raw
}

// UnmarshalJSON decodes an object while recording key order.
func (it *Item) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		it.opaque = append(json.RawMessage(nil), trimmed...)
		it.keys = nil
		it.values = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if _, err := dec.Token(); err != nil {
		return err
	}
	it.keys = nil
	it.values = map[string]json.RawMessage{}
	it.opaque = nil
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("store: unexpected object key %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("store: decode %q: %w", key, err)
		}
		it.set(key, raw)
	}
	_, err := dec.Token()
	return err
}

// MarshalJSON encodes the item with its original key order.
func (it *Item) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := it.appendJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (it *Item) appendJSON(buf *bytes.Buffer) error {
	if it == nil {
		buf.WriteString("null")
		return nil
	}
	if it.opaque != nil {
		buf.Write(it.opaque)
		return nil
	}
	buf.WriteByte('{')
	for i, key := range it.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		encodedKey, err := encodeValue(key)
		if err != nil {
			return err
		}
		buf.Write(encodedKey)
		buf.WriteByte(':')
		buf.Write(it.values[key])
	}
	buf.WriteByte('}')
	return nil
}

// encodeValue marshals v without HTML escaping so non-ASCII text and
// characters such as '&' are written as-is.
func encodeValue(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return json.RawMessage(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func compactString(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return strings.TrimSpace(string(raw))
	}
	return buf.String()
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
