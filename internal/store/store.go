package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/oloynet/tinals-player/internal/fileutil"
)

// ErrMalformed reports an item store that is not a JSON array.
var ErrMalformed = errors.New("item store is not a JSON array")

// Load reads the item collection. A missing or undecodable file returns nil
// items together with the error; callers treat that as an empty collection
// and log the diagnostic.
func Load(path string) ([]*Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read item store: %w", err)
	}
	return Decode(data)
}

// Decode parses an item collection from JSON.
func Decode(data []byte) ([]*Item, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrMalformed
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(trimmed, &raws); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	items := make([]*Item, 0, len(raws))
	for i, raw := range raws {
		item := &Item{}
		if err := item.UnmarshalJSON(raw); err != nil {
			return nil, fmt.Errorf("decode item %d: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// Encode renders items as a 4-space indented JSON array without a trailing
// newline. Non-ASCII text is written unescaped.
func Encode(items []*Item) ([]byte, error) {
	var compact bytes.Buffer
	compact.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			compact.WriteByte(',')
		}
		if err := item.appendJSON(&compact); err != nil {
			return nil, fmt.Errorf("encode item %d: %w", i, err)
		}
	}
	compact.WriteByte(']')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "    "); err != nil {
		return nil, fmt.Errorf("indent item store: %w", err)
	}
	return out.Bytes(), nil
}

// Save replaces the item store atomically.
func Save(path string, items []*Item) error {
	data, err := Encode(items)
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write item store: %w", err)
	}
	return nil
}
