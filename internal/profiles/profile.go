package profiles

import "strings"

// Action is one step applied to the master image.
type Action string

const (
	ActionResize Action = "resize"
	ActionCrop   Action = "crop"
)

// Format is the encoding of a derivative.
type Format string

const (
	FormatWebP Format = "webp"
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
)

// MasterID is the profile id whose derivative carries no size suffix.
const MasterID = "image"

// DefaultQuality applies when a profile omits "compress".
const DefaultQuality = 80

// SizeProfile describes one derivative of the master image. Zero geometry
// values mean unset (absent or "auto" in the config file).
type SizeProfile struct {
	ID        string
	MaxWidth  int
	MaxHeight int
	Width     int
	Height    int
	Actions   []Action
	Format    Format
	Quality   int
	// QualitySet is true when the profile names its own quality.
	QualitySet bool
}

// Has reports whether the profile applies the action.
func (p SizeProfile) Has(action Action) bool {
	for _, a := range p.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// Extension returns the file extension for the profile format, without dot.
func (p SizeProfile) Extension() string {
	switch p.Format {
	case FormatJPEG:
		return "jpg"
	case FormatPNG:
		return "png"
	default:
		return "webp"
	}
}

// Suffix returns the filename suffix: ".webp" for the master profile and
// ".<id without image_ prefix>.webp" otherwise.
func (p SizeProfile) Suffix() string {
	if p.ID == MasterID {
		return "." + p.Extension()
	}
	return "." + strings.TrimPrefix(p.ID, "image_") + "." + p.Extension()
}

// FileName joins a sanitized stem with the profile suffix.
func (p SizeProfile) FileName(stem string) string {
	return stem + p.Suffix()
}

// Fields returns the item field names managed by the profiles, in order.
func Fields(list []SizeProfile) []string {
	out := make([]string, 0, len(list))
	for _, p := range list {
		out = append(out, p.ID)
	}
	return out
}

// Fallback returns the built-in profiles used when no configuration exists.
func Fallback() []SizeProfile {
	return []SizeProfile{
		{ID: "image", MaxWidth: 1920, Actions: []Action{ActionResize}, Format: FormatWebP, Quality: DefaultQuality},
		{ID: "image_mobile", MaxWidth: 768, Actions: []Action{ActionResize}, Format: FormatWebP, Quality: DefaultQuality},
		{ID: "image_thumbnail", MaxWidth: 128, Actions: []Action{ActionResize}, Format: FormatWebP, Quality: DefaultQuality},
	}
}
