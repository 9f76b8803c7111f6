// Package profiles is the size profile registry: the list of image
// derivatives generated from each master image.
//
// Profiles come from the "sizes" array of a JSON or YAML document. Without a
// usable document the registry falls back to three WebP widths (1920, 768,
// 128). Geometry values accept numbers, numeric strings, or "auto".
package profiles
