// Package textutil provides filename sanitization for cache artifacts.
//
// Event names are folded to ASCII with Unicode NFKD decomposition before
// being reduced to a lowercase dash-separated slug, so the same event name
// always maps to the same cache file.
package textutil
