// Package tools wraps the external command-line programs the cache relies on:
// yt-dlp for audio extraction and wget for plain downloads.
//
// Both clients run through an Executor so tests can substitute a stub. The
// default executor classifies failures with the services markers: a binary
// that cannot be started yields services.ErrToolMissing, a non-zero exit
// yields services.ErrExternalTool.
package tools
