// Package audio materializes one event's mp3 into the cache.
//
// Two modes exist. Extraction hands a video page to yt-dlp and picks up the
// converted mp3 from the scratch directory; direct download fetches an mp3
// URL with wget. Either way the file lands in the audio directory under the
// slugged event name and the workflow returns the logical path to record in
// the item.
package audio
