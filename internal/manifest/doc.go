// Package manifest fetches the remote event manifest and indexes it by id.
//
// Only the fields the reconciliation workflows read are exposed: video_url,
// audio, image, and per-profile image URLs. A fetch failure never aborts a
// run; FetchOrEmpty degrades to an empty manifest and logs the cause.
package manifest
