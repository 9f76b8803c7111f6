// Package notifications publishes run outcomes to ntfy.
//
// NewService returns a no-op implementation when no topic is configured, so
// callers never check whether notifications are enabled.
package notifications
