package reconcile

import (
	"context"
	"fmt"
	"strings"
)

// Workflow names used in logs, events, and history.
const (
	WorkflowSyncAudio  = "sync-audio"
	WorkflowSyncImages = "sync-images"
	WorkflowReset      = "reset"
	WorkflowCheck      = "check"
)

// Target selects the asset classes Reset and Check act on.
type Target string

const (
	TargetAudio Target = "audio"
	TargetImage Target = "image"
	TargetAll   Target = "all"
)

// ParseTarget accepts audio, mp3 (alias of audio), image, or all.
func ParseTarget(value string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "audio", "mp3":
		return TargetAudio, nil
	case "image", "images":
		return TargetImage, nil
	case "all":
		return TargetAll, nil
	default:
		return "", fmt.Errorf("unknown target %q (want audio, mp3, image, or all)", value)
	}
}

func (t Target) includesAudio() bool {
	return t == TargetAudio || t == TargetAll
}

func (t Target) includesImages() bool {
	return t == TargetImage || t == TargetAll
}

// AudioSource restricts where Sync-Audio takes its audio from.
type AudioSource string

const (
	// SourceAuto prefers a direct audio URL and falls back to the video page.
	SourceAuto AudioSource = "auto"
	// SourceVideo extracts audio from the video page only.
	SourceVideo AudioSource = "video"
	// SourceDirect downloads the manifest audio URL only.
	SourceDirect AudioSource = "direct"
)

// ParseAudioSource validates a source name; empty means auto.
func ParseAudioSource(value string) (AudioSource, error) {
	switch AudioSource(strings.ToLower(strings.TrimSpace(value))) {
	case "", SourceAuto:
		return SourceAuto, nil
	case SourceVideo:
		return SourceVideo, nil
	case SourceDirect:
		return SourceDirect, nil
	default:
		return "", fmt.Errorf("unknown audio source %q (want auto, video, or direct)", value)
	}
}

// AudioOptions tune Sync-Audio.
type AudioOptions struct {
	Force  bool
	Source AudioSource
}

// ImageOptions tune Sync-Images. Zero overrides keep profile values.
type ImageOptions struct {
	Force    bool
	MaxWidth int
	Quality  int
}

// Outcome classifies one decision.
type Outcome string

const (
	OutcomeMaterialized Outcome = "materialized"
	OutcomeSkipped      Outcome = "skipped"
	OutcomeCleared      Outcome = "cleared"
	OutcomeVerified     Outcome = "verified"
	OutcomeFailed       Outcome = "failed"
)

// Event is one recorded decision.
type Event struct {
	Workflow string
	ItemID   string
	Field    string
	Outcome  Outcome
	Path     string
	Detail   string
}

// Recorder receives engine events.
type Recorder interface {
	Record(ctx context.Context, event Event) error
}

// Report counts the outcomes of one operation.
type Report struct {
	Workflow     string
	Materialized int
	Skipped      int
	Cleared      int
	Verified     int
	Failed       int
}

func (r *Report) add(outcome Outcome) {
	switch outcome {
	case OutcomeMaterialized:
		r.Materialized++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeCleared:
		r.Cleared++
	case OutcomeVerified:
		r.Verified++
	case OutcomeFailed:
		r.Failed++
	}
}

// Changed reports whether the operation modified any item.
func (r Report) Changed() bool {
	return r.Materialized > 0 || r.Cleared > 0
}

func (r Report) String() string {
	return fmt.Sprintf("%s: materialized=%d skipped=%d cleared=%d verified=%d failed=%d",
		r.Workflow, r.Materialized, r.Skipped, r.Cleared, r.Verified, r.Failed)
}
