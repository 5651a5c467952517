package domain

import (
	"fmt"
	"math"

	apperrors "courseplay/internal/platform/errors"
)

const (
	EngineSimulated = "simulated"
	EnginePlugin    = "plugin"
	EngineExternal  = "external"
)

// Request asks an engine to play one video from StartPosition seconds.
type Request struct {
	VideoID       string
	MediaRef      string
	StartPosition float64
	Duration      float64
}

func (r Request) Validate() error {
	if r.VideoID == "" {
		return fmt.Errorf("%w: video id is required", apperrors.ErrInvalidInput)
	}
	if r.StartPosition < 0 || math.IsNaN(r.StartPosition) {
		return fmt.Errorf("%w: start position %v", apperrors.ErrInvalidInput, r.StartPosition)
	}
	if r.Duration < 0 || math.IsNaN(r.Duration) {
		return fmt.Errorf("%w: duration %v", apperrors.ErrInvalidInput, r.Duration)
	}
	return nil
}

type EventKind string

const (
	EventProgress EventKind = "progress"
	EventEnded    EventKind = "ended"
)

type Event struct {
	Kind    EventKind
	Seconds float64
	Percent float64
}

// Percent converts a position to a percentage of duration in 0..100.
func Percent(seconds, duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	return math.Max(0, math.Min(100, seconds/duration*100))
}

type EngineInfo struct {
	Engine       string
	Name         string
	Version      string
	Capabilities []string
	Binary       string
	SHA256       string
}
