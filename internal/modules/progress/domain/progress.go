package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Update is one write to the progress store for a video.
type Update struct {
	VideoID      string
	LastPosition float64
	Percentage   float64
	Completed    bool
}

// Sample builds a periodic progress write, clamping values into range.
// Non-finite values are kept so that Validate refuses them.
func Sample(videoID string, position, percent float64) Update {
	u := Update{VideoID: videoID, LastPosition: position, Percentage: percent}
	if finite(position) {
		u.LastPosition = math.Max(0, position)
	}
	if finite(percent) {
		u.Percentage = math.Max(0, math.Min(100, percent))
	}
	return u
}

// Completion builds the terminal write for a video.
func Completion(videoID string) Update {
	return Update{VideoID: videoID, Completed: true, Percentage: 100, LastPosition: 0}
}

func (u Update) Validate() error {
	if strings.TrimSpace(u.VideoID) == "" {
		return fmt.Errorf("video id is required")
	}
	if !finite(u.LastPosition) || !finite(u.Percentage) {
		return fmt.Errorf("progress values must be finite numbers")
	}
	if u.Completed && (u.Percentage != 100 || u.LastPosition != 0) {
		return fmt.Errorf("completion must carry percentage 100 and position 0")
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Latch remembers which videos had their completion issued in this session.
// Later non-completion samples for those videos are refused until Reopen.
type Latch struct {
	done map[string]struct{}
}

func NewLatch() *Latch {
	return &Latch{done: map[string]struct{}{}}
}

// Admit reports whether u may be sent, recording completions.
func (l *Latch) Admit(u Update) bool {
	if u.Completed {
		l.done[u.VideoID] = struct{}{}
		return true
	}
	_, closed := l.done[u.VideoID]
	return !closed
}

func (l *Latch) Reopen(videoID string) {
	delete(l.done, videoID)
}

type Outcome string

const (
	OutcomeSent    Outcome = "sent"
	OutcomeFailed  Outcome = "failed"
	OutcomeDropped Outcome = "dropped"
)

// JournalEntry records an outgoing write attempt for diagnostics.
type JournalEntry struct {
	ID        string
	Kind      string
	TargetID  string
	Update    Update
	Outcome   Outcome
	Error     string
	CreatedAt time.Time
}

const (
	KindProgress    = "progress"
	KindSectionSeen = "section_seen"
)
