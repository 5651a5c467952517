package out

import (
	"context"

	"courseplay/internal/modules/playback/domain"
)

// CourseSource loads the course model and reports refreshed copies.
type CourseSource interface {
	// Load returns ok=false when there is nothing to load for courseID.
	Load(ctx context.Context, courseID string) (course domain.Course, ok bool, err error)
	Invalidate(courseID string)
	Subscribe(courseID string, fn func(domain.Course)) func()
}

type ProgressReporter interface {
	Report(ctx context.Context, videoID string, seconds, percent float64) error
	Complete(ctx context.Context, videoID string) error
	Reopen(videoID string)
}

type SectionAcknowledger interface {
	MarkSeen(ctx context.Context, sectionID string) error
}

type Navigator interface {
	Push(ctx context.Context, loc domain.Location) error
	Replace(ctx context.Context, loc domain.Location) error
	// Back drops the current entry and returns the one below it.
	Back(ctx context.Context) (domain.Location, error)
	Current(ctx context.Context) (domain.Location, error)
}

type Notifier interface {
	Notify(ctx context.Context, notice domain.Notice)
}

// Surface starts playback of one video.
type Surface interface {
	Start(ctx context.Context, req domain.MediaRequest) (Playback, error)
}

type Playback interface {
	Events() <-chan domain.SurfaceEvent
	Stop() error
}
