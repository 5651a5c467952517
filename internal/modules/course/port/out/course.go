package out

import (
	"context"
	"time"

	"courseplay/internal/modules/course/domain"
)

type CourseFetcher interface {
	FetchCourse(ctx context.Context, courseID, viewerID string) (domain.Course, error)
}

// SnapshotStore keeps the last good copy of each course for offline starts.
type SnapshotStore interface {
	Save(ctx context.Context, course domain.Course, fetchedAt time.Time) error
	Load(ctx context.Context, courseID string) (domain.Course, time.Time, error)
}
