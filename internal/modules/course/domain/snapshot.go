package domain

import "time"

type LoadState string

const (
	StateNoData  LoadState = "no_data"
	StateLoading LoadState = "loading"
	StateReady   LoadState = "ready"
	StateError   LoadState = "error"
)

// Snapshot is what a subscriber renders for one course id.
type Snapshot struct {
	CourseID string
	State    LoadState
	Course   Course
	// Err is set only in StateError; refresh failures over cached data are swallowed.
	Err error
	// Stale marks data shown while a refetch is pending or after one failed.
	Stale      bool
	Refreshing bool
	FetchedAt  time.Time
}

func (s Snapshot) HasData() bool {
	return s.State == StateReady
}
