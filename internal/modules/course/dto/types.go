package dto

import "time"

type LoadInput struct {
	CourseID string
}

type ProgressOutput struct {
	Completed    bool
	LastPosition float64
	Percentage   float64
}

type VideoOutput struct {
	ID          string
	SectionID   string
	Title       string
	Description string
	MediaRef    string
	Duration    float64
	Position    int
	Progress    *ProgressOutput
}

type SectionOutput struct {
	ID       string
	Title    string
	Position int
	IsNew    bool
	Videos   []VideoOutput
}

type CourseOutput struct {
	ID          string
	Title       string
	Description string
	Sections    []SectionOutput
}

type SnapshotOutput struct {
	CourseID   string
	State      string
	Course     CourseOutput
	Err        error
	Stale      bool
	Refreshing bool
	FetchedAt  time.Time
}

const (
	StateNoData  = "no_data"
	StateLoading = "loading"
	StateReady   = "ready"
	StateError   = "error"
)
