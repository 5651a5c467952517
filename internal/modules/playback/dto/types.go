package dto

const (
	StateResolving = "resolving"
	StateReady     = "ready"
	StateEmpty     = "empty"

	NoticeLessonFinished = "lesson_finished"
	NoticeCourseFinished = "course_finished"
)

type OpenInput struct {
	CourseID string
	VideoID  string
	Autoplay bool
}

type NavigateInput struct {
	Location string
	Autoplay bool
}

type SelectVideoInput struct {
	VideoID string
}

type ReportProgressInput struct {
	Seconds float64
	Percent float64
}

type ToggleSectionInput struct {
	SectionID string
}

type VideoView struct {
	ID           string
	SectionID    string
	Title        string
	Description  string
	Duration     float64
	Completed    bool
	Percentage   float64
	LastPosition float64
	Active       bool
}

type SectionView struct {
	ID       string
	Title    string
	IsNew    bool
	Expanded bool
	Done     int
	Videos   []VideoView
}

// SessionView is everything a surface needs to render the course page.
type SessionView struct {
	State               string
	CourseID            string
	CourseTitle         string
	CourseDescription   string
	Sections            []SectionView
	Active              *VideoView
	ActiveIndex         int
	Total               int
	ResumePosition      float64
	DescriptionExpanded bool
	HasNext             bool
	Location            string
	Position            float64
	Percent             float64
	Playing             bool
}

type LocationOutput struct {
	Location string
	CourseID string
	VideoID  string
}

type NoticeOutput struct {
	Kind        string
	CourseID    string
	VideoID     string
	NextVideoID string
}
