package apiclient

// JSON documents exchanged with the course platform.

const (
	PathCourse      = "/courses/{courseId}"
	PathProgress    = "/progress/{videoId}"
	PathSectionSeen = "/sections/{sectionId}/seen"
)

type ProgressDoc struct {
	Completed    bool    `json:"completed"`
	LastPosition float64 `json:"lastPosition"`
	Percentage   float64 `json:"percentage"`
}

type VideoDoc struct {
	ID          string       `json:"id" yaml:"id"`
	Title       string       `json:"title" yaml:"title"`
	Description string       `json:"description,omitempty" yaml:"description"`
	MediaRef    string       `json:"mediaRef" yaml:"media_ref"`
	Duration    float64      `json:"duration,omitempty" yaml:"duration"`
	Position    int          `json:"position" yaml:"position"`
	Progress    *ProgressDoc `json:"progress,omitempty" yaml:"-"`
}

type SectionDoc struct {
	ID       string     `json:"id" yaml:"id"`
	Title    string     `json:"title" yaml:"title"`
	Position int        `json:"position" yaml:"position"`
	IsNew    bool       `json:"isNew" yaml:"is_new"`
	Videos   []VideoDoc `json:"videos" yaml:"videos"`
}

type CourseDoc struct {
	ID          string       `json:"id" yaml:"id"`
	Title       string       `json:"title" yaml:"title"`
	Description string       `json:"description,omitempty" yaml:"description"`
	Sections    []SectionDoc `json:"sections" yaml:"sections"`
}

// ProgressUpdateDoc is the body of PUT /progress/{videoId}.
type ProgressUpdateDoc struct {
	Completed    *bool   `json:"completed,omitempty"`
	LastPosition float64 `json:"lastPosition"`
	Percentage   float64 `json:"percentage"`
}
