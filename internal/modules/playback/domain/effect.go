package domain

type EffectKind string

const (
	EffectNavigate        EffectKind = "navigate"
	EffectReportProgress  EffectKind = "report_progress"
	EffectComplete        EffectKind = "complete"
	EffectMarkSectionSeen EffectKind = "mark_section_seen"
	EffectNotify          EffectKind = "notify"
)

// Effect is a side effect requested by a session transition. Ids are captured
// when the transition happens, never read back later.
type Effect struct {
	Kind      EffectKind
	CourseID  string
	VideoID   string
	SectionID string
	Seconds   float64
	Percent   float64
	// RefreshCourse asks for a course refetch once the write has been issued.
	RefreshCourse bool
	Notice        Notice
}

type NoticeKind string

const (
	NoticeLessonFinished NoticeKind = "lesson_finished"
	NoticeCourseFinished NoticeKind = "course_finished"
)

type Notice struct {
	Kind        NoticeKind
	CourseID    string
	VideoID     string
	NextVideoID string
}
