package domain

import (
	"fmt"

	apperrors "courseplay/internal/platform/errors"
)

type State string

const (
	StateResolving State = "resolving"
	StateReady     State = "ready"
	StateEmpty     State = "empty"
)

// Session is the playback state machine for one open course. It performs no
// I/O: every transition returns the effects the caller must carry out.
type Session struct {
	state  State
	course Course
	flat   []Video
	index  map[string]int

	active    string
	requested string
	resume    float64

	expanded     map[string]bool
	acknowledged map[string]bool
	description  bool
}

func NewSession() *Session {
	return &Session{
		state:        StateResolving,
		index:        map[string]int{},
		expanded:     map[string]bool{},
		acknowledged: map[string]bool{},
	}
}

// Resolve leaves Resolving once the course is known. The start video is the
// requested one if it exists, else the first unfinished video, else the first.
func (s *Session) Resolve(course Course, requestedID string) ([]Effect, error) {
	if s.state != StateResolving {
		return nil, fmt.Errorf("session already resolved (%s)", s.state)
	}
	s.requested = requestedID
	s.load(course)
	for _, section := range course.Sections {
		s.expanded[section.ID] = true
	}
	if len(s.flat) == 0 {
		s.state = StateEmpty
		return nil, nil
	}
	s.state = StateReady
	start := s.startVideo(requestedID)
	s.activate(start)
	if start == requestedID {
		return nil, nil
	}
	return []Effect{s.navigate(start)}, nil
}

func (s *Session) State() State { return s.state }

func (s *Session) Course() Course { return s.course }

// Active returns the active video. ok is false outside Ready.
func (s *Session) Active() (Video, bool) {
	if s.state != StateReady {
		return Video{}, false
	}
	return s.flat[s.index[s.active]], true
}

func (s *Session) ActiveIndex() int {
	if s.state != StateReady {
		return -1
	}
	return s.index[s.active]
}

func (s *Session) Len() int { return len(s.flat) }

// Next returns the video after the active one in flattened order.
func (s *Session) Next() (Video, bool) {
	i := s.ActiveIndex()
	if i < 0 || i+1 >= len(s.flat) {
		return Video{}, false
	}
	return s.flat[i+1], true
}

func (s *Session) ResumePosition() float64 { return s.resume }

func (s *Session) IsExpanded(sectionID string) bool { return s.expanded[sectionID] }

func (s *Session) DescriptionExpanded() bool { return s.description }

// SelectVideo makes id the active video. Selecting the active video is a no-op.
func (s *Session) SelectVideo(id string) ([]Effect, error) {
	if s.state != StateReady {
		return nil, apperrors.ErrNotReady
	}
	if id == s.active {
		return nil, nil
	}
	if _, ok := s.index[id]; !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrVideoNotFound, id)
	}
	s.activate(id)
	return []Effect{s.navigate(id)}, nil
}

// ReportProgress turns a surface sample into a progress write for the video
// active right now. A sample at or past 100 percent also refreshes the course.
func (s *Session) ReportProgress(seconds, percent float64) ([]Effect, error) {
	if s.state != StateReady {
		return nil, apperrors.ErrNotReady
	}
	return []Effect{{
		Kind:          EffectReportProgress,
		CourseID:      s.course.ID,
		VideoID:       s.active,
		Seconds:       seconds,
		Percent:       percent,
		RefreshCourse: percent >= 100,
	}}, nil
}

// ReportEnded completes the active video and advances to the next one. On the
// last video the session stays put and announces the course as finished.
func (s *Session) ReportEnded() ([]Effect, error) {
	if s.state != StateReady {
		return nil, apperrors.ErrNotReady
	}
	finished := s.active
	effects := []Effect{{
		Kind:          EffectComplete,
		CourseID:      s.course.ID,
		VideoID:       finished,
		RefreshCourse: true,
	}}
	next, ok := s.Next()
	if !ok {
		return append(effects, Effect{
			Kind:   EffectNotify,
			Notice: Notice{Kind: NoticeCourseFinished, CourseID: s.course.ID, VideoID: finished},
		}), nil
	}
	s.activate(next.ID)
	return append(effects,
		s.navigate(next.ID),
		Effect{
			Kind:   EffectNotify,
			Notice: Notice{Kind: NoticeLessonFinished, CourseID: s.course.ID, VideoID: finished, NextVideoID: next.ID},
		},
	), nil
}

// ToggleSection flips a section open or closed. Opening a section flagged as
// new acknowledges it once per session.
func (s *Session) ToggleSection(id string) ([]Effect, error) {
	if s.state != StateReady {
		return nil, apperrors.ErrNotReady
	}
	section, ok := s.course.section(id)
	if !ok {
		return nil, fmt.Errorf("%w: section %s", apperrors.ErrNotFound, id)
	}
	if s.expanded[id] {
		delete(s.expanded, id)
		return nil, nil
	}
	s.expanded[id] = true
	if !section.IsNew || s.acknowledged[id] {
		return nil, nil
	}
	s.acknowledged[id] = true
	return []Effect{{Kind: EffectMarkSectionSeen, CourseID: s.course.ID, SectionID: id}}, nil
}

func (s *Session) ToggleDescription() bool {
	s.description = !s.description
	return s.description
}

// Rederive reacts to a requested video id that changed after construction.
// It acts only when the id differs from the last one seen and names a video of
// the course. The location already carries the id, so nothing is navigated.
func (s *Session) Rederive(requestedID string) bool {
	if requestedID == s.requested {
		return false
	}
	s.requested = requestedID
	if s.state != StateReady || requestedID == s.active {
		return false
	}
	if _, ok := s.index[requestedID]; !ok {
		return false
	}
	s.activate(requestedID)
	return true
}

// Sync swaps in a refreshed course. The active video is kept when it still
// exists; otherwise the start video is derived again.
func (s *Session) Sync(course Course) []Effect {
	switch s.state {
	case StateResolving:
		effects, _ := s.Resolve(course, s.requested)
		return effects
	case StateEmpty:
		return nil
	}

	previous := s.active
	known := map[string]bool{}
	for _, section := range s.course.Sections {
		known[section.ID] = true
	}
	s.load(course)
	for id := range s.expanded {
		if _, ok := s.course.section(id); !ok {
			delete(s.expanded, id)
		}
	}
	for _, section := range course.Sections {
		if !known[section.ID] {
			s.expanded[section.ID] = true
		}
	}
	if len(s.flat) == 0 {
		s.state = StateEmpty
		s.active = ""
		s.resume = 0
		return nil
	}
	if _, ok := s.index[previous]; ok {
		return nil
	}
	start := s.startVideo(s.requested)
	s.activate(start)
	return []Effect{s.navigate(start)}
}

func (s *Session) load(course Course) {
	s.course = course
	s.flat = course.flatten()
	s.index = make(map[string]int, len(s.flat))
	for i, video := range s.flat {
		if _, dup := s.index[video.ID]; !dup {
			s.index[video.ID] = i
		}
	}
}

func (s *Session) startVideo(requestedID string) string {
	if _, ok := s.index[requestedID]; ok && requestedID != "" {
		return requestedID
	}
	for _, video := range s.flat {
		if !video.Done() {
			return video.ID
		}
	}
	return s.flat[0].ID
}

func (s *Session) activate(id string) {
	video := s.flat[s.index[id]]
	s.active = id
	s.resume = video.ResumePosition()
	s.expanded[video.SectionID] = true
}

func (s *Session) navigate(id string) Effect {
	return Effect{Kind: EffectNavigate, CourseID: s.course.ID, VideoID: id}
}
