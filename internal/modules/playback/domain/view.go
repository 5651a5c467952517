package domain

// View is a read-only copy of a session for rendering.
type View struct {
	State               State
	Course              Course
	ActiveVideoID       string
	ActiveIndex         int
	Total               int
	ResumePosition      float64
	Expanded            map[string]bool
	DescriptionExpanded bool
	HasNext             bool

	Location string
	Position float64
	Percent  float64
	Playing  bool
}

func (s *Session) View() View {
	expanded := make(map[string]bool, len(s.expanded))
	for id, open := range s.expanded {
		expanded[id] = open
	}
	_, hasNext := s.Next()
	view := View{
		State:               s.state,
		Course:              s.course,
		ActiveIndex:         s.ActiveIndex(),
		Total:               len(s.flat),
		ResumePosition:      s.resume,
		Expanded:            expanded,
		DescriptionExpanded: s.description,
		HasNext:             hasNext,
	}
	if s.state == StateReady {
		view.ActiveVideoID = s.active
	}
	return view
}
