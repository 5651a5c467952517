package domain

// The playback view of a course. Only the fields sequencing and rendering need.

type Progress struct {
	Completed    bool
	LastPosition float64
	Percentage   float64
}

type Video struct {
	ID          string
	SectionID   string
	Title       string
	Description string
	MediaRef    string
	Duration    float64
	Progress    *Progress
}

func (v Video) Done() bool {
	return v.Progress != nil && v.Progress.Completed
}

// ResumePosition is where playback of v starts: zero without progress or once
// completed, else the last reported position.
func (v Video) ResumePosition() float64 {
	if v.Progress == nil || v.Progress.Completed {
		return 0
	}
	return v.Progress.LastPosition
}

type Section struct {
	ID     string
	Title  string
	IsNew  bool
	Videos []Video
}

type Course struct {
	ID          string
	Title       string
	Description string
	Sections    []Section
}

func (c Course) flatten() []Video {
	var out []Video
	for _, section := range c.Sections {
		for _, video := range section.Videos {
			if video.SectionID == "" {
				video.SectionID = section.ID
			}
			out = append(out, video)
		}
	}
	return out
}

func (c Course) section(id string) (Section, bool) {
	for _, section := range c.Sections {
		if section.ID == id {
			return section, true
		}
	}
	return Section{}, false
}
