package domain

import (
	"fmt"
	"sort"
	"strings"
)

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
	// Duration is in seconds; zero means unknown.
	Duration float64
	Position int
	Progress *Progress
}

type Section struct {
	ID       string
	CourseID string
	Title    string
	Position int
	IsNew    bool
	Videos   []Video
}

type Course struct {
	ID          string
	Title       string
	Description string
	Sections    []Section
}

// Done reports whether the video carries a completed progress record.
func (v Video) Done() bool {
	return v.Progress != nil && v.Progress.Completed
}

// Normalize orders sections and their videos by position, keeping the server
// order for ties, and back-fills parent ids.
func (c Course) Normalize() Course {
	out := c
	out.Sections = make([]Section, len(c.Sections))
	copy(out.Sections, c.Sections)
	sort.SliceStable(out.Sections, func(i, j int) bool {
		return out.Sections[i].Position < out.Sections[j].Position
	})
	for i := range out.Sections {
		section := &out.Sections[i]
		if section.CourseID == "" {
			section.CourseID = c.ID
		}
		videos := make([]Video, len(section.Videos))
		copy(videos, section.Videos)
		sort.SliceStable(videos, func(a, b int) bool {
			return videos[a].Position < videos[b].Position
		})
		for j := range videos {
			if videos[j].SectionID == "" {
				videos[j].SectionID = section.ID
			}
		}
		section.Videos = videos
	}
	return out
}

// Flatten lists every video, sections in order and videos in order within each.
func (c Course) Flatten() []Video {
	total := 0
	for _, section := range c.Sections {
		total += len(section.Videos)
	}
	out := make([]Video, 0, total)
	for _, section := range c.Sections {
		out = append(out, section.Videos...)
	}
	return out
}

func (c Course) FindVideo(videoID string) (Video, bool) {
	for _, section := range c.Sections {
		for _, video := range section.Videos {
			if video.ID == videoID {
				return video, true
			}
		}
	}
	return Video{}, false
}

func (c Course) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("course id is required")
	}
	seenSections := map[string]struct{}{}
	seenVideos := map[string]struct{}{}
	for _, section := range c.Sections {
		if strings.TrimSpace(section.ID) == "" {
			return fmt.Errorf("section id is required")
		}
		if _, ok := seenSections[section.ID]; ok {
			return fmt.Errorf("duplicate section id %q", section.ID)
		}
		seenSections[section.ID] = struct{}{}
		for _, video := range section.Videos {
			if strings.TrimSpace(video.ID) == "" {
				return fmt.Errorf("video id is required in section %q", section.ID)
			}
			if _, ok := seenVideos[video.ID]; ok {
				return fmt.Errorf("duplicate video id %q", video.ID)
			}
			seenVideos[video.ID] = struct{}{}
			if err := video.Progress.Validate(); err != nil {
				return fmt.Errorf("video %q: %w", video.ID, err)
			}
		}
	}
	return nil
}

func (p *Progress) Validate() error {
	if p == nil {
		return nil
	}
	if p.LastPosition < 0 {
		return fmt.Errorf("last position must be >= 0")
	}
	if p.Percentage < 0 || p.Percentage > 100 {
		return fmt.Errorf("percentage must be within 0..100")
	}
	return nil
}
