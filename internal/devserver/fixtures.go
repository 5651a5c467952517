package devserver

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"courseplay/internal/platform/apiclient"
	"courseplay/internal/platform/slug"
)

type fixtureFile struct {
	Courses []apiclient.CourseDoc `yaml:"courses"`
}

// LoadFixtures reads course fixtures from a YAML file.
func LoadFixtures(path string) ([]apiclient.CourseDoc, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	return ParseFixtures(payload)
}

// ParseFixtures decodes fixtures and fills in what authors may leave out:
// ids are slugged from titles, positions follow document order.
func ParseFixtures(payload []byte) ([]apiclient.CourseDoc, error) {
	file := fixtureFile{}
	dec := yaml.NewDecoder(bytes.NewReader(payload))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}

	courseIDs := map[string]struct{}{}
	sectionIDs := map[string]struct{}{}
	videoIDs := map[string]struct{}{}
	for _, course := range file.Courses {
		for _, section := range course.Sections {
			for _, video := range section.Videos {
				if video.ID != "" {
					if _, dup := videoIDs[video.ID]; dup {
						return nil, fmt.Errorf("duplicate video id %q", video.ID)
					}
					videoIDs[video.ID] = struct{}{}
				}
			}
			if section.ID != "" {
				sectionIDs[section.ID] = struct{}{}
			}
		}
		if course.ID != "" {
			courseIDs[course.ID] = struct{}{}
		}
	}

	for ci := range file.Courses {
		course := &file.Courses[ci]
		if course.ID == "" {
			course.ID = slug.Unique(course.Title, "course", courseIDs)
		}
		for si := range course.Sections {
			section := &course.Sections[si]
			if section.ID == "" {
				section.ID = slug.Unique(course.ID+" "+section.Title, "section", sectionIDs)
			}
			if section.Position == 0 {
				section.Position = si + 1
			}
			for vi := range section.Videos {
				video := &section.Videos[vi]
				if video.ID == "" {
					video.ID = slug.Unique(section.ID+" "+video.Title, "video", videoIDs)
				}
				if video.Position == 0 {
					video.Position = vi + 1
				}
			}
		}
	}
	return file.Courses, nil
}
