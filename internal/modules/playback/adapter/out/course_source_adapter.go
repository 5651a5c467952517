package out

import (
	"context"

	coursedto "courseplay/internal/modules/course/dto"
	coursein "courseplay/internal/modules/course/port/in"
	"courseplay/internal/modules/playback/domain"
	playbackout "courseplay/internal/modules/playback/port/out"
)

type CourseSourceAdapter struct {
	courses coursein.Usecase
}

func NewCourseSourceAdapter(courses coursein.Usecase) playbackout.CourseSource {
	return &CourseSourceAdapter{courses: courses}
}

func (a *CourseSourceAdapter) Load(ctx context.Context, courseID string) (domain.Course, bool, error) {
	snap, err := a.courses.Load(ctx, coursedto.LoadInput{CourseID: courseID})
	if err != nil {
		return domain.Course{}, false, err
	}
	if snap.State != coursedto.StateReady {
		return domain.Course{}, false, nil
	}
	return toCourse(snap.Course), true, nil
}

func (a *CourseSourceAdapter) Invalidate(courseID string) {
	a.courses.Invalidate(courseID)
}

// Subscribe forwards settled snapshots only; in-flight and failed states
// carry nothing a session can apply.
func (a *CourseSourceAdapter) Subscribe(courseID string, fn func(domain.Course)) func() {
	return a.courses.Subscribe(courseID, func(snap coursedto.SnapshotOutput) {
		if snap.State != coursedto.StateReady || snap.Refreshing {
			return
		}
		fn(toCourse(snap.Course))
	})
}

func toCourse(in coursedto.CourseOutput) domain.Course {
	course := domain.Course{
		ID:          in.ID,
		Title:       in.Title,
		Description: in.Description,
		Sections:    make([]domain.Section, 0, len(in.Sections)),
	}
	for _, s := range in.Sections {
		section := domain.Section{ID: s.ID, Title: s.Title, IsNew: s.IsNew, Videos: make([]domain.Video, 0, len(s.Videos))}
		for _, v := range s.Videos {
			video := domain.Video{
				ID:          v.ID,
				SectionID:   v.SectionID,
				Title:       v.Title,
				Description: v.Description,
				MediaRef:    v.MediaRef,
				Duration:    v.Duration,
			}
			if v.Progress != nil {
				video.Progress = &domain.Progress{
					Completed:    v.Progress.Completed,
					LastPosition: v.Progress.LastPosition,
					Percentage:   v.Progress.Percentage,
				}
			}
			section.Videos = append(section.Videos, video)
		}
		course.Sections = append(course.Sections, section)
	}
	return course
}
