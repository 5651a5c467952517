package out

import (
	"context"

	"courseplay/internal/modules/course/domain"
	courseout "courseplay/internal/modules/course/port/out"
	"courseplay/internal/platform/apiclient"
)

type RESTCourseFetcher struct {
	client *apiclient.Client
}

func NewRESTCourseFetcher(client *apiclient.Client) courseout.CourseFetcher {
	return &RESTCourseFetcher{client: client}
}

// FetchCourse reads the course tree with the viewer's progress. The viewer id
// travels in the client's default headers; an explicit one overrides it.
func (f *RESTCourseFetcher) FetchCourse(ctx context.Context, courseID, viewerID string) (domain.Course, error) {
	doc := apiclient.CourseDoc{}
	if err := f.client.GetAs(ctx, viewerID, apiclient.PathCourse, map[string]string{"courseId": courseID}, &doc); err != nil {
		return domain.Course{}, err
	}
	return fromCourseDoc(doc), nil
}

func fromCourseDoc(doc apiclient.CourseDoc) domain.Course {
	course := domain.Course{
		ID:          doc.ID,
		Title:       doc.Title,
		Description: doc.Description,
		Sections:    make([]domain.Section, 0, len(doc.Sections)),
	}
	for _, s := range doc.Sections {
		section := domain.Section{
			ID:       s.ID,
			CourseID: doc.ID,
			Title:    s.Title,
			Position: s.Position,
			IsNew:    s.IsNew,
			Videos:   make([]domain.Video, 0, len(s.Videos)),
		}
		for _, v := range s.Videos {
			video := domain.Video{
				ID:          v.ID,
				SectionID:   s.ID,
				Title:       v.Title,
				Description: v.Description,
				MediaRef:    v.MediaRef,
				Duration:    v.Duration,
				Position:    v.Position,
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

func toCourseDoc(course domain.Course) apiclient.CourseDoc {
	doc := apiclient.CourseDoc{
		ID:          course.ID,
		Title:       course.Title,
		Description: course.Description,
		Sections:    make([]apiclient.SectionDoc, 0, len(course.Sections)),
	}
	for _, s := range course.Sections {
		section := apiclient.SectionDoc{
			ID:       s.ID,
			Title:    s.Title,
			Position: s.Position,
			IsNew:    s.IsNew,
			Videos:   make([]apiclient.VideoDoc, 0, len(s.Videos)),
		}
		for _, v := range s.Videos {
			video := apiclient.VideoDoc{
				ID:          v.ID,
				Title:       v.Title,
				Description: v.Description,
				MediaRef:    v.MediaRef,
				Duration:    v.Duration,
				Position:    v.Position,
			}
			if v.Progress != nil {
				video.Progress = &apiclient.ProgressDoc{
					Completed:    v.Progress.Completed,
					LastPosition: v.Progress.LastPosition,
					Percentage:   v.Progress.Percentage,
				}
			}
			section.Videos = append(section.Videos, video)
		}
		doc.Sections = append(doc.Sections, section)
	}
	return doc
}
