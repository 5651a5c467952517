package usecase

import (
	"context"

	"courseplay/internal/modules/course/domain"
	"courseplay/internal/modules/course/dto"
	coursein "courseplay/internal/modules/course/port/in"
	"courseplay/internal/modules/course/service"
)

type Interactor struct {
	svc *service.CourseService
}

func NewInteractor(svc *service.CourseService) coursein.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Load(ctx context.Context, input dto.LoadInput) (dto.SnapshotOutput, error) {
	snap, err := i.svc.Load(ctx, input.CourseID)
	return toSnapshotOutput(snap), err
}

func (i *Interactor) Refresh(ctx context.Context, input dto.LoadInput) (dto.SnapshotOutput, error) {
	snap, err := i.svc.Refresh(ctx, input.CourseID)
	return toSnapshotOutput(snap), err
}

func (i *Interactor) Invalidate(courseID string) {
	i.svc.Invalidate(courseID)
}

func (i *Interactor) Subscribe(courseID string, fn func(dto.SnapshotOutput)) func() {
	return i.svc.Subscribe(courseID, func(snap domain.Snapshot) {
		fn(toSnapshotOutput(snap))
	})
}

func toSnapshotOutput(snap domain.Snapshot) dto.SnapshotOutput {
	out := dto.SnapshotOutput{
		CourseID:   snap.CourseID,
		State:      string(snap.State),
		Err:        snap.Err,
		Stale:      snap.Stale,
		Refreshing: snap.Refreshing,
		FetchedAt:  snap.FetchedAt,
	}
	if snap.HasData() {
		out.Course = ToCourseOutput(snap.Course)
	}
	return out
}

func ToCourseOutput(course domain.Course) dto.CourseOutput {
	out := dto.CourseOutput{
		ID:          course.ID,
		Title:       course.Title,
		Description: course.Description,
		Sections:    make([]dto.SectionOutput, 0, len(course.Sections)),
	}
	for _, section := range course.Sections {
		sectionOut := dto.SectionOutput{
			ID:       section.ID,
			Title:    section.Title,
			Position: section.Position,
			IsNew:    section.IsNew,
			Videos:   make([]dto.VideoOutput, 0, len(section.Videos)),
		}
		for _, video := range section.Videos {
			videoOut := dto.VideoOutput{
				ID:          video.ID,
				SectionID:   video.SectionID,
				Title:       video.Title,
				Description: video.Description,
				MediaRef:    video.MediaRef,
				Duration:    video.Duration,
				Position:    video.Position,
			}
			if video.Progress != nil {
				videoOut.Progress = &dto.ProgressOutput{
					Completed:    video.Progress.Completed,
					LastPosition: video.Progress.LastPosition,
					Percentage:   video.Progress.Percentage,
				}
			}
			sectionOut.Videos = append(sectionOut.Videos, videoOut)
		}
		out.Sections = append(out.Sections, sectionOut)
	}
	return out
}
