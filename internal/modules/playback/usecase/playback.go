package usecase

import (
	"context"

	"courseplay/internal/modules/playback/domain"
	"courseplay/internal/modules/playback/dto"
	playbackin "courseplay/internal/modules/playback/port/in"
	"courseplay/internal/modules/playback/service"
	apperrors "courseplay/internal/platform/errors"
)

type Interactor struct {
	svc *service.Controller
}

func NewInteractor(svc *service.Controller) playbackin.Usecase {
	return &Interactor{svc: svc}
}

// Open returns ErrCourseEmpty alongside the view when the course has no
// playable video.
func (i *Interactor) Open(ctx context.Context, input dto.OpenInput) (dto.SessionView, error) {
	return opened(toView(i.svc.Open(ctx, input.CourseID, input.VideoID, input.Autoplay)))
}

func (i *Interactor) Navigate(ctx context.Context, input dto.NavigateInput) (dto.SessionView, error) {
	return opened(toView(i.svc.Navigate(ctx, input.Location, input.Autoplay)))
}

func (i *Interactor) Resume(ctx context.Context, autoplay bool) (dto.SessionView, error) {
	return opened(toView(i.svc.Resume(ctx, autoplay)))
}

func (i *Interactor) SelectVideo(ctx context.Context, input dto.SelectVideoInput) (dto.SessionView, error) {
	return toView(i.svc.SelectVideo(ctx, input.VideoID))
}

func (i *Interactor) ReportProgress(ctx context.Context, input dto.ReportProgressInput) (dto.SessionView, error) {
	return toView(i.svc.ReportProgress(ctx, input.Seconds, input.Percent))
}

func (i *Interactor) ReportEnded(ctx context.Context) (dto.SessionView, error) {
	return toView(i.svc.ReportEnded(ctx))
}

func (i *Interactor) ToggleSection(ctx context.Context, input dto.ToggleSectionInput) (dto.SessionView, error) {
	return toView(i.svc.ToggleSection(ctx, input.SectionID))
}

func (i *Interactor) ToggleDescription(context.Context) (dto.SessionView, error) {
	return toView(i.svc.ToggleDescription())
}

func (i *Interactor) View(context.Context) (dto.SessionView, error) {
	return toView(i.svc.View())
}

func (i *Interactor) Back(ctx context.Context) (dto.LocationOutput, error) {
	loc, err := i.svc.Back(ctx)
	if err != nil {
		return dto.LocationOutput{}, err
	}
	return dto.LocationOutput{Location: loc.String(), CourseID: loc.CourseID(), VideoID: loc.VideoID()}, nil
}

func (i *Interactor) Close() {
	i.svc.Close()
}

func opened(view dto.SessionView, err error) (dto.SessionView, error) {
	if err == nil && view.State == dto.StateEmpty {
		return view, apperrors.ErrCourseEmpty
	}
	return view, err
}

func toView(view domain.View, err error) (dto.SessionView, error) {
	if err != nil {
		return dto.SessionView{}, err
	}
	out := dto.SessionView{
		State:               string(view.State),
		CourseID:            view.Course.ID,
		CourseTitle:         view.Course.Title,
		CourseDescription:   view.Course.Description,
		ActiveIndex:         view.ActiveIndex,
		Total:               view.Total,
		ResumePosition:      view.ResumePosition,
		DescriptionExpanded: view.DescriptionExpanded,
		HasNext:             view.HasNext,
		Location:            view.Location,
		Position:            view.Position,
		Percent:             view.Percent,
		Playing:             view.Playing,
	}
	for _, section := range view.Course.Sections {
		sv := dto.SectionView{
			ID:       section.ID,
			Title:    section.Title,
			IsNew:    section.IsNew,
			Expanded: view.Expanded[section.ID],
		}
		for _, video := range section.Videos {
			vv := toVideoView(section.ID, video, view.ActiveVideoID)
			if vv.Completed {
				sv.Done++
			}
			if vv.Active {
				active := vv
				out.Active = &active
			}
			sv.Videos = append(sv.Videos, vv)
		}
		out.Sections = append(out.Sections, sv)
	}
	return out, nil
}

func toVideoView(sectionID string, video domain.Video, activeID string) dto.VideoView {
	vv := dto.VideoView{
		ID:          video.ID,
		SectionID:   sectionID,
		Title:       video.Title,
		Description: video.Description,
		Duration:    video.Duration,
		Active:      activeID != "" && video.ID == activeID,
	}
	if video.Progress != nil {
		vv.Completed = video.Progress.Completed
		vv.Percentage = video.Progress.Percentage
		vv.LastPosition = video.Progress.LastPosition
	}
	return vv
}
