package in

import (
	"context"

	"courseplay/internal/modules/playback/dto"
)

type Usecase interface {
	Open(ctx context.Context, input dto.OpenInput) (dto.SessionView, error)
	Navigate(ctx context.Context, input dto.NavigateInput) (dto.SessionView, error)
	Resume(ctx context.Context, autoplay bool) (dto.SessionView, error)
	SelectVideo(ctx context.Context, input dto.SelectVideoInput) (dto.SessionView, error)
	ReportProgress(ctx context.Context, input dto.ReportProgressInput) (dto.SessionView, error)
	ReportEnded(ctx context.Context) (dto.SessionView, error)
	ToggleSection(ctx context.Context, input dto.ToggleSectionInput) (dto.SessionView, error)
	ToggleDescription(ctx context.Context) (dto.SessionView, error)
	View(ctx context.Context) (dto.SessionView, error)
	Back(ctx context.Context) (dto.LocationOutput, error)
	Close()
}
