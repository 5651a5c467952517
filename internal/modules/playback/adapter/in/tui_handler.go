package in

import (
	"context"

	"courseplay/internal/modules/playback/dto"
	playbackin "courseplay/internal/modules/playback/port/in"
)

type TUIHandler struct {
	usecase playbackin.Usecase
}

func NewTUIHandler(usecase playbackin.Usecase) TUIHandler {
	return TUIHandler{usecase: usecase}
}

func (h TUIHandler) Open(ctx context.Context, target string, autoplay bool) (dto.SessionView, error) {
	return h.usecase.Navigate(ctx, dto.NavigateInput{Location: target, Autoplay: autoplay})
}

func (h TUIHandler) Resume(ctx context.Context, autoplay bool) (dto.SessionView, error) {
	return h.usecase.Resume(ctx, autoplay)
}

func (h TUIHandler) SelectVideo(ctx context.Context, videoID string) (dto.SessionView, error) {
	return h.usecase.SelectVideo(ctx, dto.SelectVideoInput{VideoID: videoID})
}

func (h TUIHandler) ReportEnded(ctx context.Context) (dto.SessionView, error) {
	return h.usecase.ReportEnded(ctx)
}

func (h TUIHandler) ToggleSection(ctx context.Context, sectionID string) (dto.SessionView, error) {
	return h.usecase.ToggleSection(ctx, dto.ToggleSectionInput{SectionID: sectionID})
}

func (h TUIHandler) ToggleDescription(ctx context.Context) (dto.SessionView, error) {
	return h.usecase.ToggleDescription(ctx)
}

func (h TUIHandler) View(ctx context.Context) (dto.SessionView, error) {
	return h.usecase.View(ctx)
}

func (h TUIHandler) Back(ctx context.Context) (dto.LocationOutput, error) {
	return h.usecase.Back(ctx)
}

func (h TUIHandler) Close() {
	h.usecase.Close()
}
