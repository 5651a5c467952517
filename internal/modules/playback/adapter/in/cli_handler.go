package in

import (
	"context"

	"courseplay/internal/modules/playback/dto"
	playbackin "courseplay/internal/modules/playback/port/in"
)

type CLIHandler struct {
	usecase playbackin.Usecase
}

func NewCLIHandler(usecase playbackin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

// Play opens target, a course id or a location, with the surface running.
func (h CLIHandler) Play(ctx context.Context, target string) (dto.SessionView, error) {
	return h.usecase.Navigate(ctx, dto.NavigateInput{Location: target, Autoplay: true})
}

func (h CLIHandler) Resume(ctx context.Context, autoplay bool) (dto.SessionView, error) {
	return h.usecase.Resume(ctx, autoplay)
}

func (h CLIHandler) View(ctx context.Context) (dto.SessionView, error) {
	return h.usecase.View(ctx)
}

func (h CLIHandler) Close() {
	h.usecase.Close()
}
