package out

import (
	"context"

	playbackout "courseplay/internal/modules/playback/port/out"
	progressdto "courseplay/internal/modules/progress/dto"
	progressin "courseplay/internal/modules/progress/port/in"
)

type ProgressAdapter struct {
	progress progressin.Usecase
}

func NewProgressAdapter(progress progressin.Usecase) *ProgressAdapter {
	return &ProgressAdapter{progress: progress}
}

var (
	_ playbackout.ProgressReporter    = (*ProgressAdapter)(nil)
	_ playbackout.SectionAcknowledger = (*ProgressAdapter)(nil)
)

func (a *ProgressAdapter) Report(ctx context.Context, videoID string, seconds, percent float64) error {
	_, err := a.progress.Report(ctx, progressdto.ReportInput{VideoID: videoID, LastPosition: seconds, Percentage: percent})
	return err
}

func (a *ProgressAdapter) Complete(ctx context.Context, videoID string) error {
	return a.progress.Complete(ctx, progressdto.CompleteInput{VideoID: videoID})
}

func (a *ProgressAdapter) Reopen(videoID string) {
	a.progress.Reopen(videoID)
}

func (a *ProgressAdapter) MarkSeen(ctx context.Context, sectionID string) error {
	return a.progress.MarkSectionSeen(ctx, progressdto.MarkSeenInput{SectionID: sectionID})
}
