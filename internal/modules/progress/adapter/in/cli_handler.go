package in

import (
	"context"

	"courseplay/internal/modules/progress/dto"
	progressin "courseplay/internal/modules/progress/port/in"
)

type CLIHandler struct {
	usecase progressin.Usecase
}

func NewCLIHandler(usecase progressin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Set(ctx context.Context, videoID string, position, percent float64) (dto.ReportOutput, error) {
	return h.usecase.Report(ctx, dto.ReportInput{VideoID: videoID, LastPosition: position, Percentage: percent})
}

func (h CLIHandler) Complete(ctx context.Context, videoID string) error {
	return h.usecase.Complete(ctx, dto.CompleteInput{VideoID: videoID})
}

func (h CLIHandler) MarkSectionSeen(ctx context.Context, sectionID string) error {
	return h.usecase.MarkSectionSeen(ctx, dto.MarkSeenInput{SectionID: sectionID})
}

func (h CLIHandler) Log(ctx context.Context, limit int) ([]dto.JournalEntryOutput, error) {
	return h.usecase.Journal(ctx, limit)
}
