package in

import (
	"context"

	"courseplay/internal/modules/progress/dto"
)

type Usecase interface {
	Report(ctx context.Context, input dto.ReportInput) (dto.ReportOutput, error)
	Complete(ctx context.Context, input dto.CompleteInput) error
	Reopen(videoID string)
	MarkSectionSeen(ctx context.Context, input dto.MarkSeenInput) error
	Journal(ctx context.Context, limit int) ([]dto.JournalEntryOutput, error)
}
