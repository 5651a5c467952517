package usecase

import (
	"context"

	"courseplay/internal/modules/progress/dto"
	progressin "courseplay/internal/modules/progress/port/in"
	"courseplay/internal/modules/progress/service"
)

type Interactor struct {
	svc *service.ProgressService
}

func NewInteractor(svc *service.ProgressService) progressin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Report(ctx context.Context, input dto.ReportInput) (dto.ReportOutput, error) {
	accepted, err := i.svc.Report(ctx, input.VideoID, input.LastPosition, input.Percentage)
	return dto.ReportOutput{Accepted: accepted}, err
}

func (i *Interactor) Complete(ctx context.Context, input dto.CompleteInput) error {
	return i.svc.Complete(ctx, input.VideoID)
}

func (i *Interactor) Reopen(videoID string) {
	i.svc.Reopen(videoID)
}

func (i *Interactor) MarkSectionSeen(ctx context.Context, input dto.MarkSeenInput) error {
	return i.svc.MarkSectionSeen(ctx, input.SectionID)
}

func (i *Interactor) Journal(ctx context.Context, limit int) ([]dto.JournalEntryOutput, error) {
	entries, err := i.svc.Journal(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.JournalEntryOutput, 0, len(entries))
	for _, entry := range entries {
		out = append(out, dto.JournalEntryOutput{
			ID:           entry.ID,
			Kind:         entry.Kind,
			TargetID:     entry.TargetID,
			LastPosition: entry.Update.LastPosition,
			Percentage:   entry.Update.Percentage,
			Completed:    entry.Update.Completed,
			Outcome:      string(entry.Outcome),
			Error:        entry.Error,
			CreatedAt:    entry.CreatedAt,
		})
	}
	return out, nil
}
