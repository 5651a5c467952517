package out

import (
	"context"

	"courseplay/internal/modules/progress/domain"
)

type Store interface {
	UpdateProgress(ctx context.Context, update domain.Update) error
	MarkSectionSeen(ctx context.Context, sectionID string) error
}

type Journal interface {
	Append(ctx context.Context, entry domain.JournalEntry) error
	Recent(ctx context.Context, limit int) ([]domain.JournalEntry, error)
}
