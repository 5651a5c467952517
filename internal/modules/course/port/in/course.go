package in

import (
	"context"

	"courseplay/internal/modules/course/dto"
)

type Usecase interface {
	Load(ctx context.Context, input dto.LoadInput) (dto.SnapshotOutput, error)
	Refresh(ctx context.Context, input dto.LoadInput) (dto.SnapshotOutput, error)
	Invalidate(courseID string)
	Subscribe(courseID string, fn func(dto.SnapshotOutput)) func()
}
