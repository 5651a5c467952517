package in

import (
	"context"

	"courseplay/internal/modules/course/dto"
	coursein "courseplay/internal/modules/course/port/in"
)

type CLIHandler struct {
	usecase coursein.Usecase
}

func NewCLIHandler(usecase coursein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Show(ctx context.Context, courseID string) (dto.SnapshotOutput, error) {
	return h.usecase.Load(ctx, dto.LoadInput{CourseID: courseID})
}

func (h CLIHandler) Refresh(ctx context.Context, courseID string) (dto.SnapshotOutput, error) {
	return h.usecase.Refresh(ctx, dto.LoadInput{CourseID: courseID})
}
