package in

import (
	"context"

	"courseplay/internal/modules/surface/dto"
	surfacein "courseplay/internal/modules/surface/port/in"
)

type CLIHandler struct {
	usecase surfacein.Usecase
}

func NewCLIHandler(usecase surfacein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Doctor(ctx context.Context, engine string) (dto.DoctorOutput, error) {
	return h.usecase.Doctor(ctx, dto.DoctorInput{Engine: engine})
}

func (h CLIHandler) Engines() []string {
	return h.usecase.Engines()
}
