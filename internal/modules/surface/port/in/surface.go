package in

import (
	"context"

	"courseplay/internal/modules/surface/dto"
)

type Playback interface {
	Events() <-chan dto.EventOutput
	Stop() error
}

type Usecase interface {
	Start(ctx context.Context, input dto.StartInput) (Playback, error)
	Doctor(ctx context.Context, input dto.DoctorInput) (dto.DoctorOutput, error)
	Engines() []string
}
