package usecase

import (
	"context"
	"errors"

	"courseplay/internal/modules/surface/domain"
	"courseplay/internal/modules/surface/dto"
	surfacein "courseplay/internal/modules/surface/port/in"
	"courseplay/internal/modules/surface/service"
	apperrors "courseplay/internal/platform/errors"
)

type Interactor struct {
	svc *service.SurfaceService
}

func NewInteractor(svc *service.SurfaceService) surfacein.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Start(ctx context.Context, input dto.StartInput) (surfacein.Playback, error) {
	playback, err := i.svc.Start(ctx, input.Engine, domain.Request{
		VideoID:       input.VideoID,
		MediaRef:      input.MediaRef,
		StartPosition: input.StartPosition,
		Duration:      input.Duration,
	})
	if err != nil {
		return nil, err
	}
	return newPlaybackOutput(playback), nil
}

// Doctor reports probe failures in the output; the error is reserved for an
// unknown engine.
func (i *Interactor) Doctor(ctx context.Context, input dto.DoctorInput) (dto.DoctorOutput, error) {
	info, err := i.svc.Doctor(ctx, input.Engine)
	out := dto.DoctorOutput{
		Engine:       info.Engine,
		Name:         info.Name,
		Version:      info.Version,
		Capabilities: info.Capabilities,
		Binary:       info.Binary,
		SHA256:       info.SHA256,
		Healthy:      err == nil,
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidInput) {
			return out, err
		}
		out.Error = err.Error()
	}
	return out, nil
}

func (i *Interactor) Engines() []string {
	return i.svc.Engines()
}

type playbackOutput struct {
	playback *service.Playback
	events   chan dto.EventOutput
}

func newPlaybackOutput(playback *service.Playback) *playbackOutput {
	out := &playbackOutput{playback: playback, events: make(chan dto.EventOutput, 1)}
	go func() {
		defer close(out.events)
		for ev := range playback.Events() {
			out.events <- dto.EventOutput{Kind: string(ev.Kind), Seconds: ev.Seconds, Percent: ev.Percent}
		}
	}()
	return out
}

func (p *playbackOutput) Events() <-chan dto.EventOutput {
	return p.events
}

func (p *playbackOutput) Stop() error {
	return p.playback.Stop()
}
