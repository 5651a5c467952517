package out

import (
	"context"

	"courseplay/internal/modules/playback/domain"
	playbackout "courseplay/internal/modules/playback/port/out"
	surfacedto "courseplay/internal/modules/surface/dto"
	surfacein "courseplay/internal/modules/surface/port/in"
)

// SurfaceAdapter plays videos through the surface module on a fixed engine.
type SurfaceAdapter struct {
	surface surfacein.Usecase
	engine  string
}

func NewSurfaceAdapter(surface surfacein.Usecase, engine string) playbackout.Surface {
	return &SurfaceAdapter{surface: surface, engine: engine}
}

func (a *SurfaceAdapter) Start(ctx context.Context, req domain.MediaRequest) (playbackout.Playback, error) {
	handle, err := a.surface.Start(ctx, surfacedto.StartInput{
		Engine:        a.engine,
		VideoID:       req.VideoID,
		MediaRef:      req.MediaRef,
		StartPosition: req.StartPosition,
		Duration:      req.Duration,
	})
	if err != nil {
		return nil, err
	}
	p := &surfacePlayback{handle: handle, events: make(chan domain.SurfaceEvent, 1)}
	go p.relay()
	return p, nil
}

type surfacePlayback struct {
	handle surfacein.Playback
	events chan domain.SurfaceEvent
}

func (p *surfacePlayback) Events() <-chan domain.SurfaceEvent { return p.events }

func (p *surfacePlayback) Stop() error { return p.handle.Stop() }

func (p *surfacePlayback) relay() {
	defer close(p.events)
	for ev := range p.handle.Events() {
		kind := domain.SurfaceProgress
		if ev.Kind == surfacedto.EventEnded {
			kind = domain.SurfaceEnded
		}
		p.events <- domain.SurfaceEvent{Kind: kind, Seconds: ev.Seconds, Percent: ev.Percent}
	}
}
