package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"courseplay/internal/modules/surface/domain"
	surfaceout "courseplay/internal/modules/surface/port/out"
	"courseplay/internal/modules/surface/service"
	apperrors "courseplay/internal/platform/errors"
)

type scriptedStream struct {
	events chan domain.Event
	once   sync.Once
	closed chan struct{}
}

func (s *scriptedStream) Events() <-chan domain.Event { return s.events }

func (s *scriptedStream) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

type scriptedEngine struct {
	script []domain.Event
	stream *scriptedStream
}

func (e *scriptedEngine) Open(context.Context, domain.Request) (surfaceout.Stream, error) {
	e.stream = &scriptedStream{events: make(chan domain.Event, len(e.script)), closed: make(chan struct{})}
	for _, ev := range e.script {
		e.stream.events <- ev
	}
	return e.stream, nil
}

func (e *scriptedEngine) Probe(context.Context) (domain.EngineInfo, error) {
	return domain.EngineInfo{Name: "scripted", Version: "0"}, nil
}

type brokenEngine struct{}

func (brokenEngine) Open(context.Context, domain.Request) (surfaceout.Stream, error) {
	return nil, apperrors.ErrUnavailable
}

func (brokenEngine) Probe(context.Context) (domain.EngineInfo, error) {
	return domain.EngineInfo{}, apperrors.ErrUnavailable
}

func collect(t *testing.T, events <-chan domain.Event) []domain.Event {
	t.Helper()
	var out []domain.Event
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-timeout:
			t.Fatalf("events channel never closed, got %+v", out)
		}
	}
}

func TestPlaybackStopsAfterEnded(t *testing.T) {
	t.Parallel()
	engine := &scriptedEngine{script: []domain.Event{
		{Kind: domain.EventProgress, Seconds: 30},
		{Kind: domain.EventProgress, Seconds: 90, Percent: 140},
		{Kind: domain.EventEnded, Seconds: 120, Percent: 100},
		{Kind: domain.EventProgress, Seconds: 130, Percent: 100},
	}}
	svc := service.NewSurfaceService(map[string]surfaceout.Engine{"scripted": engine}, "scripted", nil)

	playback, err := svc.Start(context.Background(), "", domain.Request{VideoID: "v1", Duration: 120})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	events := collect(t, playback.Events())
	if len(events) != 3 {
		t.Fatalf("expected 3 events before the stream stops, got %+v", events)
	}
	if events[0].Percent != 25 {
		t.Fatalf("percent should be derived from duration, got %v", events[0].Percent)
	}
	if events[1].Percent != 100 {
		t.Fatalf("percent should be clamped, got %v", events[1].Percent)
	}
	if events[2].Kind != domain.EventEnded {
		t.Fatalf("last event should be ended, got %+v", events[2])
	}
	select {
	case <-engine.stream.closed:
	default:
		t.Fatalf("engine stream should be closed after ended")
	}
}

func TestStartRejectsBadInput(t *testing.T) {
	t.Parallel()
	svc := service.NewSurfaceService(map[string]surfaceout.Engine{"broken": brokenEngine{}}, "broken", nil)
	if _, err := svc.Start(context.Background(), "", domain.Request{}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Start(context.Background(), "nope", domain.Request{VideoID: "v1"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown engine, got %v", err)
	}
	if _, err := svc.Start(context.Background(), "", domain.Request{VideoID: "v1"}); !errors.Is(err, apperrors.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestDoctor(t *testing.T) {
	t.Parallel()
	svc := service.NewSurfaceService(map[string]surfaceout.Engine{
		"scripted": &scriptedEngine{},
		"broken":   brokenEngine{},
	}, "scripted", nil)

	info, err := svc.Doctor(context.Background(), "")
	if err != nil || info.Engine != "scripted" || info.Name != "scripted" {
		t.Fatalf("unexpected doctor result: %+v %v", info, err)
	}
	if _, err := svc.Doctor(context.Background(), "broken"); !errors.Is(err, apperrors.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if got := svc.Engines(); len(got) != 2 || got[0] != "broken" {
		t.Fatalf("engines should be sorted: %v", got)
	}
}
