package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	hclog "github.com/hashicorp/go-hclog"

	"courseplay/internal/modules/surface/domain"
	surfaceout "courseplay/internal/modules/surface/port/out"
	apperrors "courseplay/internal/platform/errors"
)

type SurfaceService struct {
	engines       map[string]surfaceout.Engine
	defaultEngine string
	logger        hclog.Logger
}

func NewSurfaceService(engines map[string]surfaceout.Engine, defaultEngine string, logger hclog.Logger) *SurfaceService {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &SurfaceService{engines: engines, defaultEngine: defaultEngine, logger: logger.Named("surface")}
}

func (s *SurfaceService) Engines() []string {
	names := make([]string, 0, len(s.engines))
	for name := range s.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Start opens req on the named engine, or the default one when name is empty.
func (s *SurfaceService) Start(ctx context.Context, name string, req domain.Request) (*Playback, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	engine, name, err := s.engine(name)
	if err != nil {
		return nil, err
	}
	stream, err := engine.Open(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("open %s surface: %w", name, err)
	}
	s.logger.Debug("surface started", "engine", name, "video_id", req.VideoID, "start", req.StartPosition)
	return newPlayback(stream, req.Duration), nil
}

func (s *SurfaceService) Doctor(ctx context.Context, name string) (domain.EngineInfo, error) {
	engine, name, err := s.engine(name)
	if err != nil {
		return domain.EngineInfo{Engine: name}, err
	}
	info, err := engine.Probe(ctx)
	info.Engine = name
	if err != nil {
		return info, fmt.Errorf("probe %s surface: %w", name, err)
	}
	return info, nil
}

func (s *SurfaceService) engine(name string) (surfaceout.Engine, string, error) {
	if name == "" {
		name = s.defaultEngine
	}
	engine, ok := s.engines[name]
	if !ok {
		return nil, name, fmt.Errorf("%w: unknown surface engine %q", apperrors.ErrInvalidInput, name)
	}
	return engine, name, nil
}

// Playback relays engine events. Percentages are clamped and nothing is
// relayed after the first Ended.
type Playback struct {
	stream   surfaceout.Stream
	events   chan domain.Event
	done     chan struct{}
	stopOnce sync.Once
}

func newPlayback(stream surfaceout.Stream, duration float64) *Playback {
	p := &Playback{
		stream: stream,
		events: make(chan domain.Event, 1),
		done:   make(chan struct{}),
	}
	go p.relay(duration)
	return p
}

func (p *Playback) Events() <-chan domain.Event {
	return p.events
}

func (p *Playback) Stop() error {
	var err error
	p.stopOnce.Do(func() {
		close(p.done)
		err = p.stream.Close()
	})
	return err
}

func (p *Playback) relay(duration float64) {
	defer close(p.events)
	in := p.stream.Events()
	for {
		select {
		case <-p.done:
			return
		case ev, ok := <-in:
			if !ok {
				return
			}
			ev.Seconds = math.Max(0, ev.Seconds)
			if ev.Percent == 0 && ev.Seconds > 0 {
				ev.Percent = domain.Percent(ev.Seconds, duration)
			}
			ev.Percent = math.Max(0, math.Min(100, ev.Percent))
			select {
			case p.events <- ev:
			case <-p.done:
				return
			}
			if ev.Kind == domain.EventEnded {
				_ = p.Stop()
				return
			}
		}
	}
}
