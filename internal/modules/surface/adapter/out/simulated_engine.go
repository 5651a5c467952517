package out

import (
	"context"
	"sync"
	"time"

	"courseplay/internal/modules/surface/domain"
	surfaceout "courseplay/internal/modules/surface/port/out"
)

// SimulatedEngine advances a virtual playhead on a ticker. Each tick moves the
// playhead by interval*speed seconds and emits a progress sample.
type SimulatedEngine struct {
	interval time.Duration
	speed    float64
}

func NewSimulatedEngine(interval time.Duration, speed float64) surfaceout.Engine {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if speed <= 0 {
		speed = 1
	}
	return &SimulatedEngine{interval: interval, speed: speed}
}

func (e *SimulatedEngine) Probe(context.Context) (domain.EngineInfo, error) {
	return domain.EngineInfo{Name: "simulated", Version: "1", Capabilities: []string{"progress", "ended"}}, nil
}

func (e *SimulatedEngine) Open(_ context.Context, req domain.Request) (surfaceout.Stream, error) {
	s := &simulatedStream{events: make(chan domain.Event, 1), stop: make(chan struct{})}
	go s.run(req, e.interval, e.interval.Seconds()*e.speed)
	return s, nil
}

type simulatedStream struct {
	events   chan domain.Event
	stop     chan struct{}
	stopOnce sync.Once
}

func (s *simulatedStream) Events() <-chan domain.Event { return s.events }

func (s *simulatedStream) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

func (s *simulatedStream) run(req domain.Request, interval time.Duration, step float64) {
	defer close(s.events)
	position := req.StartPosition
	// Without a known duration the playhead runs until the stream is closed.
	unbounded := req.Duration <= 0
	if !unbounded && position >= req.Duration {
		s.emit(domain.Event{Kind: domain.EventEnded, Seconds: req.Duration, Percent: 100})
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
		}
		position += step
		if unbounded {
			if !s.emit(domain.Event{Kind: domain.EventProgress, Seconds: position}) {
				return
			}
			continue
		}
		if position >= req.Duration {
			if !s.emit(domain.Event{Kind: domain.EventProgress, Seconds: req.Duration, Percent: 100}) {
				return
			}
			s.emit(domain.Event{Kind: domain.EventEnded, Seconds: req.Duration, Percent: 100})
			return
		}
		if !s.emit(domain.Event{Kind: domain.EventProgress, Seconds: position, Percent: domain.Percent(position, req.Duration)}) {
			return
		}
	}
}

func (s *simulatedStream) emit(ev domain.Event) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.stop:
		return false
	}
}
