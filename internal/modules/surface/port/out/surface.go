package out

import (
	"context"

	"courseplay/internal/modules/surface/domain"
)

// Engine plays media and reports the playhead.
type Engine interface {
	Open(ctx context.Context, req domain.Request) (Stream, error)
	Probe(ctx context.Context) (domain.EngineInfo, error)
}

// Stream is one running playback. Close must be safe to call more than once
// and must eventually close the Events channel.
type Stream interface {
	Events() <-chan domain.Event
	Close() error
}
