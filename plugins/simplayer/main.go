package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-plugin"

	playerrpc "courseplay/internal/modules/surface/adapter/out/rpc"
)

// speedEnv scales how fast the simulated playhead moves.
const speedEnv = "COURSEPLAY_SIMPLAYER_SPEED"

type handle struct {
	start    float64
	duration float64
	opened   time.Time
}

type server struct {
	speed   float64
	mu      sync.Mutex
	handles map[string]handle
}

func (s *server) GetMetadata(_ context.Context, _ *playerrpc.Empty) (*playerrpc.Metadata, error) {
	return &playerrpc.Metadata{
		Name:         "simplayer",
		Version:      "1.0.0",
		Capabilities: []string{"progress", "ended"},
	}, nil
}

func (s *server) Open(_ context.Context, in *playerrpc.OpenRequest) (*playerrpc.OpenResponse, error) {
	if in.VideoID == "" {
		return nil, fmt.Errorf("video id is required")
	}
	id := uuid.NewString()
	s.mu.Lock()
	s.handles[id] = handle{start: in.StartPosition, duration: in.Duration, opened: time.Now()}
	s.mu.Unlock()
	return &playerrpc.OpenResponse{HandleID: id}, nil
}

func (s *server) Poll(_ context.Context, in *playerrpc.PollRequest) (*playerrpc.PollResponse, error) {
	s.mu.Lock()
	h, ok := s.handles[in.HandleID]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown handle: %s", in.HandleID)
	}
	position := h.start + time.Since(h.opened).Seconds()*s.speed
	if h.duration <= 0 || position >= h.duration {
		return &playerrpc.PollResponse{Position: h.duration, Percent: 100, Ended: true}, nil
	}
	return &playerrpc.PollResponse{Position: position, Percent: math.Min(100, position/h.duration*100)}, nil
}

func (s *server) Close(_ context.Context, in *playerrpc.CloseRequest) (*playerrpc.Empty, error) {
	s.mu.Lock()
	delete(s.handles, in.HandleID)
	s.mu.Unlock()
	return &playerrpc.Empty{}, nil
}

func main() {
	speed := 1.0
	if raw := os.Getenv(speedEnv); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil && parsed > 0 {
			speed = parsed
		}
	}
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: playerrpc.HandshakeConfig,
		Plugins:         playerrpc.PluginMap(&server{speed: speed, handles: map[string]handle{}}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
