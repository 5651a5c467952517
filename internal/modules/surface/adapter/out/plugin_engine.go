package out

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	playerrpc "courseplay/internal/modules/surface/adapter/out/rpc"
	"courseplay/internal/modules/surface/domain"
	surfaceout "courseplay/internal/modules/surface/port/out"
	apperrors "courseplay/internal/platform/errors"
)

const (
	defaultStartTimeout = 3 * time.Second
	defaultCallTimeout  = 5 * time.Second
)

// PluginEngine runs playback in an out-of-process player speaking the
// go-plugin gRPC contract. The playhead is polled every interval.
type PluginEngine struct {
	binary   string
	interval time.Duration
	logger   hclog.Logger
}

func NewPluginEngine(binary string, interval time.Duration, logger hclog.Logger) surfaceout.Engine {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &PluginEngine{binary: binary, interval: interval, logger: logger.Named("player-plugin")}
}

func (e *PluginEngine) Probe(ctx context.Context) (domain.EngineInfo, error) {
	info := domain.EngineInfo{Binary: e.binary}
	sum, err := checksum(e.binary)
	if err != nil {
		return info, err
	}
	info.SHA256 = sum

	client, closeFn, err := e.connect()
	if err != nil {
		return info, err
	}
	defer closeFn()

	callCtx, cancel := callContext(ctx, defaultCallTimeout)
	defer cancel()
	meta, err := client.GetMetadata(callCtx)
	if err != nil {
		return info, fmt.Errorf("get metadata: %w", err)
	}
	info.Name = meta.Name
	info.Version = meta.Version
	info.Capabilities = meta.Capabilities
	return info, nil
}

func (e *PluginEngine) Open(ctx context.Context, req domain.Request) (surfaceout.Stream, error) {
	client, closeFn, err := e.connect()
	if err != nil {
		return nil, err
	}
	callCtx, cancel := callContext(ctx, defaultCallTimeout)
	defer cancel()
	opened, err := client.Open(callCtx, &playerrpc.OpenRequest{
		VideoID:       req.VideoID,
		MediaRef:      req.MediaRef,
		StartPosition: req.StartPosition,
		Duration:      req.Duration,
	})
	if err != nil {
		closeFn()
		return nil, fmt.Errorf("open media: %w", err)
	}

	s := &pluginStream{
		client:   client,
		kill:     closeFn,
		handleID: opened.HandleID,
		events:   make(chan domain.Event, 1),
		stop:     make(chan struct{}),
		logger:   e.logger,
	}
	go s.poll(e.interval)
	return s, nil
}

func (e *PluginEngine) connect() (playerrpc.PlayerClient, func(), error) {
	if e.binary == "" {
		return nil, nil, fmt.Errorf("%w: no player plugin binary configured", apperrors.ErrUnavailable)
	}
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  playerrpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          playerrpc.PluginMap(nil),
		Cmd:              exec.Command(e.binary),
		Managed:          true,
		StartTimeout:     defaultStartTimeout,
		Logger:           hclog.New(&hclog.LoggerOptions{Output: io.Discard, Level: hclog.NoLevel}),
	})
	closeFn := func() { client.Kill() }

	rpcClient, err := client.Client()
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("%w: start player plugin: %v", apperrors.ErrUnavailable, err)
	}
	raw, err := rpcClient.Dispense(playerrpc.PluginMapKey)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("dispense player plugin: %w", err)
	}
	typed, ok := raw.(playerrpc.PlayerClient)
	if !ok {
		closeFn()
		return nil, nil, fmt.Errorf("player rpc client type mismatch")
	}
	return typed, closeFn, nil
}

func callContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}

func checksum(path string) (string, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: read player plugin: %v", apperrors.ErrUnavailable, err)
	}
	hash := sha256.Sum256(payload)
	return hex.EncodeToString(hash[:]), nil
}

type pluginStream struct {
	client   playerrpc.PlayerClient
	kill     func()
	handleID string
	events   chan domain.Event
	stop     chan struct{}
	stopOnce sync.Once
	logger   hclog.Logger
}

func (s *pluginStream) Events() <-chan domain.Event { return s.events }

func (s *pluginStream) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

// poll owns the plugin process; it releases the handle and kills the
// process on the way out.
func (s *pluginStream) poll(interval time.Duration) {
	defer close(s.events)
	defer s.kill()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), defaultCallTimeout)
		defer cancel()
		if err := s.client.Close(ctx, &playerrpc.CloseRequest{HandleID: s.handleID}); err != nil {
			s.logger.Debug("close player handle", "error", err)
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
		}
		ctx, cancel := context.WithTimeout(context.Background(), defaultCallTimeout)
		state, err := s.client.Poll(ctx, &playerrpc.PollRequest{HandleID: s.handleID})
		cancel()
		if err != nil {
			s.logger.Warn("poll player plugin failed", "error", err)
			return
		}
		kind := domain.EventProgress
		if state.Ended {
			kind = domain.EventEnded
		}
		select {
		case s.events <- domain.Event{Kind: kind, Seconds: state.Position, Percent: state.Percent}:
		case <-s.stop:
			return
		}
		if state.Ended {
			return
		}
	}
}
