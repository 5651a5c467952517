package out

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"courseplay/internal/modules/surface/domain"
	surfaceout "courseplay/internal/modules/surface/port/out"
	apperrors "courseplay/internal/platform/errors"
)

// Launcher opens a target in whatever the desktop associates with it.
type Launcher func(ctx context.Context, target string) error

// ExternalEngine hands the media URL to the OS. The external player reports
// nothing back, so its stream carries no events.
type ExternalEngine struct {
	template string
	launch   Launcher
}

// NewExternalEngine expands template with {media}, {video} and {start}. A
// template without {media} gets the media ref appended.
func NewExternalEngine(template string, launch Launcher) surfaceout.Engine {
	if launch == nil {
		launch = OSLauncher
	}
	return &ExternalEngine{template: template, launch: launch}
}

func (e *ExternalEngine) Probe(context.Context) (domain.EngineInfo, error) {
	info := domain.EngineInfo{Name: "external", Version: runtime.GOOS}
	if _, err := exec.LookPath(openCommand()); err != nil {
		return info, fmt.Errorf("%w: %s not found", apperrors.ErrUnavailable, openCommand())
	}
	return info, nil
}

func (e *ExternalEngine) Open(ctx context.Context, req domain.Request) (surfaceout.Stream, error) {
	target := e.target(req)
	if target == "" {
		return nil, fmt.Errorf("%w: video %s has no media ref", apperrors.ErrInvalidInput, req.VideoID)
	}
	if err := e.launch(ctx, target); err != nil {
		return nil, err
	}
	return &silentStream{events: make(chan domain.Event)}, nil
}

func (e *ExternalEngine) target(req domain.Request) string {
	if req.MediaRef == "" {
		return ""
	}
	if e.template == "" {
		return req.MediaRef
	}
	template := e.template
	if !strings.Contains(template, "{media}") {
		template += "{media}"
	}
	return strings.NewReplacer(
		"{media}", req.MediaRef,
		"{video}", req.VideoID,
		"{start}", strconv.FormatFloat(req.StartPosition, 'f', 0, 64),
	).Replace(template)
}

func OSLauncher(_ context.Context, target string) error {
	name := openCommand()
	if name == "" {
		return fmt.Errorf("external open is not supported on %s", runtime.GOOS)
	}
	if err := exec.Command(name, target).Start(); err != nil {
		return fmt.Errorf("open external target: %w", err)
	}
	return nil
}

func openCommand() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "linux":
		return "xdg-open"
	default:
		return ""
	}
}

type silentStream struct {
	events chan domain.Event
	once   sync.Once
}

func (s *silentStream) Events() <-chan domain.Event { return s.events }

func (s *silentStream) Close() error {
	s.once.Do(func() { close(s.events) })
	return nil
}
