package out_test

import (
	"context"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	surfaceout "courseplay/internal/modules/surface/adapter/out"
	"courseplay/internal/modules/surface/domain"
)

func TestPluginEngineIntegrationSimplayer(t *testing.T) {
	binPath := buildSimplayer(t)
	t.Setenv("COURSEPLAY_SIMPLAYER_SPEED", "600")

	engine := surfaceout.NewPluginEngine(binPath, 20*time.Millisecond, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	info, err := engine.Probe(ctx)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if info.Name != "simplayer" || len(info.SHA256) != 64 {
		t.Fatalf("unexpected probe info: %+v", info)
	}

	stream, err := engine.Open(ctx, domain.Request{VideoID: "v1", MediaRef: "v1.mp4", StartPosition: 10, Duration: 60})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	var last domain.Event
	for ev := range stream.Events() {
		last = ev
	}
	if last.Kind != domain.EventEnded || last.Percent != 100 {
		t.Fatalf("expected ended event, got %+v", last)
	}
	if err := stream.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestPluginEngineWithoutBinary(t *testing.T) {
	t.Parallel()
	engine := surfaceout.NewPluginEngine("", time.Second, nil)
	if _, err := engine.Open(context.Background(), domain.Request{VideoID: "v1"}); err == nil {
		t.Fatalf("expected an error without a plugin binary")
	}
}

func buildSimplayer(t *testing.T) string {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), "simplayer")
	cmd := exec.Command("go", "build", "-o", binPath, "./plugins/simplayer")
	cmd.Dir = repositoryRoot(t)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build simplayer plugin: %v\n%s", err, string(out))
	}
	return binPath
}

func repositoryRoot(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller failed")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "../../../../../"))
}
