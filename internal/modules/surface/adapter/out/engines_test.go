package out_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	surfaceout "courseplay/internal/modules/surface/adapter/out"
	"courseplay/internal/modules/surface/domain"
)

func drain(t *testing.T, events <-chan domain.Event) []domain.Event {
	t.Helper()
	var out []domain.Event
	timeout := time.After(3 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-timeout:
			t.Fatalf("stream did not finish, got %+v", out)
		}
	}
}

func TestSimulatedEngineRunsToEnd(t *testing.T) {
	t.Parallel()
	engine := surfaceout.NewSimulatedEngine(5*time.Millisecond, 2000)
	stream, err := engine.Open(context.Background(), domain.Request{VideoID: "v1", StartPosition: 20, Duration: 60})
	require.NoError(t, err)

	events := drain(t, stream.Events())
	require.GreaterOrEqual(t, len(events), 3)
	first := events[0]
	assert.Equal(t, domain.EventProgress, first.Kind)
	assert.InDelta(t, 30, first.Seconds, 0.001)
	assert.InDelta(t, 50, first.Percent, 0.001)

	last := events[len(events)-1]
	assert.Equal(t, domain.EventEnded, last.Kind)
	assert.Equal(t, 60.0, last.Seconds)
	assert.Equal(t, 100.0, events[len(events)-2].Percent)
}

func TestSimulatedEngineStops(t *testing.T) {
	t.Parallel()
	engine := surfaceout.NewSimulatedEngine(time.Millisecond, 1)
	stream, err := engine.Open(context.Background(), domain.Request{VideoID: "v1", Duration: 3600})
	require.NoError(t, err)
	require.NoError(t, stream.Close())
	require.NoError(t, stream.Close())
	drain(t, stream.Events())
}

func TestSimulatedEngineWithoutDurationNeverEnds(t *testing.T) {
	t.Parallel()
	stream, err := surfaceout.NewSimulatedEngine(time.Millisecond, 1000).Open(context.Background(), domain.Request{VideoID: "v1", StartPosition: 5})
	require.NoError(t, err)

	var seen []domain.Event
	for len(seen) < 3 {
		select {
		case ev, ok := <-stream.Events():
			require.True(t, ok, "stream closed on its own after %+v", seen)
			seen = append(seen, ev)
		case <-time.After(3 * time.Second):
			t.Fatalf("no progress without a duration, got %+v", seen)
		}
	}
	for _, ev := range seen {
		assert.Equal(t, domain.EventProgress, ev.Kind)
		assert.Zero(t, ev.Percent)
	}
	assert.Greater(t, seen[2].Seconds, seen[0].Seconds)
	assert.InDelta(t, 6, seen[0].Seconds, 0.001)

	require.NoError(t, stream.Close())
	for _, ev := range drain(t, stream.Events()) {
		assert.NotEqual(t, domain.EventEnded, ev.Kind)
	}
}

func TestExternalEngineExpandsTemplate(t *testing.T) {
	t.Parallel()
	var opened []string
	launch := func(_ context.Context, target string) error {
		opened = append(opened, target)
		return nil
	}
	engine := surfaceout.NewExternalEngine("https://cdn.example.com/{media}?v={video}#t={start}", launch)
	stream, err := engine.Open(context.Background(), domain.Request{VideoID: "v2", MediaRef: "go/types.mp4", StartPosition: 42.4})
	require.NoError(t, err)
	require.NoError(t, stream.Close())
	assert.Empty(t, drain(t, stream.Events()))

	bare := surfaceout.NewExternalEngine("https://cdn.example.com/", launch)
	_, err = bare.Open(context.Background(), domain.Request{VideoID: "v3", MediaRef: "go/chan.mp4"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://cdn.example.com/go/types.mp4?v=v2#t=42",
		"https://cdn.example.com/go/chan.mp4",
	}, opened)
}

func TestExternalEngineErrors(t *testing.T) {
	t.Parallel()
	failing := func(context.Context, string) error { return errors.New("no handler") }
	engine := surfaceout.NewExternalEngine("", failing)
	_, err := engine.Open(context.Background(), domain.Request{VideoID: "v1"})
	require.Error(t, err)
	_, err = engine.Open(context.Background(), domain.Request{VideoID: "v1", MediaRef: "a.mp4"})
	require.EqualError(t, err, "no handler")
}
