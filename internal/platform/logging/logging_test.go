package logging_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courseplay/internal/platform/logging"
)

func TestNewJSONRespectsLevel(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger, closeFn, err := logging.New("courseplay", logging.Options{Level: "warn", Format: "json", Output: &buf})
	require.NoError(t, err)
	defer func() { _ = closeFn() }()

	logger.Info("hidden")
	logger.Named("playback").Warn("progress write failed", "video_id", "v1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "progress write failed", line["@message"])
	assert.Equal(t, "courseplay.playback", line["@module"])
	assert.Equal(t, "v1", line["video_id"])
}

func TestNewWritesToFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "logs", "courseplay.log")
	logger, closeFn, err := logging.New("courseplay", logging.Options{File: path})
	require.NoError(t, err)

	logger.Info("opened", "course_id", "c1")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "course_id=c1")
}
