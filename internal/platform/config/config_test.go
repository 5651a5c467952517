package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courseplay/internal/platform/config"
)

// Env-based tests mutate process state and cannot run in parallel.

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load(config.Options{})
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8080/api", cfg.APIBaseURL)
	assert.Equal(t, "simulated", cfg.SurfaceEngine)
	assert.Equal(t, 5*time.Second, cfg.SampleInterval)
	assert.Equal(t, filepath.Join(cfg.DataDir, "courseplay.db"), cfg.DBPath)
}

func TestLoadLayersFileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	file := filepath.Join(dir, "courseplay.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
api:
  base_url: http://platform.test/api/
  token: from-file
viewer:
  id: file-viewer
surface:
  sample_interval: 2s
`), 0o644))
	t.Setenv("COURSEPLAY_API_TOKEN", "from-env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("viewer", "", "")
	flags.String("data-dir", "", "")
	require.NoError(t, flags.Parse([]string{"--viewer", "flag-viewer", "--data-dir", filepath.Join(dir, "data")}))

	cfg, err := config.Load(config.Options{ConfigFile: file, Flags: flags})
	require.NoError(t, err)
	assert.Equal(t, "http://platform.test/api", cfg.APIBaseURL)
	assert.Equal(t, "from-env", cfg.APIToken)
	assert.Equal(t, "flag-viewer", cfg.ViewerID)
	assert.Equal(t, 2*time.Second, cfg.SampleInterval)
	assert.Equal(t, filepath.Join(dir, "data", "courseplay.db"), cfg.DBPath)
}

func TestLoadDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("COURSEPLAY_VIEWER_ID=dotenv\nCOURSEPLAY_SURFACE_SPEED=4\n"), 0o644))
	t.Setenv("COURSEPLAY_VIEWER_ID", "shell")

	cfg, err := config.Load(config.Options{})
	require.NoError(t, err)
	assert.Equal(t, "shell", cfg.ViewerID)
	assert.Equal(t, 4.0, cfg.SurfaceSpeed)
	// godotenv sets variables on the process; clear what it added.
	t.Cleanup(func() { _ = os.Unsetenv("COURSEPLAY_SURFACE_SPEED") })
}

func TestValidateRejectsBadConfig(t *testing.T) {
	t.Parallel()
	base := config.Config{APIBaseURL: "http://x", DataDir: "/tmp/x", SurfaceEngine: "simulated", SampleInterval: time.Second}
	require.NoError(t, base.Validate())

	noURL := base
	noURL.APIBaseURL = " "
	assert.Error(t, noURL.Validate())

	noData := base
	noData.DataDir = ""
	assert.Error(t, noData.Validate())

	unknown := base
	unknown.SurfaceEngine = "vlc"
	assert.Error(t, unknown.Validate())

	plugin := base
	plugin.SurfaceEngine = "plugin"
	assert.Error(t, plugin.Validate())
}
