package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "COURSEPLAY"

type Config struct {
	APIBaseURL string
	APIToken   string
	APITimeout time.Duration
	ViewerID   string
	DataDir    string
	DBPath     string

	SurfaceEngine   string
	SampleInterval  time.Duration
	SurfaceSpeed    float64
	PluginBinary    string
	ExternalURLBase string

	LogLevel  string
	LogFormat string
	LogFile   string
}

// Options point Load at the inputs that override defaults.
type Options struct {
	ConfigFile string
	EnvFile    string
	Flags      *pflag.FlagSet
}

// flagKeys maps CLI flag names to their config keys.
var flagKeys = map[string]string{
	"api-url":   "api.base_url",
	"token":     "api.token",
	"viewer":    "viewer.id",
	"data-dir":  "data_dir",
	"engine":    "surface.engine",
	"log-level": "log.level",
}

func Load(opts Options) (Config, error) {
	if err := loadDotEnv(opts.EnvFile); err != nil {
		return Config{}, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", opts.ConfigFile, err)
		}
	} else {
		v.SetConfigName("courseplay")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "courseplay"))
		}
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	if opts.Flags != nil {
		for name, key := range flagKeys {
			flag := opts.Flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	cfg := Config{
		APIBaseURL:      strings.TrimRight(v.GetString("api.base_url"), "/"),
		APIToken:        v.GetString("api.token"),
		APITimeout:      v.GetDuration("api.timeout"),
		ViewerID:        v.GetString("viewer.id"),
		DataDir:         v.GetString("data_dir"),
		SurfaceEngine:   strings.ToLower(v.GetString("surface.engine")),
		SampleInterval:  v.GetDuration("surface.sample_interval"),
		SurfaceSpeed:    v.GetFloat64("surface.speed"),
		PluginBinary:    v.GetString("surface.plugin_binary"),
		ExternalURLBase: v.GetString("surface.external_url"),
		LogLevel:        v.GetString("log.level"),
		LogFormat:       v.GetString("log.format"),
		LogFile:         v.GetString("log.file"),
	}
	if cfg.DataDir != "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "courseplay.db")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("api base url is required")
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("data dir is required")
	}
	switch c.SurfaceEngine {
	case "simulated", "plugin", "external":
	default:
		return fmt.Errorf("unknown surface engine %q", c.SurfaceEngine)
	}
	if c.SurfaceEngine == "plugin" && c.PluginBinary == "" {
		return fmt.Errorf("surface.plugin_binary is required for the plugin engine")
	}
	if c.SampleInterval <= 0 {
		return fmt.Errorf("surface.sample_interval must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://127.0.0.1:8080/api")
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("viewer.id", "")
	v.SetDefault("data_dir", defaultDataDir())
	v.SetDefault("surface.engine", "simulated")
	v.SetDefault("surface.sample_interval", 5*time.Second)
	v.SetDefault("surface.speed", 1.0)
	v.SetDefault("surface.plugin_binary", "")
	v.SetDefault("surface.external_url", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
}

func defaultDataDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "courseplay")
	}
	return ".courseplay"
}

// loadDotEnv never overrides variables already present in the environment.
func loadDotEnv(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return fmt.Errorf("stat env file %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}
