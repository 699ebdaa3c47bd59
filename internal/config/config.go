package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/loop"
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/remote"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "REACTOR"

// Default values.
const (
	DefaultAddr            = ":8080"
	DefaultShutdownTimeout = 5 * time.Second
	DefaultNamespace       = "reactor"
	DefaultLogLevel        = "info"
)

// Config is the complete reactor configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Remote    RemoteConfig    `mapstructure:"remote"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Log       LogConfig       `mapstructure:"log"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Loop      LoopConfig      `mapstructure:"loop"`

	// path is the file the config was read from, if any.
	path string
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// RemoteConfig mirrors remote.Config for the settings that can be
// expressed in a file.
type RemoteConfig struct {
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	PingInterval   time.Duration `mapstructure:"ping_interval"`
	SendBuffer     int           `mapstructure:"send_buffer"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
}

// MetricsConfig controls the Prometheus collector.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `mapstructure:"level"`
}

// SchedulerConfig controls the reactive scheduler.
type SchedulerConfig struct {
	MaxFlushPasses int `mapstructure:"max_flush_passes"`
}

// LoopConfig controls the event loop.
type LoopConfig struct {
	QueueSize int `mapstructure:"queue_size"`
}

// New returns a Config with every field at its default.
func New() *Config {
	rc := remote.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Addr:            DefaultAddr,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Remote: RemoteConfig{
			WriteTimeout:   rc.WriteTimeout,
			PongWait:       rc.PongWait,
			PingInterval:   rc.PingInterval,
			SendBuffer:     rc.SendBuffer,
			MaxMessageSize: rc.MaxMessageSize,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
		},
		Log:       LogConfig{Level: DefaultLogLevel},
		Scheduler: SchedulerConfig{MaxFlushPasses: reactive.DefaultMaxFlushPasses},
		Loop:      LoopConfig{QueueSize: loop.DefaultQueueSize},
	}
}

// Load reads configuration from path and the environment.
// An empty path skips the file layer. The file type is taken from the
// extension; .json, .yaml and .yml are accepted.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, New())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, errors.New("C002").
				WithDetail("Config file not found: " + path).
				Wrap(err)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.New("C002").Wrap(err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.New("C002").Wrap(err)
	}
	cfg.path = path

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("remote.write_timeout", d.Remote.WriteTimeout)
	v.SetDefault("remote.pong_wait", d.Remote.PongWait)
	v.SetDefault("remote.ping_interval", d.Remote.PingInterval)
	v.SetDefault("remote.send_buffer", d.Remote.SendBuffer)
	v.SetDefault("remote.max_message_size", d.Remote.MaxMessageSize)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.namespace", d.Metrics.Namespace)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("scheduler.max_flush_passes", d.Scheduler.MaxFlushPasses)
	v.SetDefault("loop.queue_size", d.Loop.QueueSize)
}

// Path returns the file the config was loaded from, or "".
func (c *Config) Path() string {
	return c.path
}

// Validate checks that every value is in range.
func (c *Config) Validate() error {
	switch {
	case c.Server.Addr == "":
		return invalid("server.addr must not be empty")
	case c.Server.ShutdownTimeout <= 0:
		return invalid("server.shutdown_timeout must be positive")
	case c.Remote.WriteTimeout <= 0:
		return invalid("remote.write_timeout must be positive")
	case c.Remote.PongWait <= 0:
		return invalid("remote.pong_wait must be positive")
	case c.Remote.PingInterval <= 0 || c.Remote.PingInterval >= c.Remote.PongWait:
		return invalid("remote.ping_interval must be positive and below remote.pong_wait")
	case c.Remote.SendBuffer < 1:
		return invalid("remote.send_buffer must be at least 1")
	case c.Remote.MaxMessageSize < 1:
		return invalid("remote.max_message_size must be at least 1")
	case c.Scheduler.MaxFlushPasses < 1:
		return invalid("scheduler.max_flush_passes must be at least 1")
	case c.Loop.QueueSize < 1:
		return invalid("loop.queue_size must be at least 1")
	}
	if _, ok := parseLevel(c.Log.Level); !ok {
		return invalid("log.level must be one of debug, info, warn, error; got " + c.Log.Level)
	}
	return nil
}

func invalid(detail string) error {
	return errors.New("C001").WithDetail(detail)
}

// RemoteConfig converts the remote section into a remote.Config.
func (c *Config) RemoteConfig() remote.Config {
	return remote.Config{
		WriteTimeout:   c.Remote.WriteTimeout,
		PongWait:       c.Remote.PongWait,
		PingInterval:   c.Remote.PingInterval,
		SendBuffer:     c.Remote.SendBuffer,
		MaxMessageSize: c.Remote.MaxMessageSize,
	}
}

// Level returns the configured slog level. Unknown names yield info.
func (c *Config) Level() slog.Level {
	l, _ := parseLevel(c.Log.Level)
	return l
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "", "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}
