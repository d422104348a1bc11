package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port                int     `envconfig:"PORT" default:"8080"`
	AllowedOrigins      string  `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	JWTSecret           string  `envconfig:"JWT_SECRET" default:"dev-secret-change-in-production"`
	ControlPasswordHash string  `envconfig:"CONTROL_PASSWORD_HASH"`
	FfmpegPath          string  `envconfig:"FFMPEG_PATH" default:"ffmpeg"`
	FPS                 int     `envconfig:"FPS" default:"30"`
	RotationStep        float32 `envconfig:"ROTATION_STEP" default:"2"`
	ViewStep            float32 `envconfig:"VIEW_STEP" default:"1"`
	PosesFile           string  `envconfig:"POSES_FILE"`
	LogLevel            string  `envconfig:"LOG_LEVEL" default:"info"`
	SnapshotWidth       int     `envconfig:"SNAPSHOT_WIDTH" default:"512"`
	SnapshotHeight      int     `envconfig:"SNAPSHOT_HEIGHT" default:"512"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.FPS <= 0 || c.FPS > 120 {
		return fmt.Errorf("FPS must be in 1..120, got %d", c.FPS)
	}
	if c.RotationStep <= 0 || c.ViewStep <= 0 {
		return fmt.Errorf("rotation and view steps must be positive")
	}
	if c.SnapshotWidth <= 0 || c.SnapshotHeight <= 0 {
		return fmt.Errorf("snapshot size must be positive, got %dx%d", c.SnapshotWidth, c.SnapshotHeight)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Origins splits ALLOWED_ORIGINS.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// OriginHosts returns the origins without their scheme, the form websocket
// origin patterns match against.
func (c *Config) OriginHosts() []string {
	origins := c.Origins()
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if _, host, ok := strings.Cut(o, "://"); ok {
			o = host
		}
		out = append(out, o)
	}
	return out
}

// Level returns the configured slog level, info if unparseable.
func (c *Config) Level() slog.Level {
	l, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return l, nil
}
