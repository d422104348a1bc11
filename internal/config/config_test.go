package config

import (
	"log/slog"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 || cfg.FPS != 30 || cfg.RotationStep != 2 || cfg.ViewStep != 1 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.ControlPasswordHash != "" || cfg.PosesFile != "" {
		t.Errorf("optional fields set: %+v", cfg)
	}
	if len(cfg.Origins()) != 2 {
		t.Errorf("Origins() = %v", cfg.Origins())
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("FPS", "12")
	t.Setenv("ROTATION_STEP", "5")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ALLOWED_ORIGINS", " http://a , ,http://b")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9090 || cfg.FPS != 12 || cfg.RotationStep != 5 {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.Level() != slog.LevelDebug {
		t.Errorf("Level() = %v, want debug", cfg.Level())
	}
	if got := cfg.Origins(); len(got) != 2 || got[0] != "http://a" || got[1] != "http://b" {
		t.Errorf("Origins() = %q", got)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"FPS", "0"},
		{"FPS", "fast"},
		{"VIEW_STEP", "-1"},
		{"SNAPSHOT_WIDTH", "0"},
		{"LOG_LEVEL", "loud"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestOriginHosts(t *testing.T) {
	cfg := Config{AllowedOrigins: "http://localhost:5173, https://spider.example.com,*"}
	got := cfg.OriginHosts()
	want := []string{"localhost:5173", "spider.example.com", "*"}
	if len(got) != len(want) {
		t.Fatalf("OriginHosts() = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("OriginHosts()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
