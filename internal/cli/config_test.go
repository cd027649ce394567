package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.toml", `
[render]
show_labels = false
color_by_type = true
font_size = 14

[cache]
redis_addr = "localhost:6379"
namespace = "staging"
ttl = "24h"

[server]
addr = ":9090"
session_ttl = "90m"
`)

	cfg, found, err := LoadConfig(path, true)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if !found {
		t.Error("found = false for existing file")
	}
	if cfg.Render.ShowLabels {
		t.Error("render.show_labels not applied")
	}
	if !cfg.Render.ShowSections {
		t.Error("unset render.show_sections lost its default")
	}
	if cfg.Render.FontSize != 14 {
		t.Errorf("font_size = %v, want 14", cfg.Render.FontSize)
	}
	if cfg.Cache.Namespace != "staging" {
		t.Errorf("Cache.Namespace = %q, want staging", cfg.Cache.Namespace)
	}
	if cfg.Cache.RedisAddr != "localhost:6379" || cfg.Cache.TTL.Duration != 24*time.Hour {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Server.Addr != ":9090" || cfg.Server.SessionTTL.Duration != 90*time.Minute {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Server.MaxUpload != defaultMaxUpload {
		t.Errorf("max_upload = %d, want default", cfg.Server.MaxUpload)
	}

	opts := cfg.RenderOptions()
	if opts.ShowLabels || !opts.ColorByType || opts.FontSize != 14 {
		t.Errorf("RenderOptions() = %+v", opts)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		content  string
		required bool
		wantErr  string
	}{
		{"unknown key", "[render]\nshow_lables = true\n", true, "unknown keys"},
		{"bad duration", "[cache]\nttl = \"soon\"\n", true, "duration"},
		{"negative font", "[render]\nfont_size = -2\n", true, "font_size"},
		{"syntax", "[render\n", true, "config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, strings.ReplaceAll(tt.name, " ", "_")+".toml", tt.content)
			_, _, err := LoadConfig(path, tt.required)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadConfig() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfigMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")

	cfg, found, err := LoadConfig(path, false)
	if err != nil || found {
		t.Fatalf("optional missing config: found=%v err=%v", found, err)
	}
	if cfg.Server.Addr != defaultAddr {
		t.Errorf("defaults not returned: %+v", cfg.Server)
	}

	if _, _, err := LoadConfig(path, true); err == nil {
		t.Error("required missing config did not error")
	}
}
