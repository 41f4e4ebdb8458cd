package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output != "json" || cfg.MaxColWidth != 40 {
		t.Fatalf("unexpected output defaults %+v", cfg)
	}
	if cfg.Server.Port != 8080 || !cfg.Server.CORS || cfg.Server.SessionIdle != 30*time.Minute {
		t.Fatalf("unexpected server defaults %+v", cfg.Server)
	}
	if cfg.Yahoo.MaxConcurrency != 8 || cfg.Yahoo.Timeout != 30*time.Second {
		t.Fatalf("unexpected yahoo defaults %+v", cfg.Yahoo)
	}
	if cfg.Log.Level != "info" || cfg.Redis.Prefix != "yqdash" {
		t.Fatalf("unexpected nested defaults %+v %+v", cfg.Log, cfg.Redis)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "yqdash.yaml")
	body := `
symbols: aapl msft
formatted: true
output: table
server:
  port: 9090
  cors: false
  memo_ttl: 90s
log:
  level: debug
`
	if err := os.WriteFile(file, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("YQDASH_SERVER_PORT", "9191")
	t.Setenv("YQDASH_YAHOO_BASE_URL", "http://localhost:1234")

	cfg, err := Load(viper.New(), file)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Symbols != "aapl msft" || !cfg.Formatted || cfg.Output != "table" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Server.Port != 9191 {
		t.Fatalf("env must override file, got port %d", cfg.Server.Port)
	}
	if cfg.Server.CORS {
		t.Fatalf("explicit false must override the default")
	}
	if cfg.Server.MemoTTL != 90*time.Second {
		t.Fatalf("duration not parsed: %v", cfg.Server.MemoTTL)
	}
	if cfg.Yahoo.BaseURL != "http://localhost:1234" {
		t.Fatalf("env-only key not applied: %q", cfg.Yahoo.BaseURL)
	}
	if !cfg.Options().Formatted {
		t.Fatalf("options not derived from config")
	}
}

func TestLoadValidates(t *testing.T) {
	t.Setenv("YQDASH_OUTPUT", "xml")
	if _, err := Load(viper.New(), ""); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
