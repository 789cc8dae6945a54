package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cardbill/cardbill/config"
)

func writeAndLoad(t *testing.T, content string) *config.Config {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return cfg
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
server:
  host: "127.0.0.1"
  port: 9090
  read_timeout: 15s

database:
  driver: "sqlite"
  dsn: ":memory:"

api:
  token: "secret123"

render:
  chrome_path: "/usr/bin/chromium"
  timeout: 45s

logging:
  level: "debug"
  format: "console"
`

	cfg := writeAndLoad(t, content)

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Host = %s, want 127.0.0.1", cfg.Server.Host)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("ReadTimeout = %v, want 15s", cfg.Server.ReadTimeout)
	}
	if cfg.Database.DSN != ":memory:" {
		t.Errorf("Database.DSN = %s, want :memory:", cfg.Database.DSN)
	}
	if cfg.API.Token != "secret123" {
		t.Errorf("API.Token = %s, want secret123", cfg.API.Token)
	}
	if cfg.Render.ChromePath != "/usr/bin/chromium" {
		t.Errorf("Render.ChromePath = %s, want /usr/bin/chromium", cfg.Render.ChromePath)
	}
	if cfg.Render.Timeout != 45*time.Second {
		t.Errorf("Render.Timeout = %v, want 45s", cfg.Render.Timeout)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %s, want debug", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("Logging.Format = %s, want console", cfg.Logging.Format)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := writeAndLoad(t, "{}\n")

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("default Host = %s, want 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.WriteTimeout != 120*time.Second {
		t.Errorf("default WriteTimeout = %v, want 120s", cfg.Server.WriteTimeout)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("default Database.Driver = %s, want sqlite", cfg.Database.Driver)
	}
	if cfg.Database.DSN != "cardbill.db" {
		t.Errorf("default Database.DSN = %s, want cardbill.db", cfg.Database.DSN)
	}
	if cfg.Render.Timeout != 30*time.Second {
		t.Errorf("default Render.Timeout = %v, want 30s", cfg.Render.Timeout)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default Logging.Level = %s, want info", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("default Logging.Format = %s, want json", cfg.Logging.Format)
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("default Metrics.Path = %s, want /metrics", cfg.Metrics.Path)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	os.Setenv("TEST_DB_DSN", "/data/test.db")
	defer os.Unsetenv("TEST_DB_DSN")

	content := `
database:
  dsn: "${TEST_DB_DSN}"
`

	cfg := writeAndLoad(t, content)

	if cfg.Database.DSN != "/data/test.db" {
		t.Errorf("Database.DSN = %s, want /data/test.db", cfg.Database.DSN)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	os.Setenv("CARDBILL_SERVER_PORT", "9999")
	os.Setenv("CARDBILL_API_TOKEN", "env-token")
	os.Setenv("CARDBILL_LOG_LEVEL", "warn")
	defer func() {
		os.Unsetenv("CARDBILL_SERVER_PORT")
		os.Unsetenv("CARDBILL_API_TOKEN")
		os.Unsetenv("CARDBILL_LOG_LEVEL")
	}()

	content := `
server:
  port: 8080
api:
  token: "file-token"
`

	cfg := writeAndLoad(t, content)

	if cfg.Server.Port != 9999 {
		t.Errorf("Port = %d, want env override 9999", cfg.Server.Port)
	}
	if cfg.API.Token != "env-token" {
		t.Errorf("API.Token = %s, want env override env-token", cfg.API.Token)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %s, want env override warn", cfg.Logging.Level)
	}
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	content := `
logging:
  level: "verbose"
`

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := config.Load(path); err == nil {
		t.Error("expected error for invalid log level")
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	content := `
server:
  port: 99999
`

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := config.Load(path); err == nil {
		t.Error("expected error for out-of-range port")
	}
}

func TestLoad_InvalidDriver(t *testing.T) {
	content := `
database:
  driver: "postgres"
`

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := config.Load(path); err == nil {
		t.Error("expected error for unsupported database driver")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := config.Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not: valid"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := config.Load(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoadFromEnv(t *testing.T) {
	os.Setenv("CARDBILL_DATABASE_DSN", "/data/cardbill.db")
	os.Setenv("CARDBILL_METRICS_ENABLED", "true")
	defer func() {
		os.Unsetenv("CARDBILL_DATABASE_DSN")
		os.Unsetenv("CARDBILL_METRICS_ENABLED")
	}()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}

	if cfg.Database.DSN != "/data/cardbill.db" {
		t.Errorf("Database.DSN = %s, want /data/cardbill.db", cfg.Database.DSN)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled = false, want true")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default Port = %d, want 8080", cfg.Server.Port)
	}
}

func TestLoadWithFallback(t *testing.T) {
	// Missing file falls back to env-only config.
	cfg, err := config.LoadWithFallback("/nonexistent/config.yaml")
	if err != nil {
		t.Fatalf("LoadWithFallback: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("fallback Port = %d, want 8080", cfg.Server.Port)
	}

	// Existing file wins.
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9191\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err = config.LoadWithFallback(path)
	if err != nil {
		t.Fatalf("LoadWithFallback(file): %v", err)
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("file Port = %d, want 9191", cfg.Server.Port)
	}
}
