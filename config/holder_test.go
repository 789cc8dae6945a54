package config_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/cardbill/cardbill/adapters/metrics"
	"github.com/cardbill/cardbill/config"
)

func validConfig() string {
	return `
server:
  port: 8080
database:
  dsn: ":memory:"
logging:
  level: "info"
`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestHolder_Get(t *testing.T) {
	path := writeConfig(t, validConfig())

	h, err := config.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder error: %v", err)
	}
	defer h.Stop()

	got := h.Get()
	if got == nil {
		t.Fatal("Get returned nil")
	}
	if got.Database.DSN != ":memory:" {
		t.Errorf("Database.DSN = %s, want :memory:", got.Database.DSN)
	}
}

func TestHolder_Reload(t *testing.T) {
	path := writeConfig(t, validConfig())

	h, err := config.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder error: %v", err)
	}
	defer h.Stop()

	updated := `
server:
  port: 8080
database:
  dsn: ":memory:"
logging:
  level: "debug"
api:
  token: "rotated"
`
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	if err := h.Reload(); err != nil {
		t.Fatalf("Reload error: %v", err)
	}

	got := h.Get()
	if got.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %s, want debug after reload", got.Logging.Level)
	}
	if got.API.Token != "rotated" {
		t.Errorf("API.Token = %s, want rotated after reload", got.API.Token)
	}
}

func TestHolder_ReloadInvalidKeepsOld(t *testing.T) {
	path := writeConfig(t, validConfig())

	h, err := config.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder error: %v", err)
	}
	defer h.Stop()

	if err := os.WriteFile(path, []byte("logging:\n  level: bogus\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	if err := h.Reload(); err == nil {
		t.Fatal("expected reload error for invalid config")
	}

	got := h.Get()
	if got.Logging.Level != "info" {
		t.Errorf("Logging.Level = %s, want old value info", got.Logging.Level)
	}
}

func TestHolder_ReloadMetrics(t *testing.T) {
	path := writeConfig(t, validConfig())

	h, err := config.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder error: %v", err)
	}
	defer h.Stop()

	reg := prometheus.NewRegistry()
	h.SetMetrics(metrics.NewWithRegistry(reg))

	if err := h.Reload(); err != nil {
		t.Fatalf("Reload error: %v", err)
	}

	if err := os.WriteFile(path, []byte("logging:\n  level: bogus\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	if err := h.Reload(); err == nil {
		t.Fatal("expected reload error")
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}
	found := map[string]bool{}
	for _, f := range families {
		found[f.GetName()] = true
	}
	for _, name := range []string{
		"cardbill_config_reloads_total",
		"cardbill_config_reload_errors_total",
		"cardbill_config_last_reload_timestamp_seconds",
	} {
		if !found[name] {
			t.Errorf("metric family %s not gathered", name)
		}
	}
}

func TestHolder_OnChange(t *testing.T) {
	path := writeConfig(t, validConfig())

	h, err := config.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder error: %v", err)
	}
	defer h.Stop()

	var mu sync.Mutex
	var gotLevel string
	h.OnChange(func(c *config.Config) {
		mu.Lock()
		gotLevel = c.Logging.Level
		mu.Unlock()
	})

	if err := os.WriteFile(path, []byte("logging:\n  level: warn\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	if err := h.Reload(); err != nil {
		t.Fatalf("Reload error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if gotLevel != "warn" {
		t.Errorf("OnChange level = %s, want warn", gotLevel)
	}
}

func TestHolder_WatchFile(t *testing.T) {
	path := writeConfig(t, validConfig())

	h, err := config.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder error: %v", err)
	}
	defer h.Stop()

	reloaded := make(chan struct{}, 1)
	h.OnChange(func(*config.Config) {
		select {
		case reloaded <- struct{}{}:
		default:
		}
	})

	if err := h.WatchFile(); err != nil {
		t.Fatalf("WatchFile error: %v", err)
	}

	if err := os.WriteFile(path, []byte("logging:\n  level: error\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for file watch reload")
	}

	if got := h.Get().Logging.Level; got != "error" {
		t.Errorf("Logging.Level = %s, want error", got)
	}
}

func TestReloadableFields(t *testing.T) {
	fields := config.ReloadableFields()
	if len(fields) == 0 {
		t.Fatal("ReloadableFields returned no fields")
	}
	has := func(want string) bool {
		for _, f := range fields {
			if f == want {
				return true
			}
		}
		return false
	}
	if !has("logging.level") {
		t.Error("logging.level should be reloadable")
	}
	for _, f := range config.NonReloadableFields() {
		if has(f) {
			t.Errorf("field %s listed as both reloadable and non-reloadable", f)
		}
	}
}
