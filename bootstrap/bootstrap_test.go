package bootstrap_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cardbill/cardbill/bootstrap"
)

func TestNew_EnvOnly(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "cardbill.db")
	os.Setenv("CARDBILL_DATABASE_DSN", dsn)
	defer os.Unsetenv("CARDBILL_DATABASE_DSN")

	a, err := bootstrap.New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Shutdown()

	if a.DB == nil {
		t.Error("DB not initialized")
	}
	if a.Billing == nil {
		t.Error("billing service not initialized")
	}
	if a.HTTPServer == nil || a.HTTPServer.Addr == "" {
		t.Error("http server not configured")
	}
	if a.Config.Database.DSN != dsn {
		t.Errorf("DSN = %s, want %s", a.Config.Database.DSN, dsn)
	}

	// Migrations applied: the schema_migrations table exists and has rows.
	var count int
	if err := a.DB.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("query migrations: %v", err)
	}
	if count == 0 {
		t.Error("no migrations recorded")
	}
}

func TestNew_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	dsn := filepath.Join(dir, "cardbill.db")
	cfgPath := filepath.Join(dir, "config.yaml")

	content := "database:\n  dsn: " + dsn + "\nserver:\n  port: 9292\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	a, err := bootstrap.New(cfgPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Shutdown()

	if a.HTTPServer.Addr != "0.0.0.0:9292" {
		t.Errorf("Addr = %s, want 0.0.0.0:9292", a.HTTPServer.Addr)
	}
}
