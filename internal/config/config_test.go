package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %q, expected %q", cfg.Server.Port, "8080")
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Driver = %q, expected %q", cfg.Database.Driver, "sqlite")
	}
	if cfg.Asterisk.Filename != "sip.conf" {
		t.Errorf("Filename = %q, expected %q", cfg.Asterisk.Filename, "sip.conf")
	}
	if cfg.Server.RequestTimeoutSec != 10 {
		t.Errorf("RequestTimeoutSec = %d, expected 10", cfg.Server.RequestTimeoutSec)
	}
}

func TestLoad_PartialFileFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("server:\n  port: \"9090\"\ndatabase:\n  driver: mysql\n  dsn: user:pass@tcp(db:3306)/asterisk\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Port = %q, expected %q", cfg.Server.Port, "9090")
	}
	if cfg.Database.Driver != "mysql" {
		t.Errorf("Driver = %q, expected %q", cfg.Database.Driver, "mysql")
	}
	// unset keys fall back to defaults
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Host = %q, expected default", cfg.Server.Host)
	}
	if cfg.Asterisk.Filename != "sip.conf" {
		t.Errorf("Filename = %q, expected default", cfg.Asterisk.Filename)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "3000")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("AST_FILENAME", "pjsip.conf")
	t.Setenv("REQUEST_TIMEOUT_SEC", "5")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != "3000" {
		t.Errorf("Port = %q, expected %q", cfg.Server.Port, "3000")
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("Driver = %q, expected %q", cfg.Database.Driver, "postgres")
	}
	if cfg.Asterisk.Filename != "pjsip.conf" {
		t.Errorf("Filename = %q, expected %q", cfg.Asterisk.Filename, "pjsip.conf")
	}
	if cfg.Server.RequestTimeoutSec != 5 {
		t.Errorf("RequestTimeoutSec = %d, expected 5", cfg.Server.RequestTimeoutSec)
	}
}

func TestRequestTimeout(t *testing.T) {
	c := ServerConfig{RequestTimeoutSec: 7}
	if got := c.RequestTimeout(); got != 7*time.Second {
		t.Errorf("RequestTimeout = %v, expected 7s", got)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "config.yaml")
	cfg := DefaultConfig()
	cfg.Server.Port = "8181"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Server.Port != "8181" {
		t.Errorf("Port = %q, expected %q", loaded.Server.Port, "8181")
	}
}
