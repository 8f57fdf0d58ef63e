package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clonehost.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
base_url: https://bots.example.com
master_token: "12345:AAbbCCdd"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Bind != "127.0.0.1:8080" {
		t.Errorf("Bind = %q, want default", cfg.Bind)
	}
	if cfg.LinkBase != "https://t.me" {
		t.Errorf("LinkBase = %q, want https://t.me", cfg.LinkBase)
	}
	if cfg.Telegram.APIURL != "https://api.telegram.org" {
		t.Errorf("Telegram.APIURL = %q, want default", cfg.Telegram.APIURL)
	}
	if cfg.Telegram.Timeout != 30*time.Second {
		t.Errorf("Telegram.Timeout = %s, want 30s", cfg.Telegram.Timeout)
	}
	if cfg.Database.Path != "clonehost.db" {
		t.Errorf("Database.Path = %q, want default", cfg.Database.Path)
	}
	if cfg.Database.WAL == nil || !*cfg.Database.WAL {
		t.Error("Database.WAL should default to true")
	}
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("CLONEHOST_TEST_TOKEN", "98765:ZZyyXXww")

	path := writeConfig(t, `
base_url: ${CLONEHOST_TEST_BASE:-https://fallback.example.com}
master_token: ${CLONEHOST_TEST_TOKEN}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MasterToken != "98765:ZZyyXXww" {
		t.Errorf("MasterToken = %q, want env value", cfg.MasterToken)
	}
	if cfg.BaseURL != "https://fallback.example.com" {
		t.Errorf("BaseURL = %q, want default fallback", cfg.BaseURL)
	}
}

func TestLoad_UnresolvedVariable(t *testing.T) {
	path := writeConfig(t, `
base_url: ${CLONEHOST_TEST_MISSING_VAR}
master_token: "12345:AAbbCCdd"
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() should fail on unresolved variable")
	}
	if !strings.Contains(err.Error(), "CLONEHOST_TEST_MISSING_VAR") {
		t.Errorf("error should name the unresolved variable, got %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Load() should fail on missing file")
	}
}
