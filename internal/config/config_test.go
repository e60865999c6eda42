package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default invalid: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:8080" || cfg.Server.BasePath != "/v0" {
		t.Fatalf("unexpected server defaults %+v", cfg.Server)
	}
	if cfg.Auth.TokenTTL != 12*time.Hour || cfg.Assistant.Model != "gemini-2.5-flash" {
		t.Fatalf("unexpected defaults %+v %+v", cfg.Auth, cfg.Assistant)
	}
}

func TestFromYAMLKeepsDefaults(t *testing.T) {
	cfg, err := FromYAML([]byte("log:\n  level: debug\njournal:\n  enabled: true\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Log.Level != "debug" || !cfg.Journal.Enabled {
		t.Fatalf("overrides lost: %+v", cfg)
	}
	if cfg.Server.Addr != "127.0.0.1:8080" || cfg.Dashboard.UrgentLimit != 5 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestValidateErrors(t *testing.T) {
	cases := []struct {
		yaml string
		want string
	}{
		{"server:\n  addr: \"\"\n", "server.addr"},
		{"server:\n  base_path: v0\n", "base_path"},
		{"log:\n  level: loud\n", "log.level"},
		{"log:\n  format: xml\n", "log.format"},
		{"assistant:\n  requests_per_minute: -1\n", "requests_per_minute"},
		{"dashboard:\n  urgent_limit: -2\n", "dashboard"},
		{"server: [", "invalid config yaml"},
	}
	for _, tc := range cases {
		_, err := FromYAML([]byte(tc.yaml))
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%q: expected error containing %q, got %v", tc.yaml, tc.want, err)
		}
	}
}

func TestLoadOptional(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadOptional(dir)
	if err != nil || cfg == nil || cfg.Server.Addr == "" {
		t.Fatalf("expected defaults, got %+v %v", cfg, err)
	}
	if err := os.WriteFile(Path(dir), []byte("server:\n  addr: 0.0.0.0:9000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadOptional(dir)
	if err != nil || cfg.Server.Addr != "0.0.0.0:9000" {
		t.Fatalf("expected file value, got %+v %v", cfg, err)
	}
	if err := os.WriteFile(Path(dir), []byte("log:\n  format: xml\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadOptional(dir); err == nil {
		t.Fatalf("invalid file should fail")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := LoadDotEnv(dir); err != nil {
		t.Fatalf("missing .env should be ignored: %v", err)
	}
	key := "RCADESK_TEST_DOTENV_KEY"
	t.Setenv(key, "")
	os.Unsetenv(key)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(key+"=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := LoadDotEnv(dir); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := os.Getenv(key); got != "from-file" {
		t.Fatalf("expected from-file, got %q", got)
	}
	cfg := Default()
	cfg.Assistant.APIKeyEnv = key
	if cfg.APIKey() != "from-file" {
		t.Fatalf("APIKey did not read the configured variable")
	}
}
