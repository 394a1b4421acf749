package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// setBaseEnv points the .env loader at a missing file so only the variables
// set by the test are visible.
func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv(envFileVar, filepath.Join(t.TempDir(), "missing.env"))
	for _, k := range []string{"SECRET_KEY", "DEBUG", "ALLOWED_HOSTS", "PORT", "DB_PATH", "LOG_LEVEL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("SECRET_KEY", "test-key")
	t.Setenv("ALLOWED_HOSTS", "example.org")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Debug {
		t.Fatal("Debug defaults to false")
	}
	if cfg.Port != "8080" || cfg.DBPath != "mizuchi.db" {
		t.Fatalf("defaults = %q %q", cfg.Port, cfg.DBPath)
	}
	if cfg.StaticURL != "/static/" || cfg.MediaURL != "/media/" {
		t.Fatalf("prefixes = %q %q", cfg.StaticURL, cfg.MediaURL)
	}
	if cfg.StaticMaxAge != 3600 {
		t.Fatalf("max age = %d", cfg.StaticMaxAge)
	}
}

func TestLoad_MissingSecretKeyFailsOutsideDebug(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ALLOWED_HOSTS", "example.org")

	_, err := Load()
	if !errors.Is(err, ErrMissingSecretKey) {
		t.Fatalf("err = %v, want ErrMissingSecretKey", err)
	}
}

func TestLoad_DebugGeneratesInsecureKey(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DEBUG", "True")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.InsecureKey() {
		t.Fatalf("key %q should be flagged insecure", cfg.SecretKey)
	}
	if !strings.HasPrefix(cfg.SecretKey, insecureKeyPrefix) {
		t.Fatalf("key = %q", cfg.SecretKey)
	}
	if !reflect.DeepEqual(cfg.AllowedHosts, []string{"localhost", "127.0.0.1"}) {
		t.Fatalf("hosts = %v", cfg.AllowedHosts)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log level = %q", cfg.LogLevel)
	}
}

func TestLoad_MissingHostsFailsOutsideDebug(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("SECRET_KEY", "test-key")

	_, err := Load()
	if !errors.Is(err, ErrMissingAllowedHost) {
		t.Fatalf("err = %v, want ErrMissingAllowedHost", err)
	}
}

func TestLoad_InvalidDebug(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DEBUG", "maybe")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for DEBUG=maybe")
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	setBaseEnv(t)

	envFile := filepath.Join(t.TempDir(), "test.env")
	content := "SECRET_KEY=from-dotenv\nALLOWED_HOSTS=example.org\nPORT=9000\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv(envFileVar, envFile)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SecretKey != "from-dotenv" || cfg.Port != "9000" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoad_RealEnvWinsOverDotEnv(t *testing.T) {
	setBaseEnv(t)

	envFile := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(envFile, []byte("SECRET_KEY=from-dotenv\nALLOWED_HOSTS=example.org\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv(envFileVar, envFile)
	t.Setenv("SECRET_KEY", "from-environ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SecretKey != "from-environ" {
		t.Fatalf("key = %q, want from-environ", cfg.SecretKey)
	}
}

func TestSplitHosts(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{" , , ", nil},
		{"example.org", []string{"example.org"}},
		{" a.example.org , b.example.org ,", []string{"a.example.org", "b.example.org"}},
		{"b.example.org,a.example.org", []string{"b.example.org", "a.example.org"}},
	}
	for _, tt := range tests {
		got := SplitHosts(tt.in)
		if len(got) == 0 {
			got = nil
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitHosts(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHostAllowed(t *testing.T) {
	tests := []struct {
		host    string
		allowed []string
		want    bool
	}{
		{"example.org", []string{"example.org"}, true},
		{"EXAMPLE.org", []string{"example.org"}, true},
		{"example.org:8000", []string{"example.org"}, true},
		{"example.org.", []string{"example.org"}, true},
		{"other.org", []string{"example.org"}, false},
		{"anything.test", []string{"*"}, true},
		{"sub.example.org", []string{".example.org"}, true},
		{"example.org", []string{".example.org"}, true},
		{"notexample.org", []string{".example.org"}, false},
		{"example.org", nil, false},
	}
	for _, tt := range tests {
		if got := HostAllowed(tt.host, tt.allowed); got != tt.want {
			t.Errorf("HostAllowed(%q, %v) = %v, want %v", tt.host, tt.allowed, got, tt.want)
		}
	}
}

func TestNormalizePrefix(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"static", "/static/"},
		{"/static", "/static/"},
		{"static/", "/static/"},
		{"/static/", "/static/"},
	}
	for _, tt := range tests {
		if got := normalizePrefix(tt.in); got != tt.want {
			t.Errorf("normalizePrefix(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
