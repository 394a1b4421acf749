package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the resolved process configuration. It is built once at startup
// and treated as immutable for the lifetime of the serving process.
type Config struct {
	SecretKey    string
	Debug        bool
	AllowedHosts []string

	Port   string
	DBPath string

	StaticURL    string
	StaticSrc    string
	StaticRoot   string
	MediaURL     string
	MediaRoot    string
	StaticMaxAge int

	RedisAddr string
	LogLevel  string
}

// Misconfiguration errors surfaced at startup.
var (
	ErrMissingSecretKey   = errors.New("SECRET_KEY must be set when DEBUG is false")
	ErrMissingAllowedHost = errors.New("ALLOWED_HOSTS must be set when DEBUG is false")
)

const insecureKeyPrefix = "insecure-"

// envFileVar overrides the .env location, e.g. for tests or containers.
const envFileVar = "MIZUCHI_ENV_FILE"

// Load reads the .env file (if present), applies defaults, and resolves the
// typed configuration. Real environment variables take precedence over .env
// entries. It fails fast on missing or malformed required values.
func Load() (*Config, error) {
	loadDotEnv()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	debug, err := parseDebug(v.GetString("DEBUG"))
	if err != nil {
		return nil, err
	}

	secret := strings.TrimSpace(v.GetString("SECRET_KEY"))
	if secret == "" {
		if !debug {
			return nil, ErrMissingSecretKey
		}
		// Debug-only fallback so a fresh checkout can run without setup.
		secret = insecureKeyPrefix + randomHex(32)
	}

	hosts := SplitHosts(v.GetString("ALLOWED_HOSTS"))
	if len(hosts) == 0 {
		if !debug {
			return nil, ErrMissingAllowedHost
		}
		hosts = []string{"localhost", "127.0.0.1"}
	}

	level := v.GetString("LOG_LEVEL")
	if debug {
		level = "debug"
	}

	cfg := &Config{
		SecretKey:    secret,
		Debug:        debug,
		AllowedHosts: hosts,
		Port:         v.GetString("PORT"),
		DBPath:       v.GetString("DB_PATH"),
		StaticURL:    normalizePrefix(v.GetString("STATIC_URL")),
		StaticSrc:    v.GetString("STATIC_SRC"),
		StaticRoot:   v.GetString("STATIC_ROOT"),
		MediaURL:     normalizePrefix(v.GetString("MEDIA_URL")),
		MediaRoot:    v.GetString("MEDIA_ROOT"),
		StaticMaxAge: v.GetInt("STATIC_MAX_AGE"),
		RedisAddr:    strings.TrimSpace(v.GetString("REDIS_ADDR")),
		LogLevel:     level,
	}
	return cfg, nil
}

// InsecureKey reports whether the secret key is a generated debug fallback.
func (c *Config) InsecureKey() bool {
	return strings.HasPrefix(c.SecretKey, insecureKeyPrefix)
}

func loadDotEnv() {
	if p := strings.TrimSpace(os.Getenv(envFileVar)); p != "" {
		_ = godotenv.Load(p)
		return
	}
	_ = godotenv.Load(".env")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("DEBUG", "False")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_PATH", "mizuchi.db")
	v.SetDefault("STATIC_URL", "/static/")
	v.SetDefault("STATIC_SRC", "static")
	v.SetDefault("STATIC_ROOT", "staticfiles")
	v.SetDefault("MEDIA_URL", "/media/")
	v.SetDefault("MEDIA_ROOT", "media")
	v.SetDefault("STATIC_MAX_AGE", 3600)
	v.SetDefault("LOG_LEVEL", "info")
}

// parseDebug accepts the case-insensitive True/False convention plus the
// usual strconv spellings (1/0/t/f).
func parseDebug(s string) (bool, error) {
	b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return false, fmt.Errorf("invalid DEBUG value %q: expected True or False", s)
	}
	return b, nil
}

// SplitHosts splits a comma-separated host list, trimming each entry and
// dropping empties. Order is preserved.
func SplitHosts(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if h := strings.TrimSpace(p); h != "" {
			out = append(out, h)
		}
	}
	return out
}

// HostAllowed reports whether host matches the allowlist. Patterns follow
// the usual conventions: "*" matches everything, a leading dot matches the
// domain and any subdomain, anything else is an exact case-insensitive
// match. A port suffix on the request host is ignored.
func HostAllowed(host string, allowed []string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	if i := strings.LastIndex(host, ":"); i != -1 && !strings.Contains(host[i:], "]") {
		host = host[:i]
	}
	host = strings.TrimSuffix(host, ".")

	for _, pattern := range allowed {
		pattern = strings.ToLower(pattern)
		switch {
		case pattern == "*":
			return true
		case strings.HasPrefix(pattern, "."):
			if host == pattern[1:] || strings.HasSuffix(host, pattern) {
				return true
			}
		case host == pattern:
			return true
		}
	}
	return false
}

func normalizePrefix(p string) string {
	if p == "" {
		return p
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}

func randomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
