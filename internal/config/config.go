// Package config provides layered configuration loading.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultBaseURL is the backend used when nothing else is configured.
const DefaultBaseURL = "http://localhost:3000"

// Config holds the resolved configuration.
type Config struct {
	// Backend settings
	BaseURL     string
	OperatorKey string
	Timeout     time.Duration

	// Output settings
	Format   string
	LogLevel string
	Stats    bool

	// Session storage
	SessionDir string

	// Sources tracks where each value came from.
	Sources map[string]string
}

// fileConfig mirrors the on-disk YAML layout. Pointers distinguish
// "unset" from zero values so layers only override what they name.
type fileConfig struct {
	BaseURL     *string `yaml:"base_url"`
	OperatorKey *string `yaml:"operator_key"`
	Timeout     *string `yaml:"timeout"`
	Format      *string `yaml:"format"`
	LogLevel    *string `yaml:"log_level"`
	Stats       *bool   `yaml:"stats"`
	SessionDir  *string `yaml:"session_dir"`
}

// Source indicates where a config value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceSystem  Source = "system"
	SourceGlobal  Source = "global"
	SourceEnv     Source = "env"
	SourceFlag    Source = "flag"
)

// FlagOverrides holds command-line flag values. Zero values mean "not given".
type FlagOverrides struct {
	BaseURL     string
	OperatorKey string
	Timeout     string
	Format      string
	Verbose     int
	Stats       bool
}

// Default returns the default configuration.
func Default() *Config {
	cfg := &Config{
		BaseURL:    DefaultBaseURL,
		Format:     "auto",
		LogLevel:   "warn",
		SessionDir: GlobalConfigDir(),
		Sources:    make(map[string]string),
	}
	for _, key := range []string{"base_url", "operator_key", "timeout", "format", "log_level", "stats", "session_dir"} {
		cfg.Sources[key] = string(SourceDefault)
	}
	return cfg
}

// Load loads configuration from all sources with proper precedence.
// Precedence: flags > env > global > system > defaults
func Load(overrides FlagOverrides) (*Config, error) {
	cfg := Default()

	loadFromFile(cfg, systemConfigPath(), SourceSystem)
	loadFromFile(cfg, globalConfigPath(), SourceGlobal)

	if err := LoadFromEnv(cfg); err != nil {
		return nil, err
	}
	if err := ApplyOverrides(cfg, overrides); err != nil {
		return nil, err
	}

	cfg.BaseURL = NormalizeBaseURL(cfg.BaseURL)
	return cfg, nil
}

func loadFromFile(cfg *Config, path string, source Source) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: Path is from trusted config locations
	if err != nil {
		return
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		fmt.Fprintf(os.Stderr, "warning: skipping malformed config at %s: %v\n", path, err)
		return
	}

	set := func(key string, dst *string, v *string) {
		if v != nil && *v != "" {
			*dst = *v
			cfg.Sources[key] = string(source)
		}
	}
	set("base_url", &cfg.BaseURL, fc.BaseURL)
	set("operator_key", &cfg.OperatorKey, fc.OperatorKey)
	set("format", &cfg.Format, fc.Format)
	set("log_level", &cfg.LogLevel, fc.LogLevel)
	set("session_dir", &cfg.SessionDir, fc.SessionDir)

	if fc.Timeout != nil {
		d, err := time.ParseDuration(*fc.Timeout)
		if err != nil || d < 0 {
			fmt.Fprintf(os.Stderr, "warning: ignoring invalid timeout %q in %s\n", *fc.Timeout, path)
		} else {
			cfg.Timeout = d
			cfg.Sources["timeout"] = string(source)
		}
	}
	if fc.Stats != nil {
		cfg.Stats = *fc.Stats
		cfg.Sources["stats"] = string(source)
	}
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv(cfg *Config) error {
	if v := os.Getenv("RINGLIFY_BACKEND_URL"); v != "" {
		cfg.BaseURL = v
		cfg.Sources["base_url"] = string(SourceEnv)
	}
	if v := os.Getenv("RINGLIFY_ADMIN_API_KEY"); v != "" {
		cfg.OperatorKey = v
		cfg.Sources["operator_key"] = string(SourceEnv)
	}
	if v := os.Getenv("RINGLIFY_TIMEOUT"); v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return fmt.Errorf("RINGLIFY_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
		cfg.Sources["timeout"] = string(SourceEnv)
	}
	if v := os.Getenv("RINGLIFY_FORMAT"); v != "" {
		cfg.Format = v
		cfg.Sources["format"] = string(SourceEnv)
	}
	if v := os.Getenv("RINGLIFY_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
		cfg.Sources["log_level"] = string(SourceEnv)
	}
	if v := os.Getenv("RINGLIFY_STATS"); v != "" {
		if b, ok := parseEnvBool(v); ok {
			cfg.Stats = b
			cfg.Sources["stats"] = string(SourceEnv)
		}
	}
	if v := os.Getenv("RINGLIFY_SESSION_DIR"); v != "" {
		cfg.SessionDir = v
		cfg.Sources["session_dir"] = string(SourceEnv)
	}
	return nil
}

// parseEnvBool parses a boolean environment variable strictly.
// Unrecognized values report ok=false and are ignored.
func parseEnvBool(v string) (bool, bool) {
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		return true, true
	case "false", "0", "no":
		return false, true
	default:
		return false, false
	}
}

// parseTimeout accepts a Go duration ("30s") or a bare number of seconds.
func parseTimeout(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0, errors.New("timeout must not be negative")
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q", v)
	}
	if d < 0 {
		return 0, errors.New("timeout must not be negative")
	}
	return d, nil
}

// ApplyOverrides applies non-empty flag overrides to cfg.
func ApplyOverrides(cfg *Config, o FlagOverrides) error {
	if o.BaseURL != "" {
		cfg.BaseURL = o.BaseURL
		cfg.Sources["base_url"] = string(SourceFlag)
	}
	if o.OperatorKey != "" {
		cfg.OperatorKey = o.OperatorKey
		cfg.Sources["operator_key"] = string(SourceFlag)
	}
	if o.Timeout != "" {
		d, err := parseTimeout(o.Timeout)
		if err != nil {
			return fmt.Errorf("--timeout: %w", err)
		}
		cfg.Timeout = d
		cfg.Sources["timeout"] = string(SourceFlag)
	}
	if o.Format != "" {
		cfg.Format = o.Format
		cfg.Sources["format"] = string(SourceFlag)
	}
	if o.Verbose > 0 {
		cfg.LogLevel = "info"
		if o.Verbose > 1 {
			cfg.LogLevel = "debug"
		}
		cfg.Sources["log_level"] = string(SourceFlag)
	}
	if o.Stats {
		cfg.Stats = true
		cfg.Sources["stats"] = string(SourceFlag)
	}
	return nil
}

// Entry is one resolved setting, as shown by `config show`.
type Entry struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Entries returns every setting with its source. Secrets are redacted.
func (cfg *Config) Entries() []Entry {
	timeout := "none"
	if cfg.Timeout > 0 {
		timeout = cfg.Timeout.String()
	}
	return []Entry{
		{"base_url", cfg.BaseURL, cfg.Sources["base_url"]},
		{"operator_key", Redact(cfg.OperatorKey), cfg.Sources["operator_key"]},
		{"timeout", timeout, cfg.Sources["timeout"]},
		{"format", cfg.Format, cfg.Sources["format"]},
		{"log_level", cfg.LogLevel, cfg.Sources["log_level"]},
		{"stats", strconv.FormatBool(cfg.Stats), cfg.Sources["stats"]},
		{"session_dir", cfg.SessionDir, cfg.Sources["session_dir"]},
	}
}

// Redact hides all but the last four characters of a secret.
func Redact(secret string) string {
	switch {
	case secret == "":
		return ""
	case len(secret) <= 4:
		return "****"
	default:
		return "****" + secret[len(secret)-4:]
	}
}

// Path helpers

func systemConfigPath() string {
	return "/etc/ringlify/config.yaml"
}

func globalConfigPath() string {
	return filepath.Join(GlobalConfigDir(), "config.yaml")
}

// GlobalConfigDir returns the global config directory path.
func GlobalConfigDir() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "ringlify")
}

// NormalizeBaseURL turns a bare host into a URL and drops trailing slashes.
// Loopback hosts get http://, everything else https://.
func NormalizeBaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		if isLoopback(raw) {
			raw = "http://" + raw
		} else {
			raw = "https://" + raw
		}
	}
	return strings.TrimRight(raw, "/")
}

// isLoopback reports whether host (with optional port) names the local machine.
func isLoopback(host string) bool {
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}
	if strings.HasPrefix(host, "[") {
		return strings.HasPrefix(host, "[::1]")
	}
	if i := strings.LastIndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return host == "localhost" || strings.HasSuffix(host, ".localhost") || host == "127.0.0.1"
}
