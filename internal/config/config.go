// Package config loads the service configuration.
package config

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/txn2/memsession/pkg/session"
)

// Config holds the complete service configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Session SessionConfig `yaml:"session"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Address           string        `yaml:"address"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// SessionConfig configures the session store.
type SessionConfig struct {
	TTL time.Duration `yaml:"ttl"`

	// CleanupInterval is how often expired entries are swept. Zero means
	// the one minute default; set DisableCleanup to turn the sweeper off.
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
	DisableCleanup  bool          `yaml:"disable_cleanup"`

	Cookie CookieConfig `yaml:"cookie"`
}

// CookieConfig configures the identifier cookie attributes. The cookie name
// itself is fixed.
type CookieConfig struct {
	Path     string `yaml:"path"`
	Domain   string `yaml:"domain"`
	Secure   bool   `yaml:"secure"`
	SameSite string `yaml:"same_site"` // "lax", "strict", "none", or empty
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "text", "json"
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{
		Metrics: MetricsConfig{Enabled: true},
	}
	applyDefaults(cfg)
	return cfg
}

// Load loads configuration from a file.
// The path is expected to come from command line arguments, controlled by the administrator.
func Load(path string) (*Config, error) {
	// #nosec G304 -- path is from CLI args, controlled by admin
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables
	data = []byte(expandEnvVars(string(data)))

	cfg := Config{
		Metrics: MetricsConfig{Enabled: true},
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

// expandEnvVars expands ${VAR} patterns in the string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// applyDefaults applies default values to the config.
func applyDefaults(cfg *Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ReadHeaderTimeout == 0 {
		cfg.Server.ReadHeaderTimeout = 5 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = session.DefaultTTL
	}
	if cfg.Session.CleanupInterval == 0 {
		cfg.Session.CleanupInterval = time.Minute
	}
	if cfg.Session.Cookie.Path == "" {
		cfg.Session.Cookie.Path = "/"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []string

	if c.Session.TTL < 0 {
		errs = append(errs, "session.ttl must not be negative")
	}
	if c.Session.CleanupInterval < 0 {
		errs = append(errs, "session.cleanup_interval must not be negative")
	}
	if _, err := parseSameSite(c.Session.Cookie.SameSite); err != nil {
		errs = append(errs, err.Error())
	}
	if strings.EqualFold(c.Session.Cookie.SameSite, "none") && !c.Session.Cookie.Secure {
		errs = append(errs, "session.cookie.secure is required when same_site is none")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		errs = append(errs, "metrics.path must start with /")
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Sprintf("log.format %q is not one of text, json", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// CookieOptions converts the cookie section for the session store.
func (c *Config) CookieOptions() session.CookieOptions {
	sameSite, _ := parseSameSite(c.Session.Cookie.SameSite)
	return session.CookieOptions{
		Path:     c.Session.Cookie.Path,
		Domain:   c.Session.Cookie.Domain,
		Secure:   c.Session.Cookie.Secure,
		SameSite: sameSite,
	}
}

// LogLevel returns the configured slog level.
func (c *Config) LogLevel() slog.Level {
	level, _ := parseLevel(c.Log.Level)
	return level
}

func parseSameSite(s string) (http.SameSite, error) {
	switch strings.ToLower(s) {
	case "":
		return http.SameSiteDefaultMode, nil
	case "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return http.SameSiteDefaultMode, fmt.Errorf("session.cookie.same_site %q is not one of lax, strict, none", s)
	}
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level %q is invalid", s)
	}
	return level, nil
}
