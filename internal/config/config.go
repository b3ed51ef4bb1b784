package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/yads-project/yads/internal/credentials"
)

type Environment string

const (
	EnvLocal      Environment = "local"
	EnvProduction Environment = "production"
	EnvTest       Environment = "test"
)

const (
	insecureSecretKey = "A_NOT_SO_SAFE_DEFAULT_KEY"
	testSecretKey     = "A_NOT_SO_SECRET_DEFAULT_KEY"
	secretKeyName     = "secret_key"
)

var ErrMissingSetting = errors.New("config: missing required setting")

type Config struct {
	Environment Environment `json:"environment"`
	Debug       bool        `json:"debug"`
	UseVite     bool        `json:"use_vite"`
	ViteURL     string      `json:"vite_url"`

	SecretKey   string `json:"-"`
	DatabaseURL string `json:"database_url"`

	AllowedHosts       []string `json:"allowed_hosts"`
	InternalIPs        []string `json:"internal_ips"`
	CSRFTrustedOrigins []string `json:"csrf_trusted_origins"`

	AdminURL      string `json:"admin_url"`
	AdminPassword string `json:"-"`
	ListenAddr    string `json:"listen_addr"`

	StaticRoot string `json:"static_root"`
	StaticURL  string `json:"static_url"`
	MediaRoot  string `json:"media_root"`
	MediaURL   string `json:"media_url"`

	LogLevel      string `json:"log_level"`
	LogFormat     string `json:"log_format"`
	ManifestRetry bool   `json:"manifest_retry"`

	Security Security `json:"security"`
}

// Security holds the production hardening switches.
type Security struct {
	SecureCookies         bool `json:"secure_cookies"`
	TrustForwardedProto   bool `json:"trust_forwarded_proto"`
	HSTSSeconds           int  `json:"hsts_seconds"`
	HSTSIncludeSubdomains bool `json:"hsts_include_subdomains"`
	HSTSPreload           bool `json:"hsts_preload"`
}

type LoadOptions struct {
	// EnvFile is read into the environment without overriding variables
	// that are already set. A missing file is ignored.
	EnvFile string
	// ConfigFile is an optional JSON file applied before the environment.
	ConfigFile string
	Logger     *slog.Logger
}

func Default() Config {
	return Config{
		Environment: EnvLocal,
		ViteURL:     "http://localhost:5173",
		AdminURL:    "admin/",
		ListenAddr:  "127.0.0.1:8000",
		StaticRoot:  "static",
		StaticURL:   "/static/",
		MediaRoot:   "media",
		MediaURL:    "/media/",
		LogLevel:    "info",
		LogFormat:   "text",
	}
}

func Load(opts LoadOptions) (*Config, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cfg := Default()

	if opts.ConfigFile != "" {
		data, err := os.ReadFile(opts.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", opts.ConfigFile, err)
		}
	}

	if opts.EnvFile != "" {
		if _, err := os.Stat(opts.EnvFile); err == nil {
			if err := godotenv.Load(opts.EnvFile); err != nil {
				return nil, fmt.Errorf("load env file %s: %w", opts.EnvFile, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat env file: %w", err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}

	cfg.applyProfile()

	if err := cfg.resolveSecretKey(logger); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Environment {
	case EnvLocal, EnvProduction, EnvTest:
	default:
		return fmt.Errorf("config: unknown environment %q", c.Environment)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("%w: DATABASE_URL", ErrMissingSetting)
	}
	if c.SecretKey == "" {
		return fmt.Errorf("%w: SECRET_KEY", ErrMissingSetting)
	}
	if c.AdminPath() == "/" {
		return fmt.Errorf("config: ADMIN_URL must not be the site root")
	}
	if !strings.HasPrefix(c.StaticURL, "/") && !strings.Contains(c.StaticURL, "://") {
		return fmt.Errorf("config: STATIC_URL %q must be absolute", c.StaticURL)
	}
	return nil
}

// DevServer reports whether assets come from the vite dev server.
func (c *Config) DevServer() bool {
	return c.Debug && c.UseVite
}

// AdminPath is the admin mount as a router pattern, e.g. "/admin".
func (c *Config) AdminPath() string {
	return "/" + strings.Trim(c.AdminURL, "/")
}

func (c *Config) applyProfile() {
	switch c.Environment {
	case EnvLocal:
		c.AllowedHosts = appendMissing(c.AllowedHosts, "localhost", "0.0.0.0", "127.0.0.1", "yads.local")
	case EnvProduction:
		c.Debug = false
		c.Security = Security{
			SecureCookies:         true,
			TrustForwardedProto:   true,
			HSTSSeconds:           60,
			HSTSIncludeSubdomains: true,
			HSTSPreload:           true,
		}
	case EnvTest:
		if c.SecretKey == "" {
			c.SecretKey = testSecretKey
		}
		if c.DatabaseURL == "" {
			c.DatabaseURL = "memory://"
		}
	}
}

func (c *Config) resolveSecretKey(logger *slog.Logger) error {
	if c.SecretKey != "" || !c.Debug {
		return nil
	}
	key, err := credentials.EnsureAppSecret(secretKeyName)
	if err != nil {
		logger.Warn("keyring unavailable, using insecure development secret key", "err", err)
		c.SecretKey = insecureSecretKey
		return nil
	}
	c.SecretKey = key
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		cfg.Environment = Environment(strings.ToLower(v))
	}
	if v := os.Getenv("VITE_URL"); v != "" {
		cfg.ViteURL = v
	}
	if v := os.Getenv("SECRET_KEY"); v != "" {
		cfg.SecretKey = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("ADMIN_URL"); v != "" {
		cfg.AdminURL = v
	}
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		cfg.AdminPassword = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("STATIC_ROOT"); v != "" {
		cfg.StaticRoot = v
	}
	if v := os.Getenv("STATIC_URL"); v != "" {
		cfg.StaticURL = v
	}
	if v := os.Getenv("MEDIA_ROOT"); v != "" {
		cfg.MediaRoot = v
	}
	if v := os.Getenv("MEDIA_URL"); v != "" {
		cfg.MediaURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"DEBUG", &cfg.Debug},
		{"USE_VITE", &cfg.UseVite},
		{"MANIFEST_RETRY", &cfg.ManifestRetry},
	}
	for _, b := range bools {
		v := os.Getenv(b.name)
		if v == "" {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", b.name, err)
		}
		*b.dst = parsed
	}

	lists := []struct {
		name string
		dst  *[]string
	}{
		{"EXTRA_ALLOWED_HOSTS", &cfg.AllowedHosts},
		{"INTERNAL_IPS", &cfg.InternalIPs},
		{"CSRF_TRUSTED_ORIGINS", &cfg.CSRFTrustedOrigins},
	}
	for _, l := range lists {
		v := os.Getenv(l.name)
		if v == "" {
			continue
		}
		parsed, err := parseList(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", l.name, err)
		}
		*l.dst = parsed
	}
	return nil
}

// parseList accepts a JSON array or a comma separated list.
func parseList(v string) ([]string, error) {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "[") {
		var out []string
		if err := json.Unmarshal([]byte(v), &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out, nil
}

func appendMissing(list []string, items ...string) []string {
	for _, item := range items {
		if !slices.Contains(list, item) {
			list = append(list, item)
		}
	}
	return list
}
