package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/zalando/go-keyring"
)

var envVars = []string{
	"ENVIRONMENT", "DEBUG", "USE_VITE", "VITE_URL", "SECRET_KEY", "DATABASE_URL",
	"EXTRA_ALLOWED_HOSTS", "INTERNAL_IPS", "CSRF_TRUSTED_ORIGINS", "ADMIN_URL",
	"ADMIN_PASSWORD", "LISTEN_ADDR", "STATIC_ROOT", "STATIC_URL", "MEDIA_ROOT",
	"MEDIA_URL", "LOG_LEVEL", "LOG_FORMAT", "MANIFEST_RETRY",
}

// clearEnv unsets every recognized variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range envVars {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func TestLoad_Production(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DEBUG", "true")
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("DATABASE_URL", "badger:///var/lib/yads")
	t.Setenv("EXTRA_ALLOWED_HOSTS", "example.com, .example.org")
	t.Setenv("CSRF_TRUSTED_ORIGINS", `["https://example.com"]`)

	cfg, err := Load(LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Debug {
		t.Error("production must force Debug off")
	}
	if !cfg.Security.SecureCookies || cfg.Security.HSTSSeconds != 60 {
		t.Errorf("Security = %+v", cfg.Security)
	}
	if want := []string{"example.com", ".example.org"}; !slices.Equal(cfg.AllowedHosts, want) {
		t.Errorf("AllowedHosts = %v, want %v", cfg.AllowedHosts, want)
	}
	if want := []string{"https://example.com"}; !slices.Equal(cfg.CSRFTrustedOrigins, want) {
		t.Errorf("CSRFTrustedOrigins = %v, want %v", cfg.CSRFTrustedOrigins, want)
	}
}

func TestLoad_LocalAddsHosts(t *testing.T) {
	clearEnv(t)
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("DATABASE_URL", "memory://")
	t.Setenv("EXTRA_ALLOWED_HOSTS", "localhost")

	cfg, err := Load(LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := []string{"localhost", "0.0.0.0", "127.0.0.1", "yads.local"}
	if !slices.Equal(cfg.AllowedHosts, want) {
		t.Errorf("AllowedHosts = %v, want %v", cfg.AllowedHosts, want)
	}
}

func TestLoad_TestDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "test")

	cfg, err := Load(LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SecretKey != testSecretKey {
		t.Errorf("SecretKey = %q", cfg.SecretKey)
	}
	if cfg.DatabaseURL != "memory://" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("SECRET_KEY", "s3cret")

	_, err := Load(LoadOptions{})
	if !errors.Is(err, ErrMissingSetting) {
		t.Errorf("err = %v, want ErrMissingSetting", err)
	}
}

func TestLoad_MissingSecretKeyOutsideDebug(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "memory://")

	_, err := Load(LoadOptions{})
	if !errors.Is(err, ErrMissingSetting) {
		t.Errorf("err = %v, want ErrMissingSetting", err)
	}
}

func TestLoad_DebugSecretFromKeyring(t *testing.T) {
	keyring.MockInit()
	clearEnv(t)
	t.Setenv("DEBUG", "1")
	t.Setenv("DATABASE_URL", "memory://")

	first, err := Load(LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	second, err := Load(LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if first.SecretKey == "" || first.SecretKey != second.SecretKey {
		t.Errorf("secret keys %q and %q, want equal and non-empty", first.SecretKey, second.SecretKey)
	}
}

func TestLoad_DebugSecretKeyringUnavailable(t *testing.T) {
	keyring.MockInitWithError(errors.New("no keyring"))
	clearEnv(t)
	t.Setenv("DEBUG", "true")
	t.Setenv("DATABASE_URL", "memory://")

	cfg, err := Load(LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SecretKey != insecureSecretKey {
		t.Errorf("SecretKey = %q, want insecure default", cfg.SecretKey)
	}
}

func TestLoad_InvalidBool(t *testing.T) {
	clearEnv(t)
	t.Setenv("USE_VITE", "maybe")

	if _, err := Load(LoadOptions{}); err == nil {
		t.Error("expected error for invalid USE_VITE")
	}
}

func TestLoad_EnvFileDoesNotOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("SECRET_KEY", "from-env")

	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "SECRET_KEY=from-file\nDATABASE_URL=memory://\nUSE_VITE=true\nVITE_URL=http://vite:5173\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(LoadOptions{EnvFile: envFile})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SecretKey != "from-env" {
		t.Errorf("SecretKey = %q, want from-env", cfg.SecretKey)
	}
	if !cfg.UseVite || cfg.ViteURL != "http://vite:5173" {
		t.Errorf("UseVite = %v, ViteURL = %q", cfg.UseVite, cfg.ViteURL)
	}
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("DATABASE_URL", "memory://")

	if _, err := Load(LoadOptions{EnvFile: filepath.Join(t.TempDir(), ".env")}); err != nil {
		t.Errorf("Load: %v", err)
	}
}

func TestLoad_ConfigFileThenEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("ADMIN_URL", "backoffice/")

	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"database_url": "memory://", "admin_url": "manage/", "static_url": "/assets/"}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(LoadOptions{ConfigFile: path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AdminPath() != "/backoffice" {
		t.Errorf("AdminPath() = %q", cfg.AdminPath())
	}
	if cfg.StaticURL != "/assets/" {
		t.Errorf("StaticURL = %q", cfg.StaticURL)
	}
}

func TestDevServer(t *testing.T) {
	tests := []struct {
		debug, vite, want bool
	}{
		{true, true, true},
		{true, false, false},
		{false, true, false},
	}
	for _, tt := range tests {
		c := Config{Debug: tt.debug, UseVite: tt.vite}
		if got := c.DevServer(); got != tt.want {
			t.Errorf("DevServer(debug=%v, vite=%v) = %v", tt.debug, tt.vite, got)
		}
	}
}

func TestParseList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a,b , c", []string{"a", "b", "c"}},
		{`["x", "y"]`, []string{"x", "y"}},
		{" , ", nil},
	}
	for _, tt := range tests {
		got, err := parseList(tt.in)
		if err != nil {
			t.Errorf("parseList(%q): %v", tt.in, err)
			continue
		}
		if !slices.Equal(got, tt.want) {
			t.Errorf("parseList(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
