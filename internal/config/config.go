package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends understood by storage.Open
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Config is the resolved runtime configuration
type Config struct {
	DatabaseURL    string
	Port           string
	DataDir        string
	SecureCookies  bool
	TrustedOrigins []string
	// ProxyMode selects the client IP source: none, cloudflare or xforwarded
	ProxyMode string

	// Storage backend: memory, sqlite or postgres
	Storage    string
	SQLitePath string
	TableName  string

	// Analytics behaviour
	SessionTimeout time.Duration
	RequireConsent bool

	// Landing page content override (YAML); empty means built-in content
	ContentFile string

	Recaptcha    RecaptchaConfig
	EmailJS      EmailJSConfig
	Admin        AdminConfig
	RelayTimeout time.Duration
}

// RecaptchaConfig configures the bot-verification check
type RecaptchaConfig struct {
	SecretKey string
	SiteKey   string
	MinScore  float64
	VerifyURL string
}

// EmailJSConfig configures the mail relay
type EmailJSConfig struct {
	ServiceID  string
	TemplateID string
	PublicKey  string
	PrivateKey string
	Endpoint   string
}

// AdminConfig configures operator access to the admin API
type AdminConfig struct {
	PasswordHash string
	JWTSecret    string
	TokenTTL     time.Duration
}

const (
	defaultPort           = "3000"
	defaultDataDir        = "./data"
	defaultTableName      = "landing_kv"
	defaultSessionTimeout = 30 * time.Minute
	defaultMinScore       = 0.5
	defaultVerifyURL      = "https://www.google.com/recaptcha/api/siteverify"
	defaultEmailJSURL     = "https://api.emailjs.com/api/v1.0/email/send"
	defaultTokenTTL       = 12 * time.Hour
	defaultRelayTimeout   = 15 * time.Second
)

// Load resolves configuration from the config file, environment and defaults
func Load() (*Config, error) {
	return LoadWithOverrides("", "", "")
}

// LoadWithOverrides resolves configuration with flag values taking precedence.
// Priority: flags > config file > environment > defaults.
func LoadWithOverrides(databaseURL, port, dataDir string) (*Config, error) {
	// .env is optional and never overrides variables already exported
	_ = godotenv.Load()

	v := newBaseViper()
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	l := loader{v: v}
	cfg := &Config{
		DatabaseURL:    firstNonEmpty(databaseURL, l.str("database_url", "DATABASE_URL", "")),
		Port:           firstNonEmpty(port, l.str("port", "PORT", defaultPort)),
		DataDir:        firstNonEmpty(dataDir, l.str("data_dir", "DATA_DIR", defaultDataDir)),
		SecureCookies:  l.boolean("secure_cookies", "SECURE_COOKIES", true),
		TrustedOrigins: parseTrustedOrigins(l.str("trusted_origins", "TRUSTED_ORIGINS", "")),
		ProxyMode:      strings.ToLower(l.str("proxy_mode", "LANDING_PROXY_MODE", "none")),

		Storage:    strings.ToLower(l.str("storage.backend", "LANDING_STORAGE", "")),
		SQLitePath: l.str("storage.sqlite_path", "LANDING_SQLITE_PATH", ""),
		TableName:  l.str("storage.table", "LANDING_STORAGE_TABLE", defaultTableName),

		SessionTimeout: l.duration("analytics.session_timeout", "LANDING_SESSION_TIMEOUT", defaultSessionTimeout),
		RequireConsent: l.boolean("analytics.require_consent", "LANDING_REQUIRE_CONSENT", false),

		ContentFile: l.str("content_file", "LANDING_CONTENT_FILE", ""),

		Recaptcha: RecaptchaConfig{
			SecretKey: l.str("recaptcha.secret_key", "RECAPTCHA_SECRET_KEY", ""),
			SiteKey:   l.str("recaptcha.site_key", "RECAPTCHA_SITE_KEY", ""),
			MinScore:  l.float("recaptcha.min_score", "RECAPTCHA_MIN_SCORE", defaultMinScore),
			VerifyURL: l.str("recaptcha.verify_url", "RECAPTCHA_VERIFY_URL", defaultVerifyURL),
		},
		EmailJS: EmailJSConfig{
			ServiceID:  l.str("emailjs.service_id", "EMAILJS_SERVICE_ID", ""),
			TemplateID: l.str("emailjs.template_id", "EMAILJS_TEMPLATE_ID", ""),
			PublicKey:  l.str("emailjs.public_key", "EMAILJS_PUBLIC_KEY", ""),
			PrivateKey: l.str("emailjs.private_key", "EMAILJS_PRIVATE_KEY", ""),
			Endpoint:   l.str("emailjs.endpoint", "EMAILJS_ENDPOINT", defaultEmailJSURL),
		},
		Admin: AdminConfig{
			PasswordHash: l.str("admin.password_hash", "LANDING_ADMIN_PASSWORD_HASH", ""),
			JWTSecret:    l.str("admin.jwt_secret", "LANDING_ADMIN_JWT_SECRET", ""),
			TokenTTL:     l.duration("admin.token_ttl", "LANDING_ADMIN_TOKEN_TTL", defaultTokenTTL),
		},
		RelayTimeout: l.duration("relay_timeout", "LANDING_RELAY_TIMEOUT", defaultRelayTimeout),
	}

	if cfg.Storage == "" {
		cfg.Storage = StorageSQLite
		if cfg.DatabaseURL != "" {
			cfg.Storage = StoragePostgres
		}
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = filepath.Join(cfg.DataDir, "landing.db")
	}

	return cfg, nil
}

// Validate reports configuration that cannot work at runtime
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageMemory, StorageSQLite:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("postgres storage requires a database URL")
		}
	default:
		return fmt.Errorf("unknown storage backend %q (valid: memory, sqlite, postgres)", c.Storage)
	}
	switch c.ProxyMode {
	case "", "none", "cloudflare", "xforwarded":
	default:
		return fmt.Errorf("unknown proxy_mode %q (valid: none, cloudflare, xforwarded)", c.ProxyMode)
	}
	if c.Recaptcha.SecretKey != "" && c.Recaptcha.SiteKey == "" {
		return fmt.Errorf("recaptcha secret_key is set without site_key; the landing page could not produce tokens")
	}
	if c.Recaptcha.MinScore < 0 || c.Recaptcha.MinScore > 1 {
		return fmt.Errorf("recaptcha min_score must be between 0 and 1")
	}
	return nil
}

// AdminEnabled reports whether the admin API can issue tokens
func (c *Config) AdminEnabled() bool {
	return c.Admin.PasswordHash != "" && c.Admin.JWTSecret != ""
}

// configFile, when set, replaces the config search path
var configFile string

// SetConfigFile points Load at an explicit TOML file
func SetConfigFile(path string) {
	configFile = path
}

func newBaseViper() *viper.Viper {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
		return v
	}
	v.SetConfigName("landing")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	if dir := configDir(); dir != "" {
		v.AddConfigPath(filepath.Join(dir, "landing"))
	}
	return v
}

func configDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config")
	}
	return ""
}

// loader resolves one key from the config file first, then the environment
type loader struct {
	v *viper.Viper
}

func (l loader) str(key, env, def string) string {
	if l.v.InConfig(key) {
		return l.v.GetString(key)
	}
	if val := os.Getenv(env); val != "" {
		return val
	}
	return def
}

func (l loader) boolean(key, env string, def bool) bool {
	if l.v.InConfig(key) {
		return l.v.GetBool(key)
	}
	if val := os.Getenv(env); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return def
}

func (l loader) float(key, env string, def float64) float64 {
	if l.v.InConfig(key) {
		return l.v.GetFloat64(key)
	}
	if val := os.Getenv(env); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return def
}

func (l loader) duration(key, env string, def time.Duration) time.Duration {
	if l.v.InConfig(key) {
		return l.v.GetDuration(key)
	}
	if val := os.Getenv(env); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return def
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// parseTrustedOrigins splits a comma separated origin list, normalizing each entry
func parseTrustedOrigins(raw string) []string {
	origins := []string{}
	for _, part := range strings.Split(raw, ",") {
		origin := strings.ToLower(strings.TrimSpace(part))
		origin = strings.TrimRight(origin, "/")
		if origin == "" {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}
