package cli

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dreamdigital/landing/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create or inspect the configuration file",
}

var (
	configInitPort  string
	configInitForce bool
)

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with a fresh admin JWT secret",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadWithOverrides(databaseURL, configInitPort, dataDir)
		if err != nil {
			return err
		}
		if storageBackend != "" {
			cfg.Storage = strings.ToLower(storageBackend)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if cfg.Admin.JWTSecret != "" && !configInitForce {
			return fmt.Errorf("configuration already has an admin secret; pass --force to rotate it")
		}

		secret, err := randomSecret()
		if err != nil {
			return err
		}
		cfg.Admin.JWTSecret = secret

		path, err := config.SaveConfig(cfg)
		if err != nil {
			return err
		}
		fmt.Printf("Configuration written to %s\n", path)
		if cfg.Admin.PasswordHash == "" {
			fmt.Println("Set admin.password_hash with: landing admin hash-password")
		}
		return nil
	},
}

var configShowFormat string

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration with secrets redacted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateFormat(configShowFormat, "yaml", "json"); err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		view := redactedConfig(cfg)
		if configShowFormat == "json" {
			return printJSON(view)
		}
		return printYAML(view)
	},
}

func init() {
	configInitCmd.Flags().StringVar(&configInitPort, "port", "", "listen port to store")
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "rotate an existing admin secret")
	configShowCmd.Flags().StringVar(&configShowFormat, "format", "yaml", "output format: yaml or json")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// configView is the printable configuration
type configView struct {
	DatabaseURL    string   `json:"databaseUrl,omitempty" yaml:"database_url,omitempty"`
	Port           string   `json:"port" yaml:"port"`
	DataDir        string   `json:"dataDir" yaml:"data_dir"`
	SecureCookies  bool     `json:"secureCookies" yaml:"secure_cookies"`
	TrustedOrigins []string `json:"trustedOrigins" yaml:"trusted_origins"`
	ProxyMode      string   `json:"proxyMode" yaml:"proxy_mode"`
	Storage        string   `json:"storage" yaml:"storage"`
	SQLitePath     string   `json:"sqlitePath,omitempty" yaml:"sqlite_path,omitempty"`
	SessionTimeout string   `json:"sessionTimeout" yaml:"session_timeout"`
	RequireConsent bool     `json:"requireConsent" yaml:"require_consent"`
	ContentFile    string   `json:"contentFile,omitempty" yaml:"content_file,omitempty"`
	RecaptchaKey   string   `json:"recaptchaSecret" yaml:"recaptcha_secret"`
	EmailJS        string   `json:"emailjs" yaml:"emailjs"`
	AdminPassword  string   `json:"adminPasswordHash" yaml:"admin_password_hash"`
	AdminSecret    string   `json:"adminJwtSecret" yaml:"admin_jwt_secret"`
}

func redactedConfig(cfg *config.Config) configView {
	dbURL := ""
	if cfg.DatabaseURL != "" {
		parts := config.ParseDatabaseURL(cfg.DatabaseURL)
		if parts.Password != "" {
			parts.Password = "****"
		}
		dbURL = config.BuildDatabaseURL(parts)
	}
	sqlitePath := ""
	if cfg.Storage == config.StorageSQLite {
		sqlitePath = cfg.SQLitePath
	}
	emailjs := "not configured"
	if cfg.EmailJS.ServiceID != "" {
		emailjs = "service " + cfg.EmailJS.ServiceID
	}
	return configView{
		DatabaseURL:    dbURL,
		Port:           cfg.Port,
		DataDir:        cfg.DataDir,
		SecureCookies:  cfg.SecureCookies,
		TrustedOrigins: cfg.TrustedOrigins,
		ProxyMode:      cfg.ProxyMode,
		Storage:        cfg.Storage,
		SQLitePath:     sqlitePath,
		SessionTimeout: cfg.SessionTimeout.String(),
		RequireConsent: cfg.RequireConsent,
		ContentFile:    cfg.ContentFile,
		RecaptchaKey:   redact(cfg.Recaptcha.SecretKey),
		EmailJS:        emailjs,
		AdminPassword:  redact(cfg.Admin.PasswordHash),
		AdminSecret:    redact(cfg.Admin.JWTSecret),
	}
}

func redact(secret string) string {
	if secret == "" {
		return "not set"
	}
	return "set"
}
