/*
Package config - Application Configuration

==============================================================================
FILE: internal/config/app_config.go
==============================================================================

DESCRIPTION:
    Central configuration for the analytics engine: upload handling, CORS,
    admin bootstrap, and database backend selection. Loads from environment
    variables / .env, with an optional HashiCorp Vault overlay for secrets,
    exactly as the teacher backend does — trimmed to the fields §6 actually
    names (no JWT/payroll/SMTP settings survive; there is no user model to
    configure).

CONFIGURATION SOURCES (priority order):
    1. HashiCorp Vault (if VAULT_ADDR is set)
    2. Environment variables
    3. .env file
    4. Default values in DefaultAppConfig()

==============================================================================
*/
package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/vault/api"
	"github.com/joho/godotenv"
)

// AppConfig is the single recognised configuration object from §6. None of
// these fields change analytical behaviour; they only govern I/O, auth
// bootstrap, and transport.
type AppConfig struct {
	UploadDir                 string   `mapstructure:"UPLOAD_DIR"`
	MaxUploadSizeMB           int      `mapstructure:"MAX_UPLOAD_SIZE_MB"`
	AllowedOrigins            []string `mapstructure:"ALLOWED_ORIGINS"`
	AccessTokenExpireMinutes  int      `mapstructure:"ACCESS_TOKEN_EXPIRE_MINUTES"`
	DefaultAdminUsername      string   `mapstructure:"DEFAULT_ADMIN_USERNAME"`
	InitialAdminPasswordFile  string   `mapstructure:"INITIAL_ADMIN_PASSWORD_FILE"`

	DBBackend string `mapstructure:"DB_BACKEND"` // "sqlite" | "mysql"
	DBHost    string `mapstructure:"DB_HOST"`
	DBPort    int    `mapstructure:"DB_PORT"`
	DBUser    string `mapstructure:"DB_USER"`
	DBPass    string `mapstructure:"DB_PASS"`
	DBName    string `mapstructure:"DB_NAME"`

	AppDebug bool `mapstructure:"APP_DEBUG"`

	VaultClient *api.Client
}

// DefaultAppConfig returns configuration with default values.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		UploadDir:                "./data/uploads",
		MaxUploadSizeMB:          200,
		AllowedOrigins:           []string{"*"},
		AccessTokenExpireMinutes: 60,
		DefaultAdminUsername:    "admin",
		DBBackend:                "sqlite",
		DBName:                   "./data/tama.db",
		AppDebug:                 false,
	}
}

// LoadAppConfig loads configuration from .env / environment variables,
// with an optional Vault overlay when VAULT_ADDR is set.
func LoadAppConfig() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := DefaultAppConfig()

	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		cfg.UploadDir = v
	}
	if v := os.Getenv("MAX_UPLOAD_SIZE_MB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxUploadSizeMB = n
		}
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("ACCESS_TOKEN_EXPIRE_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.AccessTokenExpireMinutes = n
		}
	}
	if v := os.Getenv("DEFAULT_ADMIN_USERNAME"); v != "" {
		cfg.DefaultAdminUsername = v
	}
	if v := os.Getenv("INITIAL_ADMIN_PASSWORD_FILE"); v != "" {
		cfg.InitialAdminPasswordFile = v
	}
	if v := os.Getenv("DB_BACKEND"); v != "" {
		cfg.DBBackend = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.DBHost = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DBPort = n
		}
	}
	if v := os.Getenv("DB_USER"); v != "" {
		cfg.DBUser = v
	}
	if v := os.Getenv("DB_PASS"); v != "" {
		cfg.DBPass = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.DBName = v
	}
	if v := os.Getenv("APP_DEBUG"); v != "" {
		cfg.AppDebug = v == "true" || v == "1"
	}

	if os.Getenv("VAULT_ADDR") != "" {
		if err := loadFromVault(cfg); err != nil {
			fmt.Printf("warning: could not load secrets from vault: %v\n", err)
		}
	}

	return cfg, nil
}

// DSN builds the connection string gorm expects for the configured backend.
func (c *AppConfig) DSN() string {
	if c.DBBackend == "mysql" {
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
	}
	return c.DBName
}

// loadFromVault overlays DB credentials read from Vault's kv-v2 engine.
func loadFromVault(c *AppConfig) error {
	vaultConfig := api.DefaultConfig()
	client, err := api.NewClient(vaultConfig)
	if err != nil {
		return fmt.Errorf("failed to create vault client: %w", err)
	}
	c.VaultClient = client

	secretPath := os.Getenv("VAULT_SECRET_PATH")
	if secretPath == "" {
		secretPath = "secret/data/tama"
	}

	secret, err := client.KVv2(secretPath).Get(context.Background(), "")
	if err != nil {
		return fmt.Errorf("failed to read secrets from vault path %s: %w", secretPath, err)
	}

	if dbPass, ok := secret.Data["DB_PASS"].(string); ok {
		c.DBPass = dbPass
	}
	return nil
}

// IsProduction reports whether the engine is running with debug off.
func (c *AppConfig) IsProduction() bool { return !c.AppDebug }
