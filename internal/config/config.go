package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName     string
	AppEnv      string
	AppPort     string
	DatabaseURL string
	RedisURL    string

	// Session token settings. The signing secret is process-wide state loaded
	// once at startup; runtime rotation requires a restart.
	JWTSecret        string
	PlatformTokenTTL time.Duration
	SessionTokenTTL  time.Duration

	// External identity provider (GoTrue-compatible admin API).
	IdentityBaseURL    string
	IdentityServiceKey string

	// S3-compatible object storage for certificate/transcript blobs.
	StorageEndpoint  string
	StorageRegion    string
	StorageAccessKey string
	StorageSecretKey string
	StorageBucket    string
	StorageCDNURL    string

	UploadMaxMB        int
	AdapterTimeout     time.Duration
	DropdownCacheTTL   time.Duration
	AuditRetentionDays int
}

// IsDevelopment reports whether detailed downstream errors may be exposed to
// clients.
func (c Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("ACADVERIFY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "AcadVerify API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("jwt.platform_ttl", "168h")
	v.SetDefault("jwt.session_ttl", "24h")
	v.SetDefault("storage.bucket", "graduate-record")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("upload.max_mb", 10)
	v.SetDefault("adapter.timeout", "10s")
	v.SetDefault("dropdown.cache_ttl", "5m")
	v.SetDefault("audit.retention_days", 365)

	platformTTL, err := time.ParseDuration(v.GetString("jwt.platform_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid platform token ttl: %w", err)
	}

	sessionTTL, err := time.ParseDuration(v.GetString("jwt.session_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid session token ttl: %w", err)
	}

	adapterTimeout, err := time.ParseDuration(v.GetString("adapter.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid adapter timeout: %w", err)
	}

	cacheTTL, err := time.ParseDuration(v.GetString("dropdown.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid dropdown cache ttl: %w", err)
	}

	cfg := Config{
		AppName:            v.GetString("app.name"),
		AppEnv:             v.GetString("app.env"),
		AppPort:            v.GetString("app.port"),
		DatabaseURL:        v.GetString("database.url"),
		RedisURL:           v.GetString("redis.url"),
		JWTSecret:          v.GetString("jwt.secret"),
		PlatformTokenTTL:   platformTTL,
		SessionTokenTTL:    sessionTTL,
		IdentityBaseURL:    strings.TrimRight(v.GetString("identity.base_url"), "/"),
		IdentityServiceKey: v.GetString("identity.service_key"),
		StorageEndpoint:    v.GetString("storage.endpoint"),
		StorageRegion:      v.GetString("storage.region"),
		StorageAccessKey:   v.GetString("storage.access_key"),
		StorageSecretKey:   v.GetString("storage.secret_key"),
		StorageBucket:      v.GetString("storage.bucket"),
		StorageCDNURL:      strings.TrimRight(v.GetString("storage.cdn_url"), "/"),
		UploadMaxMB:        v.GetInt("upload.max_mb"),
		AdapterTimeout:     adapterTimeout,
		DropdownCacheTTL:   cacheTTL,
		AuditRetentionDays: v.GetInt("audit.retention_days"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}
	if len(cfg.JWTSecret) < 32 {
		return Config{}, fmt.Errorf("jwt secret must be at least 32 characters")
	}

	if cfg.UploadMaxMB <= 0 {
		cfg.UploadMaxMB = 10
	}
	if cfg.AuditRetentionDays <= 0 {
		cfg.AuditRetentionDays = 365
	}

	return cfg, nil
}
