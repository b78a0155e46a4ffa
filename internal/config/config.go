package config

// Config holds all host configuration. It organizes settings into logical
// groups; every host loads the same shape and simply ignores the groups it
// does not use.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"     validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"   validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"       validate:"required"`
	API       APIConfig       `mapstructure:"api"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Retention RetentionConfig `mapstructure:"retention"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gte=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL                    string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns           int    `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gte=0"`
}

// AuthConfig contains all authentication-related settings. Hosts only verify
// tokens; TokenLifetimeMinutes matters to cmd/tokengen and tests.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	ClockSkewSeconds     int    `mapstructure:"clock_skew_seconds" validate:"gte=0"`
}

// APIConfig drives the version registry lifecycle and the CORS policy.
// Versions themselves are registered by host code, which knows what it
// implements; configuration only moves registered versions through their
// lifecycle and pins defaults.
//
// Entries use "resource:version" form ("projects:v1"); Deprecated entries
// may carry a third RFC 3339 date segment as the advertised sunset
// ("projects:v1:2026-06-30").
type APIConfig struct {
	DefaultVersions    []string `mapstructure:"default_versions"`
	Deprecated         []string `mapstructure:"deprecated"`
	Removed            []string `mapstructure:"removed"`
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

// RateLimitConfig contains the per-client request rate limit settings.
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gte=0"`
	Burst             int     `mapstructure:"burst" validate:"gte=0"`
}

// RetentionConfig contains the soft-delete purge sweeper settings. Schedule
// is a cron expression evaluated in the host's local time.
type RetentionConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Schedule   string `mapstructure:"schedule"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"gte=1"`
}
