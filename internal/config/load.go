package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envPrefix namespaces every environment variable consumed by the hosts,
// e.g. GRIDSTONE_SERVER_PORT maps to the server.port key.
const envPrefix = "GRIDSTONE"

// Load reads configuration for a host. Precedence, lowest to highest:
// built-in defaults, the optional YAML file at configPath (or ./config.yaml
// when configPath is empty), then environment variables. A .env file in the
// working directory is folded into the environment first, which keeps local
// development out of the shell profile. The result is validated before it is
// returned; hosts treat a Load error as fatal.
func Load(configPath string) (*Config, error) {
	// Missing .env is the normal case outside development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv alone does not surface env-only nested keys through
	// Unmarshal, so every key is bound explicitly.
	if err := bindEnvKeys(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults seeds every key that has a sensible value out of the box.
// Required keys without defaults (database URL, JWT secret) must come from
// the file or the environment.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout_seconds", 15)

	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 25)
	v.SetDefault("database.conn_max_lifetime_minutes", 30)

	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.clock_skew_seconds", 120)

	v.SetDefault("api.default_versions", []string{})
	v.SetDefault("api.deprecated", []string{})
	v.SetDefault("api.removed", []string{})
	v.SetDefault("api.cors_allowed_origins", []string{"*"})

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 50)
	v.SetDefault("rate_limit.burst", 100)

	v.SetDefault("retention.enabled", false)
	v.SetDefault("retention.schedule", "0 3 * * *")
	v.SetDefault("retention.max_age_days", 30)
}

// bindEnvKeys binds each configuration key to its GRIDSTONE_ environment
// variable so env-only deployments work without a config file.
func bindEnvKeys(v *viper.Viper) error {
	keys := []string{
		"server.port",
		"server.log_level",
		"server.shutdown_timeout_seconds",
		"database.url",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime_minutes",
		"auth.jwt_secret",
		"auth.token_lifetime_minutes",
		"auth.clock_skew_seconds",
		"api.default_versions",
		"api.deprecated",
		"api.removed",
		"api.cors_allowed_origins",
		"rate_limit.enabled",
		"rate_limit.requests_per_second",
		"rate_limit.burst",
		"retention.enabled",
		"retention.schedule",
		"retention.max_age_days",
	}

	replacer := strings.NewReplacer(".", "_")
	for _, key := range keys {
		envVar := envPrefix + "_" + strings.ToUpper(replacer.Replace(key))
		if err := v.BindEnv(key, envVar); err != nil {
			return fmt.Errorf("failed to bind environment variable %s: %w", envVar, err)
		}
	}

	return nil
}
