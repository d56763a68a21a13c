package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const devJWTSecret = "cigali-dev-secret-change-in-production"

type Config struct {
	Port                int           `mapstructure:"PORT"`
	Host                string        `mapstructure:"HOST"`
	Env                 string        `mapstructure:"ENV"`
	DatabaseURL         string        `mapstructure:"DATABASE_URL"`
	FallbackDatabaseURL string        `mapstructure:"FALLBACK_DATABASE_URL"`
	DBMaxConns          int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns          int32         `mapstructure:"DB_MIN_CONNS"`
	DBConnectTimeout    time.Duration `mapstructure:"DB_CONNECT_TIMEOUT"`
	JWTSecret           string        `mapstructure:"JWT_SECRET"`
	JWTExpiresIn        time.Duration `mapstructure:"JWT_EXPIRES_IN"`
	BcryptCost          int           `mapstructure:"BCRYPT_COST"`
	CORSOrigins         []string      `mapstructure:"CORS_ORIGINS"`
	BodyLimit           string        `mapstructure:"BODY_LIMIT"`
	DemoLoginEnabled    bool          `mapstructure:"DEMO_LOGIN_ENABLED"`
	PortProbeAttempts   int           `mapstructure:"PORT_PROBE_ATTEMPTS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", 5001)
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("ENV", "development")
	v.SetDefault("DATABASE_URL", "postgres://127.0.0.1:5432/cigali")
	v.SetDefault("FALLBACK_DATABASE_URL", "postgres://127.0.0.1:5432/cigali_local")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("DB_CONNECT_TIMEOUT", "4s")
	v.SetDefault("JWT_SECRET", devJWTSecret)
	v.SetDefault("JWT_EXPIRES_IN", "24h")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("DEMO_LOGIN_ENABLED", false)
	v.SetDefault("PORT_PROBE_ATTEMPTS", 50)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("HOST")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("FALLBACK_DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("DB_CONNECT_TIMEOUT")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("JWT_EXPIRES_IN")
	v.BindEnv("BCRYPT_COST")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("BODY_LIMIT")
	v.BindEnv("DEMO_LOGIN_ENABLED")
	v.BindEnv("PORT_PROBE_ATTEMPTS")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. In production the
// JWT secret must be explicitly set: the auth guard trusts claim contents
// during store outages, so a guessable signing key would let anyone mint a
// valid principal.
func (c *Config) Validate() error {
	if c.IsProduction() && c.JWTSecret == devJWTSecret {
		return fmt.Errorf("JWT_SECRET must be set in production (refusing to run with the development fallback secret)")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.JWTExpiresIn <= 0 {
		return fmt.Errorf("JWT_EXPIRES_IN must be a positive duration, got %s", c.JWTExpiresIn)
	}
	if c.IsProduction() && c.DemoLoginEnabled {
		return fmt.Errorf("DEMO_LOGIN_ENABLED must not be set in production")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	return nil
}
