package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type AppConfig struct {
	API       *APIConfig       `mapstructure:"api"`
	Gin       *GinConfig       `mapstructure:"gin"`
	Log       *LogConfig       `mapstructure:"log"`
	Postgres  *PostgresConfig  `mapstructure:"postgres"`
	Redis     *RedisConfig     `mapstructure:"redis"`
	RateLimit *RateLimitConfig `mapstructure:"rate_limit"`
	Telemetry *TelemetryConfig `mapstructure:"telemetry"`

	v *viper.Viper
}

type APIConfig struct {
	Environment        string        `mapstructure:"environment"`
	Port               string        `mapstructure:"port"`
	BaseURL            string        `mapstructure:"base_url"`
	AllowedCORSDomains []string      `mapstructure:"allowed_cors_domains"`
	JWTSigningKey      string        `mapstructure:"jwt_signing_key"`
	AccessTokenTTL     time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL    time.Duration `mapstructure:"refresh_token_ttl"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type PostgresConfig struct {
	Host        string        `mapstructure:"host"`
	Port        string        `mapstructure:"port"`
	User        string        `mapstructure:"user"`
	Password    string        `mapstructure:"password"`
	DB          string        `mapstructure:"db"`
	SSLMode     string        `mapstructure:"ssl_mode"`
	LockTimeout time.Duration `mapstructure:"lock_timeout"`
}

// DSN builds a libpq keyword/value connection string.
func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DB, c.SSLMode,
	)
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type RateLimitConfig struct {
	LoginAttempts int           `mapstructure:"login_attempts"`
	Window        time.Duration `mapstructure:"window"`
}

type TelemetryConfig struct {
	ServiceName  string `mapstructure:"service_name"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	Insecure     bool   `mapstructure:"insecure"`
}

// Load reads the yaml file at path and lets environment variables override
// any key, e.g. API_PORT overrides api.port.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	if err := conf.validate(); err != nil {
		return nil, err
	}

	conf.v = v

	return conf, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.environment", "dev")
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.base_url", "localhost:8080")
	v.SetDefault("api.access_token_ttl", 5*time.Minute)
	v.SetDefault("api.refresh_token_ttl", 24*time.Hour)
	v.SetDefault("gin.mode", "debug")
	v.SetDefault("log.level", "info")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.lock_timeout", 5*time.Second)
	v.SetDefault("redis.url", "")
	v.SetDefault("rate_limit.login_attempts", 20)
	v.SetDefault("rate_limit.window", time.Minute)
	v.SetDefault("telemetry.service_name", "inventory-api")
}

func (c *AppConfig) validate() error {
	if c.API == nil || c.API.JWTSigningKey == "" {
		return fmt.Errorf("api.jwt_signing_key is required")
	}
	if c.Log == nil {
		c.Log = &LogConfig{Level: "info"}
	}
	if c.API.AccessTokenTTL <= 0 || c.API.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token ttls must be positive")
	}

	return nil
}

// WatchLogLevel calls fn with the new log.level every time the config file
// is rewritten.
func (c *AppConfig) WatchLogLevel(fn func(level string)) {
	if c.v == nil {
		return
	}

	c.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		level := c.v.GetString("log.level")
		if c.Log.Level == level {
			return
		}
		c.Log.Level = level

		zap.L().Info("config file changed", zap.String("file", e.Name), zap.String("log_level", level))
		fn(level)
	})
	c.v.WatchConfig()
}
