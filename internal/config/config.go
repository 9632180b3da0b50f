package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. CLINIC_DATABASE_HOST.
const EnvPrefix = "clinic"

type Config struct {
	Server       ServerConfig       `mapstructure:"server" envconfig:"server"`
	Database     DatabaseConfig     `mapstructure:"database" envconfig:"database"`
	Session      SessionConfig      `mapstructure:"session" envconfig:"session"`
	Redis        RedisConfig        `mapstructure:"redis" envconfig:"redis"`
	Cache        CacheConfig        `mapstructure:"cache" envconfig:"cache"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit" envconfig:"rate_limit"`
	CORS         CORSConfig         `mapstructure:"cors" envconfig:"cors"`
	SMTP         SMTPConfig         `mapstructure:"smtp" envconfig:"smtp"`
	Appointments AppointmentsConfig `mapstructure:"appointments" envconfig:"appointments"`
	Log          LogConfig          `mapstructure:"log" envconfig:"log"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port" envconfig:"port"`
	Mode           string        `mapstructure:"mode" envconfig:"mode"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout" envconfig:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout" envconfig:"write_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" envconfig:"request_timeout"`
	Timezone       string        `mapstructure:"timezone" envconfig:"timezone"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host" envconfig:"host"`
	Port            int           `mapstructure:"port" envconfig:"port"`
	User            string        `mapstructure:"user" envconfig:"user"`
	Password        string        `mapstructure:"password" envconfig:"password"`
	Name            string        `mapstructure:"name" envconfig:"name"`
	SSLMode         string        `mapstructure:"sslmode" envconfig:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" envconfig:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" envconfig:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" envconfig:"conn_max_lifetime"`
}

// DSN renders the lib/pq connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

type SessionConfig struct {
	Secret      string `mapstructure:"secret" envconfig:"secret"`
	Issuer      string `mapstructure:"issuer" envconfig:"issuer"`
	ExpiryHours int    `mapstructure:"expiry_hours" envconfig:"expiry_hours"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url" envconfig:"url"`
	Channel      string        `mapstructure:"channel" envconfig:"channel"`
	MaxRetries   int           `mapstructure:"max_retries" envconfig:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff" envconfig:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size" envconfig:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns" envconfig:"min_idle_conns"`
}

type CacheConfig struct {
	ListingTTL      time.Duration `mapstructure:"listing_ttl" envconfig:"listing_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" envconfig:"cleanup_interval"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled" envconfig:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" envconfig:"requests_per_second"`
	Burst             int     `mapstructure:"burst" envconfig:"burst"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" envconfig:"allowed_origins"`
}

type SMTPConfig struct {
	Enabled  bool   `mapstructure:"enabled" envconfig:"enabled"`
	Host     string `mapstructure:"host" envconfig:"host"`
	Port     int    `mapstructure:"port" envconfig:"port"`
	User     string `mapstructure:"user" envconfig:"user"`
	Password string `mapstructure:"password" envconfig:"password"`
	From     string `mapstructure:"from" envconfig:"from"`
}

type AppointmentsConfig struct {
	// EnforceAvailability rejects times outside the doctor's slots.
	EnforceAvailability bool `mapstructure:"enforce_availability" envconfig:"enforce_availability"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" envconfig:"level"`
	Format string `mapstructure:"format" envconfig:"format"`
}

// Location resolves Server.Timezone, falling back to the local zone.
func (c ServerConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid server timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.request_timeout", 10*time.Second)
	v.SetDefault("server.timezone", "Local")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "clinic")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)

	v.SetDefault("session.issuer", "clinic-api")
	v.SetDefault("session.expiry_hours", 24)

	v.SetDefault("redis.channel", "clinic:appointments:invalidate")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.retry_backoff", 100*time.Millisecond)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)

	v.SetDefault("cache.listing_ttl", time.Minute)
	v.SetDefault("cache.cleanup_interval", 5*time.Minute)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 20.0)
	v.SetDefault("rate_limit.burst", 40)

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("smtp.port", 587)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// LoadConfig reads config.yml from the usual locations, tolerating its
// absence, and applies CLINIC_* environment overrides on top.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/app")
	v.AddConfigPath("/app/config")
	return load(v)
}

// LoadFile is LoadConfig for an explicit file path.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Session.Secret == "" {
		return errors.New("session.secret is required")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if _, err := c.Server.Location(); err != nil {
		return err
	}
	return nil
}
