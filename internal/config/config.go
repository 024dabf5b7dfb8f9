package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"

	AuthProviderLocal   = "local"
	AuthProviderCasdoor = "casdoor"

	EventsBackendChannel = "channel"
	EventsBackendKafka   = "kafka"
	EventsBackendNone    = "none"
)

// MinJWTSecretLength is the minimum HS256 key size accepted for locally issued tokens.
const MinJWTSecretLength = 32

type Config struct {
	Port        string     `env:"PORT" envDefault:"8080"`
	Environment string     `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	Database DatabaseConfig `envPrefix:"DB_"`

	RedisURL string        `env:"REDIS_URL"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"5m"`

	Auth    AuthConfig    `envPrefix:"AUTH_"`
	Casdoor CasdoorConfig `envPrefix:"CASDOOR_"`
	Events  EventsConfig  `envPrefix:"EVENTS_"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	LoginRateLimitRPS   float64 `env:"LOGIN_RATE_LIMIT_RPS" envDefault:"1"`
	LoginRateLimitBurst int     `env:"LOGIN_RATE_LIMIT_BURST" envDefault:"5"`
}

type DatabaseConfig struct {
	Driver   string `env:"DRIVER" envDefault:"postgres"`
	URL      string `env:"URL"`
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"postgres"`
	Password string `env:"PASSWORD"`
	Name     string `env:"NAME" envDefault:"learning_content"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`
	Path     string `env:"PATH" envDefault:"./data/learning_content.db"`

	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"30m"`

	AutoMigrate bool `env:"AUTO_MIGRATE" envDefault:"true"`
	Seed        bool `env:"SEED" envDefault:"false"`
}

type AuthConfig struct {
	Provider         string        `env:"PROVIDER" envDefault:"local"`
	JWTSecret        string        `env:"JWT_SECRET"`
	JWTTTL           time.Duration `env:"JWT_TTL" envDefault:"24h"`
	EnforceOwnership bool          `env:"ENFORCE_OWNERSHIP" envDefault:"true"`
}

type CasdoorConfig struct {
	Endpoint     string `env:"ENDPOINT"`
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	Cert         string `env:"CERT"`
	Organization string `env:"ORGANIZATION"`
	Application  string `env:"APPLICATION"`
}

type EventsConfig struct {
	Backend      string   `env:"BACKEND" envDefault:"channel"`
	Topic        string   `env:"TOPIC" envDefault:"materials.events"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// UseRedisCache reports whether a Redis cache is configured.
func (c *Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// DSN builds the driver specific connection string unless DB_URL overrides it.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}

	switch d.Driver {
	case DriverMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			d.User, d.Password, d.Host, d.Port, d.Name)
	case DriverSQLite:
		return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", d.Path)
	default:
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
			d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
	}
}

// LoadConfig reads an optional .env file and parses the environment into Config.
func LoadConfig() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field constraints that env tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case DriverPostgres, DriverMySQL, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not supported", c.Database.Driver))
	}

	if c.Database.MaxOpenConns <= 0 {
		errs = append(errs, errors.New("DB_MAX_OPEN_CONNS must be positive"))
	}

	switch c.Auth.Provider {
	case AuthProviderLocal:
		if len(c.Auth.JWTSecret) < MinJWTSecretLength {
			errs = append(errs, fmt.Errorf("AUTH_JWT_SECRET must be at least %d bytes long, got %d",
				MinJWTSecretLength, len(c.Auth.JWTSecret)))
		}
	case AuthProviderCasdoor:
		if c.Casdoor.Endpoint == "" || c.Casdoor.Cert == "" {
			errs = append(errs, errors.New("CASDOOR_ENDPOINT and CASDOOR_CERT are required for the casdoor provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("AUTH_PROVIDER %q is not supported", c.Auth.Provider))
	}

	switch c.Events.Backend {
	case EventsBackendChannel, EventsBackendNone:
	case EventsBackendKafka:
		if len(c.Events.KafkaBrokers) == 0 {
			errs = append(errs, errors.New("EVENTS_KAFKA_BROKERS is required for the kafka backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("EVENTS_BACKEND %q is not supported", c.Events.Backend))
	}

	return errors.Join(errs...)
}
