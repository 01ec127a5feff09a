// Package config loads runtime configuration for the catalog service and the gateway.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every knob of the catalog service. Empty connection strings
// switch the matching integration off (Redis -> in-memory cache, AMQP -> no
// cluster fan-out, Consul -> no registration).
type Config struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":3000"`
	PublicBaseURL   string        `envconfig:"PUBLIC_BASE_URL"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
	CORSOrigins     []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:12345"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile  string `envconfig:"LOG_FILE"`

	DB       Database
	Cache    Cache
	Events   Events
	Consul   Consul
	Identity Identity
	S3       S3
	Upload   Upload
	Shelves  Shelves
}

// Database describes the Postgres connection.
type Database struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"guitars"`
	Password string `envconfig:"DB_PASSWORD" default:"guitars"`
	Name     string `envconfig:"DB_NAME" default:"guitars"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxOpen  int    `envconfig:"DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdle  int    `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
}

// DSN returns the lib/pq connection string.
func (d Database) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// Cache configures the response cache store.
type Cache struct {
	RedisAddr  string        `envconfig:"REDIS_ADDR"`
	TTL        time.Duration `envconfig:"CACHE_TTL" default:"5s"`
	MaxEntries int           `envconfig:"CACHE_MAX_ENTRIES" default:"100"`
}

// Events configures cross-instance change event fan-out.
type Events struct {
	AMQPURL  string `envconfig:"AMQP_URL"`
	Exchange string `envconfig:"EVENTS_EXCHANGE" default:"catalog.events"`
}

// Consul configures service registration.
type Consul struct {
	Addr        string `envconfig:"CONSUL_ADDR"`
	ServiceName string `envconfig:"SERVICE_NAME" default:"catalog-service"`
	ServiceID   string `envconfig:"SERVICE_ID"`
	ServicePort int    `envconfig:"SERVICE_PORT" default:"3000"`

	// ServiceAddress is the host other instances reach this one at. Empty
	// means the outbound IP.
	ServiceAddress string `envconfig:"SERVICE_ADDRESS"`
}

// Identity configures the external identity provider.
type Identity struct {
	BaseURL         string `envconfig:"IDENTITY_BASE_URL" default:"https://identitytoolkit.googleapis.com"`
	APIKey          string `envconfig:"IDENTITY_API_KEY"`
	CredentialsFile string `envconfig:"IDENTITY_CREDENTIALS_FILE"`
}

// S3 configures the object storage bucket used for uploads.
type S3 struct {
	Endpoint  string `envconfig:"S3_ENDPOINT" default:"https://storage.yandexcloud.net"`
	Region    string `envconfig:"S3_REGION" default:"ru-central1"`
	Bucket    string `envconfig:"S3_BUCKET"`
	AccessKey string `envconfig:"S3_ACCESS_KEY"`
	SecretKey string `envconfig:"S3_SECRET_KEY"`
}

// Enabled reports whether enough settings are present to talk to the bucket.
func (s S3) Enabled() bool {
	return s.Bucket != "" && s.AccessKey != "" && s.SecretKey != ""
}

// Upload limits the upload endpoint.
type Upload struct {
	MaxBytes int64 `envconfig:"UPLOAD_MAX_BYTES" default:"5242880"`
}

// Shelves names the categories behind the electric and acoustic pages.
type Shelves struct {
	ElectricCategory int `envconfig:"ELECTRIC_CATEGORY_ID" default:"1"`
	AcousticCategory int `envconfig:"ACOUSTIC_CATEGORY_ID" default:"2"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// A missing .env is the normal case in containers.
	_ = godotenv.Load()

	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if c.Consul.ServiceID == "" {
		c.Consul.ServiceID = fmt.Sprintf("%s-%d", c.Consul.ServiceName, c.Consul.ServicePort)
	}
	return &c, nil
}

// SlogLevel converts LogLevel to a slog.Level. Unknown values map to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Gateway holds the api-gateway settings.
type Gateway struct {
	HTTPAddr     string        `envconfig:"GATEWAY_ADDR" default:":8080"`
	ConsulAddr   string        `envconfig:"CONSUL_ADDR" default:"localhost:8500"`
	Upstream     string        `envconfig:"UPSTREAM_SERVICE" default:"catalog-service"`
	FallbackURL  string        `envconfig:"UPSTREAM_FALLBACK_URL" default:"http://catalog-service:3000"`
	PollInterval time.Duration `envconfig:"DISCOVERY_INTERVAL" default:"10s"`
	LogLevel     string        `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadGateway reads the gateway configuration.
func LoadGateway() (*Gateway, error) {
	_ = godotenv.Load()

	var g Gateway
	if err := envconfig.Process("", &g); err != nil {
		return nil, fmt.Errorf("loading gateway config: %w", err)
	}
	return &g, nil
}
