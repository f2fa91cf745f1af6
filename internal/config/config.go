package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Storage drivers accepted by Config.Storage.Driver.
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Rate limit backends accepted by Config.RateLimit.Backend.
const (
	RateLimitBackendMemory = "memory"
	RateLimitBackendRedis  = "redis"
)

// Config represents the application configuration structure.
// It contains settings for the environment, HTTP server, storage, optional
// infrastructure (Redis, RabbitMQ), background workers and graceful shutdown.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`
	// LogLevel overrides the default level of the environment when set (debug, info, warn, error)
	LogLevel string `env:"LOG_LEVEL" yaml:"logLevel"`

	// HTTP contains all HTTP server related configurations
	HTTP struct {
		// Addr is the address and port the HTTP server will listen on
		Addr string `env:"HTTP_ADDR" env-default:":8080" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"2m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout is the maximum time allowed for processing a single request
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"10s" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
		// AllowedOrigins lists the origins accepted by the CORS middleware
		AllowedOrigins []string `env:"HTTP_ALLOWED_ORIGINS" env-default:"*" env-separator:"," yaml:"allowedOrigins"`
		// TrustProxyHeaders takes the client address from X-Forwarded-For/X-Real-IP.
		// Enable only when every request passes through a proxy that sets them.
		TrustProxyHeaders bool `env:"HTTP_TRUST_PROXY_HEADERS" env-default:"false" yaml:"trustProxyHeaders"`
	} `yaml:"http"`

	// Storage selects the persistence backend
	Storage struct {
		// Driver is either "postgres" or "memory"
		Driver string `env:"STORAGE_DRIVER" env-default:"postgres" yaml:"driver"`
	} `yaml:"storage"`

	// Database contains all database connection related configurations
	Database struct {
		// Username for database authentication
		Username string `env:"DATABASE_USERNAME" env-default:"myuser" yaml:"username"`
		// Password for database authentication
		Password string `env:"DATABASE_PASSWORD" env-default:"mypassword" yaml:"password"`
		// Host is the database server hostname or IP address
		Host string `env:"DATABASE_HOST" env-default:"localhost" yaml:"host"`
		// Port is the database server port number
		Port int `env:"DATABASE_PORT" env-default:"5432" yaml:"port"`
		// SslMode defines the SSL mode for the database connection
		SslMode string `env:"DATABASE_SSL_MODE" env-default:"disable" yaml:"sslMode"`
		// DatabaseName is the name of the database to connect to
		DatabaseName string `env:"DATABASE_NAME" env-default:"users" yaml:"name"`
		// MaxOpenConnections limits the number of open connections to the database
		MaxOpenConnections int `env:"DATABASE_MAX_OPEN_CONNECTIONS" env-default:"10" yaml:"maxOpenConnections"`
		// MaxIdleConnections limits the number of connections in the idle connection pool
		MaxIdleConnections int `env:"DATABASE_MAX_IDLE_CONNECTIONS" env-default:"8" yaml:"maxIdleConnections"`
		// ConnMaxLifetime is the maximum amount of time a connection may be reused
		ConnMaxLifetime time.Duration `env:"DATABASE_CONNECTION_MAX_LIFETIME" env-default:"3m" yaml:"connMaxLifetime"`
		// ConnMaxIdleTime is the maximum amount of time a connection may be idle
		ConnMaxIdleTime time.Duration `env:"DATABASE_CONNECTION_MAX_IDLE_TIME" env-default:"3m" yaml:"connMaxIdleTime"`
	} `yaml:"database"`

	// Redis is used by the distributed rate limiter
	Redis struct {
		Addr     string `env:"REDIS_ADDR" env-default:"localhost:6379" yaml:"addr"`
		Password string `env:"REDIS_PASSWORD" yaml:"password"`
		DB       int    `env:"REDIS_DB" env-default:"0" yaml:"db"`
	} `yaml:"redis"`

	// RateLimit throttles API requests per client IP
	RateLimit struct {
		// Enabled turns the rate limit middleware on
		Enabled bool `env:"RATE_LIMIT_ENABLED" env-default:"false" yaml:"enabled"`
		// Backend is either "memory" or "redis"
		Backend string `env:"RATE_LIMIT_BACKEND" env-default:"memory" yaml:"backend"`
		// Requests is the number of requests a client may issue per Window
		Requests int `env:"RATE_LIMIT_REQUESTS" env-default:"100" yaml:"requests"`
		// Window is the period Requests applies to
		Window time.Duration `env:"RATE_LIMIT_WINDOW" env-default:"1m" yaml:"window"`
	} `yaml:"rateLimit"`

	// Events configures where UserCreated events are published
	Events struct {
		// AMQPURL is the RabbitMQ connection URL. Events are only logged when empty.
		AMQPURL string `env:"EVENTS_AMQP_URL" yaml:"amqpUrl"`
		// Exchange is the topic exchange events are published to
		Exchange string `env:"EVENTS_EXCHANGE" env-default:"users" yaml:"exchange"`
	} `yaml:"events"`

	// Worker configures the background job processing
	Worker struct {
		// Enabled starts river workers alongside the HTTP server
		Enabled bool `env:"WORKER_ENABLED" env-default:"true" yaml:"enabled"`
		// MaxWorkers is the number of concurrent jobs processed by this instance
		MaxWorkers int `env:"WORKER_MAX_WORKERS" env-default:"10" yaml:"maxWorkers"`
		// MaxAttempts is the maximum number of attempts for publishing an event
		MaxAttempts int `env:"WORKER_MAX_ATTEMPTS" env-default:"5" yaml:"maxAttempts"`
	} `yaml:"worker"`

	// Users configures the user listing
	Users struct {
		// DefaultPageSize is used when a list request has no limit
		DefaultPageSize uint `env:"USERS_DEFAULT_PAGE_SIZE" env-default:"20" yaml:"defaultPageSize"`
		// MaxPageSize caps the limit of a list request
		MaxPageSize uint `env:"USERS_MAX_PAGE_SIZE" env-default:"100" yaml:"maxPageSize"`
	} `yaml:"users"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Load receives the path for yaml config file and returns a filled Config struct.
// Variables from a .env file in the working directory, when present, are loaded
// into the environment first. With an empty path only the environment is read.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("could not load .env file: %w", err)
	}

	var cfg Config
	var err error
	if configPath == "" {
		err = cleanenv.ReadEnv(&cfg)
	} else {
		err = cleanenv.ReadConfig(configPath, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	switch c.RateLimit.Backend {
	case RateLimitBackendMemory, RateLimitBackendRedis:
	default:
		return fmt.Errorf("unknown rate limit backend %q", c.RateLimit.Backend)
	}
	if c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		return errors.New("rate limit requests and window must be positive")
	}

	return nil
}
