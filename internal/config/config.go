package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Storage drivers
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Lock backends
const (
	LockMemory = "memory"
	LockRedis  = "redis"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	NewRelic   NewRelicConfig
	JWT        JWTConfig
	Kafka      KafkaConfig
	Storage    StorageConfig
	Lock       LockConfig
	Policy     PolicyConfig
	Events     EventsConfig
	Completion CompletionConfig
	WebSocket  WebSocketConfig
	Log        LogConfig
}

type ServerConfig struct {
	Port            string
	Env             string
	Host            string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host           string
	Port           int
	Name           string
	User           string
	Password       string
	SSLMode        string
	MaxConnections int
	MaxIdleConns   int
	MaxLifetime    time.Duration
	AutoMigrate    bool
}

type RedisConfig struct {
	Host        string
	Port        string
	Password    string
	DB          int
	MaxRetries  int
	PoolSize    int
	MinIdleConn int
	DialTimeout time.Duration
	ReadTimeout time.Duration
}

type NewRelicConfig struct {
	LicenseKey string
	AppName    string
	Enabled    bool
	LogLevel   string
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

type KafkaConfig struct {
	Enabled      bool
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

type StorageConfig struct {
	Driver string
	// MemoryCars lists owner_id:car_id pairs registered at startup by the
	// memory driver
	MemoryCars []string
}

// SeedCar is a car registered in the memory store at startup
type SeedCar struct {
	OwnerID uuid.UUID
	CarID   uuid.UUID
}

// SeedCars parses MemoryCars
func (s StorageConfig) SeedCars() ([]SeedCar, error) {
	seeds := make([]SeedCar, 0, len(s.MemoryCars))
	for _, entry := range s.MemoryCars {
		owner, carID, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("MEMORY_CARS entry %q must be owner_id:car_id", entry)
		}
		ownerID, err := uuid.Parse(strings.TrimSpace(owner))
		if err != nil {
			return nil, fmt.Errorf("MEMORY_CARS entry %q: invalid owner id: %w", entry, err)
		}
		id, err := uuid.Parse(strings.TrimSpace(carID))
		if err != nil {
			return nil, fmt.Errorf("MEMORY_CARS entry %q: invalid car id: %w", entry, err)
		}
		seeds = append(seeds, SeedCar{OwnerID: ownerID, CarID: id})
	}
	return seeds, nil
}

type LockConfig struct {
	Backend    string
	TTL        time.Duration
	RetryDelay time.Duration
}

// PolicyConfig holds the booking time windows
type PolicyConfig struct {
	KickWindow         time.Duration
	CancellationCutoff time.Duration
	EditCutoff         time.Duration
}

type EventsConfig struct {
	BufferSize     int
	HandlerTimeout time.Duration
}

type CompletionConfig struct {
	Interval time.Duration
}

type WebSocketConfig struct {
	ReadBufferSize  int
	WriteBufferSize int
	AllowedOrigins  []string
}

type LogConfig struct {
	Level  string
	Format string
	Output string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Env:             getEnv("SERVER_ENV", "development"),
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			ShutdownTimeout: parseDuration(getEnv("SERVER_SHUTDOWN_TIMEOUT", "10s"), 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnvAsInt("DB_PORT", 5432),
			Name:           getEnv("DB_NAME", "carpool"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MaxConnections: getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MaxIdleConns:   getEnvAsInt("DB_MAX_IDLE_CONNECTIONS", 5),
			MaxLifetime:    time.Duration(getEnvAsInt("DB_MAX_LIFETIME_MINUTES", 30)) * time.Minute,
			AutoMigrate:    getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			Host:        getEnv("REDIS_HOST", "localhost"),
			Port:        getEnv("REDIS_PORT", "6379"),
			Password:    getEnv("REDIS_PASSWORD", ""),
			DB:          getEnvAsInt("REDIS_DB", 0),
			MaxRetries:  getEnvAsInt("REDIS_MAX_RETRIES", 3),
			PoolSize:    getEnvAsInt("REDIS_POOL_SIZE", 50),
			MinIdleConn: 5,
			DialTimeout: 5 * time.Second,
			ReadTimeout: 3 * time.Second,
		},
		NewRelic: NewRelicConfig{
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			AppName:    getEnv("NEW_RELIC_APP_NAME", "carpool"),
			Enabled:    getEnvAsBool("NEW_RELIC_ENABLED", false),
			LogLevel:   getEnv("NEW_RELIC_LOG_LEVEL", "info"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", defaultJWTSecret),
			Expiry: parseDuration(getEnv("JWT_EXPIRY", "24h"), 24*time.Hour),
		},
		Kafka: KafkaConfig{
			Enabled:      getEnvAsBool("KAFKA_ENABLED", false),
			Brokers:      getEnvAsList("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:        getEnv("KAFKA_TOPIC", "carpool.booking-events"),
			WriteTimeout: parseDuration(getEnv("KAFKA_WRITE_TIMEOUT", "2s"), 2*time.Second),
		},
		Storage: StorageConfig{
			Driver:     getEnv("STORAGE_DRIVER", StorageMemory),
			MemoryCars: getEnvAsList("MEMORY_CARS", nil),
		},
		Lock: LockConfig{
			Backend:    getEnv("LOCK_BACKEND", LockMemory),
			TTL:        parseDuration(getEnv("LOCK_TTL", "5s"), 5*time.Second),
			RetryDelay: parseDuration(getEnv("LOCK_RETRY_DELAY", "10ms"), 10*time.Millisecond),
		},
		Policy: PolicyConfig{
			KickWindow:         parseDuration(getEnv("KICK_WINDOW", "1h"), time.Hour),
			CancellationCutoff: parseDuration(getEnv("CANCELLATION_CUTOFF", "0s"), 0),
			EditCutoff:         parseDuration(getEnv("EDIT_CUTOFF", "0s"), 0),
		},
		Events: EventsConfig{
			BufferSize:     getEnvAsInt("EVENTS_BUFFER_SIZE", 1024),
			HandlerTimeout: parseDuration(getEnv("EVENTS_HANDLER_TIMEOUT", "3s"), 3*time.Second),
		},
		Completion: CompletionConfig{
			Interval: parseDuration(getEnv("COMPLETION_SWEEP_INTERVAL", "1m"), time.Minute),
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  getEnvAsInt("WS_READ_BUFFER_SIZE", 1024),
			WriteBufferSize: getEnvAsInt("WS_WRITE_BUFFER_SIZE", 1024),
			AllowedOrigins:  getEnvAsList("WS_ALLOWED_ORIGINS", nil),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			Output: getEnv("LOG_OUTPUT", "stdout"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

const defaultJWTSecret = "change_me_jwt_secret"

// Validate validates the configuration and reports every problem at once
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port == "" {
		errs = append(errs, errors.New("SERVER_PORT is required"))
	}
	switch c.Storage.Driver {
	case StorageMemory:
		if _, err := c.Storage.SeedCars(); err != nil {
			errs = append(errs, err)
		}
	case StoragePostgres:
		if c.Database.Host == "" {
			errs = append(errs, errors.New("DB_HOST is required for postgres storage"))
		}
		if c.Database.Name == "" {
			errs = append(errs, errors.New("DB_NAME is required for postgres storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StorageMemory, StoragePostgres, c.Storage.Driver))
	}
	switch c.Lock.Backend {
	case LockMemory:
	case LockRedis:
		if c.Redis.Host == "" {
			errs = append(errs, errors.New("REDIS_HOST is required for the redis lock backend"))
		}
		if c.Lock.TTL <= 0 {
			errs = append(errs, errors.New("LOCK_TTL must be positive"))
		}
	default:
		errs = append(errs, fmt.Errorf("LOCK_BACKEND must be %q or %q, got %q", LockMemory, LockRedis, c.Lock.Backend))
	}
	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		errs = append(errs, errors.New("KAFKA_BROKERS and KAFKA_TOPIC are required when kafka is enabled"))
	}
	if c.Policy.KickWindow < 0 || c.Policy.CancellationCutoff < 0 || c.Policy.EditCutoff < 0 {
		errs = append(errs, errors.New("policy windows must not be negative"))
	}
	if c.Events.BufferSize <= 0 {
		errs = append(errs, errors.New("EVENTS_BUFFER_SIZE must be positive"))
	}
	if c.JWT.Secret == defaultJWTSecret && c.Server.Env == "production" {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}
	return errors.Join(errs...)
}

// Address returns the HTTP listen address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseDuration(value string, defaultValue time.Duration) time.Duration {
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	return defaultValue
}
