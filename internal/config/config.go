package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

var (
	ErrReadConfig    = errors.New("config: failed to read config file")
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Config конфигурация сервиса
type Config struct {
	Server          ServerConfig          `toml:"server"`
	Database        DatabaseConfig        `toml:"database"`
	Logs            LogsConfig            `toml:"logs"`
	Metrics         MetricsConfig         `toml:"metrics"`
	Booking         BookingConfig         `toml:"booking"`
	Sweep           SweepConfig           `toml:"sweep"`
	Broker          BrokerConfig          `toml:"broker"`
	RateLimit       RateLimitConfig       `toml:"rate_limit"`
	FacilityService FacilityServiceConfig `toml:"facility_service"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
	RunMigrations   bool   `toml:"run_migrations"`
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// BookingConfig значения по умолчанию для удержания слота
// Окно удержания переопределяется конфигурацией площадки в БД
type BookingConfig struct {
	DefaultHoldWindowMinutes int `toml:"default_hold_window_minutes"`
	SerializationRetries     int `toml:"serialization_retries"`
}

type SweepConfig struct {
	Enabled        bool   `toml:"enabled"`
	Cron           string `toml:"cron"`
	MaxRetries     int    `toml:"max_retries"`
	RetryDelayMs   int    `toml:"retry_delay_ms"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type BrokerConfig struct {
	Enabled      bool   `toml:"enabled"`
	URL          string `toml:"url"`
	Exchange     string `toml:"exchange"`
	PaymentQueue string `toml:"payment_queue"`
	Prefetch     int    `toml:"prefetch"`
}

type RateLimitConfig struct {
	Enabled       bool   `toml:"enabled"`
	Limit         int64  `toml:"limit"`
	PeriodSeconds int    `toml:"period_seconds"`
	RedisURL      string `toml:"redis_url"` // пустой адрес - счётчики в памяти процесса
}

type FacilityServiceConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

// Load читает TOML файл, затем переменные окружения (включая .env, если он есть)
func Load(path string) (*Config, error) {
	cfg := defaults()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrReadConfig, path, err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: .env: %v", ErrReadConfig, err)
	}
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 30,
		},
		Database: DatabaseConfig{
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs:    LogsConfig{Level: "info"},
		Metrics: MetricsConfig{Path: "/metrics", ServiceName: "court_booking"},
		Booking: BookingConfig{
			DefaultHoldWindowMinutes: 20,
			SerializationRetries:     1,
		},
		Sweep: SweepConfig{
			Enabled:        true,
			Cron:           "* * * * *",
			MaxRetries:     3,
			RetryDelayMs:   500,
			TimeoutSeconds: 30,
		},
		Broker: BrokerConfig{
			Exchange:     "court_booking",
			PaymentQueue: "court_booking.payments",
			Prefetch:     10,
		},
		RateLimit: RateLimitConfig{Limit: 60, PeriodSeconds: 60},
		FacilityService: FacilityServiceConfig{
			Timeout: 5,
		},
	}
}

// applyEnv секреты и адреса из окружения имеют приоритет над файлом
func applyEnv(cfg *Config) {
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.Database.DBName = v
	}
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		cfg.Broker.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.RateLimit.RedisURL = v
	}
	if v := os.Getenv("FACILITY_SERVICE_URL"); v != "" {
		cfg.FacilityService.URL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logs.Level = v
	}
}

// Validate проверяет обязательные поля
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port must be in 1..65535", ErrInvalidConfig)
	}
	if c.Database.Host == "" {
		return fmt.Errorf("%w: database.host is required", ErrInvalidConfig)
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("%w: database.dbname is required", ErrInvalidConfig)
	}
	if c.Booking.DefaultHoldWindowMinutes <= 0 {
		return fmt.Errorf("%w: booking.default_hold_window_minutes must be positive", ErrInvalidConfig)
	}
	if c.Booking.SerializationRetries < 0 || c.Booking.SerializationRetries > 1 {
		return fmt.Errorf("%w: booking.serialization_retries must be 0 or 1", ErrInvalidConfig)
	}
	if c.Sweep.Enabled && c.Sweep.Cron == "" {
		return fmt.Errorf("%w: sweep.cron is required when sweep is enabled", ErrInvalidConfig)
	}
	if c.Broker.Enabled && c.Broker.URL == "" {
		return fmt.Errorf("%w: broker.url is required when broker is enabled", ErrInvalidConfig)
	}
	if c.RateLimit.Enabled && (c.RateLimit.Limit <= 0 || c.RateLimit.PeriodSeconds <= 0) {
		return fmt.Errorf("%w: rate_limit.limit and rate_limit.period_seconds must be positive", ErrInvalidConfig)
	}
	if c.FacilityService.URL == "" {
		return fmt.Errorf("%w: facility_service.url is required", ErrInvalidConfig)
	}
	return nil
}
