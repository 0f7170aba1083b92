package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (DB credentials and name), security settings
// - default: Values common across all environments (port, hosts, intervals, timeouts, etc.), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server ServerConfig
	DB     DBConfig
	Redis  RedisConfig
	Log    LogConfig
	Saga   SagaConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8080"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

// SagaConfig carries every option the orchestrator, the Inventory hold
// reaper, and the Booking recovery worker recognize.
type SagaConfig struct {
	HoldTTL                 time.Duration `envconfig:"HOLD_TTL_MINUTES" default:"15m"`
	HoldReaperInterval      time.Duration `envconfig:"HOLD_REAPER_INTERVAL_MS" default:"60000ms"`
	RecoveryInterval        time.Duration `envconfig:"RECOVERY_INTERVAL_MS" default:"300000ms"`
	RecoveryStuckAfter      time.Duration `envconfig:"RECOVERY_STUCK_MINUTES" default:"10m"`
	RecoveryGiveUpAfter     time.Duration `envconfig:"RECOVERY_GIVE_UP_MINUTES" default:"1440m"`
	IdempotencyCacheEnabled bool          `envconfig:"IDEMPOTENCY_FAST_CACHE_ENABLED" default:"true"`
	IdempotencyCacheTTL     time.Duration `envconfig:"IDEMPOTENCY_FAST_CACHE_TTL_HOURS" default:"24h"`
	ReservationLockWait     time.Duration `envconfig:"RESERVATION_LOCK_WAIT_SECONDS" default:"5s"`
	ReservationLockLease    time.Duration `envconfig:"RESERVATION_LOCK_LEASE_SECONDS" default:"30s"`
	RemoteCallTimeout       time.Duration `envconfig:"REMOTE_CALL_TIMEOUT_MS" default:"8000ms"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
		},
		Redis: RedisConfig{
			Addr: "localhost:16379",
		},
		Log: LogConfig{
			Level: "error", // Error level only for tests
		},
		Saga: SagaConfig{
			HoldTTL:                 15 * time.Minute,
			HoldReaperInterval:      60 * time.Second,
			RecoveryInterval:        5 * time.Minute,
			RecoveryStuckAfter:      10 * time.Minute,
			RecoveryGiveUpAfter:     24 * time.Hour,
			IdempotencyCacheEnabled: true,
			IdempotencyCacheTTL:     24 * time.Hour,
			ReservationLockWait:     5 * time.Second,
			ReservationLockLease:    30 * time.Second,
			RemoteCallTimeout:       8 * time.Second,
		},
	}
}
