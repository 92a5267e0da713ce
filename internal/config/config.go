package config

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type DB struct {
	URL            string
	Driver         string
	SSLMode        string
	PoolMax        int
	AcquireTimeout time.Duration
	IdleTimeout    time.Duration
}

// Redis configures the optional list cache. An empty Addr leaves it off.
type Redis struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type Config struct {
	ServerPort     int
	DB             DB
	Redis          Redis
	SeedSampleUser bool
	LogLevel       string
	APIURL         string
}

var supportedDrivers = []string{"postgres", "pgx", "sqlite3"}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

func LoadDB() DB {
	return DB{
		URL:            getEnv("DATABASE_URL", ""),
		Driver:         getEnv("DB_DRIVER", "postgres"),
		SSLMode:        getEnv("DB_SSLMODE", "require"),
		PoolMax:        getEnvAsInt("DB_POOL_MAX", 20),
		AcquireTimeout: getEnvDuration("DB_ACQUIRE_TIMEOUT", 5*time.Second),
		IdleTimeout:    getEnvDuration("DB_IDLE_TIMEOUT", 30*time.Second),
	}
}

func LoadRedis() Redis {
	return Redis{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvAsInt("REDIS_DB", 0),
		TTL:      getEnvDuration("CACHE_TTL", time.Minute),
	}
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	return &Config{
		ServerPort:     getEnvAsInt("SERVER_PORT", 3030),
		DB:             LoadDB(),
		Redis:          LoadRedis(),
		SeedSampleUser: getEnvBool("SEED_SAMPLE_USER", true),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		APIURL:         getEnv("API_URL", "http://localhost:3030"),
	}
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if c.DB.URL == "" {
		return errors.New("DATABASE_URL environment variable is not set")
	}

	supported := false
	for _, driver := range supportedDrivers {
		if c.DB.Driver == driver {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("unsupported DB_DRIVER %q (want one of %s)", c.DB.Driver, strings.Join(supportedDrivers, ", "))
	}

	if c.DB.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be positive, got %d", c.DB.PoolMax)
	}

	if c.DB.AcquireTimeout <= 0 {
		return fmt.Errorf("DB_ACQUIRE_TIMEOUT must be positive, got %s", c.DB.AcquireTimeout)
	}

	return nil
}

// DSN returns the connection string handed to the driver. Postgres URLs get
// the configured sslmode unless they already carry one; sqlite DSNs get
// foreign key enforcement switched on.
func (d DB) DSN() string {
	switch d.Driver {
	case "sqlite3":
		if strings.Contains(d.URL, "_foreign_keys") || strings.Contains(d.URL, "_fk=") {
			return d.URL
		}
		if strings.Contains(d.URL, "?") {
			return d.URL + "&_foreign_keys=1"
		}
		return d.URL + "?_foreign_keys=1"
	default:
		if d.SSLMode == "" || strings.Contains(d.URL, "sslmode=") {
			return d.URL
		}

		u, err := url.Parse(d.URL)
		if err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
			// key=value connection string
			return strings.TrimSpace(d.URL) + " sslmode=" + d.SSLMode
		}

		q := u.Query()
		q.Set("sslmode", d.SSLMode)
		u.RawQuery = q.Encode()
		return u.String()
	}
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
