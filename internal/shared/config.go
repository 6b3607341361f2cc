package shared

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	HTTPTimeout time.Duration
	MetricsAddr string

	DBDriver       string
	MySQLDSN       string
	PostgresDSN    string
	DBMaxOpenConns int

	RedisAddr string
	RedisDB   int
	RedisPass string
	CacheTTL  time.Duration

	SeedCount  int
	SeedAPIURL string
	SeedRPS    int
}

// Load reads the environment, after merging an optional .env file from the
// working directory. Variables already set win over .env values.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg(".env could not be parsed")
	}
	return Config{
		AppEnv:      env("APP_ENV", "prod"),
		LogLevel:    env("LOG_LEVEL", "info"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		HTTPTimeout: time.Duration(atoi("HTTP_TIMEOUT_SECONDS", 15)) * time.Second,
		MetricsAddr: env("METRICS_ADDR", ""),

		DBDriver:       env("DB_DRIVER", DriverMySQL),
		MySQLDSN:       env("MYSQL_DSN", "root:root@tcp(localhost:3306)/reviews?parseTime=true&loc=UTC"),
		PostgresDSN:    env("POSTGRES_DSN", "host=localhost user=postgres password=postgres dbname=reviews port=5432 sslmode=disable"),
		DBMaxOpenConns: atoi("DB_MAX_OPEN_CONNS", 10),

		RedisAddr: env("REDIS_ADDR", ""),
		RedisPass: env("REDIS_PASSWORD", ""),
		RedisDB:   atoi("REDIS_DB", 0),
		CacheTTL:  time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,

		SeedCount:  atoi("SEED_COUNT", 20),
		SeedAPIURL: env("SEED_API_URL", ""),
		SeedRPS:    atoi("SEED_RPS", 5),
	}
}

// Validate rejects settings the binaries cannot start with.
func (c Config) Validate() error {
	switch c.DBDriver {
	case DriverMySQL, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("DB_DRIVER %q: want mysql, postgres or memory", c.DBDriver)
	}
	if c.SeedCount < 0 {
		return fmt.Errorf("SEED_COUNT must not be negative, got %d", c.SeedCount)
	}
	return nil
}

func atoi(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
	}
	return def
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
