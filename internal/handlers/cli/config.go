package cli

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config carries the process configuration, populated from environment
// variables (optionally seeded from a .env file).
type Config struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	TelemetryEnabled bool   `envconfig:"TELEMETRY_ENABLED" default:"false"`
	ServiceName      string `envconfig:"SERVICE_NAME" default:"ergowatch"`

	ExplorerURL        string        `envconfig:"EXPLORER_URL" default:"https://api.ergoplatform.com/api/v1"`
	MaxRetries         int           `envconfig:"EXPLORER_MAX_RETRIES" default:"3"`
	RetryDelay         time.Duration `envconfig:"EXPLORER_RETRY_DELAY" default:"5s"`
	MinRequestInterval time.Duration `envconfig:"EXPLORER_MIN_REQUEST_INTERVAL" default:"1s"`

	CheckInterval   time.Duration `envconfig:"CHECK_INTERVAL" default:"60s"`
	DailyReportHour int           `envconfig:"DAILY_REPORT_HOUR" default:"12"`

	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisUsername string `envconfig:"REDIS_USERNAME"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// LoadConfig reads the configuration from the environment. A .env file in
// the working directory is loaded first if present; a missing file is not
// an error.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
