package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/prop-insights/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

const dateLayout = "2006-01-02"

// Config stores runtime configuration for the ingestion and enrichment
// processes. Field validation tags catch contradictory values that the
// per-key parsers cannot.
type Config struct {
	AppEnv         string `validate:"oneof=dev stage prod"`
	ServiceName    string `validate:"required"`
	ServiceVersion string

	DBURL string `validate:"required"`

	Leagues          []string      `validate:"min=1,dive,min=2,max=5"`
	StartDate        time.Time     `validate:"required"`
	Days             int           `validate:"min=1,max=366"`
	Direction        string        `validate:"oneof=forward backward"`
	DryRun           bool
	Workers          int           `validate:"min=1,max=64"`
	RequestDelay     time.Duration `validate:"min=0"`
	FailureThreshold int           `validate:"min=1"`
	FetchTimeout     time.Duration `validate:"min=1ms"`

	ProviderBaseURL            string `validate:"omitempty,url"`
	ProviderToken              string
	ProviderMaxRetries         int `validate:"min=1,max=10"`
	ProviderCircuitEnabled     bool
	ProviderCircuitFailures    int           `validate:"min=1"`
	ProviderCircuitOpenTimeout time.Duration `validate:"min=1ms"`
	ProviderCircuitHalfOpenMax int           `validate:"min=1"`

	Season        string        `validate:"required"`
	PageSize      int           `validate:"min=1,max=5000"`
	PageDelay     time.Duration `validate:"min=0"`
	EnrichWorkers int           `validate:"min=1,max=64"`

	UptraceEnabled         bool
	UptraceDSN             string
	PyroscopeEnabled       bool
	PyroscopeServerAddress string
	PyroscopeAuthToken     string

	LogLevel logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:          appEnv,
		ServiceName:     getEnv("SERVICE_NAME", "prop-insights"),
		ServiceVersion:  getEnv("SERVICE_VERSION", "dev"),
		DBURL:           strings.TrimSpace(getEnv("DB_URL", "")),
		ProviderBaseURL: strings.TrimSpace(getEnv("PROVIDER_BASE_URL", "")),
		ProviderToken:   strings.TrimSpace(getEnv("PROVIDER_TOKEN", "")),
		UptraceDSN:      strings.TrimSpace(getEnv("UPTRACE_DSN", "")),
		LogLevel:        parseLogLevel(getEnv("LOG_LEVEL", "info")),
	}

	cfg.Leagues = splitCSV(strings.ToLower(getEnv("LEAGUES", "nba")))

	startDate := strings.TrimSpace(getEnv("START_DATE", ""))
	if startDate == "" {
		cfg.StartDate = time.Now().UTC().Truncate(24 * time.Hour)
	} else {
		parsed, err := time.Parse(dateLayout, startDate)
		if err != nil {
			return Config{}, fmt.Errorf("parse START_DATE: %w", err)
		}
		cfg.StartDate = parsed.UTC()
	}

	if cfg.Days, err = getEnvAsInt("DAYS", 1); err != nil {
		return Config{}, fmt.Errorf("parse DAYS: %w", err)
	}

	cfg.Direction = strings.ToLower(strings.TrimSpace(getEnv("DIRECTION", "backward")))

	if cfg.DryRun, err = getEnvAsBool("DRY_RUN", false); err != nil {
		return Config{}, fmt.Errorf("parse DRY_RUN: %w", err)
	}
	if cfg.Workers, err = getEnvAsInt("WORKERS", 4); err != nil {
		return Config{}, fmt.Errorf("parse WORKERS: %w", err)
	}
	if cfg.RequestDelay, err = getEnvAsDuration("REQUEST_DELAY", 250*time.Millisecond); err != nil {
		return Config{}, fmt.Errorf("parse REQUEST_DELAY: %w", err)
	}
	if cfg.FailureThreshold, err = getEnvAsInt("FAILURE_THRESHOLD", 10); err != nil {
		return Config{}, fmt.Errorf("parse FAILURE_THRESHOLD: %w", err)
	}
	if cfg.FetchTimeout, err = getEnvAsDuration("FETCH_TIMEOUT", 15*time.Second); err != nil {
		return Config{}, fmt.Errorf("parse FETCH_TIMEOUT: %w", err)
	}

	if cfg.ProviderMaxRetries, err = getEnvAsInt("PROVIDER_MAX_RETRIES", 3); err != nil {
		return Config{}, fmt.Errorf("parse PROVIDER_MAX_RETRIES: %w", err)
	}
	if cfg.ProviderCircuitEnabled, err = getEnvAsBool("PROVIDER_CIRCUIT_ENABLED", true); err != nil {
		return Config{}, fmt.Errorf("parse PROVIDER_CIRCUIT_ENABLED: %w", err)
	}
	if cfg.ProviderCircuitFailures, err = getEnvAsInt("PROVIDER_CIRCUIT_FAILURE_COUNT", 5); err != nil {
		return Config{}, fmt.Errorf("parse PROVIDER_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if cfg.ProviderCircuitOpenTimeout, err = getEnvAsDuration("PROVIDER_CIRCUIT_OPEN_TIMEOUT", 30*time.Second); err != nil {
		return Config{}, fmt.Errorf("parse PROVIDER_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if cfg.ProviderCircuitHalfOpenMax, err = getEnvAsInt("PROVIDER_CIRCUIT_HALF_OPEN_MAX_REQ", 1); err != nil {
		return Config{}, fmt.Errorf("parse PROVIDER_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}

	cfg.Season = strings.TrimSpace(getEnv("SEASON", strconv.Itoa(cfg.StartDate.Year())))
	if cfg.PageSize, err = getEnvAsInt("PAGE_SIZE", 200); err != nil {
		return Config{}, fmt.Errorf("parse PAGE_SIZE: %w", err)
	}
	if cfg.PageDelay, err = getEnvAsDuration("PAGE_DELAY", 100*time.Millisecond); err != nil {
		return Config{}, fmt.Errorf("parse PAGE_DELAY: %w", err)
	}
	if cfg.EnrichWorkers, err = getEnvAsInt("ENRICH_WORKERS", 8); err != nil {
		return Config{}, fmt.Errorf("parse ENRICH_WORKERS: %w", err)
	}

	if cfg.UptraceEnabled, err = getEnvAsBool("UPTRACE_ENABLED", false); err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	if cfg.PyroscopeEnabled, err = getEnvAsBool("PYROSCOPE_ENABLED", false); err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	cfg.PyroscopeAuthToken = strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", ""))
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func parseAppEnv(v string) (string, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case EnvDev, EnvStage, EnvProd:
		return v, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsBool(key string, fallback bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	return strconv.ParseBool(value)
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	return time.ParseDuration(value)
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}
