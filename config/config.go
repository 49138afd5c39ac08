package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	Redis         RedisConfig         `yaml:"redis"`
	Thumbnails    ThumbnailsConfig    `yaml:"thumbnails"`
	JWT           JWTConfig           `yaml:"jwt"`
	HTTP          HTTPConfig          `yaml:"http"`
	Submission    SubmissionConfig    `yaml:"submission"`
	Popularity    PopularityConfig    `yaml:"popularity"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Address string `yaml:"address"`
}

// ThumbnailsConfig holds thumbnail storage configuration.
type ThumbnailsConfig struct {
	Bucket string `yaml:"bucket"`
}

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// HTTPConfig holds the inbound HTTP server configuration.
type HTTPConfig struct {
	Address string `yaml:"address"`
}

// SubmissionConfig holds the record submission guard settings.
type SubmissionConfig struct {
	// DeniedLevels lists level ids whose submissions are acknowledged
	// without being stored.
	DeniedLevels    []int64       `yaml:"denied_levels"`
	TimeTolerance   float64       `yaml:"time_tolerance"`
	DuplicateWindow time.Duration `yaml:"duplicate_window"`
}

// PopularityConfig holds the popularity aggregation settings.
type PopularityConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	DailyLimit      int           `yaml:"daily_limit"`
	WeeklyLimit     int           `yaml:"weekly_limit"`
	MonthlyLimit    int           `yaml:"monthly_limit"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	MetricsAddress string `yaml:"metrics_address"`
	Environment    string `yaml:"environment"`
}

// LoadConfig loads the configuration from a YAML file.
func LoadConfig(filename string) (*Config, error) {
	// Try reading configuration from the file first
	data, err := os.ReadFile(filename)
	if err != nil {
		// If the file is not found, try loading from environment variables
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// --- OVERRIDE WITH ENV VARS IF PRESENT ---
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("REDIS_ADDRESS"); v != "" {
		cfg.Redis.Address = v
	}
	if v := os.Getenv("THUMBNAIL_BUCKET"); v != "" {
		cfg.Thumbnails.Bucket = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("DENIED_LEVELS"); v != "" {
		if ids, err := parseLevelIDs(v); err == nil {
			cfg.Submission.DeniedLevels = ids
		}
	}
	if v := os.Getenv("DUPLICATE_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Submission.DuplicateWindow = d
		}
	}
	if v := os.Getenv("TIME_TOLERANCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Submission.TimeTolerance = f
		}
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	var cfg Config

	cfg.Postgres.DSN = os.Getenv("DATABASE_URL")
	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	cfg.NATS.URL = os.Getenv("NATS_URL")
	if cfg.NATS.URL == "" {
		return nil, fmt.Errorf("NATS_URL environment variable not set")
	}

	cfg.Redis.Address = os.Getenv("REDIS_ADDRESS")
	if cfg.Redis.Address == "" {
		return nil, fmt.Errorf("REDIS_ADDRESS environment variable not set")
	}

	cfg.Thumbnails.Bucket = os.Getenv("THUMBNAIL_BUCKET")
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	cfg.HTTP.Address = os.Getenv("HTTP_ADDRESS")
	cfg.Observability.MetricsAddress = os.Getenv("METRICS_ADDRESS")
	cfg.Observability.Environment = os.Getenv("ENV")

	if v := os.Getenv("DENIED_LEVELS"); v != "" {
		ids, err := parseLevelIDs(v)
		if err != nil {
			return nil, fmt.Errorf("invalid DENIED_LEVELS: %w", err)
		}
		cfg.Submission.DeniedLevels = ids
	}
	if v := os.Getenv("DUPLICATE_WINDOW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid DUPLICATE_WINDOW: %w", err)
		}
		cfg.Submission.DuplicateWindow = d
	}
	if v := os.Getenv("TIME_TOLERANCE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TIME_TOLERANCE: %w", err)
		}
		cfg.Submission.TimeTolerance = f
	}

	cfg.applyDefaults()

	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.HTTP.Address == "" {
		cfg.HTTP.Address = ":8080"
	}
	if cfg.Observability.MetricsAddress == "" {
		cfg.Observability.MetricsAddress = ":9090"
	}
	if cfg.Submission.TimeTolerance == 0 {
		cfg.Submission.TimeTolerance = 0.001
	}
	if cfg.Submission.DuplicateWindow == 0 {
		cfg.Submission.DuplicateWindow = time.Minute
	}
	if cfg.Popularity.RefreshInterval == 0 {
		cfg.Popularity.RefreshInterval = time.Hour
	}
	if cfg.Popularity.DailyLimit == 0 {
		cfg.Popularity.DailyLimit = 10
	}
	if cfg.Popularity.WeeklyLimit == 0 {
		cfg.Popularity.WeeklyLimit = 25
	}
	if cfg.Popularity.MonthlyLimit == 0 {
		cfg.Popularity.MonthlyLimit = 50
	}
}

func parseLevelIDs(s string) ([]int64, error) {
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid level id %q: %w", p, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
