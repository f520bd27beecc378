package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Database DatabaseConfig `yaml:"database"`
	Hermes   HermesConfig   `yaml:"hermes"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port               int    `yaml:"port"`
	MetricsPort        int    `yaml:"metrics_port"`
	AdminToken         string `yaml:"admin_token"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`
}

// CatalogConfig selects where safeguard evaluations come from.
// Source is "csv" or "postgres".
type CatalogConfig struct {
	Source            string `yaml:"source"`
	CSVPath           string `yaml:"csv_path"`
	RefreshIntervalMs int    `yaml:"refresh_interval_ms"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type HermesConfig struct {
	URL string `yaml:"url"`
}

type ScoringConfig struct {
	TopN             int            `yaml:"top_n"`
	PerformanceCurve string         `yaml:"performance_curve"`
	Weights          ScoringWeights `yaml:"weights"`
}

// ScoringWeights overrides the built-in weights. Nil scalars and absent
// table keys keep their defaults; table keys use preference spellings
// ("high", "Very Low", "code_generation").
type ScoringWeights struct {
	SystemCompatibility *float64           `yaml:"system_compatibility"`
	RAGCompatibility    *float64           `yaml:"rag_compatibility"`
	BELLSScore          *float64           `yaml:"bells_score"`
	Performance         map[string]float64 `yaml:"performance"`
	Risk                map[string]float64 `yaml:"risk"`
	RiskMultiplier      map[string]float64 `yaml:"risk_multiplier"`
	Interaction         map[string]float64 `yaml:"interaction"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Catalog.RefreshIntervalMs) * time.Millisecond
}

// Validate catches settings that would only fail later at startup.
func (c *Config) Validate() error {
	switch c.Catalog.Source {
	case "csv":
		if c.Catalog.CSVPath == "" {
			return fmt.Errorf("catalog.csv_path is required for the csv source")
		}
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for the postgres source")
		}
	default:
		return fmt.Errorf("unknown catalog source %q", c.Catalog.Source)
	}
	if c.Catalog.RefreshIntervalMs < 0 {
		return fmt.Errorf("catalog.refresh_interval_ms must not be negative")
	}
	if c.Scoring.TopN < 0 {
		return fmt.Errorf("scoring.top_n must not be negative")
	}
	return nil
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:               8700,
			MetricsPort:        8701,
			RateLimitPerMinute: 120,
		},
		Catalog: CatalogConfig{
			Source:  "csv",
			CSVPath: "data/safeguard_evaluation_results.csv",
		},
		Scoring: ScoringConfig{
			TopN:             3,
			PerformanceCurve: "linear",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("AEGIS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("AEGIS_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("AEGIS_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("AEGIS_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.RateLimitPerMinute = n
		}
	}
	if v := os.Getenv("AEGIS_CATALOG_SOURCE"); v != "" {
		cfg.Catalog.Source = v
	}
	if v := os.Getenv("AEGIS_CATALOG_CSV_PATH"); v != "" {
		cfg.Catalog.CSVPath = v
	}
	if v := os.Getenv("AEGIS_CATALOG_REFRESH_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Catalog.RefreshIntervalMs = n
		}
	}
	if v := os.Getenv("AEGIS_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("AEGIS_HERMES_URL"); v != "" {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("AEGIS_TOP_N"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scoring.TopN = n
		}
	}
	if v := os.Getenv("AEGIS_PERFORMANCE_CURVE"); v != "" {
		cfg.Scoring.PerformanceCurve = v
	}
	if v := os.Getenv("AEGIS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("AEGIS_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
