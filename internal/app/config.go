package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/baseapi-backend/internal/data/capture"
	"github.com/yungbote/baseapi-backend/internal/data/db"
	"github.com/yungbote/baseapi-backend/internal/observability"
	"github.com/yungbote/baseapi-backend/internal/pkg/logger"
	"github.com/yungbote/baseapi-backend/internal/utils"
)

type Config struct {
	LogMode     string                   `yaml:"log_mode"`
	AuditSource string                   `yaml:"audit_source"`
	DB          db.Config                `yaml:"db"`
	Otel        observability.OtelConfig `yaml:"otel"`
}

// LoadConfig reads the environment, then overlays the YAML file named by
// APP_CONFIG_FILE when set. Keys present in the file win.
func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := Config{
		LogMode:     utils.GetEnv("LOG_MODE", "development", log),
		AuditSource: utils.GetEnv("AUDIT_SOURCE", capture.DefaultSource, log),
		DB: db.Config{
			Driver: utils.GetEnv("DB_DRIVER", db.DriverPostgres, log),
			Postgres: db.PostgresConfig{
				Host:     utils.GetEnv("POSTGRES_HOST", "localhost", log),
				Port:     utils.GetEnv("POSTGRES_PORT", "5432", log),
				User:     utils.GetEnv("POSTGRES_USER", "postgres", log),
				Password: utils.GetEnv("POSTGRES_PASSWORD", "", log),
				Name:     utils.GetEnv("POSTGRES_NAME", "baseapi", log),
				SSLMode:  utils.GetEnv("POSTGRES_SSLMODE", "disable", log),
			},
			SQLitePath: utils.GetEnv("SQLITE_PATH", "baseapi.db", log),
		},
		Otel: observability.OtelConfig{
			Enabled:     utils.GetEnvAsBool("OTEL_ENABLED", false, log),
			ServiceName: utils.GetEnv("OTEL_SERVICE_NAME", "baseapi", log),
			Environment: utils.GetEnv("APP_ENV", "", log),
			Version:     utils.GetEnv("APP_VERSION", "", log),
			Endpoint:    utils.GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
			Headers:     utils.GetEnv("OTEL_EXPORTER_OTLP_HEADERS", "", log),
			Insecure:    utils.GetEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", false, log),
			SampleRatio: envFloat("OTEL_SAMPLER_RATIO", 0.1, log),
		},
	}

	path := strings.TrimSpace(utils.GetEnv("APP_CONFIG_FILE", "", log))
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

func envFloat(key string, defaultVal float64, log *logger.Logger) float64 {
	raw := strings.TrimSpace(utils.GetEnv(key, "", log))
	if raw == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		if log != nil {
			log.Warn("Environment variable could not be parsed as float, using default", "env_var", key, "providedVal", raw)
		}
		return defaultVal
	}
	return f
}
