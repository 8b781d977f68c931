// Package config loads service settings from the environment, optionally
// overlaid by a YAML file named in CONFIG_FILE. Environment variables win
// over the file; the file wins over defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port            string        `yaml:"port"`
	ChromePath      string        `yaml:"chromePath"`
	DatabaseURL     string        `yaml:"databaseUrl"`
	RedisAddr       string        `yaml:"redisAddr"`
	RedisPassword   string        `yaml:"redisPassword"`
	RedisDB         int           `yaml:"redisDb"`
	CacheTTL        time.Duration `yaml:"cacheTtl"`
	AIServiceURL    string        `yaml:"aiServiceUrl"`
	AILanguage      string        `yaml:"aiLanguage"`
	FontDir         string        `yaml:"fontDir"`
	ArtifactDir     string        `yaml:"artifactDir"`
	ExportTimeout   time.Duration `yaml:"exportTimeout"`
	FontTimeout     time.Duration `yaml:"fontTimeout"`
	PreviewDebounce time.Duration `yaml:"previewDebounce"`
	// PreviewEngine is "local" (PDF layout engine) or "chrome".
	PreviewEngine string `yaml:"previewEngine"`
	BodyLimitMB   int    `yaml:"bodyLimitMb"`
}

func Defaults() Config {
	return Config{
		Port:            "3000",
		AIServiceURL:    "http://ai-service:8000",
		AILanguage:      "English",
		CacheTTL:        24 * time.Hour,
		ExportTimeout:   90 * time.Second,
		FontTimeout:     10 * time.Second,
		PreviewDebounce: 250 * time.Millisecond,
		PreviewEngine:   "local",
		BodyLimitMB:     8,
	}
}

// Load builds the configuration: defaults, then CONFIG_FILE, then env.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	cfg := Defaults()
	if path := getenv("CONFIG_FILE"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	str("PORT", &cfg.Port)
	str("CHROME_PATH", &cfg.ChromePath)
	str("DATABASE_URL", &cfg.DatabaseURL)
	str("REDIS_ADDR", &cfg.RedisAddr)
	str("REDIS_PASSWORD", &cfg.RedisPassword)
	str("AI_SERVICE_URL", &cfg.AIServiceURL)
	str("AI_LANGUAGE", &cfg.AILanguage)
	str("FONT_DIR", &cfg.FontDir)
	str("ARTIFACT_DIR", &cfg.ArtifactDir)
	str("PREVIEW_ENGINE", &cfg.PreviewEngine)

	for key, dst := range map[string]*time.Duration{
		"CACHE_TTL":        &cfg.CacheTTL,
		"EXPORT_TIMEOUT":   &cfg.ExportTimeout,
		"FONT_TIMEOUT":     &cfg.FontTimeout,
		"PREVIEW_DEBOUNCE": &cfg.PreviewDebounce,
	} {
		if v := getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return cfg, fmt.Errorf("config: %s: %w", key, err)
			}
			*dst = d
		}
	}
	for key, dst := range map[string]*int{
		"REDIS_DB":      &cfg.RedisDB,
		"BODY_LIMIT_MB": &cfg.BodyLimitMB,
	} {
		if v := getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return cfg, fmt.Errorf("config: %s: %w", key, err)
			}
			*dst = n
		}
	}

	if cfg.PreviewEngine != "local" && cfg.PreviewEngine != "chrome" {
		return cfg, fmt.Errorf("config: unknown preview engine %q", cfg.PreviewEngine)
	}
	return cfg, nil
}
