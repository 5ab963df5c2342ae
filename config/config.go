package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config aggregates all application configuration
type Config struct {
	AI         AIConfig         `yaml:"ai"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Weather    WeatherConfig    `yaml:"weather"`
	Conditions ConditionsConfig `yaml:"conditions"`
	Ingest     IngestConfig     `yaml:"ingest"`
	Server     ServerConfig     `yaml:"server"`
}

type AIConfig struct {
	Plugin string       `yaml:"plugin" env:"AI_PLUGIN" env-default:"gemini"`
	Gemini GeminiConfig `yaml:"gemini"`
	Ollama OllamaConfig `yaml:"ollama"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key" env:"GEMINI_API_KEY"`
	Model  string `yaml:"model" env:"GEMINI_MODEL" env-default:"gemini-2.5-flash"`
}

type OllamaConfig struct {
	Model   string `yaml:"model" env:"OLLAMA_MODEL" env-default:"qwen3:4b"`
	BaseURL string `yaml:"base_url" env:"OLLAMA_BASE_URL" env-default:"http://localhost:11434"`
}

// CatalogConfig locates the climbing route database
type CatalogConfig struct {
	Path string `yaml:"path" env:"CATALOG_DB_PATH" env-default:"data/routes.db"`
}

// WeatherConfig points at the open-meteo services
type WeatherConfig struct {
	ArchiveURL     string `yaml:"archive_url" env:"WEATHER_ARCHIVE_URL" env-default:"https://archive-api.open-meteo.com/v1/archive"`
	ForecastURL    string `yaml:"forecast_url" env:"WEATHER_FORECAST_URL" env-default:"https://api.open-meteo.com/v1/forecast"`
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"WEATHER_TIMEOUT_SECONDS" env-default:"10"`
}

// ConditionsConfig tunes the climbability verdict.
// SeverityMax switches the rule reduction from the guidebook-compatible
// last-writer-wins status to strict severity ordering (Red beats Yellow).
type ConditionsConfig struct {
	SeverityMax bool `yaml:"severity_max" env:"CONDITIONS_SEVERITY_MAX" env-default:"false"`
}

// IngestConfig configures the offline catalog loader
type IngestConfig struct {
	OpenBetaURL string `yaml:"openbeta_url" env:"OPENBETA_URL" env-default:"https://api.openbeta.io"`
}

type ServerConfig struct {
	Port string `yaml:"port" env:"PORT" env-default:"8000"`
}

// Load reads configuration from config.yaml and environment variables
// Priority: Env Vars > Config File > Defaults
func Load() (*Config, error) {
	var cfg Config

	// Read config.yaml if present, otherwise fall back to env vars only.
	err := cleanenv.ReadConfig("config.yaml", &cfg)
	if err != nil {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read env config: %w", err)
		}
	}

	return &cfg, nil
}
