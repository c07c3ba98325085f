package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort   string `env:"HTTP_PORT" envDefault:"8080"`
	LLMAPIKey  string `env:"LLM_API_KEY,required,notEmpty"`
	LLMBaseURL string `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel   string `env:"LLM_MODEL" envDefault:"gpt-4o"`

	ChatMaxDuration      time.Duration `env:"CHAT_MAX_DURATION" envDefault:"30s"`
	ChatMaxSteps         int           `env:"CHAT_MAX_STEPS" envDefault:"1"`
	ChatMaxHistoryTokens int           `env:"CHAT_MAX_HISTORY_TOKENS" envDefault:"8000"`

	WeatherBaseURL string `env:"WEATHER_BASE_URL" envDefault:"https://api.openweathermap.org/data/2.5"`
	WeatherUnits   string `env:"WEATHER_UNITS" envDefault:"metric"`

	CORSAllowOrigins []string `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"*"`
	LogLevel         string   `env:"LOG_LEVEL" envDefault:"info"`
	LogDev           bool     `env:"LOG_DEV" envDefault:"false"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if cfg.ChatMaxSteps < 1 {
		cfg.ChatMaxSteps = 1
	}
	if cfg.ChatMaxDuration <= 0 {
		cfg.ChatMaxDuration = 30 * time.Second
	}
	return &cfg, nil
}
