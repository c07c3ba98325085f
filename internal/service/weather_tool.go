package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"weather-chat/internal/domain"
	"weather-chat/internal/llm"
)

const WeatherToolName = "weather"

var weatherToolParameters = json.RawMessage(`{
  "type": "object",
  "properties": {
    "location": {"type": "string", "description": "The location to get the weather for"}
  },
  "required": ["location"]
}`)

// WeatherFetcher obtiene las condiciones actuales de una ubicación.
type WeatherFetcher interface {
	Current(ctx context.Context, location string) (domain.WeatherData, error)
}

// WeatherTool consulta el clima y le pide al LLM que lo cuente en tono conversacional.
type WeatherTool struct {
	weather   WeatherFetcher
	llmClient llm.LLMClient
	logger    *zap.Logger
	now       func() time.Time
}

func NewWeatherTool(weather WeatherFetcher, llmClient llm.LLMClient, logger *zap.Logger) *WeatherTool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeatherTool{
		weather:   weather,
		llmClient: llmClient,
		logger:    logger,
		now:       time.Now,
	}
}

func (t *WeatherTool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        WeatherToolName,
		Description: "Get the weather for the user's location",
		Parameters:  weatherToolParameters,
	}
}

// Execute recibe los argumentos JSON del modelo y devuelve la descripción ya reformulada.
func (t *WeatherTool) Execute(ctx context.Context, arguments string) (string, error) {
	var in struct {
		Location string `json:"location"`
	}
	if err := json.Unmarshal([]byte(arguments), &in); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToolArguments, err)
	}
	location := strings.TrimSpace(in.Location)
	if location == "" {
		return "", fmt.Errorf("%w: empty location", ErrInvalidToolArguments)
	}

	data, err := t.weather.Current(ctx, location)
	if err != nil {
		return "", fmt.Errorf("fetch weather for %s: %w", location, err)
	}

	prompt := buildWeatherPrompt(location, data, t.now())
	raw, err := t.llmClient.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("llm generate: %w", err)
	}

	text := cleanLLMTextResponse(raw)
	if text == "" {
		return "", fmt.Errorf("rephrase weather: %w", llm.ErrEmptyResponse)
	}
	t.logger.Debug("weather described", zap.String("location", location), zap.Int("chars", len(text)))
	return text, nil
}

func buildWeatherPrompt(location string, data domain.WeatherData, now time.Time) string {
	symbol := data.TemperatureSymbol()
	local := data.LocalTime(now)
	return fmt.Sprintf(`Describe the weather in %s in a controversial and fun manner but short.
Current conditions: %s, temperature: %.1f%s, humidity: %.0f%%. Local time: %s.
Announce weather location and time.`,
		location,
		data.Description,
		data.Temperature, symbol,
		data.Humidity,
		local.Format("Monday 15:04"),
	)
}
