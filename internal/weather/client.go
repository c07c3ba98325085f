package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/caarlos0/env/v10"
	"go.uber.org/zap"

	"weather-chat/internal/domain"
)

var (
	// ErrMissingAPIKey es un error de configuración: no hay API key para el proveedor de clima.
	ErrMissingAPIKey = errors.New("weather api key not found")
	// ErrWeatherUnavailable indica que el upstream no devolvió datos utilizables.
	ErrWeatherUnavailable = errors.New("weather data not available")
)

// KeySource resuelve la API key en cada request.
type KeySource func() (string, error)

type credentials struct {
	APIKey string `env:"WEATHER_API_KEY"`
}

// KeyFromEnv lee WEATHER_API_KEY del entorno en el momento de la llamada.
func KeyFromEnv() (string, error) {
	var c credentials
	if err := env.Parse(&c); err != nil {
		return "", fmt.Errorf("parse weather credentials: %w", err)
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return "", ErrMissingAPIKey
	}
	return c.APIKey, nil
}

// Client consulta el clima actual en una API compatible con OpenWeatherMap.
type Client struct {
	baseURL string
	units   string
	keys    KeySource
	client  *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL, units string, keys KeySource, httpClient *http.Client, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://api.openweathermap.org/data/2.5"
	}
	if units == "" {
		units = "metric"
	}
	if keys == nil {
		keys = KeyFromEnv
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		units:   units,
		keys:    keys,
		client:  httpClient,
		logger:  logger,
	}
}

// Current devuelve las condiciones actuales para location.
func (c *Client) Current(ctx context.Context, location string) (domain.WeatherData, error) {
	apiKey, err := c.keys()
	if err != nil {
		return domain.WeatherData{}, err
	}

	q := url.Values{}
	q.Set("q", location)
	q.Set("appid", apiKey)
	q.Set("units", c.units)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/weather?"+q.Encode(), nil)
	if err != nil {
		return domain.WeatherData{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.WeatherData{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.WeatherData{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("weather upstream error",
			zap.Int("status", resp.StatusCode),
			zap.String("location", location),
		)
		return domain.WeatherData{}, fmt.Errorf("%w: status=%d", ErrWeatherUnavailable, resp.StatusCode)
	}

	var wr currentResponse
	if err := json.Unmarshal(body, &wr); err != nil {
		return domain.WeatherData{}, fmt.Errorf("%w: decode: %v", ErrWeatherUnavailable, err)
	}
	if len(wr.Weather) == 0 {
		return domain.WeatherData{}, fmt.Errorf("%w: missing conditions", ErrWeatherUnavailable)
	}

	name := strings.TrimSpace(wr.Name)
	if name == "" {
		name = location
	}
	return domain.WeatherData{
		Location:    name,
		Temperature: wr.Main.Temp,
		Humidity:    wr.Main.Humidity,
		Description: wr.Weather[0].Description,
		Units:       c.units,
		UTCOffset:   wr.Timezone,
	}, nil
}

type currentResponse struct {
	Name     string `json:"name"`
	Timezone int    `json:"timezone"`
	Main     struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}
