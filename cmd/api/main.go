package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"weather-chat/internal/config"
	apihttp "weather-chat/internal/http"
	"weather-chat/internal/llm"
	"weather-chat/internal/service"
	"weather-chat/internal/weather"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	llmClient := llm.NewOpenAIClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, logger)
	weatherClient := weather.NewClient(cfg.WeatherBaseURL, cfg.WeatherUnits, weather.KeyFromEnv, &http.Client{Timeout: 10 * time.Second}, logger)
	weatherTool := service.NewWeatherTool(weatherClient, llmClient, logger)
	chatSvc := service.NewChatService(llmClient, logger, service.ChatOptions{
		MaxSteps:         cfg.ChatMaxSteps,
		MaxHistoryTokens: cfg.ChatMaxHistoryTokens,
	}, weatherTool)

	chatHandler := apihttp.NewChatHandler(logger, chatSvc, cfg.ChatMaxDuration)
	router := apihttp.NewRouter(logger, chatHandler, cfg.CORSAllowOrigins)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ChatMaxDuration+5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server",
		zap.String("port", cfg.HTTPPort),
		zap.String("model", cfg.LLMModel),
		zap.Int("max_steps", cfg.ChatMaxSteps),
	)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("server stopped")
}

// newLogger arma el logger de zap según LOG_DEV y LOG_LEVEL.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zcfg := zap.NewProductionConfig()
	if cfg.LogDev {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}
