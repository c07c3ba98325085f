package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"weather-chat/internal/config"
	"weather-chat/internal/domain"
	"weather-chat/internal/llm"
	"weather-chat/internal/service"
	"weather-chat/internal/weather"
)

func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := newCLILogger()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	llmClient := llm.NewOpenAIClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, logger)
	weatherClient := weather.NewClient(cfg.WeatherBaseURL, cfg.WeatherUnits, weather.KeyFromEnv, &http.Client{Timeout: 10 * time.Second}, logger)
	chatSvc := service.NewChatService(llmClient, logger, service.ChatOptions{
		MaxSteps:         cfg.ChatMaxSteps,
		MaxHistoryTokens: cfg.ChatMaxHistoryTokens,
	}, service.NewWeatherTool(weatherClient, llmClient, logger))

	fmt.Println("---- Weather chat (/new para empezar de nuevo, /exit para salir) ----")
	var history []domain.Message
	for {
		fmt.Print("User > ")
		text, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println()
			return
		}
		text = strings.TrimSpace(text)
		switch {
		case text == "":
			continue
		case strings.EqualFold(text, "/exit"):
			fmt.Println("Saliendo...")
			return
		case strings.EqualFold(text, "/new"):
			history = nil
			fmt.Println("Conversacion reiniciada.")
			continue
		}

		history = append(history, domain.Message{ID: uuid.NewString(), Role: domain.RoleUser, Content: text})

		reply, err := chatTurn(ctx, chatSvc, history, cfg.ChatMaxDuration)
		if err != nil {
			fmt.Printf("\nerror generando respuesta: %v\n", err)
		}
		if reply.Content != "" || len(reply.ToolInvocations) > 0 {
			history = append(history, reply)
		}
	}
}

// newCLILogger solo muestra warnings para no ensuciar la conversación.
func newCLILogger() (*zap.Logger, error) {
	return zap.NewDevelopment(zap.IncreaseLevel(zap.WarnLevel))
}

// chatTurn corre un turno en proceso e imprime lo que va llegando.
func chatTurn(ctx context.Context, chatSvc *service.ChatService, history []domain.Message, maxDuration time.Duration) (domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, maxDuration)
	defer cancel()

	fmt.Print("AI > ")
	reply, err := chatSvc.Stream(ctx, history, func(e service.StreamEvent) error {
		switch e.Type {
		case service.EventText:
			fmt.Print(e.Text)
		case service.EventToolCall:
			fmt.Printf("[%s %s] ", e.Invocation.ToolName, string(e.Invocation.Args))
		case service.EventToolResult:
			fmt.Print(e.Invocation.Result)
		case service.EventToolError:
			fmt.Printf("(%s no disponible: %s)", e.Invocation.ToolName, e.Invocation.Error)
		}
		return nil
	})
	fmt.Println()
	if errors.Is(err, context.DeadlineExceeded) {
		return reply, fmt.Errorf("timeout after %s: %w", maxDuration, err)
	}
	return reply, err
}
