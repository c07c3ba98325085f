package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
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

const (
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
	colorCyan  = "\033[36m"
	colorReset = "\033[0m"
)

type Scenario struct {
	Name       string
	Input      string
	ExpectTool bool
}

// recordingFetcher guarda el último WeatherData para compararlo con lo que ve el usuario.
type recordingFetcher struct {
	inner service.WeatherFetcher
	mu    sync.Mutex
	last  domain.WeatherData
}

func (r *recordingFetcher) Current(ctx context.Context, location string) (domain.WeatherData, error) {
	data, err := r.inner.Current(ctx, location)
	if err == nil {
		r.mu.Lock()
		r.last = data
		r.mu.Unlock()
	}
	return data, err
}

func (r *recordingFetcher) Last() domain.WeatherData {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func main() {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewNop()
	llmClient := llm.NewOpenAIClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, logger)
	fetcher := &recordingFetcher{
		inner: weather.NewClient(cfg.WeatherBaseURL, cfg.WeatherUnits, weather.KeyFromEnv, &http.Client{Timeout: 10 * time.Second}, logger),
	}
	chatSvc := service.NewChatService(llmClient, logger, service.ChatOptions{
		MaxSteps:         cfg.ChatMaxSteps,
		MaxHistoryTokens: cfg.ChatMaxHistoryTokens,
	}, service.NewWeatherTool(fetcher, llmClient, logger))

	scenarios := []Scenario{
		{Name: "sin clima", Input: "Tell me a short joke about programmers.", ExpectTool: false},
		{Name: "clima Paris", Input: "What's the weather like in Paris right now?", ExpectTool: true},
		{Name: "clima Tokyo", Input: "Should I take an umbrella in Tokyo today?", ExpectTool: true},
	}

	var (
		failed      int
		judged      int
		totalConv   int
		totalAccury int
	)
	for _, sc := range scenarios {
		fmt.Printf("%s[%s]%s %s\n", colorCyan, sc.Name, colorReset, sc.Input)

		reply, err := runScenario(ctx, chatSvc, sc.Input, cfg.ChatMaxDuration)
		if err != nil {
			fail(&failed, "chat failed: %v", err)
			continue
		}

		if !sc.ExpectTool {
			if strings.TrimSpace(reply.Content) == "" {
				fail(&failed, "expected text, got empty reply")
			} else if len(reply.ToolInvocations) != 0 {
				fail(&failed, "expected no tool invocation, got %d", len(reply.ToolInvocations))
			} else {
				pass("%s", reply.Content)
			}
			continue
		}

		if len(reply.ToolInvocations) != 1 {
			fail(&failed, "expected exactly one tool invocation, got %d", len(reply.ToolInvocations))
			continue
		}
		inv := reply.ToolInvocations[0]
		if inv.State != domain.ToolInvocationResult || strings.TrimSpace(inv.Result) == "" {
			fail(&failed, "invocation did not produce a result (state=%s error=%q)", inv.State, inv.Error)
			continue
		}
		data := fetcher.Last()
		if echoesPayload(inv.Result, data) {
			fail(&failed, "result echoes raw payload: %s", inv.Result)
			continue
		}
		pass("%s", inv.Result)

		jr, err := evaluateResult(ctx, llmClient, data, sc.Input, inv.Result)
		if err != nil {
			log.Printf("judge failed: %v", err)
			continue
		}
		fmt.Printf("%sJuez%s %q\n", colorCyan, colorReset, jr.Reasoning)
		fmt.Printf("Scores: Conversacional %d/5 | Precision %d/5\n\n", jr.ConversationalScore, jr.AccuracyScore)
		judged++
		totalConv += jr.ConversationalScore
		totalAccury += jr.AccuracyScore
	}

	if judged > 0 {
		fmt.Println("==== Promedios ====")
		fmt.Printf("Conversacional: %.2f/5 | Precision: %.2f/5\n",
			float64(totalConv)/float64(judged), float64(totalAccury)/float64(judged))
	}
	if failed > 0 {
		fmt.Printf("%s%d/%d escenarios fallaron%s\n", colorRed, failed, len(scenarios), colorReset)
		os.Exit(1)
	}
}

func runScenario(ctx context.Context, chatSvc *service.ChatService, input string, maxDuration time.Duration) (domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, maxDuration)
	defer cancel()
	history := []domain.Message{{ID: uuid.NewString(), Role: domain.RoleUser, Content: input}}
	return chatSvc.Stream(ctx, history, func(service.StreamEvent) error { return nil })
}

func pass(format string, args ...any) {
	fmt.Printf("%s[OK]%s %s\n", colorGreen, colorReset, fmt.Sprintf(format, args...))
}

func fail(counter *int, format string, args ...any) {
	*counter++
	fmt.Printf("%s[FAIL]%s %s\n\n", colorRed, colorReset, fmt.Sprintf(format, args...))
}
