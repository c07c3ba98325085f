package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"

	"weather-chat/internal/domain"
	"weather-chat/internal/llm"
)

const DefaultSystemPrompt = "You have access to a weather tool that gives human-readable weather information. " +
	"Use it to respond to weather-related queries in a conversational manner."

var ErrChatServiceNotConfigured = errors.New("chat service not configured")

type EventType string

const (
	EventStart      EventType = "start"
	EventText       EventType = "text"
	EventToolCall   EventType = "tool_call"
	EventToolResult EventType = "tool_result"
	EventToolError  EventType = "tool_error"
	EventError      EventType = "error"
	EventFinish     EventType = "finish"
)

// StreamEvent es cada paso que se le entrega al cliente mientras se genera la respuesta.
type StreamEvent struct {
	Type         EventType              `json:"type"`
	MessageID    string                 `json:"message_id,omitempty"`
	Text         string                 `json:"text,omitempty"`
	Invocation   *domain.ToolInvocation `json:"invocation,omitempty"`
	FinishReason string                 `json:"finish_reason,omitempty"`
	Error        string                 `json:"error,omitempty"`
}

// EventSink recibe los eventos en orden. Si devuelve error se aborta la generación.
type EventSink func(StreamEvent) error

type ChatOptions struct {
	SystemPrompt     string
	MaxSteps         int
	MaxHistoryTokens int
}

// ChatService reenvía la conversación al LLM con las tools declaradas y ejecuta las tool calls.
// No guarda estado entre llamadas.
type ChatService struct {
	streamer llm.ChatStreamer
	tools    map[string]Tool
	defs     []llm.ToolDefinition
	opts     ChatOptions
	logger   *zap.Logger
}

func NewChatService(streamer llm.ChatStreamer, logger *zap.Logger, opts ChatOptions, tools ...Tool) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = DefaultSystemPrompt
	}
	if opts.MaxSteps < 1 {
		opts.MaxSteps = 1
	}
	s := &ChatService{
		streamer: streamer,
		tools:    make(map[string]Tool, len(tools)),
		opts:     opts,
		logger:   logger,
	}
	for _, t := range tools {
		def := t.Definition()
		s.tools[def.Name] = t
		s.defs = append(s.defs, def)
	}
	return s
}

// Stream genera la respuesta del asistente para el historial dado, emitiendo eventos a sink.
// Devuelve el mensaje del asistente tal como quedó, incluso si hubo error a mitad de camino.
func (s *ChatService) Stream(ctx context.Context, messages []domain.Message, sink EventSink) (domain.Message, error) {
	if s == nil || s.streamer == nil {
		return domain.Message{}, ErrChatServiceNotConfigured
	}
	normalized, err := NormalizeMessages(messages)
	if err != nil {
		return domain.Message{}, err
	}

	history := trimHistory(toChatMessages(normalized), s.opts.MaxHistoryTokens)
	history = append(history, llm.ChatMessage{Role: llm.RoleSystem, Content: s.opts.SystemPrompt})

	assistant := domain.Message{ID: uuid.NewString(), Role: domain.RoleAssistant}
	if err := sink(StreamEvent{Type: EventStart, MessageID: assistant.ID}); err != nil {
		return assistant, err
	}

	var finishReason string
	for step := 1; ; step++ {
		res, err := s.runStep(ctx, history, &assistant, sink)
		if err != nil {
			if errors.Is(err, errSinkClosed) {
				return assistant, err
			}
			s.logger.Warn("chat stream failed", zap.Error(err), zap.Int("step", step))
			_ = sink(StreamEvent{Type: EventError, Error: "chat stream failed"})
			return assistant, err
		}
		finishReason = res.finishReason
		if len(res.toolCalls) == 0 {
			break
		}

		toolMessages, err := s.runTools(ctx, res.toolCalls, &assistant, sink)
		if err != nil {
			return assistant, err
		}
		if step >= s.opts.MaxSteps {
			break
		}
		history = append(history, llm.ChatMessage{
			Role:      llm.RoleAssistant,
			Content:   res.text,
			ToolCalls: res.toolCalls,
		})
		history = append(history, toolMessages...)
	}

	if err := sink(StreamEvent{Type: EventFinish, FinishReason: finishReason}); err != nil {
		return assistant, err
	}
	return assistant, nil
}

var errSinkClosed = errors.New("event sink closed")

type stepResult struct {
	text         string
	toolCalls    []llm.ToolCall
	finishReason string
}

func (s *ChatService) runStep(
	ctx context.Context,
	history []llm.ChatMessage,
	assistant *domain.Message,
	sink EventSink,
) (stepResult, error) {
	stream, err := s.streamer.StreamChat(ctx, llm.ChatRequest{Messages: history, Tools: s.defs})
	if err != nil {
		return stepResult{}, fmt.Errorf("open stream: %w", err)
	}
	defer stream.Close()

	var (
		text   strings.Builder
		calls  = newToolCallAccumulator()
		result stepResult
	)
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stepResult{}, fmt.Errorf("recv: %w", err)
		}
		if chunk.ContentDelta != "" {
			text.WriteString(chunk.ContentDelta)
			assistant.Content += chunk.ContentDelta
			if err := sink(StreamEvent{Type: EventText, Text: chunk.ContentDelta}); err != nil {
				return stepResult{}, fmt.Errorf("%w: %v", errSinkClosed, err)
			}
		}
		calls.add(chunk.ToolCallDeltas)
		if chunk.FinishReason != "" {
			result.finishReason = chunk.FinishReason
		}
	}

	result.text = text.String()
	result.toolCalls = calls.list()
	return result, nil
}

// runTools ejecuta las tool calls en orden. Una tool que falla no corta el chat:
// se informa con un evento tool_error y al modelo le llega un mensaje genérico.
func (s *ChatService) runTools(
	ctx context.Context,
	calls []llm.ToolCall,
	assistant *domain.Message,
	sink EventSink,
) ([]llm.ChatMessage, error) {
	out := make([]llm.ChatMessage, 0, len(calls))
	for _, call := range calls {
		inv := domain.ToolInvocation{
			ToolCallID: call.ID,
			ToolName:   call.Name,
			Args:       rawArguments(call.Arguments),
			State:      domain.ToolInvocationCall,
		}
		// Cada evento lleva su propia copia: el consumidor puede serializarla en otra goroutine.
		pending := inv
		if err := sink(StreamEvent{Type: EventToolCall, Invocation: &pending}); err != nil {
			return nil, fmt.Errorf("%w: %v", errSinkClosed, err)
		}

		content := toolFailureContent
		event := EventToolError
		result, err := s.executeTool(ctx, call)
		if err != nil {
			s.logger.Warn("tool execution failed",
				zap.String("tool", call.Name),
				zap.String("tool_call_id", call.ID),
				zap.Error(err),
			)
			inv = inv.WithError(ErrToolFailed.Error())
		} else {
			inv = inv.WithResult(result)
			content = result
			event = EventToolResult
		}

		assistant.ToolInvocations = append(assistant.ToolInvocations, inv)
		done := inv
		if err := sink(StreamEvent{Type: event, Invocation: &done}); err != nil {
			return nil, fmt.Errorf("%w: %v", errSinkClosed, err)
		}
		out = append(out, llm.ChatMessage{Role: llm.RoleTool, ToolCallID: call.ID, Content: content})
	}
	return out, nil
}

func (s *ChatService) executeTool(ctx context.Context, call llm.ToolCall) (result string, err error) {
	tool, ok := s.tools[call.Name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTool, call.Name)
	}

	var pc panics.Catcher
	pc.Try(func() {
		result, err = tool.Execute(ctx, call.Arguments)
	})
	if r := pc.Recovered(); r != nil {
		return "", fmt.Errorf("%w: %v", ErrToolFailed, r.AsError())
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrToolFailed, err)
	}
	return result, nil
}

func rawArguments(args string) json.RawMessage {
	args = strings.TrimSpace(args)
	if args == "" {
		return json.RawMessage("{}")
	}
	if json.Valid([]byte(args)) {
		return json.RawMessage(args)
	}
	quoted, _ := json.Marshal(args)
	return quoted
}

// toolCallAccumulator arma las tool calls a partir de los fragmentos del stream.
type toolCallAccumulator struct {
	byIndex map[int]*llm.ToolCall
}

func newToolCallAccumulator() *toolCallAccumulator {
	return &toolCallAccumulator{byIndex: make(map[int]*llm.ToolCall)}
}

func (a *toolCallAccumulator) add(deltas []llm.ToolCallDelta) {
	for _, d := range deltas {
		call, ok := a.byIndex[d.Index]
		if !ok {
			call = &llm.ToolCall{}
			a.byIndex[d.Index] = call
		}
		if call.ID == "" && d.ID != "" {
			call.ID = d.ID
		}
		if call.Name == "" && d.Name != "" {
			call.Name = d.Name
		}
		call.Arguments += d.ArgumentsDelta
	}
}

func (a *toolCallAccumulator) list() []llm.ToolCall {
	if len(a.byIndex) == 0 {
		return nil
	}
	indexes := make([]int, 0, len(a.byIndex))
	for idx := range a.byIndex {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	out := make([]llm.ToolCall, 0, len(indexes))
	for _, idx := range indexes {
		call := *a.byIndex[idx]
		if call.ID == "" {
			call.ID = "call_" + strings.ReplaceAll(uuid.NewString(), "-", "")
		}
		out = append(out, call)
	}
	return out
}
