package service

import (
	"strings"
	"testing"

	"weather-chat/internal/domain"
	"weather-chat/internal/llm"
)

func TestTrimHistory_DisabledOrShort(t *testing.T) {
	msgs := []llm.ChatMessage{{Role: llm.RoleUser, Content: "hola"}, {Role: llm.RoleAssistant, Content: "buenas"}}
	if got := trimHistory(msgs, 0); len(got) != 2 {
		t.Fatalf("expected no trimming when disabled, got %d", len(got))
	}
	single := msgs[:1]
	if got := trimHistory(single, 1); len(got) != 1 {
		t.Fatalf("expected last message kept, got %d", len(got))
	}
}

func TestTrimHistory_DropsOldestFirst(t *testing.T) {
	long := strings.Repeat("lorem ipsum dolor sit amet ", 50)
	msgs := []llm.ChatMessage{
		{Role: llm.RoleUser, Content: long},
		{Role: llm.RoleAssistant, Content: long},
		{Role: llm.RoleUser, Content: "clima en Roma?"},
	}
	budget := llm.CountMessageTokens(msgs[2]) + 5
	got := trimHistory(msgs, budget)
	if len(got) != 1 || got[0].Content != "clima en Roma?" {
		t.Fatalf("expected only latest message, got %+v", got)
	}

	got = trimHistory(msgs, 100000)
	if len(got) != 3 {
		t.Fatalf("expected everything within budget, got %d", len(got))
	}
}

func TestTrimHistory_SkipsOrphanToolMessages(t *testing.T) {
	long := strings.Repeat("x y z ", 200)
	msgs := []llm.ChatMessage{
		{Role: llm.RoleAssistant, Content: long, ToolCalls: []llm.ToolCall{{ID: "c1", Name: "weather", Arguments: "{}"}}},
		{Role: llm.RoleTool, ToolCallID: "c1", Content: "sunny"},
		{Role: llm.RoleUser, Content: "y mañana?"},
	}
	budget := llm.CountMessageTokens(msgs[1]) + llm.CountMessageTokens(msgs[2])
	got := trimHistory(msgs, budget)
	if len(got) != 1 || got[0].Role != llm.RoleUser {
		t.Fatalf("expected orphan tool message dropped, got %+v", got)
	}
}

func TestTrimHistory_KeepsToolCallOfTrailingToolMessage(t *testing.T) {
	history := []domain.Message{
		{Role: domain.RoleUser, Content: strings.Repeat("lorem ipsum dolor sit amet ", 50)},
		{Role: domain.RoleAssistant, ToolInvocations: []domain.ToolInvocation{{
			ToolCallID: "c1",
			ToolName:   WeatherToolName,
			Args:       []byte(`{"location":"Paris"}`),
			State:      domain.ToolInvocationResult,
			Result:     "Soggy Paris.",
		}}},
	}
	msgs := toChatMessages(history)

	got := trimHistory(msgs, 12)
	if len(got) != 2 {
		t.Fatalf("expected tool call and result kept together, got %+v", got)
	}
	if got[0].Role != llm.RoleAssistant || len(got[0].ToolCalls) != 1 || got[0].ToolCalls[0].ID != "c1" {
		t.Fatalf("expected history to start on the assistant tool call, got %+v", got[0])
	}
	if got[1].Role != llm.RoleTool || got[1].ToolCallID != "c1" {
		t.Fatalf("expected tool result last, got %+v", got[1])
	}
}
