package service

import (
	"encoding/json"
	"errors"
	"testing"

	"weather-chat/internal/domain"
	"weather-chat/internal/llm"
)

func TestNormalizeMessages_NormalizesAndDefaults(t *testing.T) {
	out, err := NormalizeMessages([]domain.Message{
		{Role: " User ", Content: "hola"},
		{ID: "a1", Role: "assistant", Content: "buenas"},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out[0].Role != domain.RoleUser || out[0].ID == "" {
		t.Fatalf("expected normalized role and generated id, got %+v", out[0])
	}
	if out[1].ID != "a1" {
		t.Fatalf("expected explicit id preserved, got %q", out[1].ID)
	}
}

func TestNormalizeMessages_Validation(t *testing.T) {
	cases := [][]domain.Message{
		nil,
		{},
		{{Role: "clone", Content: "hola"}},
		{{Role: "user", Content: "   "}},
		{{Role: "tool", Content: "42"}},
	}
	for i, c := range cases {
		if _, err := NormalizeMessages(c); !errors.Is(err, ErrChatInvalidInput) {
			t.Fatalf("case %d expected ErrChatInvalidInput, got %v", i, err)
		}
	}

	// un assistant con invocaciones y sin contenido es válido
	_, err := NormalizeMessages([]domain.Message{{
		Role:            "assistant",
		ToolInvocations: []domain.ToolInvocation{{ToolCallID: "c1", ToolName: "weather", State: domain.ToolInvocationResult, Result: "sunny"}},
	}})
	if err != nil {
		t.Fatalf("expected tool-only assistant message accepted, got %v", err)
	}
}

func TestToChatMessages_PreservesOrderAndExpandsInvocations(t *testing.T) {
	in := []domain.Message{
		{Role: domain.RoleUser, Content: "hola"},
		{Role: domain.RoleAssistant, Content: "buenas"},
		{Role: domain.RoleUser, Content: "clima en Madrid?"},
		{Role: domain.RoleAssistant, ToolInvocations: []domain.ToolInvocation{
			{ToolCallID: "c1", ToolName: "weather", Args: json.RawMessage(`{"location":"Madrid"}`), State: domain.ToolInvocationResult, Result: "Madrid hierve."},
			{ToolCallID: "c2", ToolName: "weather", State: domain.ToolInvocationError, Error: "tool execution failed"},
			{ToolCallID: "c3", ToolName: "weather", State: domain.ToolInvocationCall},
		}},
		{Role: domain.RoleUser, Content: "gracias"},
	}
	out := toChatMessages(in)

	wantRoles := []string{llm.RoleUser, llm.RoleAssistant, llm.RoleUser, llm.RoleAssistant, llm.RoleTool, llm.RoleTool, llm.RoleUser}
	if len(out) != len(wantRoles) {
		t.Fatalf("expected %d messages, got %d: %+v", len(wantRoles), len(out), out)
	}
	for i, role := range wantRoles {
		if out[i].Role != role {
			t.Fatalf("message %d: expected role %s, got %s", i, role, out[i].Role)
		}
	}
	if out[0].Content != "hola" || out[2].Content != "clima en Madrid?" || out[6].Content != "gracias" {
		t.Fatalf("expected user turns in submission order")
	}
	if len(out[3].ToolCalls) != 2 || out[3].ToolCalls[0].Arguments != `{"location":"Madrid"}` || out[3].ToolCalls[1].Arguments != "{}" {
		t.Fatalf("expected only completed invocations as tool calls, got %+v", out[3].ToolCalls)
	}
	if out[4].Content != "Madrid hierve." || out[5].Content != toolFailureContent {
		t.Fatalf("unexpected tool contents: %q / %q", out[4].Content, out[5].Content)
	}
}

func TestToChatMessages_SkipsEmptyAssistant(t *testing.T) {
	out := toChatMessages([]domain.Message{
		{Role: domain.RoleUser, Content: "hola"},
		{Role: domain.RoleAssistant, ToolInvocations: []domain.ToolInvocation{{ToolCallID: "c1", State: domain.ToolInvocationCall}}},
	})
	if len(out) != 1 {
		t.Fatalf("expected dangling assistant dropped, got %+v", out)
	}
}
