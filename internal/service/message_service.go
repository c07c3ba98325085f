package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"weather-chat/internal/domain"
	"weather-chat/internal/llm"
)

var ErrChatInvalidInput = errors.New("chat invalid input")

const toolFailureContent = "error: tool execution failed"

// NormalizeMessages valida el historial recibido del cliente y completa ids faltantes.
// El orden de entrada se conserva tal cual.
func NormalizeMessages(messages []domain.Message) ([]domain.Message, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("%w: no messages", ErrChatInvalidInput)
	}

	out := make([]domain.Message, 0, len(messages))
	for i, msg := range messages {
		msg.Role = domain.Role(strings.ToLower(strings.TrimSpace(string(msg.Role))))
		msg.ToolCallID = strings.TrimSpace(msg.ToolCallID)

		if !msg.Role.Valid() {
			return nil, fmt.Errorf("%w: message %d has unknown role %q", ErrChatInvalidInput, i, msg.Role)
		}
		if strings.TrimSpace(msg.Content) == "" && len(msg.ToolInvocations) == 0 {
			return nil, fmt.Errorf("%w: message %d is empty", ErrChatInvalidInput, i)
		}
		if msg.Role == domain.RoleTool && msg.ToolCallID == "" {
			return nil, fmt.Errorf("%w: tool message %d without tool_call_id", ErrChatInvalidInput, i)
		}
		if msg.ID == "" {
			msg.ID = uuid.NewString()
		}
		out = append(out, msg)
	}
	return out, nil
}

// toChatMessages convierte el historial al formato del proveedor.
// Las invocaciones completas de un mensaje assistant se expanden en tool call + tool message.
func toChatMessages(messages []domain.Message) []llm.ChatMessage {
	out := make([]llm.ChatMessage, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case domain.RoleTool:
			out = append(out, llm.ChatMessage{
				Role:       llm.RoleTool,
				Content:    msg.Content,
				ToolCallID: msg.ToolCallID,
			})
		case domain.RoleAssistant:
			var (
				calls   []llm.ToolCall
				results []llm.ChatMessage
			)
			for _, inv := range msg.ToolInvocations {
				if !inv.Completed() || inv.ToolCallID == "" {
					continue
				}
				args := string(inv.Args)
				if args == "" {
					args = "{}"
				}
				calls = append(calls, llm.ToolCall{ID: inv.ToolCallID, Name: inv.ToolName, Arguments: args})
				content := inv.Result
				if inv.State == domain.ToolInvocationError {
					content = toolFailureContent
				}
				results = append(results, llm.ChatMessage{Role: llm.RoleTool, ToolCallID: inv.ToolCallID, Content: content})
			}
			if len(calls) == 0 && strings.TrimSpace(msg.Content) == "" {
				continue
			}
			out = append(out, llm.ChatMessage{Role: llm.RoleAssistant, Content: msg.Content, ToolCalls: calls})
			out = append(out, results...)
		default:
			out = append(out, llm.ChatMessage{Role: string(msg.Role), Content: msg.Content})
		}
	}
	return out
}
