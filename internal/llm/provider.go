package llm

import (
	"context"
	"encoding/json"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ChatMessage es el formato de mensaje que se envía al proveedor.
type ChatMessage struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
}

type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ToolDefinition declara una función que el modelo puede invocar.
// Parameters se serializa tal cual como JSON Schema.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

type ChatRequest struct {
	Messages []ChatMessage
	Tools    []ToolDefinition
}

// ToolCallDelta es un fragmento de tool call tal como llega en el stream.
// Los fragmentos con el mismo Index pertenecen a la misma llamada.
type ToolCallDelta struct {
	Index          int
	ID             string
	Name           string
	ArgumentsDelta string
}

type StreamChunk struct {
	ContentDelta   string
	ToolCallDeltas []ToolCallDelta
	FinishReason   string
}

// ChatStream entrega chunks hasta devolver io.EOF.
type ChatStream interface {
	Recv() (StreamChunk, error)
	Close() error
}

// ChatStreamer abre una respuesta en streaming con tools declaradas.
type ChatStreamer interface {
	StreamChat(ctx context.Context, req ChatRequest) (ChatStream, error)
}
