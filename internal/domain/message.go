package domain

import "encoding/json"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// Valid indica si el rol es uno de los aceptados por el endpoint de chat.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem, RoleTool:
		return true
	default:
		return false
	}
}

// Message es un turno de la conversación. El orden del slice que lo contiene es cronológico.
type Message struct {
	ID              string           `json:"id"`
	Role            Role             `json:"role"`
	Content         string           `json:"content"`
	ToolCallID      string           `json:"tool_call_id,omitempty"`
	ToolInvocations []ToolInvocation `json:"tool_invocations,omitempty"`
}

type ToolInvocationState string

const (
	ToolInvocationCall   ToolInvocationState = "call"
	ToolInvocationResult ToolInvocationState = "result"
	ToolInvocationError  ToolInvocationState = "error"
)

// ToolInvocation registra una llamada del modelo a una tool declarada.
// Una vez que tiene Result (o Error) no se modifica más.
type ToolInvocation struct {
	ToolCallID string              `json:"tool_call_id"`
	ToolName   string              `json:"tool_name"`
	Args       json.RawMessage     `json:"args,omitempty"`
	State      ToolInvocationState `json:"state"`
	Result     string              `json:"result,omitempty"`
	Error      string              `json:"error,omitempty"`
}

// Completed devuelve true si la invocación ya tiene resultado o error.
func (t ToolInvocation) Completed() bool {
	return t.State == ToolInvocationResult || t.State == ToolInvocationError
}

// WithResult devuelve una copia con el resultado adjunto.
func (t ToolInvocation) WithResult(result string) ToolInvocation {
	if t.Completed() {
		return t
	}
	t.State = ToolInvocationResult
	t.Result = result
	return t
}

// WithError devuelve una copia marcada como fallida.
func (t ToolInvocation) WithError(msg string) ToolInvocation {
	if t.Completed() {
		return t
	}
	t.State = ToolInvocationError
	t.Error = msg
	return t
}
