package service

import (
	"context"
	"errors"

	"weather-chat/internal/llm"
)

var (
	ErrUnknownTool          = errors.New("unknown tool")
	ErrToolFailed           = errors.New("tool execution failed")
	ErrInvalidToolArguments = errors.New("invalid tool arguments")
)

// Tool es una función declarada al modelo que el servidor ejecuta localmente.
type Tool interface {
	Definition() llm.ToolDefinition
	Execute(ctx context.Context, arguments string) (string, error)
}
