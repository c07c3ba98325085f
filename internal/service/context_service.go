package service

import "weather-chat/internal/llm"

// trimHistory descarta los mensajes más viejos hasta entrar en maxTokens.
// El último mensaje se conserva siempre, junto con su tool call si es un tool message.
// maxTokens <= 0 desactiva el recorte.
func trimHistory(messages []llm.ChatMessage, maxTokens int) []llm.ChatMessage {
	if maxTokens <= 0 || len(messages) <= 1 {
		return messages
	}

	costs := make([]int, len(messages))
	total := 0
	for i, m := range messages {
		costs[i] = llm.CountMessageTokens(m)
		total += costs[i]
	}

	start := 0
	for start < len(messages)-1 && total > maxTokens {
		total -= costs[start]
		start++
	}
	// Un tool message sin su tool call previo es rechazado por el proveedor.
	for start < len(messages) && messages[start].Role == llm.RoleTool {
		start++
	}
	if start == len(messages) {
		// Solo quedaban tool messages: se retrocede hasta el assistant que hizo las llamadas.
		start = len(messages) - 1
		for start > 0 && messages[start].Role == llm.RoleTool {
			start--
		}
	}
	return messages[start:]
}
