package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"weather-chat/internal/domain"
	"weather-chat/internal/llm"
)

// judgeResponse representa la respuesta estructurada del juez evaluador en formato JSON.
type judgeResponse struct {
	Reasoning           string `json:"reasoning"`
	ConversationalScore int    `json:"conversational_score"`
	AccuracyScore       int    `json:"accuracy_score"`
}

func evaluateResult(
	ctx context.Context,
	judge llm.LLMClient,
	data domain.WeatherData,
	input, result string,
) (judgeResponse, error) {
	echoed := echoesPayload(result, data)
	heuristicLine := fmt.Sprintf(
		"Indicadores heurísticos: menciona_ubicacion=%t, copia_payload=%t",
		mentionsLocation(result, data.Location), echoed,
	)

	raw, err := judge.Generate(ctx, buildJudgePrompt(data, heuristicLine, input, result))
	if err != nil {
		return judgeResponse{}, err
	}

	jsonStr := extractFirstJSONObject(raw)
	if jsonStr == "" {
		return judgeResponse{}, fmt.Errorf("juez devolvió no-json: %q", raw)
	}

	var jr judgeResponse
	if err := json.Unmarshal([]byte(jsonStr), &jr); err != nil {
		return judgeResponse{}, fmt.Errorf("error parseando JSON juez: %w (raw=%q full=%q)", err, jsonStr, raw)
	}

	jr.ConversationalScore = clamp1to5(jr.ConversationalScore)
	jr.AccuracyScore = clamp1to5(jr.AccuracyScore)

	// Copiar el payload crudo no es conversacional.
	if echoed {
		jr.ConversationalScore = 1
	}
	return jr, nil
}

func clamp1to5(v int) int {
	if v < 1 {
		return 1
	}
	if v > 5 {
		return 5
	}
	return v
}

// echoesPayload detecta si result es el WeatherData serializado o lo contiene.
func echoesPayload(result string, data domain.WeatherData) bool {
	trimmed := strings.TrimSpace(result)
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, "{") && extractFirstJSONObject(trimmed) != "" {
		return true
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return false
	}
	if strings.Contains(trimmed, string(raw)) {
		return true
	}
	for _, key := range []string{`"temperature":`, `"humidity":`, `"description":`} {
		if strings.Contains(trimmed, key) {
			return true
		}
	}
	return false
}

func mentionsLocation(result, location string) bool {
	location = strings.TrimSpace(location)
	if location == "" {
		return false
	}
	return strings.Contains(strings.ToLower(result), strings.ToLower(location))
}

func buildJudgePrompt(data domain.WeatherData, heuristicLine, input, result string) string {
	return fmt.Sprintf(
		`Eres un juez que evalúa respuestas de un asistente de clima.

Datos reales: %s, %.1f%s, humedad %.0f%%, condiciones %q
%s

Input Usuario: %q
Respuesta Asistente: %q

Evalúa (1-5):
1) Conversacional: ¿Suena como una persona hablando y no como datos crudos? Si copia_payload=true => 1/5.
2) Precisión: ¿Es consistente con los datos reales (ubicación, temperatura, condiciones)?

Responde SOLO JSON (sin markdown):
{
  "reasoning": "...",
  "conversational_score": 0,
  "accuracy_score": 0
}`,
		data.Location, data.Temperature, data.TemperatureSymbol(), data.Humidity, data.Description,
		heuristicLine, input, result,
	)
}

// extractFirstJSONObject devuelve el primer objeto {...} balanceado, ignorando llaves dentro de strings.
func extractFirstJSONObject(input string) string {
	start := strings.IndexByte(input, '{')
	if start == -1 {
		return ""
	}

	inString := false
	escape := false
	depth := 0

	for i := start; i < len(input); i++ {
		ch := input[i]

		if inString {
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}

	return ""
}
