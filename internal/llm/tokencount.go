package llm

import (
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

var (
	bpeOnce sync.Once
	bpeEnc  tokenizer.Codec
)

// getEncoder devuelve un encoder BPE singleton (o200k_base para la familia GPT-4o).
func getEncoder() tokenizer.Codec {
	bpeOnce.Do(func() {
		var err error
		bpeEnc, err = tokenizer.Get(tokenizer.O200kBase)
		if err != nil {
			bpeEnc, err = tokenizer.Get(tokenizer.Cl100kBase)
			if err != nil {
				panic("failed to initialize tiktoken encoder: " + err.Error())
			}
		}
	})
	return bpeEnc
}

// CountTokens devuelve la cantidad de tokens BPE del texto.
func CountTokens(text string) int {
	if text == "" {
		return 0
	}
	ids, _, _ := getEncoder().Encode(text)
	return len(ids)
}

// CountMessageTokens estima los tokens de un mensaje siguiendo la convención de OpenAI:
// 4 tokens de overhead por mensaje, más contenido, rol y tool calls.
func CountMessageTokens(m ChatMessage) int {
	tokens := 4
	tokens += CountTokens(m.Content)
	tokens += CountTokens(m.Role)
	for _, tc := range m.ToolCalls {
		tokens += CountTokens(tc.Name)
		tokens += CountTokens(tc.Arguments)
		tokens += 3
	}
	if m.ToolCallID != "" {
		tokens += CountTokens(m.ToolCallID)
	}
	return tokens
}
