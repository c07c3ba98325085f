package llm

import (
	"context"
	"io"
	"sync"
)

// MockClient permite tests sin llamar a un LLM real.
// Cada llamada a StreamChat consume el siguiente elemento de Streams.
type MockClient struct {
	Response  string
	Err       error
	Streams   [][]StreamChunk
	StreamErr error

	mu       sync.Mutex
	prompts  []string
	requests []ChatRequest
}

func (m *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	return m.Response, m.Err
}

func (m *MockClient) StreamChat(ctx context.Context, req ChatRequest) (ChatStream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.StreamErr != nil {
		return nil, m.StreamErr
	}
	var chunks []StreamChunk
	if len(m.Streams) > 0 {
		chunks = m.Streams[0]
		m.Streams = m.Streams[1:]
	}
	return &mockStream{ctx: ctx, chunks: chunks}, nil
}

// Prompts devuelve los prompts recibidos por Generate.
func (m *MockClient) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// Requests devuelve los requests recibidos por StreamChat.
func (m *MockClient) Requests() []ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ChatRequest(nil), m.requests...)
}

type mockStream struct {
	ctx    context.Context
	chunks []StreamChunk
}

func (s *mockStream) Recv() (StreamChunk, error) {
	if err := s.ctx.Err(); err != nil {
		return StreamChunk{}, err
	}
	if len(s.chunks) == 0 {
		return StreamChunk{}, io.EOF
	}
	chunk := s.chunks[0]
	s.chunks = s.chunks[1:]
	return chunk, nil
}

func (s *mockStream) Close() error { return nil }
