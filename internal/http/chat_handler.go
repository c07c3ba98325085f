package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"weather-chat/internal/domain"
	"weather-chat/internal/service"
)

// ChatStreamer es lo que el handler necesita del servicio de chat.
type ChatStreamer interface {
	Stream(ctx context.Context, messages []domain.Message, sink service.EventSink) (domain.Message, error)
}

// ChatHandler expone el endpoint de chat en streaming.
type ChatHandler struct {
	logger      *zap.Logger
	chat        ChatStreamer
	maxDuration time.Duration
}

// NewChatHandler crea una instancia de ChatHandler con dependencias necesarias.
func NewChatHandler(logger *zap.Logger, chat ChatStreamer, maxDuration time.Duration) *ChatHandler {
	if maxDuration <= 0 {
		maxDuration = 30 * time.Second
	}
	return &ChatHandler{
		logger:      logger,
		chat:        chat,
		maxDuration: maxDuration,
	}
}

// PostChat maneja POST /api/chat y responde con Server-Sent Events.
func (h *ChatHandler) PostChat(c *gin.Context) {
	var req struct {
		Messages []domain.Message `json:"messages" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid chat request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	messages, err := service.NormalizeMessages(req.Messages)
	if err != nil {
		h.logger.Warn("invalid chat messages", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	reqCtx := c.Request.Context()
	ctx, cancel := context.WithTimeout(reqCtx, h.maxDuration)
	defer cancel()

	events := make(chan service.StreamEvent)
	wg := conc.NewWaitGroup()
	wg.Go(func() {
		defer close(events)
		_, err := h.chat.Stream(ctx, messages, func(e service.StreamEvent) error {
			select {
			case events <- e:
				return nil
			case <-reqCtx.Done():
				return reqCtx.Err()
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			h.logger.Warn("chat stream ended with error", zap.Error(err))
		}
	})

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	c.Stream(func(w io.Writer) bool {
		e, ok := <-events
		if !ok {
			return false
		}
		c.SSEvent(string(e.Type), e)
		return true
	})

	// Si el cliente se fue, el productor se destraba por reqCtx; drenamos por las dudas.
	cancel()
	go func() {
		for range events {
		}
	}()
	wg.Wait()
}
