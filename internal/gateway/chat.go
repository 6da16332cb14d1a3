// internal/gateway/chat.go
package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/guardian/api/schemas"
	"github.com/xkilldash9x/guardian/internal/prompts"
)

// ChatSession is one ongoing conversation. Its persona, language and mode are
// fixed at creation. Turns are serialized: a second Send waits for the first.
type ChatSession struct {
	ID        string
	Language  string
	Mode      schemas.ChatMode
	CreatedAt time.Time

	mu     sync.Mutex
	conv   schemas.Conversation
	logger *zap.Logger
}

// StartChat opens a chat session with web search enabled.
func (g *Gateway) StartChat(ctx context.Context, lang string, mode schemas.ChatMode) (*ChatSession, error) {
	if mode != schemas.ModeDetailed && mode != schemas.ModeConcise {
		return nil, fmt.Errorf("%w: unknown chat mode %q", schemas.ErrInvalidRequest, mode)
	}
	lang = schemas.LanguageOrDefault(lang)

	conv, err := g.oracle.StartChat(ctx, schemas.ChatConfig{
		Model:             g.model,
		SystemInstruction: prompts.ChatSystemInstruction(lang, mode),
		EnableWebSearch:   true,
		MinimalThinking:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start chat session: %w", err)
	}

	id := uuid.NewString()
	g.logger.Info("Chat session started", zap.String("session_id", id), zap.String("language", lang), zap.String("mode", string(mode)))

	return &ChatSession{
		ID:        id,
		Language:  lang,
		Mode:      mode,
		CreatedAt: time.Now(),
		conv:      conv,
		logger:    g.logger.With(zap.String("session_id", id)),
	}, nil
}

// Send delivers one user turn and returns the assistant's reply with its
// grounded sources. Failures from the oracle are returned as-is, wrapped.
func (s *ChatSession) Send(ctx context.Context, msg schemas.ChatMessage) (*schemas.ChatReply, error) {
	if strings.TrimSpace(msg.Text) == "" && len(msg.Attachments) == 0 {
		return nil, fmt.Errorf("%w: chat message is empty", schemas.ErrInvalidRequest)
	}
	for i, a := range msg.Attachments {
		if len(a.Data) == 0 || a.MIMEType == "" {
			return nil, fmt.Errorf("%w: attachment %d needs data and a mime type", schemas.ErrInvalidRequest, i)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reply, err := s.conv.Send(ctx, msg)
	if err != nil {
		s.logger.Warn("Chat turn failed", zap.Error(err))
		return nil, fmt.Errorf("chat turn failed: %w", err)
	}
	if reply == nil {
		s.logger.Warn("Chat turn returned no reply")
		return nil, fmt.Errorf("chat turn failed: conversation returned no reply")
	}
	if reply.Sources == nil {
		reply.Sources = []schemas.Source{}
	}
	s.logger.Debug("Chat turn complete", zap.Int("sources", len(reply.Sources)), zap.Int("attachments", len(msg.Attachments)))
	return reply, nil
}
