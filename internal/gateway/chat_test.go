// internal/gateway/chat_test.go
package gateway

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/guardian/api/schemas"
	"github.com/xkilldash9x/guardian/internal/mocks"
)

func TestStartChat_Configuration(t *testing.T) {
	g, oracle, _ := setupGateway(t)
	conv := new(mocks.MockConversation)

	var captured schemas.ChatConfig
	oracle.On("StartChat", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(1).(schemas.ChatConfig) }).
		Return(conv, nil).Once()

	session, err := g.StartChat(context.Background(), "Japanese", schemas.ModeConcise)
	require.NoError(t, err)

	_, err = uuid.Parse(session.ID)
	assert.NoError(t, err, "session id should be a uuid")
	assert.Equal(t, "Japanese", session.Language)
	assert.Equal(t, schemas.ModeConcise, session.Mode)

	assert.Equal(t, "test-model", captured.Model)
	assert.True(t, captured.EnableWebSearch)
	assert.True(t, captured.MinimalThinking)
	assert.Contains(t, captured.SystemInstruction, "Japanese")
	assert.Contains(t, captured.SystemInstruction, "between 4 and 8")
}

func TestStartChat_DefaultsLanguage(t *testing.T) {
	g, oracle, _ := setupGateway(t)
	oracle.On("StartChat", mock.Anything, mock.Anything).Return(new(mocks.MockConversation), nil).Once()

	session, err := g.StartChat(context.Background(), "", schemas.ModeDetailed)
	require.NoError(t, err)
	assert.Equal(t, schemas.DefaultLanguage, session.Language)
}

func TestStartChat_Errors(t *testing.T) {
	t.Run("unknown mode", func(t *testing.T) {
		g, oracle, _ := setupGateway(t)
		_, err := g.StartChat(context.Background(), "English", "Verbose")
		assert.ErrorIs(t, err, schemas.ErrInvalidRequest)
		oracle.AssertNotCalled(t, "StartChat", mock.Anything, mock.Anything)
	})

	t.Run("oracle failure", func(t *testing.T) {
		g, oracle, _ := setupGateway(t)
		cause := errors.New("auth failed")
		oracle.On("StartChat", mock.Anything, mock.Anything).Return(nil, cause).Once()

		_, err := g.StartChat(context.Background(), "English", schemas.ModeDetailed)
		assert.ErrorIs(t, err, cause)
	})
}

func newSession(t *testing.T) (*ChatSession, *mocks.MockConversation) {
	t.Helper()
	g, oracle, _ := setupGateway(t)
	conv := new(mocks.MockConversation)
	t.Cleanup(func() { conv.AssertExpectations(t) })
	oracle.On("StartChat", mock.Anything, mock.Anything).Return(conv, nil).Once()

	session, err := g.StartChat(context.Background(), "English", schemas.ModeDetailed)
	require.NoError(t, err)
	return session, conv
}

func TestChatSession_Send(t *testing.T) {
	session, conv := newSession(t)

	msg := schemas.ChatMessage{
		Text:        "Is this email a scam?",
		Attachments: []schemas.Attachment{{Data: []byte("%PDF"), MIMEType: "application/pdf"}},
	}
	conv.On("Send", mock.Anything, msg).Return(&schemas.ChatReply{
		Text:    "It shows several phishing signs.",
		Sources: []schemas.Source{{Title: "FTC", URI: "https://ftc.example"}},
	}, nil).Once()

	reply, err := session.Send(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, "It shows several phishing signs.", reply.Text)
	assert.Len(t, reply.Sources, 1)
}

func TestChatSession_SendNormalizesSources(t *testing.T) {
	session, conv := newSession(t)
	conv.On("Send", mock.Anything, mock.Anything).Return(&schemas.ChatReply{Text: "hi"}, nil).Once()

	reply, err := session.Send(context.Background(), schemas.ChatMessage{Text: "hello"})
	require.NoError(t, err)
	assert.NotNil(t, reply.Sources)
}

func TestChatSession_SendErrors(t *testing.T) {
	t.Run("empty message", func(t *testing.T) {
		session, conv := newSession(t)
		_, err := session.Send(context.Background(), schemas.ChatMessage{Text: "  "})
		assert.ErrorIs(t, err, schemas.ErrInvalidRequest)
		conv.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("attachment without mime type", func(t *testing.T) {
		session, _ := newSession(t)
		_, err := session.Send(context.Background(), schemas.ChatMessage{Attachments: []schemas.Attachment{{Data: []byte("x")}}})
		assert.ErrorIs(t, err, schemas.ErrInvalidRequest)
	})

	t.Run("oracle failure propagates", func(t *testing.T) {
		session, conv := newSession(t)
		cause := errors.New("deadline exceeded")
		conv.On("Send", mock.Anything, mock.Anything).Return(nil, cause).Once()

		_, err := session.Send(context.Background(), schemas.ChatMessage{Text: "hello"})
		assert.ErrorIs(t, err, cause)
		assert.NotErrorIs(t, err, ErrAnalysisFailed)
	})

	t.Run("nil reply without error", func(t *testing.T) {
		session, conv := newSession(t)
		conv.On("Send", mock.Anything, mock.Anything).Return(nil, nil).Once()

		var (
			reply *schemas.ChatReply
			err   error
		)
		require.NotPanics(t, func() {
			reply, err = session.Send(context.Background(), schemas.ChatMessage{Text: "hello"})
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no reply")
		assert.Nil(t, reply)
	})
}

func TestChatSession_TurnsAreSerialized(t *testing.T) {
	session, conv := newSession(t)

	var (
		mu      sync.Mutex
		active  int
		maxSeen int
	)
	conv.On("Send", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		mu.Lock()
		active++
		if active > maxSeen {
			maxSeen = active
		}
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		mu.Lock()
		active--
		mu.Unlock()
	}).Return(&schemas.ChatReply{Text: "ok"}, nil).Times(4)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := session.Send(context.Background(), schemas.ChatMessage{Text: "q"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}
