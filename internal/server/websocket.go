// internal/server/websocket.go
package server

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/xkilldash9x/guardian/api/schemas"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next message or pong from the peer.
	pongWait = 60 * time.Second
)

// wsConn serializes writes to a websocket and keeps it alive with pings.
type wsConn struct {
	conn     *websocket.Conn
	readWait time.Duration
	mu       sync.Mutex
	done     chan struct{}
	wg       sync.WaitGroup
}

func newWSConn(conn *websocket.Conn, readLimit int64, readWait time.Duration) *wsConn {
	c := &wsConn{conn: conn, readWait: readWait, done: make(chan struct{})}
	conn.SetReadLimit(readLimit)
	c.extendRead()
	conn.SetPongHandler(func(string) error { c.extendRead(); return nil })

	c.wg.Add(1)
	go c.pingLoop()
	return c
}

func (c *wsConn) pingLoop() {
	defer c.wg.Done()
	// Ping before the read deadline lapses.
	ticker := time.NewTicker((c.readWait * 9) / 10)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.Lock()
			err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			c.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// extendRead pushes the read deadline readWait into the future. Pongs are
// only handled while reading, so long turns must call it before the next read.
func (c *wsConn) extendRead() {
	_ = c.conn.SetReadDeadline(time.Now().Add(c.readWait))
}

func (c *wsConn) write(msg ServerMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(msg)
}

// close sends a normal closure, stops the pinger and closes the socket.
func (c *wsConn) close() {
	close(c.done)
	c.wg.Wait()
	c.mu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	c.mu.Unlock()
	_ = c.conn.Close()
}

// handleWSAnalyze runs one analysis per connection, streaming progress.
func (s *Server) handleWSAnalyze(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		s.logger.Warn("Websocket upgrade failed.", zap.Error(err))
		return
	}
	ws := newWSConn(conn, s.cfg.MaxBodyBytes, s.readWait)
	defer ws.close()

	var req schemas.AnalysisRequest
	if err := conn.ReadJSON(&req); err != nil {
		s.logger.Debug("Failed to read analysis request.", zap.Error(err))
		_ = ws.write(ServerMessage{Type: MsgError, Error: "invalid request message"})
		return
	}
	if req.Language == "" {
		req.Language = s.defaults.DefaultLanguage
	}

	progress := func(msg string) {
		if err := ws.write(ServerMessage{Type: MsgProgress, Kind: req.Kind, Message: msg}); err != nil {
			s.logger.Debug("Failed to send progress.", zap.Error(err))
		}
	}

	report, err := s.gw.Analyze(r.Context(), req, progress)
	if err != nil {
		_ = ws.write(ServerMessage{Type: MsgError, Kind: req.Kind, Error: err.Error()})
		return
	}
	_ = ws.write(ServerMessage{Type: MsgReport, Kind: req.Kind, Report: report})
}

// handleWSChat binds one chat session to one connection. Turns are read one
// at a time, so a session never sees concurrent sends.
func (s *Server) handleWSChat(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lang := q.Get("lang")
	if lang == "" {
		lang = s.defaults.DefaultLanguage
	}
	modeStr := q.Get("mode")
	if modeStr == "" {
		modeStr = s.defaults.DefaultChatMode
	}
	mode, err := schemas.ParseChatMode(modeStr)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := s.gw.StartChat(r.Context(), lang, mode)
	if err != nil {
		s.logger.Error("Failed to start chat session.", zap.Error(err))
		status := http.StatusBadGateway
		if errors.Is(err, schemas.ErrInvalidRequest) {
			status = http.StatusBadRequest
		}
		respondError(w, status, "failed to start chat session")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed.", zap.Error(err))
		return
	}
	ws := newWSConn(conn, s.cfg.MaxBodyBytes, s.readWait)
	defer ws.close()

	logger := s.logger.With(zap.String("session_id", session.ID))
	if err := ws.write(ServerMessage{Type: MsgSession, SessionID: session.ID}); err != nil {
		return
	}

	for {
		// The previous turn may have outlasted the deadline while nothing was reading.
		ws.extendRead()

		var turn ChatTurn
		if err := conn.ReadJSON(&turn); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("Websocket client read error", zap.Error(err))
			}
			return
		}

		msg, err := toChatMessage(turn)
		if err != nil {
			if werr := ws.write(ServerMessage{Type: MsgError, Error: err.Error()}); werr != nil {
				return
			}
			continue
		}

		reply, err := session.Send(r.Context(), msg)
		if err != nil {
			out := "the assistant could not answer this message"
			if errors.Is(err, schemas.ErrInvalidRequest) {
				out = err.Error()
			}
			if werr := ws.write(ServerMessage{Type: MsgError, Error: out}); werr != nil {
				return
			}
			continue
		}

		if err := ws.write(ServerMessage{Type: MsgReply, Text: reply.Text, Sources: reply.Sources}); err != nil {
			return
		}
	}
}

func toChatMessage(turn ChatTurn) (schemas.ChatMessage, error) {
	msg := schemas.ChatMessage{Text: turn.Text}
	for i, a := range turn.Attachments {
		data, err := base64.StdEncoding.DecodeString(a.Data)
		if err != nil {
			return schemas.ChatMessage{}, fmt.Errorf("%w: attachment %d is not valid base64", schemas.ErrInvalidRequest, i)
		}
		msg.Attachments = append(msg.Attachments, schemas.Attachment{Data: data, MIMEType: a.MIMEType})
	}
	return msg, nil
}
