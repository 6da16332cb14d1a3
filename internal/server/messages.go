// internal/server/messages.go
package server

import "github.com/xkilldash9x/guardian/api/schemas"

// Websocket message types sent by the server.
const (
	MsgProgress = "progress"
	MsgReport   = "report"
	MsgError    = "error"
	MsgSession  = "session"
	MsgReply    = "reply"
)

// ServerMessage is the envelope for every server-to-client websocket frame.
type ServerMessage struct {
	Type      string           `json:"type"`
	Kind      schemas.TaskKind `json:"kind,omitempty"`
	Message   string           `json:"message,omitempty"`
	Report    any              `json:"report,omitempty"`
	Error     string           `json:"error,omitempty"`
	SessionID string           `json:"sessionId,omitempty"`
	Text      string           `json:"text,omitempty"`
	Sources   []schemas.Source `json:"sources,omitempty"`
}

// ChatAttachment is a base64 encoded media file sent with a chat turn.
type ChatAttachment struct {
	Data     string `json:"data"`
	MIMEType string `json:"mimeType"`
}

// ChatTurn is the client-to-server websocket frame on the chat endpoint.
type ChatTurn struct {
	Text        string           `json:"text"`
	Attachments []ChatAttachment `json:"attachments,omitempty"`
}
