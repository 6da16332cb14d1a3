package schemas

import (
	"context"

	"google.golang.org/genai"
)

// -- Oracle Schemas & Interface --

// Part is one element of the ordered content sent to the model: either an
// instruction text or an inline binary payload tagged with its MIME type.
type Part struct {
	Text     string `json:"text,omitempty"`
	Data     []byte `json:"-"`
	MIMEType string `json:"mime_type,omitempty"`
}

// TextPart builds an instruction part.
func TextPart(text string) Part { return Part{Text: text} }

// BlobPart builds an inline binary part.
func BlobPart(data []byte, mimeType string) Part { return Part{Data: data, MIMEType: mimeType} }

// IsBlob reports whether the part carries inline binary data.
func (p Part) IsBlob() bool { return p.Data != nil }

// GenerationRequest encapsulates a single structured-output call to the model.
type GenerationRequest struct {
	Model string `json:"model"`
	// Parts are sent in order as a single user turn.
	Parts []Part `json:"parts"`
	// ResponseSchema constrains the model's serialization when ForceJSON is set.
	ResponseSchema *genai.Schema `json:"response_schema,omitempty"`
	ForceJSON      bool          `json:"force_json"`
	// MinimalThinking requests the lowest reasoning latency the model offers.
	MinimalThinking bool `json:"minimal_thinking"`
}

// ChatConfig is baked into a conversation when it is created and cannot be
// renegotiated per turn.
type ChatConfig struct {
	Model             string `json:"model"`
	SystemInstruction string `json:"system_instruction"`
	EnableWebSearch   bool   `json:"enable_web_search"`
	MinimalThinking   bool   `json:"minimal_thinking"`
}

// Attachment is a media file sent alongside a chat turn.
type Attachment struct {
	Data     []byte `json:"-"`
	MIMEType string `json:"mime_type"`
}

// ChatMessage is one user turn.
type ChatMessage struct {
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Source is a citation delivered through the model's grounding side channel.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// ChatReply is one assistant turn. Sources never appear inline in Text.
type ChatReply struct {
	Text    string   `json:"text"`
	Sources []Source `json:"sources"`
}

// Conversation is the model-held state of one chat. Turns must be sent one at
// a time; implementations are not safe for concurrent Send calls.
type Conversation interface {
	Send(ctx context.Context, msg ChatMessage) (*ChatReply, error)
}

// Oracle defines the contract with the hosted model. Implementations must be
// safe for concurrent use: each call is an independent network exchange.
type Oracle interface {
	// Generate performs one structured-output call and returns the raw text.
	Generate(ctx context.Context, req GenerationRequest) (string, error)
	// StartChat opens a model-held conversation with a fixed configuration.
	StartChat(ctx context.Context, cfg ChatConfig) (Conversation, error)
	// Close cleans up any resources held by the client.
	Close() error
}
