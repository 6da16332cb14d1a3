// internal/llmclient/gemini_client.go
package llmclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/xkilldash9x/guardian/api/schemas"
	"github.com/xkilldash9x/guardian/internal/config"
)

const jsonMIMEType = "application/json"

// GeminiClient implements schemas.Oracle on top of the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

var _ schemas.Oracle = (*GeminiClient)(nil)

// NewGeminiClient initializes the client. httpClient may be nil, in which case
// the SDK's default transport is used.
func NewGeminiClient(ctx context.Context, cfg config.LLMConfig, httpClient *http.Client, logger *zap.Logger) (*GeminiClient, error) {
	if err := cfg.ValidateCredentials(); err != nil {
		return nil, err
	}

	opts := genai.HTTPOptions{
		BaseURL:    cfg.Endpoint,
		APIVersion: cfg.APIVersion,
	}
	if cfg.APITimeout > 0 {
		timeout := cfg.APITimeout
		opts.Timeout = &timeout
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  httpClient,
		HTTPOptions: opts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		model:  cfg.Model,
		logger: logger.Named("llm_client.gemini"),
	}, nil
}

func (c *GeminiClient) modelFor(requested string) string {
	if requested != "" {
		return requested
	}
	return c.model
}

// Generate performs a single structured-output call. No retries are attempted.
func (c *GeminiClient) Generate(ctx context.Context, req schemas.GenerationRequest) (string, error) {
	if len(req.Parts) == 0 {
		return "", fmt.Errorf("generation request has no parts")
	}
	model := c.modelFor(req.Model)

	gc := &genai.GenerateContentConfig{}
	if req.ForceJSON {
		gc.ResponseMIMEType = jsonMIMEType
		gc.ResponseSchema = req.ResponseSchema
	}
	if req.MinimalThinking {
		gc.ThinkingConfig = minimalThinking()
	}

	contents := []*genai.Content{genai.NewContentFromParts(toGenaiParts(req.Parts), genai.RoleUser)}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, model, contents, gc)
	if err != nil {
		return "", fmt.Errorf("gemini generate content failed: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return "", err
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini API returned an empty response")
	}

	c.logUsage("LLM generation complete (Gemini)", model, time.Since(start), resp)
	return text, nil
}

// StartChat opens a model-held conversation. The configuration is fixed for
// the lifetime of the conversation.
func (c *GeminiClient) StartChat(ctx context.Context, cfg schemas.ChatConfig) (schemas.Conversation, error) {
	model := c.modelFor(cfg.Model)

	gc := &genai.GenerateContentConfig{}
	if cfg.SystemInstruction != "" {
		gc.SystemInstruction = genai.NewContentFromText(cfg.SystemInstruction, genai.RoleUser)
	}
	if cfg.EnableWebSearch {
		gc.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	if cfg.MinimalThinking {
		gc.ThinkingConfig = minimalThinking()
	}

	chat, err := c.client.Chats.Create(ctx, model, gc, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini chat: %w", err)
	}
	return &geminiConversation{chat: chat, model: model, parent: c}, nil
}

// Close releases client resources. The SDK client holds none beyond its
// HTTP transport, which is shared.
func (c *GeminiClient) Close() error {
	return nil
}

func (c *GeminiClient) logUsage(msg, model string, d time.Duration, resp *genai.GenerateContentResponse) {
	fields := []zap.Field{zap.String("model", model), zap.Duration("duration", d)}
	if u := resp.UsageMetadata; u != nil {
		fields = append(fields,
			zap.Int32("prompt_tokens", u.PromptTokenCount),
			zap.Int32("completion_tokens", u.CandidatesTokenCount),
			zap.Int32("total_tokens", u.TotalTokenCount),
		)
	}
	c.logger.Debug(msg, fields...)
}

// geminiConversation adapts genai.Chat, which records history itself.
type geminiConversation struct {
	chat   *genai.Chat
	model  string
	parent *GeminiClient
}

// Send delivers one user turn. Attachments precede the text part.
func (g *geminiConversation) Send(ctx context.Context, msg schemas.ChatMessage) (*schemas.ChatReply, error) {
	parts := make([]*genai.Part, 0, len(msg.Attachments)+1)
	for _, a := range msg.Attachments {
		parts = append(parts, genai.NewPartFromBytes(a.Data, a.MIMEType))
	}
	if msg.Text != "" {
		parts = append(parts, genai.NewPartFromText(msg.Text))
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("chat message has no content")
	}

	start := time.Now()
	resp, err := g.chat.Send(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("gemini chat turn failed: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}

	g.parent.logUsage("Chat turn complete (Gemini)", g.model, time.Since(start), resp)
	return &schemas.ChatReply{Text: resp.Text(), Sources: extractSources(resp)}, nil
}

// -- Mapping helpers --

func minimalThinking() *genai.ThinkingConfig {
	return &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](0)}
}

func toGenaiParts(parts []schemas.Part) []*genai.Part {
	out := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.IsBlob() {
			out = append(out, genai.NewPartFromBytes(p.Data, p.MIMEType))
			continue
		}
		out = append(out, genai.NewPartFromText(p.Text))
	}
	return out
}

// checkResponse turns block and empty-candidate outcomes into errors.
func checkResponse(resp *genai.GenerateContentResponse) error {
	if resp == nil {
		return fmt.Errorf("gemini API returned no response")
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" && fb.BlockReason != genai.BlockedReasonUnspecified {
		return fmt.Errorf("gemini API blocked the prompt (Reason: %s)", fb.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return fmt.Errorf("gemini API returned no candidates")
	}
	switch reason := resp.Candidates[0].FinishReason; reason {
	case genai.FinishReasonSafety, genai.FinishReasonBlocklist, genai.FinishReasonProhibitedContent:
		return fmt.Errorf("gemini API blocked the response (Reason: %s)", reason)
	}
	return nil
}

// extractSources collects web grounding chunks, dropping duplicate URIs and
// keeping first-seen order.
func extractSources(resp *genai.GenerateContentResponse) []schemas.Source {
	sources := []schemas.Source{}
	if len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return sources
	}

	seen := make(map[string]struct{})
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		if _, dup := seen[chunk.Web.URI]; dup {
			continue
		}
		seen[chunk.Web.URI] = struct{}{}

		title := chunk.Web.Title
		if title == "" {
			title = chunk.Web.URI
		}
		sources = append(sources, schemas.Source{Title: title, URI: chunk.Web.URI})
	}
	return sources
}
