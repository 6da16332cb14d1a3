// internal/llmclient/gemini_client_test.go
package llmclient

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/genai"

	"github.com/xkilldash9x/guardian/api/schemas"
)

// -- Test Setup Helpers --

// recorder captures the decoded JSON bodies the SDK sends to the mock server.
type recorder struct {
	mu     sync.Mutex
	bodies []map[string]any
	paths  []string
}

func (r *recorder) last(t *testing.T) map[string]any {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.bodies, "no request reached the mock server")
	return r.bodies[len(r.bodies)-1]
}

// setupGeminiClient points a GeminiClient at a mock server that answers every
// request with the given JSON body.
func setupGeminiClient(t *testing.T, status int, response string) (*GeminiClient, *recorder, *observer.ObservedLogs) {
	t.Helper()
	rec := &recorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		rec.mu.Lock()
		rec.bodies = append(rec.bodies, body)
		rec.paths = append(rec.paths, r.URL.Path)
		rec.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)

	logger, logs := setupTestLogger(t)
	cfg := getValidLLMConfig()
	cfg.Endpoint = server.URL

	client, err := NewGeminiClient(context.Background(), cfg, server.Client(), logger)
	require.NoError(t, err)
	return client, rec, logs
}

func textResponse(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []any{map[string]any{
			"content":      map[string]any{"role": "model", "parts": []any{map[string]any{"text": text}}},
			"finishReason": "STOP",
		}},
		"usageMetadata": map[string]any{"promptTokenCount": 12, "candidatesTokenCount": 34, "totalTokenCount": 46},
	})
	return string(b)
}

// dig walks nested JSON maps and arrays.
func dig(t *testing.T, v any, path ...any) any {
	t.Helper()
	for _, p := range path {
		switch key := p.(type) {
		case string:
			m, ok := v.(map[string]any)
			require.True(t, ok, "expected object at %v", p)
			v = m[key]
		case int:
			a, ok := v.([]any)
			require.True(t, ok, "expected array at %v", p)
			require.Greater(t, len(a), key)
			v = a[key]
		}
	}
	return v
}

// -- Test Cases: Generate --

func TestGenerate_RequestMapping(t *testing.T) {
	client, rec, logs := setupGeminiClient(t, http.StatusOK, textResponse(`{"summary":"ok"}`))

	image := []byte{0xff, 0xd8, 0xff}
	req := schemas.GenerationRequest{
		Parts: []schemas.Part{
			schemas.BlobPart(image, "image/jpeg"),
			schemas.TextPart("analyze this"),
		},
		ResponseSchema:  &genai.Schema{Type: genai.TypeObject, Required: []string{"summary"}},
		ForceJSON:       true,
		MinimalThinking: true,
	}

	out, err := client.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, `{"summary":"ok"}`, out)

	body := rec.last(t)
	assert.True(t, strings.HasSuffix(rec.paths[0], "models/test-model:generateContent"), rec.paths[0])

	assert.Equal(t, "user", dig(t, body, "contents", 0, "role"))
	assert.Equal(t, "image/jpeg", dig(t, body, "contents", 0, "parts", 0, "inlineData", "mimeType"))
	assert.Equal(t, base64.StdEncoding.EncodeToString(image), dig(t, body, "contents", 0, "parts", 0, "inlineData", "data"))
	assert.Equal(t, "analyze this", dig(t, body, "contents", 0, "parts", 1, "text"))

	assert.Equal(t, "application/json", dig(t, body, "generationConfig", "responseMimeType"))
	assert.Equal(t, "OBJECT", dig(t, body, "generationConfig", "responseSchema", "type"))
	assert.Equal(t, float64(0), dig(t, body, "generationConfig", "thinkingConfig", "thinkingBudget"))

	entries := logs.FilterMessage("LLM generation complete (Gemini)").All()
	require.Len(t, entries, 1)
	assert.EqualValues(t, 12, entries[0].ContextMap()["prompt_tokens"])
}

func TestGenerate_ModelOverride(t *testing.T) {
	client, rec, _ := setupGeminiClient(t, http.StatusOK, textResponse("{}"))

	_, err := client.Generate(context.Background(), schemas.GenerationRequest{
		Model: "other-model",
		Parts: []schemas.Part{schemas.TextPart("hi")},
	})
	require.NoError(t, err)
	assert.Contains(t, rec.paths[0], "models/other-model:generateContent")

	body := rec.last(t)
	gc, _ := body["generationConfig"].(map[string]any)
	_, hasMime := gc["responseMimeType"]
	assert.False(t, hasMime, "JSON mode must only be requested when asked for")
}

func TestGenerate_Failures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		response string
		contains string
	}{
		{"http error", http.StatusInternalServerError, `{"error":{"code":500,"message":"boom","status":"INTERNAL"}}`, "gemini generate content failed"},
		{"quota exhausted", http.StatusTooManyRequests, `{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`, "gemini generate content failed"},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, "no candidates"},
		{"prompt blocked", http.StatusOK, `{"promptFeedback":{"blockReason":"SAFETY"}}`, "blocked the prompt"},
		{"response blocked", http.StatusOK, `{"candidates":[{"finishReason":"SAFETY"}]}`, "blocked the response"},
		{"empty text", http.StatusOK, `{"candidates":[{"content":{"role":"model","parts":[]},"finishReason":"STOP"}]}`, "empty response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _, _ := setupGeminiClient(t, tt.status, tt.response)
			out, err := client.Generate(context.Background(), schemas.GenerationRequest{
				Parts: []schemas.Part{schemas.TextPart("x")},
			})
			require.Error(t, err)
			assert.Empty(t, out)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestGenerate_NoParts(t *testing.T) {
	client, rec, _ := setupGeminiClient(t, http.StatusOK, textResponse("{}"))
	_, err := client.Generate(context.Background(), schemas.GenerationRequest{})
	require.Error(t, err)
	assert.Empty(t, rec.bodies, "no request should be sent")
}

// -- Test Cases: Chat --

const groundedReply = `{
  "candidates": [{
    "content": {"role": "model", "parts": [{"text": "Phishing is a social engineering attack."}]},
    "finishReason": "STOP",
    "groundingMetadata": {
      "groundingChunks": [
        {"web": {"uri": "https://a.example/phishing", "title": "What is phishing"}},
        {"web": {"uri": "https://youtube.example/watch?v=1", "title": "Phishing explained"}},
        {"web": {"uri": "https://a.example/phishing", "title": "Duplicate"}},
        {"web": {"uri": "https://b.example/no-title"}},
        {}
      ]
    }
  }]
}`

func TestStartChat_ConfigAndSources(t *testing.T) {
	client, rec, _ := setupGeminiClient(t, http.StatusOK, groundedReply)

	conv, err := client.StartChat(context.Background(), schemas.ChatConfig{
		SystemInstruction: "You are a guardian.",
		EnableWebSearch:   true,
		MinimalThinking:   true,
	})
	require.NoError(t, err)

	reply, err := conv.Send(context.Background(), schemas.ChatMessage{
		Text:        "What is phishing?",
		Attachments: []schemas.Attachment{{Data: []byte("%PDF-1.7"), MIMEType: "application/pdf"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Phishing is a social engineering attack.", reply.Text)
	assert.Equal(t, []schemas.Source{
		{Title: "What is phishing", URI: "https://a.example/phishing"},
		{Title: "Phishing explained", URI: "https://youtube.example/watch?v=1"},
		{Title: "https://b.example/no-title", URI: "https://b.example/no-title"},
	}, reply.Sources)

	body := rec.last(t)
	assert.Equal(t, "You are a guardian.", dig(t, body, "systemInstruction", "parts", 0, "text"))
	assert.NotNil(t, dig(t, body, "tools", 0, "googleSearch"))
	assert.Equal(t, float64(0), dig(t, body, "generationConfig", "thinkingConfig", "thinkingBudget"))
	assert.Equal(t, "application/pdf", dig(t, body, "contents", 0, "parts", 0, "inlineData", "mimeType"))
	assert.Equal(t, "What is phishing?", dig(t, body, "contents", 0, "parts", 1, "text"))
}

func TestConversation_KeepsHistory(t *testing.T) {
	client, rec, _ := setupGeminiClient(t, http.StatusOK, textResponse("answer"))

	conv, err := client.StartChat(context.Background(), schemas.ChatConfig{})
	require.NoError(t, err)

	_, err = conv.Send(context.Background(), schemas.ChatMessage{Text: "first"})
	require.NoError(t, err)
	reply, err := conv.Send(context.Background(), schemas.ChatMessage{Text: "second"})
	require.NoError(t, err)
	assert.Empty(t, reply.Sources)
	assert.NotNil(t, reply.Sources)

	contents := dig(t, rec.last(t), "contents").([]any)
	require.Len(t, contents, 3, "second turn must carry the first exchange")
	assert.Equal(t, "first", dig(t, contents, 0, "parts", 0, "text"))
	assert.Equal(t, "model", dig(t, contents, 1, "role"))
	assert.Equal(t, "second", dig(t, contents, 2, "parts", 0, "text"))
}

func TestConversation_EmptyMessage(t *testing.T) {
	client, rec, _ := setupGeminiClient(t, http.StatusOK, textResponse("answer"))
	conv, err := client.StartChat(context.Background(), schemas.ChatConfig{})
	require.NoError(t, err)

	_, err = conv.Send(context.Background(), schemas.ChatMessage{})
	require.Error(t, err)
	assert.Empty(t, rec.bodies)
}
