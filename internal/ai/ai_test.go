package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/cardkit/internal/config"
)

func TestRequestImageDataURL(t *testing.T) {
	req := Request{ImageMIME: "image/png", ImageBytes: []byte("abc")}
	assert.True(t, req.HasImage())
	assert.Equal(t, "data:image/png;base64,YWJj", req.ImageDataURL())

	assert.Empty(t, Request{Text: "x"}.ImageDataURL())
}

func TestNewWithoutCredential(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AIAPIKey = ""

	c, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestNewOpenAI(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AIAPIKey = "sk-test"

	c, err := New(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "openai", c.Name())
	assert.Equal(t, DefaultOpenAIModel, c.(*OpenAI).model)
}

func TestNewUnknownProvider(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AIAPIKey = "key"
	cfg.AIProvider = "other"

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

func completionServer(t *testing.T, status int, content string, captured *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		if captured != nil {
			_ = json.Unmarshal(body, captured)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
			return
		}
		resp := map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 0,
			"model":   DefaultOpenAIModel,
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIComplete(t *testing.T) {
	var captured map[string]any
	srv := completionServer(t, http.StatusOK, `{"name":"Jane"}`, &captured)

	c := NewOpenAI("sk-test", "", srv.URL+"/")
	got, err := c.Complete(context.Background(), Request{
		System:     LayoutPrompt,
		Text:       ImageInstruction,
		ImageMIME:  "image/jpeg",
		ImageBytes: []byte{0xff, 0xd8},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Jane"}`, got)

	assert.Equal(t, DefaultOpenAIModel, captured["model"])
	assert.EqualValues(t, DefaultMaxTokens, captured["max_tokens"])
	assert.EqualValues(t, 0, captured["temperature"])

	messages, ok := captured["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	user := messages[1].(map[string]any)
	parts := user["content"].([]any)
	require.Len(t, parts, 2)
	image := parts[1].(map[string]any)["image_url"].(map[string]any)
	assert.Equal(t, "high", image["detail"])
	assert.True(t, strings.HasPrefix(image["url"].(string), "data:image/jpeg;base64,"))
}

func TestOpenAICompleteFailures(t *testing.T) {
	t.Run("http error", func(t *testing.T) {
		srv := completionServer(t, http.StatusUnauthorized, "", nil)
		_, err := NewOpenAI("sk-test", "", srv.URL+"/").Complete(context.Background(), Request{Text: "x"})
		assert.Error(t, err)
	})

	t.Run("empty content", func(t *testing.T) {
		srv := completionServer(t, http.StatusOK, "", nil)
		_, err := NewOpenAI("sk-test", "", srv.URL+"/").Complete(context.Background(), Request{Text: "x"})
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})
}

func TestBuildGeminiContent(t *testing.T) {
	contents, cfg := buildGeminiContent(Request{
		System:     TextPrompt,
		Text:       "hello",
		ImageMIME:  "image/png",
		ImageBytes: []byte{1, 2, 3},
	})

	require.Len(t, contents, 1)
	assert.Equal(t, "user", contents[0].Role)
	require.Len(t, contents[0].Parts, 2)
	assert.Equal(t, "hello", contents[0].Parts[0].Text)
	require.NotNil(t, contents[0].Parts[1].InlineData)
	assert.Equal(t, "image/png", contents[0].Parts[1].InlineData.MIMEType)

	assert.Equal(t, "application/json", cfg.ResponseMIMEType)
	require.NotNil(t, cfg.SystemInstruction)
	assert.Equal(t, TextPrompt, cfg.SystemInstruction.Parts[0].Text)
}

func TestDocumentInstruction(t *testing.T) {
	assert.Contains(t, DocumentInstruction("Acme", 91, 55), "91.00 × 55.00 mm")
	assert.Contains(t, DocumentInstruction("Acme", 91, 55), "Acme")
	assert.Contains(t, DocumentInstruction("Acme", 90.5, 55), "90.50 × 55.00 mm")
}
