package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/cardkit/internal/card"
	"github.com/a3tai/cardkit/internal/config"
	"github.com/a3tai/cardkit/internal/export"
	"github.com/a3tai/cardkit/internal/idml"
	"github.com/a3tai/cardkit/internal/ingest"
	"github.com/a3tai/cardkit/internal/normalize"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Mode:          config.ModeStdio,
		WorkDirectory: dir,
		Version:       "1.0.0",
		ServerName:    "test-server",
		LogLevel:      "info",
		MaxFileSize:   1024 * 1024,
		AIProvider:    config.ProviderOpenAI,
	}
	s, err := NewServer(cfg, ingest.NewService(nil, cfg.MaxFileSize), export.NewService())
	require.NoError(t, err)
	return s, dir
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: args},
	}
}

// Helper function to extract text from a CallToolResult
func extractTextFromResult(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			return textContent.Text
		}
		if textContentPtr, ok := content.(*mcp.TextContent); ok {
			return textContentPtr.Text
		}
	}
	return ""
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 3))))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
}

func TestNewServer(t *testing.T) {
	cfg := config.DefaultConfig()

	_, err := NewServer(cfg, nil, export.NewService())
	assert.Error(t, err)
	_, err = NewServer(cfg, ingest.NewService(nil, 1), nil)
	assert.Error(t, err)

	cfg.WorkDirectory = ""
	_, err = NewServer(cfg, ingest.NewService(nil, 1), export.NewService())
	assert.Error(t, err)
}

func TestHandleCardAnalyze(t *testing.T) {
	s, dir := newTestServer(t)
	writePNG(t, filepath.Join(dir, "card.png"))

	result, err := s.handleCardAnalyze(context.Background(), callRequest(map[string]any{
		"path":      "card.png",
		"overrides": `{"name":"Jane"}`,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, extractTextFromResult(result))

	var res card.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(extractTextFromResult(result)), &res))
	want := normalize.MockFields()
	want.Name = "Jane"
	assert.Equal(t, want, res.CardFields)
	assert.Equal(t, 4, res.Metadata.ImageWidth)
}

func TestHandleCardAnalyzeErrors(t *testing.T) {
	s, dir := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "big.png"), make([]byte, 2*1024*1024), 0o600))

	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing path", map[string]any{}},
		{"outside directory", map[string]any{"path": "../../etc/passwd"}},
		{"missing file", map[string]any{"path": "nope.png"}},
		{"unsupported", map[string]any{"path": "notes.txt"}},
		{"too large", map[string]any{"path": "big.png"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.handleCardAnalyze(context.Background(), callRequest(tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
		})
	}
}

func TestHandleCardExportPDF(t *testing.T) {
	s, dir := newTestServer(t)

	result, err := s.handleCardExportPDF(context.Background(), callRequest(map[string]any{
		"fields_json": `{"card_fields":{"name":"Taro","email":"taro@example.com","phone":1234}}`,
		"width_mm":    100.0,
		"height_mm":   50.0,
		"output":      "out/card.pdf",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, extractTextFromResult(result))

	data, err := os.ReadFile(filepath.Join(dir, "out", "card.pdf"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-1.4")))
	assert.Contains(t, string(data), "/MediaBox [0 0 283.46 141.73]")
	assert.Contains(t, string(data), "(1234) Tj")
}

func TestHandleCardExportPDFErrors(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name string
		args map[string]any
	}{
		{"bad json", map[string]any{"fields_json": "{", "output": "a.pdf"}},
		{"missing output", map[string]any{"fields_json": "{}"}},
		{"outside output", map[string]any{"fields_json": "{}", "output": "/tmp/../etc/card.pdf"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.handleCardExportPDF(context.Background(), callRequest(tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
		})
	}
}

func TestHandleCardExportIDML(t *testing.T) {
	s, dir := newTestServer(t)

	result, err := s.handleCardExportIDML(context.Background(), callRequest(map[string]any{
		"fields_json": `{"name":"Taro","company":"Acme"}`,
		"layout_json": `{"elements":[{"fieldKey":"name","text":"old","x_mm":5,"y_mm":5}]}`,
		"output":      "card.idml",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, extractTextFromResult(result))

	data, err := os.ReadFile(filepath.Join(dir, "card.idml"))
	require.NoError(t, err)

	raw, err := idml.Read(data)
	require.NoError(t, err)
	assert.Contains(t, raw.Text, "Taro")
	assert.NotContains(t, raw.Text, "old")

	result, err = s.handleCardExportIDML(context.Background(), callRequest(map[string]any{
		"fields_json": `{}`,
		"layout_json": `[`,
		"output":      "bad.idml",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleCardServerInfo(t *testing.T) {
	s, dir := newTestServer(t)

	result, err := s.handleCardServerInfo(context.Background(), callRequest(nil))
	require.NoError(t, err)

	text := extractTextFromResult(result)
	assert.Contains(t, text, "test-server v1.0.0")
	assert.Contains(t, text, dir)
	assert.Contains(t, text, "AI analysis: disabled")
	assert.Contains(t, text, "card_export_idml")
}
