package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/a3tai/cardkit/internal/card"
	"github.com/a3tai/cardkit/internal/config"
	"github.com/a3tai/cardkit/internal/descriptions"
	"github.com/a3tai/cardkit/internal/export"
	"github.com/a3tai/cardkit/internal/ingest"
	"github.com/a3tai/cardkit/internal/layout"
	"github.com/a3tai/cardkit/internal/security"
)

const outputFilePerm = 0o644

// SupportedFormats lists the input files card_analyze accepts.
var SupportedFormats = []string{
	"PNG, JPEG, GIF, WebP, BMP, TIFF images",
	"PDF documents",
	"InDesign IDML packages (.idml)",
}

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	ingest    *ingest.Service
	export    *export.Service
	paths     *security.PathValidator
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, ingestSvc *ingest.Service, exportSvc *export.Service) (*Server, error) {
	if ingestSvc == nil {
		return nil, fmt.Errorf("ingest service cannot be nil")
	}
	if exportSvc == nil {
		return nil, fmt.Errorf("export service cannot be nil")
	}

	paths, err := security.NewPathValidator(cfg.WorkDirectory)
	if err != nil {
		return nil, fmt.Errorf("invalid working directory: %w", err)
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		config:    cfg,
		ingest:    ingestSvc,
		export:    exportSvc,
		paths:     paths,
		mcpServer: mcpServer,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(
		"card_analyze",
		mcp.WithDescription(descriptions.CardAnalyzeDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Card file path, relative to the working directory or absolute inside it"),
		),
		mcp.WithString("overrides",
			mcp.Description(`Optional JSON object of field values that replace the extracted ones, e.g. {"name":"Jane"}`),
		),
	), s.handleCardAnalyze)

	s.mcpServer.AddTool(mcp.NewTool(
		"card_export_pdf",
		mcp.WithDescription(descriptions.CardExportPDFDescription),
		mcp.WithString("fields_json",
			mcp.Required(),
			mcp.Description("JSON object with any of company, name, title, email, phone, address, website"),
		),
		mcp.WithNumber("width_mm",
			mcp.Description("Page width in millimetres (default 91)"),
		),
		mcp.WithNumber("height_mm",
			mcp.Description("Page height in millimetres (default 55)"),
		),
		mcp.WithString("output",
			mcp.Required(),
			mcp.Description("Destination .pdf path inside the working directory"),
		),
	), s.handleCardExportPDF)

	s.mcpServer.AddTool(mcp.NewTool(
		"card_export_idml",
		mcp.WithDescription(descriptions.CardExportIDMLDescription),
		mcp.WithString("fields_json",
			mcp.Required(),
			mcp.Description("JSON object with any of company, name, title, email, phone, address, website"),
		),
		mcp.WithString("layout_json",
			mcp.Description("Optional layout object with width_mm, height_mm and elements"),
		),
		mcp.WithString("output",
			mcp.Required(),
			mcp.Description("Destination .idml path inside the working directory"),
		),
	), s.handleCardExportIDML)

	s.mcpServer.AddTool(mcp.NewTool(
		"card_server_info",
		mcp.WithDescription(descriptions.CardServerInfoDescription),
	), s.handleCardServerInfo)
}

func (s *Server) handleCardAnalyze(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	abs, err := s.paths.ResolveFile(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	info, err := os.Stat(abs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if info.Size() > s.config.MaxFileSize {
		return mcp.NewToolResultError(fmt.Sprintf("file too large: %d bytes (max: %d bytes)", info.Size(), s.config.MaxFileSize)), nil
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read file: %v", err)), nil
	}

	res, err := s.ingest.Analyze(ctx, ingest.Upload{
		Data:      data,
		MIMEType:  ingest.MIMETypeForName(abs),
		FileName:  filepath.Base(abs),
		Overrides: request.GetString("overrides", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) handleCardExportPDF(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fields, err := requireFields(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	output, err := s.requireOutput(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	w := request.GetFloat("width_mm", 0)
	h := request.GetFloat("height_mm", 0)
	data, err := s.export.PDF(export.NewPDFRequest(fields, w, h))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return s.writeOutput(output, data)
}

func (s *Server) handleCardExportIDML(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fields, err := requireFields(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	output, err := s.requireOutput(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var l *card.Layout
	if raw := request.GetString("layout_json", ""); strings.TrimSpace(raw) != "" {
		var m map[string]any
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid layout_json: %v", err)), nil
		}
		l = layout.FromAI(m, 0, 0)
	}

	data, err := s.export.IDML(export.IDMLRequest{CardFields: fields, Layout: l})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return s.writeOutput(output, data)
}

func (s *Server) handleCardServerInfo(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.serverInfo()), nil
}

func (s *Server) serverInfo() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s v%s\n", s.config.ServerName, s.config.Version)
	fmt.Fprintf(&b, "Working directory: %s\n", s.paths.Root())
	fmt.Fprintf(&b, "Max file size: %d MB\n", s.config.MaxFileSize/(1024*1024))
	if s.ingest.AIEnabled() {
		fmt.Fprintf(&b, "AI analysis: enabled (%s)\n", s.config.AIProvider)
	} else {
		b.WriteString("AI analysis: disabled (images return a sample record, PDF/IDML use pattern matching)\n")
	}

	b.WriteString("\nSupported inputs:\n")
	for _, f := range SupportedFormats {
		fmt.Fprintf(&b, "  • %s\n", f)
	}

	b.WriteString("\nTools:\n")
	for _, name := range []string{"card_analyze", "card_export_pdf", "card_export_idml", "card_server_info"} {
		fmt.Fprintf(&b, "  • %s\n", name)
	}
	return b.String()
}

// requireFields decodes the fields_json argument. Unknown keys are dropped
// and scalars are stringified.
func requireFields(request mcp.CallToolRequest) (card.Fields, error) {
	raw, err := request.RequireString("fields_json")
	if err != nil {
		return card.Fields{}, err
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return card.Fields{}, fmt.Errorf("invalid fields_json: %w", err)
	}
	if nested, ok := m["card_fields"].(map[string]any); ok {
		m = nested
	}
	return card.FieldsFromMap(m), nil
}

func (s *Server) requireOutput(request mcp.CallToolRequest) (string, error) {
	output, err := request.RequireString("output")
	if err != nil {
		return "", err
	}
	return s.paths.Resolve(output)
}

func (s *Server) writeOutput(path string, data []byte) (*mcp.CallToolResult, error) {
	if err := os.MkdirAll(filepath.Dir(path), config.DefaultDirPerm); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create output directory: %v", err)), nil
	}
	if err := os.WriteFile(path, data, outputFilePerm); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to write output: %v", err)), nil
	}

	logrus.WithFields(logrus.Fields{
		"path":  path,
		"bytes": len(data),
	}).Info("Wrote export")
	return mcp.NewToolResultText(fmt.Sprintf("Wrote %d bytes to %s", len(data), path)), nil
}

// Run serves MCP over standard I/O until the client disconnects
func (s *Server) Run(_ context.Context) error {
	logrus.WithFields(logrus.Fields{
		"directory":  s.paths.Root(),
		"ai_enabled": s.ingest.AIEnabled(),
	}).Debug("Starting MCP server in stdio mode")

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
