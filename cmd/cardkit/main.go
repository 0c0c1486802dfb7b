package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/a3tai/cardkit/internal/ai"
	"github.com/a3tai/cardkit/internal/api"
	"github.com/a3tai/cardkit/internal/config"
	"github.com/a3tai/cardkit/internal/export"
	"github.com/a3tai/cardkit/internal/ingest"
	"github.com/a3tai/cardkit/internal/logging"
	"github.com/a3tai/cardkit/internal/mcp"
	"github.com/a3tai/cardkit/internal/templates"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// openRepository returns the SQLite store when a path is configured and an
// in-memory one otherwise. The returned func releases it.
func openRepository(cfg *config.Config) (templates.Repository, func(), error) {
	if cfg.TemplatesDB == "" {
		return templates.NewMemoryRepository(), func() {}, nil
	}
	repo, err := templates.OpenSQLite(cfg.TemplatesDB)
	if err != nil {
		return nil, nil, err
	}
	return repo, func() {
		if err := repo.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close templates database")
		}
	}, nil
}

// runServerMode serves the HTTP API until SIGINT/SIGTERM
func runServerMode(ctx context.Context, cfg *config.Config, ingestSvc *ingest.Service, exportSvc *export.Service) error {
	repo, closeRepo, err := openRepository(cfg)
	if err != nil {
		return fmt.Errorf("failed to open templates repository: %w", err)
	}
	defer closeRepo()

	server, err := api.NewServer(cfg, ingestSvc, exportSvc, repo)
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	if err := server.Run(ctx); err != nil {
		return err
	}
	logrus.Info("Server stopped successfully")
	return nil
}

// runStdioMode serves MCP tools; the parent process controls our lifecycle
func runStdioMode(ctx context.Context, cfg *config.Config, ingestSvc *ingest.Service, exportSvc *export.Service) error {
	server, err := mcp.NewServer(cfg, ingestSvc, exportSvc)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	return server.Run(ctx)
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(cfg.LogLevel, cfg.IsStdioMode())

	if version != "dev" {
		cfg.Version = version
	}
	logrus.Debugf("Starting with configuration: %s", cfg.String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	completer, err := ai.New(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create completion client")
	}
	if completer == nil {
		logrus.Warn("No AI credential configured; analysis uses mock and heuristic paths")
	}

	ingestSvc := ingest.NewService(completer, cfg.MaxFileSize)
	exportSvc := export.NewService()

	if cfg.IsServerMode() {
		err = runServerMode(ctx, cfg, ingestSvc, exportSvc)
	} else {
		err = runStdioMode(ctx, cfg, ingestSvc, exportSvc)
	}
	if err != nil {
		logrus.WithError(err).Error("Server exited with error")
		os.Exit(1)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("cardkit\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
