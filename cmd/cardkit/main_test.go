package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/cardkit/internal/card"
	"github.com/a3tai/cardkit/internal/config"
	"github.com/a3tai/cardkit/internal/templates"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	originalStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	defer func() { os.Stdout = originalStdout }()

	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
		w.Close()
	}()

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	<-done
	return buf.String()
}

func TestPrintVersion(t *testing.T) {
	oldVersion, oldBuildTime, oldGitCommit := version, buildTime, gitCommit
	defer func() {
		version, buildTime, gitCommit = oldVersion, oldBuildTime, oldGitCommit
	}()

	tests := []struct {
		name                          string
		version, buildTime, gitCommit string
	}{
		{"build flags", "1.2.3", "2026-01-01_10:30:00", "abc123"},
		{"defaults", "dev", "unknown", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, buildTime, gitCommit = tt.version, tt.buildTime, tt.gitCommit
			output := captureStdout(t, printVersion)

			assert.Contains(t, output, "cardkit")
			assert.Contains(t, output, "Version: "+tt.version)
			assert.Contains(t, output, "Build Time: "+tt.buildTime)
			assert.Contains(t, output, "Git Commit: "+tt.gitCommit)
			assert.Contains(t, output, "Built with:")
		})
	}
}

func TestOpenRepository(t *testing.T) {
	cfg := config.DefaultConfig()

	repo, closeRepo, err := openRepository(cfg)
	require.NoError(t, err)
	defer closeRepo()
	assert.IsType(t, &templates.MemoryRepository{}, repo)

	cfg.TemplatesDB = filepath.Join(t.TempDir(), "templates.db")
	repo, closeSQLite, err := openRepository(cfg)
	require.NoError(t, err)
	defer closeSQLite()
	assert.IsType(t, &templates.SQLiteRepository{}, repo)

	_, err = repo.Add(context.Background(), card.Fields{Company: "Acme"}, nil)
	assert.NoError(t, err)
}
