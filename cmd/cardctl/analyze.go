package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/a3tai/cardkit/internal/ai"
	"github.com/a3tai/cardkit/internal/config"
	"github.com/a3tai/cardkit/internal/ingest"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Extract card fields from an image, PDF or IDML file",
	Long: `Analyze reads one card file and prints the analysis result as JSON:
extracted text, the seven card fields, source metadata and a layout when one
could be derived. Without an AI credential (or with --offline) images return
a sample record and PDF/IDML files fall back to pattern matching.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("overrides", "", `JSON object of field values to force, e.g. '{"name":"Jane"}'`)
	analyzeCmd.Flags().Bool("offline", false, "never call the AI provider")
	analyzeCmd.Flags().String("ai-provider", config.DefaultProvider, "completion provider: openai or gemini")
	analyzeCmd.Flags().String("ai-model", "", "completion model (provider default when empty)")
	analyzeCmd.Flags().String("ai-base-url", "", "override the completion API base URL")
	analyzeCmd.Flags().Int64("max-file-size", config.DefaultMaxFileSize, "maximum input size in bytes")

	_ = viper.BindPFlag("ai.provider", analyzeCmd.Flags().Lookup("ai-provider"))
	_ = viper.BindPFlag("ai.model", analyzeCmd.Flags().Lookup("ai-model"))
	_ = viper.BindPFlag("ai.baseurl", analyzeCmd.Flags().Lookup("ai-base-url"))

	rootCmd.AddCommand(analyzeCmd)
}

// completionConfig collects the AI settings shared with the server.
func completionConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.AIProvider = viper.GetString("ai.provider")
	cfg.AIAPIKey = viper.GetString("ai.apikey")
	cfg.AIModel = viper.GetString("ai.model")
	cfg.AIBaseURL = viper.GetString("ai.baseurl")
	cfg.ResolveAPIKey()
	return cfg
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]
	overrides, _ := cmd.Flags().GetString("overrides")
	offline, _ := cmd.Flags().GetBool("offline")
	maxFileSize, _ := cmd.Flags().GetInt64("max-file-size")

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var completer ai.Completer
	if !offline {
		completer, err = ai.New(cmd.Context(), completionConfig())
		if err != nil {
			return fmt.Errorf("creating completion client: %w", err)
		}
	}

	svc := ingest.NewService(completer, maxFileSize)
	res, err := svc.Analyze(cmd.Context(), ingest.Upload{
		Data:      data,
		MIMEType:  ingest.MIMETypeForName(path),
		FileName:  filepath.Base(path),
		Overrides: overrides,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(res)
}
