package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/a3tai/cardkit/internal/card"
	"github.com/a3tai/cardkit/internal/export"
	"github.com/a3tai/cardkit/internal/layout"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render card fields to PDF or IDML",
	Long: `Export typesets card fields read from a YAML file. The fields file holds any
of company, name, title, email, phone, address and website:

  company: Acme Corp
  name: Taro Yamada
  email: taro@acme.example`,
}

var exportPDFCmd = &cobra.Command{
	Use:   "pdf",
	Short: "Write a single-page PDF proof",
	Args:  cobra.NoArgs,
	RunE:  runExportPDF,
}

var exportIDMLCmd = &cobra.Command{
	Use:   "idml",
	Short: "Write an editable InDesign IDML package",
	Args:  cobra.NoArgs,
	RunE:  runExportIDML,
}

func init() {
	for _, c := range []*cobra.Command{exportPDFCmd, exportIDMLCmd} {
		c.Flags().String("fields", "", "YAML file with the card fields")
		c.Flags().StringP("output", "o", "", "output file")
		_ = c.MarkFlagRequired("fields")
		_ = c.MarkFlagRequired("output")
	}
	exportPDFCmd.Flags().Float64("width", 0, "page width in mm (default 91)")
	exportPDFCmd.Flags().Float64("height", 0, "page height in mm (default 55)")
	exportIDMLCmd.Flags().String("layout", "", "layout JSON file (generated from the fields when empty)")

	exportCmd.AddCommand(exportPDFCmd, exportIDMLCmd)
	rootCmd.AddCommand(exportCmd)
}

// readFields loads a YAML fields file. Unknown keys are ignored.
func readFields(path string) (card.Fields, error) {
	var fields card.Fields
	data, err := os.ReadFile(path)
	if err != nil {
		return fields, fmt.Errorf("reading fields: %w", err)
	}
	if err := yaml.Unmarshal(data, &fields); err != nil {
		return fields, fmt.Errorf("parsing fields %s: %w", path, err)
	}
	return fields, nil
}

// readLayout loads a layout JSON file through the same defaulting the
// server applies.
func readLayout(path string) (*card.Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading layout: %w", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing layout %s: %w", path, err)
	}
	return layout.FromAI(raw, 0, 0), nil
}

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d bytes to %s\n", len(data), path)
	return nil
}

func runExportPDF(cmd *cobra.Command, args []string) error {
	fieldsPath, _ := cmd.Flags().GetString("fields")
	output, _ := cmd.Flags().GetString("output")
	width, _ := cmd.Flags().GetFloat64("width")
	height, _ := cmd.Flags().GetFloat64("height")

	fields, err := readFields(fieldsPath)
	if err != nil {
		return err
	}

	data, err := export.NewService().PDF(export.NewPDFRequest(fields, width, height))
	if err != nil {
		return err
	}
	return writeOutput(cmd, output, data)
}

func runExportIDML(cmd *cobra.Command, args []string) error {
	fieldsPath, _ := cmd.Flags().GetString("fields")
	output, _ := cmd.Flags().GetString("output")
	layoutPath, _ := cmd.Flags().GetString("layout")

	fields, err := readFields(fieldsPath)
	if err != nil {
		return err
	}

	var l *card.Layout
	if layoutPath != "" {
		if l, err = readLayout(layoutPath); err != nil {
			return err
		}
	}

	data, err := export.NewService().IDML(export.IDMLRequest{CardFields: fields, Layout: l})
	if err != nil {
		return err
	}
	return writeOutput(cmd, output, data)
}
