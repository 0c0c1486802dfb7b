// Package descriptions holds the long-form help text attached to MCP tools.
package descriptions

const (
	CardAnalyzeDescription = `Read a business card file and return its contact fields as JSON.

**When to use:** You have a scanned card (PNG, JPEG, WebP, ...), a PDF proof or an InDesign IDML package and need the company, name, title, email, phone, address and website.

**How it works:** Images are sent to the configured vision model. PDFs and IDML packages are read locally and, when a model is configured, the extracted text is refined by it. Without a model, images return a fixed sample record and PDFs/IDML fall back to pattern matching.

**Examples:**
• "Analyze scans/yamada.png"
• "Analyze proofs/card.pdf and force the name to Jane" (overrides: {"name":"Jane"})

**Output:** The analysis result: extracted_text, card_fields (all seven keys), metadata (source, confidence, ai_powered) and a layout when one could be derived.`

	CardExportPDFDescription = `Typeset card fields onto a single-page PDF.

**When to use:** You have card fields (for example from card_analyze) and need a printable proof.

**Examples:**
• "Export these fields to out/card.pdf"
• "Export to out/wide.pdf at 100 x 60 mm"

**Notes:** The page defaults to 91 x 55 mm. Text uses the standard Helvetica font, so non-Latin text is not rendered faithfully; use card_export_idml for Japanese cards.`

	CardExportIDMLDescription = `Write card fields and an optional layout as an InDesign IDML package.

**When to use:** A designer needs an editable InDesign document for the card.

**Examples:**
• "Export the analysis result to out/card.idml"
• "Export with this layout JSON to out/custom.idml"

**Notes:** Without a layout, a standard typographic layout is generated from the fields. Element text bound to a field key always follows the field value.`

	CardServerInfoDescription = `Report server version, working directory, AI availability and the supported input formats.

**When to use:** Before the first call, to learn which directory paths are resolved against and whether analysis will use an AI model.`
)

// ToolDescriptions maps tool names to their long descriptions
var ToolDescriptions = map[string]string{
	"card_analyze":     CardAnalyzeDescription,
	"card_export_pdf":  CardExportPDFDescription,
	"card_export_idml": CardExportIDMLDescription,
	"card_server_info": CardServerInfoDescription,
}

// GetToolDescription returns the description registered for toolName
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}
