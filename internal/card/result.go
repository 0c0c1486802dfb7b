package card

// Source tags where an analysis result came from.
type Source string

const (
	SourceImage Source = "image"
	SourcePDF   Source = "pdf"
	SourceIDML  Source = "idml"
	SourceMock  Source = "mock"
)

// Confidence conventions reported in metadata.
const (
	ConfidenceAI   = 0.95
	ConfidenceIDML = 0.9
	ConfidenceNone = 0.0
)

// Metadata describes how a result was produced.
type Metadata struct {
	Source      Source  `json:"source"`
	Confidence  float64 `json:"confidence"`
	AIPowered   bool    `json:"ai_powered"`
	Strategy    string  `json:"strategy,omitempty"`
	PageCount   int     `json:"page_count,omitempty"`
	ImageWidth  int     `json:"image_width_px,omitempty"`
	ImageHeight int     `json:"image_height_px,omitempty"`
}

// AnalysisResult is the output of one ingestion request.
type AnalysisResult struct {
	ExtractedText string   `json:"extracted_text"`
	CardFields    Fields   `json:"card_fields"`
	Logos         []string `json:"logos"`
	Metadata      Metadata `json:"metadata"`
	Layout        *Layout  `json:"layout,omitempty"`
}

// NewAnalysisResult builds a result whose extracted text is derived from
// fields.
func NewAnalysisResult(fields Fields, meta Metadata, layout *Layout) *AnalysisResult {
	return &AnalysisResult{
		ExtractedText: fields.ExtractedText(),
		CardFields:    fields,
		Logos:         []string{},
		Metadata:      meta,
		Layout:        layout,
	}
}

// AnalysisResponse is the envelope returned by the analyze endpoint.
type AnalysisResponse struct {
	MIMEType string          `json:"mime_type"`
	Result   *AnalysisResult `json:"result"`
}
