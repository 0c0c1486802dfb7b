package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/a3tai/cardkit/internal/ai"
	"github.com/a3tai/cardkit/internal/apperr"
	"github.com/a3tai/cardkit/internal/card"
	"github.com/a3tai/cardkit/internal/idml"
	"github.com/a3tai/cardkit/internal/layout"
	"github.com/a3tai/cardkit/internal/normalize"
	"github.com/a3tai/cardkit/internal/pdf"
)

// Strategy names recorded in result metadata for non-PDF sources.
const (
	StrategyVision = "vision"
	StrategyMock   = "mock"
	StrategyIDML   = "idml"
)

// Upload is one file submitted for analysis.
type Upload struct {
	Data     []byte
	MIMEType string
	FileName string
	// Overrides is an optional JSON object merged over the extracted fields.
	Overrides string
}

// Service runs the ingestion pipeline. It holds no per-request state and is
// safe for concurrent use.
type Service struct {
	completer   ai.Completer
	pdfReader   *pdf.Reader
	maxFileSize int64
}

// NewService creates a pipeline. A nil completer disables every AI path.
func NewService(completer ai.Completer, maxFileSize int64) *Service {
	return &Service{
		completer:   completer,
		pdfReader:   pdf.NewReader(),
		maxFileSize: maxFileSize,
	}
}

// AIEnabled reports whether a completion service is configured.
func (s *Service) AIEnabled() bool {
	return s.completer != nil
}

// Analyze detects the upload kind, extracts fields (and a layout when one
// can be derived) and applies the caller's overrides last.
func (s *Service) Analyze(ctx context.Context, up Upload) (*card.AnalysisResult, error) {
	kind, err := Detect(up.MIMEType, up.FileName)
	if err != nil {
		return nil, err
	}

	if len(up.Data) == 0 {
		return nil, apperr.Validation("file is empty")
	}
	if s.maxFileSize > 0 && int64(len(up.Data)) > s.maxFileSize {
		return nil, apperr.Validation(fmt.Sprintf("file too large: %d bytes (max: %d bytes)", len(up.Data), s.maxFileSize))
	}

	log := logrus.WithFields(logrus.Fields{
		"kind":       kind,
		"file":       up.FileName,
		"size":       len(up.Data),
		"ai_enabled": s.AIEnabled(),
	})

	var res *card.AnalysisResult
	switch kind {
	case KindImage:
		res, err = s.analyzeImage(ctx, up)
	case KindPDF:
		res, err = s.analyzePDF(ctx, up)
	case KindIDML:
		res, err = s.analyzeIDML(ctx, up)
	}
	if err != nil {
		log.WithError(err).Warn("Analysis failed")
		return nil, err
	}

	fields := normalize.ApplyOverrides(res.CardFields, up.Overrides)
	res.CardFields = fields
	res.ExtractedText = fields.ExtractedText()

	log.WithFields(logrus.Fields{
		"source":     res.Metadata.Source,
		"strategy":   res.Metadata.Strategy,
		"confidence": res.Metadata.Confidence,
		"has_layout": res.Layout != nil,
	}).Info("Analysis completed")

	return res, nil
}

func (s *Service) analyzeImage(ctx context.Context, up Upload) (*card.AnalysisResult, error) {
	width, height := probeImage(up.Data)

	if !s.AIEnabled() {
		return card.NewAnalysisResult(normalize.MockFields(), card.Metadata{
			Source:      card.SourceMock,
			Confidence:  card.ConfidenceNone,
			Strategy:    StrategyMock,
			ImageWidth:  width,
			ImageHeight: height,
		}, nil), nil
	}

	payload, err := s.complete(ctx, ai.Request{
		System:     ai.LayoutPrompt,
		Text:       ai.ImageInstruction,
		ImageMIME:  baseType(up.MIMEType),
		ImageBytes: up.Data,
	})
	if err != nil {
		return nil, err
	}

	var l *card.Layout
	if payload.HasLayout() {
		l = layout.FromAI(payload.Layout, 0, 0)
	}

	return card.NewAnalysisResult(payload.Fields, card.Metadata{
		Source:      card.SourceImage,
		Confidence:  card.ConfidenceAI,
		AIPowered:   true,
		Strategy:    StrategyVision,
		ImageWidth:  width,
		ImageHeight: height,
	}, l), nil
}

func (s *Service) analyzePDF(ctx context.Context, up Upload) (*card.AnalysisResult, error) {
	ex := s.pdfReader.Extract(up.Data)
	width, height := ex.PageSize()

	meta := card.Metadata{
		Source:     card.SourcePDF,
		Confidence: card.ConfidenceNone,
		Strategy:   ex.Strategy,
		PageCount:  ex.PageCount,
	}

	// No text layer: nothing to send, and nothing to guess from.
	if ex.Text == "" {
		return card.NewAnalysisResult(card.Fields{}, meta, nil), nil
	}

	if !s.AIEnabled() {
		return card.NewAnalysisResult(normalize.Heuristic(ex.Text), meta, nil), nil
	}

	payload, err := s.complete(ctx, ai.Request{
		System: ai.LayoutPrompt,
		Text:   ai.DocumentInstruction(ex.Text, width, height),
	})
	if err != nil {
		return nil, err
	}

	var l *card.Layout
	if payload.HasLayout() {
		l = layout.FromAI(payload.Layout, width, height)
	}

	meta.Confidence = card.ConfidenceAI
	meta.AIPowered = true
	return card.NewAnalysisResult(backfill(payload.Fields, ex.Text), meta, l), nil
}

// backfill fills the gaps of a completion that missed the person's name
// with what the line heuristic finds in the local text. The third line is
// too unreliable to stand in for a title here.
func backfill(fields card.Fields, text string) card.Fields {
	if fields.Name != "" || text == "" {
		return fields
	}
	guess := normalize.Heuristic(text)
	guess.Title = ""
	return guess.MergeNonEmpty(fields)
}

func (s *Service) analyzeIDML(ctx context.Context, up Upload) (*card.AnalysisResult, error) {
	raw, err := idml.Read(up.Data)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindValidation, "unreadable IDML package")
	}

	meta := card.Metadata{
		Source:     card.SourceIDML,
		Confidence: card.ConfidenceNone,
		Strategy:   StrategyIDML,
		PageCount:  raw.PageCount,
	}

	if raw.Text == "" {
		return card.NewAnalysisResult(card.Fields{}, meta, nil), nil
	}

	var fields card.Fields
	if s.AIEnabled() {
		payload, err := s.complete(ctx, ai.Request{
			System: ai.TextPrompt,
			Text:   ai.TextInstruction(raw.Text),
		})
		if err != nil {
			return nil, err
		}
		fields = backfill(payload.Fields, raw.Text)
		meta.Confidence = card.ConfidenceAI
		meta.AIPowered = true
	} else {
		fields = normalize.Heuristic(raw.Text)
		meta.Confidence = card.ConfidenceIDML
	}

	var l *card.Layout
	if len(raw.Fragments) > 0 {
		width, height := raw.PageSize()
		l = layout.AutoFlow(raw.Fragments, fields, width, height)
	}

	return card.NewAnalysisResult(fields, meta, l), nil
}

// complete performs the single completion call of a request and decodes its
// JSON payload. Both transport failures and unusable responses are upstream
// errors.
func (s *Service) complete(ctx context.Context, req ai.Request) (normalize.Payload, error) {
	content, err := s.completer.Complete(ctx, req)
	if err != nil {
		return normalize.Payload{}, apperr.Upstream(err)
	}

	payload, err := normalize.FromAIResponse(content)
	if err != nil {
		if errors.Is(err, normalize.ErrNoJSONObject) {
			logrus.WithField("provider", s.completer.Name()).Debug("Completion response held no JSON object")
		}
		return normalize.Payload{}, apperr.Upstream(err)
	}
	return payload, nil
}
