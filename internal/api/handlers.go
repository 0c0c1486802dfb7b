package api

import (
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/a3tai/cardkit/internal/apperr"
	"github.com/a3tai/cardkit/internal/card"
	"github.com/a3tai/cardkit/internal/export"
	"github.com/a3tai/cardkit/internal/ingest"
)

func (s *Server) handleAnalyze(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fail(c, err, fiber.StatusBadRequest, msgNoFile)
	}

	f, err := fh.Open()
	if err != nil {
		return fail(c, err, fiber.StatusBadRequest, msgAnalyzeFailed)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return fail(c, err, fiber.StatusBadRequest, msgAnalyzeFailed)
	}

	mimeType := fh.Header.Get(fiber.HeaderContentType)
	res, err := s.ingest.Analyze(c.UserContext(), ingest.Upload{
		Data:      data,
		MIMEType:  mimeType,
		FileName:  fh.Filename,
		Overrides: c.FormValue("overrides"),
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindUnsupportedMedia {
			return fail(c, err, fiber.StatusUnsupportedMediaType, msgUnsupportedMedia)
		}
		return fail(c, err, fiber.StatusBadRequest, msgAnalyzeFailed)
	}

	return c.JSON(card.AnalysisResponse{
		MIMEType: mimeType,
		Result:   res,
	})
}

func (s *Server) handleExportPDF(c *fiber.Ctx) error {
	req, err := export.DecodePDFRequest(c.Body())
	if err != nil {
		return fail(c, err, fiber.StatusInternalServerError, msgPDFFailed)
	}

	out, err := s.export.PDF(req)
	if err != nil {
		return fail(c, err, fiber.StatusInternalServerError, msgPDFFailed)
	}
	return sendAttachment(c, out, export.PDFContentType, export.PDFFilename)
}

func (s *Server) handleExportIDML(c *fiber.Ctx) error {
	req, err := export.DecodeIDMLRequest(c.Body())
	if err != nil {
		return fail(c, err, fiber.StatusInternalServerError, msgIDMLFailed)
	}

	out, err := s.export.IDML(req)
	if err != nil {
		return fail(c, err, fiber.StatusInternalServerError, msgIDMLFailed)
	}
	return sendAttachment(c, out, export.IDMLContentType, export.IDMLFilename)
}

func sendAttachment(c *fiber.Ctx, body []byte, contentType, filename string) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(body)
}
