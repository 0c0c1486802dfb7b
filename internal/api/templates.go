package api

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/a3tai/cardkit/internal/card"
	"github.com/a3tai/cardkit/internal/export"
	"github.com/a3tai/cardkit/internal/layout"
	"github.com/a3tai/cardkit/internal/templates"
)

// addTemplateRequest carries the layout as a raw object so it goes through
// the same defaulting as completion output.
type addTemplateRequest struct {
	Fields card.Fields    `json:"fields"`
	Layout map[string]any `json:"layout,omitempty"`
}

func (s *Server) handleListTemplates(c *fiber.Ctx) error {
	list, err := s.repo.List(c.UserContext())
	if err != nil {
		return failStore(c, err, msgTemplateNotFound)
	}
	return c.JSON(fiber.Map{"templates": list})
}

func (s *Server) handleAddTemplate(c *fiber.Ctx) error {
	var req addTemplateRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return fail(c, err, fiber.StatusBadRequest, msgBadRequest)
	}

	var l *card.Layout
	if req.Layout != nil {
		l = layout.FromAI(req.Layout, 0, 0)
	}

	t, err := s.repo.Add(c.UserContext(), req.Fields, l)
	if err != nil {
		return failStore(c, err, msgTemplateNotFound)
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

func (s *Server) handleFindTemplate(c *fiber.Ctx) error {
	company := strings.TrimSpace(c.Query("company"))
	if company == "" {
		return fail(c, nil, fiber.StatusBadRequest, msgBadRequest)
	}
	t, err := s.repo.FindByCompany(c.UserContext(), company)
	if err != nil {
		return failStore(c, err, msgTemplateNotFound)
	}
	return c.JSON(t)
}

func (s *Server) handleGetTemplate(c *fiber.Ctx) error {
	t, err := s.repo.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return failStore(c, err, msgTemplateNotFound)
	}
	return c.JSON(t)
}

func (s *Server) handleRemoveTemplate(c *fiber.Ctx) error {
	if err := s.repo.Remove(c.UserContext(), c.Params("id")); err != nil {
		return failStore(c, err, msgTemplateNotFound)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleIssueCard(c *fiber.Ctx) error {
	var variable card.Fields
	if err := json.Unmarshal(c.Body(), &variable); err != nil {
		return fail(c, err, fiber.StatusBadRequest, msgBadRequest)
	}

	issued, err := templates.Issue(c.UserContext(), s.repo, c.Params("id"), variable)
	if err != nil {
		return failStore(c, err, msgTemplateNotFound)
	}
	return c.Status(fiber.StatusCreated).JSON(issued)
}

func (s *Server) handleListCards(c *fiber.Ctx) error {
	cards, err := s.repo.ListCards(c.UserContext())
	if err != nil {
		return failStore(c, err, msgCardNotFound)
	}
	return c.JSON(fiber.Map{"cards": cards})
}

func (s *Server) handleGetCard(c *fiber.Ctx) error {
	got, err := s.repo.GetCard(c.UserContext(), c.Params("id"))
	if err != nil {
		return failStore(c, err, msgCardNotFound)
	}
	return c.JSON(got)
}

func (s *Server) handleUpdateCard(c *fiber.Ctx) error {
	var patch map[string]string
	if err := json.Unmarshal(c.Body(), &patch); err != nil {
		return fail(c, err, fiber.StatusBadRequest, msgBadRequest)
	}

	updated, err := s.repo.UpdateCard(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return failStore(c, err, msgCardNotFound)
	}
	return c.JSON(updated)
}

func (s *Server) handleRemoveCard(c *fiber.Ctx) error {
	if err := s.repo.RemoveCard(c.UserContext(), c.Params("id")); err != nil {
		return failStore(c, err, msgCardNotFound)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// cardWithTemplate loads a card and the template it was issued from.
func (s *Server) cardWithTemplate(c *fiber.Ctx) (*templates.Card, *templates.Template, error) {
	got, err := s.repo.GetCard(c.UserContext(), c.Params("id"))
	if err != nil {
		return nil, nil, err
	}
	t, err := s.repo.Get(c.UserContext(), got.TemplateID)
	if err != nil {
		return nil, nil, err
	}
	return got, t, nil
}

func (s *Server) handleCardPDF(c *fiber.Ctx) error {
	got, t, err := s.cardWithTemplate(c)
	if err != nil {
		return failStore(c, err, msgCardNotFound)
	}

	w, h := t.Layout.Size()
	out, err := s.export.PDF(export.NewPDFRequest(got.Fields, w, h))
	if err != nil {
		return fail(c, err, fiber.StatusInternalServerError, msgPDFFailed)
	}
	return sendAttachment(c, out, export.PDFContentType, export.PDFFilename)
}

func (s *Server) handleCardIDML(c *fiber.Ctx) error {
	got, t, err := s.cardWithTemplate(c)
	if err != nil {
		return failStore(c, err, msgCardNotFound)
	}

	out, err := s.export.IDML(export.IDMLRequest{
		CardFields: got.Fields,
		Layout:     t.Layout,
	})
	if err != nil {
		return fail(c, err, fiber.StatusInternalServerError, msgIDMLFailed)
	}
	return sendAttachment(c, out, export.IDMLContentType, export.IDMLFilename)
}
