package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/a3tai/cardkit/internal/apperr"
	"github.com/a3tai/cardkit/internal/templates"
)

// Messages returned to clients. Causes stay in the server log.
const (
	msgNoFile           = "ファイルが指定されていません"
	msgUnsupportedMedia = "対応していないファイル形式です"
	msgAnalyzeFailed    = "解析に失敗しました"
	msgPDFFailed        = "PDF出力に失敗しました"
	msgIDMLFailed       = "IDML出力に失敗しました"
	msgBadRequest       = "リクエストが不正です"
	msgTemplateNotFound = "テンプレートが見つかりません"
	msgCardNotFound     = "名刺が見つかりません"
	msgInternal         = "内部エラーが発生しました"
	msgRouteNotFound    = "指定されたURLは存在しません"
	msgMethodNotAllowed = "許可されていないメソッドです"
	msgTooLarge         = "リクエストが大きすぎます"
)

// fiberMessage localizes the status of one of fiber's own errors.
func fiberMessage(code int) string {
	switch {
	case code == fiber.StatusNotFound:
		return msgRouteNotFound
	case code == fiber.StatusMethodNotAllowed:
		return msgMethodNotAllowed
	case code == fiber.StatusRequestEntityTooLarge:
		return msgTooLarge
	case code >= fiber.StatusInternalServerError:
		return msgInternal
	default:
		return msgBadRequest
	}
}

// detail writes the {detail} error body used by every endpoint.
func detail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"detail": message})
}

// fail logs err with request context and answers with message.
func fail(c *fiber.Ctx, err error, status int, message string) error {
	entry := logrus.WithFields(logrus.Fields{
		"path":       c.Path(),
		"method":     c.Method(),
		"status":     status,
		"request_id": c.Locals("requestid"),
	})
	if err != nil {
		entry = entry.WithError(err)
	}
	if status >= fiber.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Warn("Request rejected")
	}
	return detail(c, status, message)
}

// failStore maps repository errors, turning ErrNotFound into a 404.
func failStore(c *fiber.Ctx, err error, notFound string) error {
	if errors.Is(err, templates.ErrNotFound) {
		return fail(c, err, fiber.StatusNotFound, notFound)
	}
	return fail(c, err, fiber.StatusInternalServerError, msgInternal)
}

// errorHandler answers for errors that escape a handler, including fiber's
// own routing and body-limit errors.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fail(c, err, fe.Code, fiberMessage(fe.Code))
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return fail(c, err, ae.Kind.HTTPStatus(), msgInternal)
	}
	return fail(c, err, fiber.StatusInternalServerError, msgInternal)
}
