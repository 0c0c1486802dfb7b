// Package ingest turns an uploaded card file into an analysis result.
package ingest

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/a3tai/cardkit/internal/apperr"
	"github.com/a3tai/cardkit/internal/idml"
)

// Kind is the container family of an upload.
type Kind string

const (
	KindImage Kind = "image"
	KindPDF   Kind = "pdf"
	KindIDML  Kind = "idml"
)

// MIMEPDF is the declared type of PDF uploads.
const MIMEPDF = "application/pdf"

// Detect classifies an upload from its declared content type and file name.
// A name ending in .idml wins over the declared type, so zip-typed IDML
// packages are accepted. Anything else that is not an image or a PDF is
// rejected with an UnsupportedMedia error.
func Detect(mimeType, fileName string) (Kind, error) {
	mt := baseType(mimeType)

	switch {
	case strings.HasSuffix(strings.ToLower(fileName), ".idml"):
		return KindIDML, nil
	case mt == idml.MIMEType:
		return KindIDML, nil
	case strings.HasPrefix(mt, "image/"):
		return KindImage, nil
	case mt == MIMEPDF:
		return KindPDF, nil
	}
	return "", apperr.UnsupportedMedia(mimeType)
}

// baseType lower-cases a media type and drops its parameters.
func baseType(mimeType string) string {
	if mt, _, err := mime.ParseMediaType(mimeType); err == nil {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}

// MIMETypeForName guesses a declared type from a file name, for callers that
// read files from disk instead of receiving an upload.
func MIMETypeForName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".pdf":
		return MIMEPDF
	case ".idml":
		return idml.MIMEType
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		return mt
	}
	return "application/octet-stream"
}
