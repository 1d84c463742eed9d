// Package pdftext extracts plain text from uploaded statute PDFs.
package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// Extract pulls the text layer out of a PDF. Uploads that are already
// plain text pass through unchanged so fixture files and .txt statutes
// keep working.
func (e *Extractor) Extract(_ context.Context, data []byte) (string, error) {
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		if utf8.Valid(data) {
			return strings.TrimSpace(string(data)), nil
		}
		return "", fmt.Errorf("unsupported document format")
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	var builder strings.Builder
	if _, err := io.Copy(&builder, textReader); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return strings.TrimSpace(builder.String()), nil
}
