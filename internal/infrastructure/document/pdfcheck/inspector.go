// Package pdfcheck validates a candidate upload locally before it is sent to
// the backend. The backend re-validates; this guard only keeps obviously
// broken selections from burning a submission.
package pdfcheck

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/pharmawatch/ae-console/internal/core/domain"
)

type Inspector struct{}

func New() *Inspector {
	return &Inspector{}
}

// Inspect confirms the file parses as a PDF with at least one page and
// returns the page count.
func (i *Inspector) Inspect(path string) (int, error) {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return 0, domain.WrapError(domain.ErrValidation, "inspect document", fmt.Errorf("%s is not a PDF file", path))
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return 0, domain.WrapError(domain.ErrValidation, "inspect document", fmt.Errorf("open PDF: %w", err))
	}
	defer f.Close()

	pages := reader.NumPage()
	if pages < 1 {
		return 0, domain.WrapError(domain.ErrValidation, "inspect document", errors.New("PDF has no pages"))
	}
	return pages, nil
}
