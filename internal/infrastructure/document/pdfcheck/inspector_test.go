package pdfcheck

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pharmawatch/ae-console/internal/core/domain"
)

// minimalPDF is the smallest well-formed single-page document the parser
// accepts.
const minimalPDF = `%PDF-1.4
1 0 obj
<< /Type /Catalog /Pages 2 0 R >>
endobj
2 0 obj
<< /Type /Pages /Kids [3 0 R] /Count 1 >>
endobj
3 0 obj
<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>
endobj
xref
0 4
0000000000 65535 f
0000000009 00000 n
0000000058 00000 n
0000000115 00000 n
trailer
<< /Size 4 /Root 1 0 R >>
startxref
186
%%EOF
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestInspectAcceptsSinglePagePDF(t *testing.T) {
	path := writeFile(t, "case.pdf", minimalPDF)

	pages, err := New().Inspect(path)
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if pages != 1 {
		t.Errorf("pages = %d, want 1", pages)
	}
}

func TestInspectRejectsNonPDFExtension(t *testing.T) {
	path := writeFile(t, "notes.txt", "plain text")

	_, err := New().Inspect(path)
	if !domain.IsKind(err, domain.ErrValidation) {
		t.Fatalf("error = %v, want validation kind", err)
	}
}

func TestInspectRejectsCorruptPDF(t *testing.T) {
	path := writeFile(t, "broken.pdf", "not a pdf at all")

	_, err := New().Inspect(path)
	if !domain.IsKind(err, domain.ErrValidation) {
		t.Fatalf("error = %v, want validation kind", err)
	}
}

func TestInspectMissingFile(t *testing.T) {
	_, err := New().Inspect(filepath.Join(t.TempDir(), "absent.pdf"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
