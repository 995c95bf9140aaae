package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rinomina/facile/internal/core/domain"
)

func writeDocx(t *testing.T, paragraphs []string) string {
	t.Helper()
	var body strings.Builder
	body.WriteString(`<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	body.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := f.Write([]byte(body.String())); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	path := filepath.Join(t.TempDir(), "letter.docx")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write docx: %v", err)
	}
	return path
}

func TestPreviewUnsupportedCategory(t *testing.T) {
	svc := NewService(nil, nil)

	result, doc := svc.Preview(context.Background(), "/tmp/archive.zip", domain.CategoryUnsupported, domain.Viewport{})
	if doc != nil {
		t.Fatal("unsupported preview must not return a handle")
	}
	if !result.Failed() {
		t.Fatal("expected a failure result")
	}
	if !errors.Is(result.Failure, domain.ErrUnsupportedFormat) {
		t.Errorf("Failure = %v, want unsupported format", result.Failure)
	}
	if result.Body != unsupportedMessage {
		t.Errorf("Body = %q, want %q", result.Body, unsupportedMessage)
	}
}

func TestPreviewMissingFileMapsToNotFound(t *testing.T) {
	svc := NewService(nil, nil)

	result, doc := svc.Preview(context.Background(), filepath.Join(t.TempDir(), "gone.pdf"), domain.CategoryPdf, domain.Viewport{})
	if doc != nil {
		t.Fatal("failed preview must not return a handle")
	}
	if !errors.Is(result.Failure, domain.ErrNotFound) {
		t.Errorf("Failure = %v, want not found", result.Failure)
	}
}

func TestPreviewWordDocument(t *testing.T) {
	svc := NewService(nil, nil)
	path := writeDocx(t, []string{"Dear committee", "Attached the minutes"})

	result, doc := svc.Preview(context.Background(), path, domain.CategoryWordModern, domain.Viewport{})
	if doc != nil {
		t.Fatal("word preview must not return a handle")
	}
	if result.Failed() {
		t.Fatalf("unexpected failure: %v", result.Failure)
	}
	if !strings.Contains(result.Body, "Dear committee") {
		t.Errorf("Body = %q, missing paragraph text", result.Body)
	}
	if !strings.Contains(result.Header, "letter.docx") {
		t.Errorf("Header = %q, missing file name", result.Header)
	}
}

func TestTextOnlyForOfficeCategories(t *testing.T) {
	svc := NewService(nil, nil)

	if _, ok := svc.Text(context.Background(), "/tmp/photo.png", domain.CategoryImage); ok {
		t.Error("images must upload the raw file")
	}
	if _, ok := svc.Text(context.Background(), "/tmp/scan.pdf", domain.CategoryPdf); ok {
		t.Error("pdfs must upload the raw file")
	}

	path := writeDocx(t, []string{"Quarterly figures"})
	text, ok := svc.Text(context.Background(), path, domain.CategoryWordModern)
	if !ok {
		t.Fatal("word documents use the local text path")
	}
	if !strings.Contains(text, "Quarterly figures") {
		t.Errorf("Text() = %q, missing content", text)
	}
}

func TestTextExtractionFailureFallsBackToUpload(t *testing.T) {
	svc := NewService(nil, nil)

	if _, ok := svc.Text(context.Background(), filepath.Join(t.TempDir(), "gone.docx"), domain.CategoryWordModern); ok {
		t.Error("failed local extraction must fall back to the raw upload path")
	}
}
