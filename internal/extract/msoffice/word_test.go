package msoffice

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rinomina/facile/internal/core/domain"
)

func writeZip(t *testing.T, name string, files map[string]string) string {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for entry, content := range files {
		f, err := w.Create(entry)
		if err != nil {
			t.Fatalf("create zip entry: %v", err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("write zip entry: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write zip file: %v", err)
	}
	return path
}

func docxDocument(paragraphs []string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		fmt.Fprintf(&b, `<w:p><w:r><w:t>%s</w:t></w:r></w:p>`, p)
	}
	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

func TestWordTextModern(t *testing.T) {
	path := writeZip(t, "letter.docx", map[string]string{
		"word/document.xml": docxDocument([]string{"First paragraph", "", "Second paragraph"}),
	})

	text, err := WordText(path, domain.CategoryWordModern)
	if err != nil {
		t.Fatalf("WordText() error = %v", err)
	}
	want := "First paragraph\n\nSecond paragraph"
	if text != want {
		t.Errorf("WordText() = %q, want %q", text, want)
	}
}

func TestWordTextModernParagraphCap(t *testing.T) {
	paragraphs := make([]string, MaxParagraphs+10)
	for i := range paragraphs {
		paragraphs[i] = fmt.Sprintf("paragraph %d", i+1)
	}
	path := writeZip(t, "long.docx", map[string]string{
		"word/document.xml": docxDocument(paragraphs),
	})

	text, err := WordText(path, domain.CategoryWordModern)
	if err != nil {
		t.Fatalf("WordText() error = %v", err)
	}
	got := strings.Split(text, "\n\n")
	if len(got) != MaxParagraphs {
		t.Errorf("kept %d paragraphs, want %d", len(got), MaxParagraphs)
	}
	if got[len(got)-1] != fmt.Sprintf("paragraph %d", MaxParagraphs) {
		t.Errorf("last paragraph = %q", got[len(got)-1])
	}
}

func TestWordTextCorruptContainer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.docx")
	if err := os.WriteFile(path, []byte("not a zip"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	_, err := WordText(path, domain.CategoryWordModern)
	if !domain.IsKind(err, domain.ErrDecodeFailure) {
		t.Errorf("error = %v, want ErrDecodeFailure kind", err)
	}
}

func TestPrintableRuns(t *testing.T) {
	data := []byte("ab\x00\x01Dear Sir\x02\x00no")
	runs := printableRuns(data, 10)
	if len(runs) != 1 || runs[0] != "Dear Sir" {
		t.Errorf("printableRuns() = %q, want [\"Dear Sir\"]", runs)
	}
}

func TestPrintableRunsWide(t *testing.T) {
	// "Hello" as UTF-16LE surrounded by binary noise.
	data := append([]byte{0x01, 0x02}, []byte{'H', 0, 'e', 0, 'l', 0, 'l', 0, 'o', 0}...)
	runs := printableRuns(data, 10)
	found := false
	for _, r := range runs {
		if strings.Contains(r, "Hello") {
			found = true
		}
	}
	if !found {
		t.Errorf("printableRuns() = %q, expected a run containing %q", runs, "Hello")
	}
}
