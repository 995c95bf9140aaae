// Package msoffice extracts preview/analysis text from Word, Excel and
// PowerPoint files, modern OOXML and legacy binary containers alike.
package msoffice

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/rinomina/facile/internal/core/domain"
)

// MaxParagraphs caps Word extraction on both the preview and analysis paths.
const MaxParagraphs = 50

// WordText extracts non-empty paragraphs in document order, capped at
// MaxParagraphs.
func WordText(path string, category domain.Category) (string, error) {
	switch category {
	case domain.CategoryWordModern:
		paragraphs, err := docxParagraphs(path, MaxParagraphs)
		if err != nil {
			return "", err
		}
		return strings.Join(paragraphs, "\n\n"), nil
	case domain.CategoryWordLegacy:
		return legacyWordText(path, MaxParagraphs)
	default:
		return "", fmt.Errorf("not a word category: %s", category)
	}
}

// docxParagraphs walks word/document.xml, joining the <w:t> runs of each
// paragraph and keeping the non-empty ones.
func docxParagraphs(path string, maxParagraphs int) ([]string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrDecodeFailure, "open docx container", err)
	}
	defer archive.Close()

	var document *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			document = f
			break
		}
	}
	if document == nil {
		return nil, domain.WrapError(domain.ErrDecodeFailure, "read docx", fmt.Errorf("word/document.xml missing"))
	}

	r, err := document.Open()
	if err != nil {
		return nil, domain.WrapError(domain.ErrDecodeFailure, "read docx", err)
	}
	defer r.Close()

	var (
		paragraphs []string
		current    strings.Builder
		inRunText  bool
	)

	decoder := xml.NewDecoder(r)
	for len(paragraphs) < maxParagraphs {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, domain.WrapError(domain.ErrDecodeFailure, "parse docx xml", err)
		}

		switch el := token.(type) {
		case xml.StartElement:
			if el.Name.Local == "t" {
				inRunText = true
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inRunText = false
			case "p":
				if text := strings.TrimSpace(current.String()); text != "" {
					paragraphs = append(paragraphs, text)
				}
				current.Reset()
			}
		case xml.CharData:
			if inRunText {
				current.Write(el)
			}
		}
	}
	return paragraphs, nil
}
