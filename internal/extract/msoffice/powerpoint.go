package msoffice

import (
	"archive/zip"
	"encoding/binary"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rinomina/facile/internal/core/domain"
)

// Slide caps differ between the two call sites; observed behavior, kept.
const (
	SlidesPreviewMax  = 10
	SlidesAnalysisMax = 20
)

const noSlideTextLabel = "(no text)"

// PowerpointText concatenates shape text per slide, first maxSlides slides.
// A slide without text yields an explicit placeholder line, not an omission.
func PowerpointText(path string, category domain.Category, maxSlides int) (string, error) {
	switch category {
	case domain.CategoryPowerpointModern:
		return pptxText(path, maxSlides)
	case domain.CategoryPowerpointLegacy:
		return legacyPowerpointText(path, maxSlides)
	default:
		return "", fmt.Errorf("not a powerpoint category: %s", category)
	}
}

var slidePattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

func pptxText(path string, maxSlides int) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", domain.WrapError(domain.ErrDecodeFailure, "open pptx container", err)
	}
	defer archive.Close()

	type slideFile struct {
		number int
		file   *zip.File
	}
	var slides []slideFile
	for _, f := range archive.File {
		m := slidePattern.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		slides = append(slides, slideFile{number: n, file: f})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].number < slides[j].number })

	var b strings.Builder
	for i, slide := range slides {
		if i >= maxSlides {
			break
		}
		text, err := slideShapeText(slide.file)
		if err != nil {
			return "", err
		}
		writeSlide(&b, slide.number, text)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// slideShapeText collects every <a:t> run of a slide in shape order.
func slideShapeText(f *zip.File) (string, error) {
	r, err := f.Open()
	if err != nil {
		return "", domain.WrapError(domain.ErrDecodeFailure, "read slide", err)
	}
	defer r.Close()

	var (
		parts     []string
		inRunText bool
	)
	decoder := xml.NewDecoder(r)
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", domain.WrapError(domain.ErrDecodeFailure, "parse slide xml", err)
		}
		switch el := token.(type) {
		case xml.StartElement:
			if el.Name.Local == "t" {
				inRunText = true
			}
		case xml.EndElement:
			if el.Name.Local == "t" {
				inRunText = false
			}
		case xml.CharData:
			if inRunText && len(el) > 0 {
				parts = append(parts, string(el))
			}
		}
	}
	return strings.TrimSpace(strings.Join(parts, " ")), nil
}

// Binary PowerPoint record types carrying slide text.
const (
	recTextHeaderAtom = 0x0F9F
	recTextCharsAtom  = 0x0FA0
	recTextBytesAtom  = 0x0FA8
	containerVersion  = 0x0F
)

// legacyPowerpointText scans the PowerPoint Document stream's record tree
// for text atoms. Each TextHeaderAtom opens a new block, which stands in
// for a slide's text shape; the output is labeled reduced-fidelity.
func legacyPowerpointText(path string, maxSlides int) (string, error) {
	streams, err := readCFBStreams(path)
	if err != nil {
		return "", err
	}

	data, ok := findStream(streams, "PowerPoint Document")
	if !ok {
		return streamListing(streams), nil
	}

	blocks := scanTextAtoms(data, maxSlides)
	if len(blocks) == 0 {
		return streamListing(streams), nil
	}

	var b strings.Builder
	b.WriteString(ReducedFidelityNotice)
	b.WriteByte('\n')
	for i, text := range blocks {
		writeSlide(&b, i+1, text)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func scanTextAtoms(data []byte, maxBlocks int) []string {
	var (
		blocks  []string
		current []string
	)
	closeBlock := func() {
		if len(current) > 0 {
			blocks = append(blocks, strings.TrimSpace(strings.Join(current, " ")))
			current = nil
		}
	}

	offset := 0
	for offset+8 <= len(data) && len(blocks) < maxBlocks {
		verInstance := binary.LittleEndian.Uint16(data[offset:])
		recType := binary.LittleEndian.Uint16(data[offset+2:])
		recLen := int(binary.LittleEndian.Uint32(data[offset+4:]))
		offset += 8

		// Containers hold their children inline; descend instead of skipping.
		if verInstance&0x000F == containerVersion {
			continue
		}

		if recLen < 0 || offset+recLen > len(data) {
			break
		}
		payload := data[offset : offset+recLen]
		offset += recLen

		switch recType {
		case recTextHeaderAtom:
			closeBlock()
		case recTextCharsAtom:
			if text := strings.TrimSpace(decodeUTF16LE(payload)); text != "" {
				current = append(current, text)
			}
		case recTextBytesAtom:
			if text := strings.TrimSpace(asciiClean(payload)); text != "" {
				current = append(current, text)
			}
		}
	}
	closeBlock()
	return blocks
}

// asciiClean keeps printable bytes and maps the binary format's CR line
// separators to newlines.
func asciiClean(data []byte) string {
	var b strings.Builder
	for _, c := range data {
		switch {
		case c == '\r':
			b.WriteByte('\n')
		case c >= 0x20 && c < 0x7F:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func writeSlide(b *strings.Builder, number int, text string) {
	fmt.Fprintf(b, "--- Slide %d ---\n", number)
	if text == "" {
		text = noSlideTextLabel
	}
	b.WriteString(text)
	b.WriteByte('\n')
}
