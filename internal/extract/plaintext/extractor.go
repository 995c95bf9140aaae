// Package plaintext reads text files for preview, trying a fixed ladder of
// encodings and capping output at a character limit.
package plaintext

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"

	"github.com/rinomina/facile/internal/core/domain"
)

const (
	// MaxChars bounds how much of the file reaches the preview surface.
	MaxChars = 10000

	truncationNotice = "\n\n[File truncated - showing first 10,000 characters]"
)

var bomEncodings = []struct {
	bom  []byte
	name string
	enc  encoding.Encoding
}{
	// UTF-32 BOMs before UTF-16, their prefixes overlap.
	{[]byte{0x00, 0x00, 0xFE, 0xFF}, "utf-32be", utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM)},
	{[]byte{0xFF, 0xFE, 0x00, 0x00}, "utf-32le", utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM)},
	{[]byte{0xEF, 0xBB, 0xBF}, "utf-8", unicode.UTF8},
	{[]byte{0xFE, 0xFF}, "utf-16be", unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)},
	{[]byte{0xFF, 0xFE}, "utf-16le", unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)},
}

// Decode interprets raw bytes as text: BOM sniff first, then the fixed
// encoding ladder. The returned name identifies the encoding that won.
func Decode(raw []byte) (text string, encodingName string, err error) {
	for _, candidate := range bomEncodings {
		if bytes.HasPrefix(raw, candidate.bom) {
			decoded, decErr := candidate.enc.NewDecoder().Bytes(raw[len(candidate.bom):])
			if decErr != nil {
				return "", "", domain.WrapError(domain.ErrDecodeFailure, "decode "+candidate.name, decErr)
			}
			return string(decoded), candidate.name, nil
		}
	}

	if utf8.Valid(raw) {
		return string(raw), "utf-8", nil
	}
	if text, ok := decodeStrict(unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), raw); ok {
		return text, "utf-16le", nil
	}
	if text, ok := decodeStrict(unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), raw); ok {
		return text, "utf-16be", nil
	}
	if text, ok := decodeStrict(charmap.ISO8859_1, raw); ok {
		return text, "latin-1", nil
	}
	if text, ok := decodeStrict(charmap.Windows1252, raw); ok {
		return text, "windows-1252", nil
	}
	return "", "", domain.WrapError(domain.ErrDecodeFailure, "decode text", errors.New("no candidate encoding matched"))
}

// decodeStrict rejects decodes that produced replacement runes, so a wrong
// candidate in the ladder falls through to the next one.
func decodeStrict(enc encoding.Encoding, raw []byte) (string, bool) {
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", false
	}
	if bytes.ContainsRune(decoded, utf8.RuneError) {
		return "", false
	}
	return string(decoded), true
}

// Extract reads and decodes a text file, truncating at MaxChars with a
// fixed notice. Failures come back as error-flavored results.
func Extract(path string) domain.ExtractionResult {
	info, err := os.Stat(path)
	if err != nil {
		return domain.FailureResult(domain.ErrNotFound, fmt.Sprintf("cannot stat %s: %v", path, err))
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.FailureResult(domain.ErrNotFound, fmt.Sprintf("cannot read %s: %v", path, err))
	}

	text, _, err := Decode(raw)
	if err != nil {
		return domain.FailureResult(domain.ErrDecodeFailure, "cannot decode text file with any supported encoding")
	}

	if runes := []rune(text); len(runes) > MaxChars {
		text = string(runes[:MaxChars]) + truncationNotice
	}
	return domain.TextResult(domain.FileHeader(path, info.Size()), text)
}

// Truncated reports whether an extracted body carries the truncation notice.
func Truncated(body string) bool {
	return strings.HasSuffix(body, truncationNotice)
}
