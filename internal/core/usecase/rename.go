package usecase

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RenameFields is the metadata the rename form holds. All parts are
// optional; empty parts are skipped in the generated name.
type RenameFields struct {
	Date         string
	Organization string
	Subject      string
	Receiver     string
}

const (
	renameSeparator   = " - "
	maxComponentChars = 50
	fallbackBaseName  = "document"
)

// GenerateFilename assembles the new file name from the form fields and
// the original extension: "YYYY-MM-DD - org - subject - receiver.ext".
func GenerateFilename(originalPath string, fields RenameFields) string {
	ext := filepath.Ext(originalPath)

	var parts []string
	if date := normalizeDate(fields.Date); date != "" {
		parts = append(parts, date)
	}
	for _, raw := range []string{fields.Organization, fields.Subject, fields.Receiver} {
		if part := SanitizeComponent(raw); part != "" {
			parts = append(parts, part)
		}
	}

	if len(parts) == 0 {
		return fallbackBaseName + ext
	}
	return strings.Join(parts, renameSeparator) + ext
}

// normalizeDate reorders the analyzer's DD-MM-YYYY into the filename's
// YYYY-MM-DD prefix; anything unparseable passes through sanitized.
func normalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if t, err := time.Parse("02-01-2006", raw); err == nil {
		return t.Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", raw); err == nil {
		return raw
	}
	return SanitizeComponent(raw)
}

// SanitizeComponent strips filename-hostile characters, collapses
// whitespace and bounds the component length.
func SanitizeComponent(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	var b strings.Builder
	for _, r := range text {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	cleaned := strings.Join(strings.Fields(b.String()), " ")

	if runes := []rune(cleaned); len(runes) > maxComponentChars {
		cleaned = string(runes[:maxComponentChars-3]) + "..."
	}
	return cleaned
}

// ApplyRename moves the file next to itself under the new name. It
// refuses to overwrite an existing target; confirmation is the caller's
// responsibility.
func ApplyRename(originalPath, newFilename string) (string, error) {
	if newFilename == "" || strings.ContainsRune(newFilename, os.PathSeparator) {
		return "", fmt.Errorf("invalid target filename %q", newFilename)
	}

	target := filepath.Join(filepath.Dir(originalPath), newFilename)
	if target == originalPath {
		return target, nil
	}
	if _, err := os.Stat(target); err == nil {
		return "", fmt.Errorf("target already exists: %s", target)
	}
	if err := os.Rename(originalPath, target); err != nil {
		return "", fmt.Errorf("rename file: %w", err)
	}
	return target, nil
}
