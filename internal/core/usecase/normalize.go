package usecase

import (
	"encoding/json"
	"strings"

	"github.com/rinomina/facile/internal/core/domain"
)

// Raw model response keys per the fixed prompt contract.
const (
	keyBody         = "ocr_text"
	keyDate         = "file_date"
	keyOrganization = "file_organization"
	keySubject      = "file_subject"
	keyReceiver     = "file_receiver"
)

// Normalize turns a raw analysis response into cleaned metadata fields.
// Parse failure is not an error: the whole raw text becomes the body and
// all metadata stays absent, so the user always sees something.
func Normalize(raw string) domain.NormalizedFields {
	stripped := stripCodeFence(raw)

	var parsed map[string]any
	if err := json.Unmarshal([]byte(stripped), &parsed); err != nil || parsed == nil {
		return domain.NormalizedFields{Body: raw}
	}

	return domain.NormalizedFields{
		Date:         cleanField(parsed[keyDate]),
		Organization: cleanField(parsed[keyOrganization]),
		Subject:      cleanField(parsed[keySubject]),
		Receiver:     cleanField(parsed[keyReceiver]),
		Body:         cleanBody(parsed[keyBody]),
	}
}

// stripCodeFence removes one leading/trailing triple-backtick fence with an
// optional language tag. Anything else passes through untouched.
func stripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	body := trimmed[3:]
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		// The rest of the fence line is the language tag; drop it.
		body = body[i+1:]
	} else {
		return trimmed
	}

	body = strings.TrimSpace(body)
	body = strings.TrimSuffix(body, "```")
	return strings.TrimSpace(body)
}

// cleanField canonicalizes a metadata value: lists join with single
// spaces, whitespace trims away, and "none" (any case) or emptiness means
// absent.
func cleanField(value any) string {
	text := coerceString(value)
	text = strings.TrimSpace(text)
	if text == "" || strings.EqualFold(text, "none") {
		return ""
	}
	return text
}

// cleanBody repairs literal two-character \n escapes the model sometimes
// leaves inside re-escaped JSON string values. The raw (possibly empty)
// body is kept; display substitution happens later.
func cleanBody(value any) string {
	text := coerceString(value)
	return strings.ReplaceAll(text, `\n`, "\n")
}

func coerceString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s := coerceString(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	case float64:
		b, _ := json.Marshal(v)
		return string(b)
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}
