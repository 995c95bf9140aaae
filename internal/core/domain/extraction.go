package domain

import (
	"errors"
	"image"
)

// ResultKind tags the two shapes an extraction can take.
type ResultKind string

const (
	ResultRendered ResultKind = "rendered"
	ResultText     ResultKind = "text"
)

// ExtractionResult is what an extractor hands to the view layer: either a
// rasterized preview or text under a header line. Results are immutable;
// they are replaced, never patched.
type ExtractionResult struct {
	Kind   ResultKind
	Image  image.Image
	Header string
	Body   string

	// Failure carries the error kind when the result is an error rendered
	// as text. Nil for genuine content.
	Failure error
}

// RenderedResult wraps a rasterized preview.
func RenderedResult(header string, img image.Image) ExtractionResult {
	return ExtractionResult{Kind: ResultRendered, Header: header, Image: img}
}

// TextResult wraps an extracted-text preview.
func TextResult(header, body string) ExtractionResult {
	return ExtractionResult{Kind: ResultText, Header: header, Body: body}
}

// FailureResult converts an extraction failure into displayable text so the
// view layer renders it like any other preview. The body names the failure
// category before the detail.
func FailureResult(kind error, detail string) ExtractionResult {
	return ExtractionResult{
		Kind:    ResultText,
		Header:  failureHeader(kind),
		Body:    detail,
		Failure: kind,
	}
}

// Failed reports whether the result stands in for an extraction error.
func (r ExtractionResult) Failed() bool {
	return r.Failure != nil
}

func failureHeader(kind error) string {
	switch {
	case errors.Is(kind, ErrNotFound):
		return "File not found"
	case errors.Is(kind, ErrUnsupportedFormat):
		return "Unsupported format"
	case errors.Is(kind, ErrDecodeFailure):
		return "Cannot read file"
	case errors.Is(kind, ErrMissingCapability):
		return "Preview unavailable"
	case errors.Is(kind, ErrTransport):
		return "Analysis failed"
	case errors.Is(kind, ErrEmptyResponse):
		return "Analysis returned nothing"
	case errors.Is(kind, ErrMissingKey):
		return "API key not configured"
	default:
		return "Preview error"
	}
}

// NormalizedFields is the cleaned metadata derived from a raw analysis
// response. Absent fields are empty strings; Body keeps the raw text even
// when blank (DisplayBody substitutes the placeholder).
type NormalizedFields struct {
	Date         string `json:"date,omitempty"`
	Organization string `json:"organization,omitempty"`
	Subject      string `json:"subject,omitempty"`
	Receiver     string `json:"receiver,omitempty"`
	Body         string `json:"body"`
}

const noTextPlaceholder = "(no text extracted)"

// DisplayBody is the body as shown to the user: blank bodies become a fixed
// placeholder while the stored value stays untouched.
func (f NormalizedFields) DisplayBody() string {
	if isBlank(f.Body) {
		return noTextPlaceholder
	}
	return f.Body
}

func isBlank(s string) bool {
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r':
		default:
			return false
		}
	}
	return true
}
