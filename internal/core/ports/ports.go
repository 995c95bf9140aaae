package ports

import (
	"context"

	"github.com/rinomina/facile/internal/core/domain"
)

// PagedDocument is an open paginated document. At most one is held by a
// preview session at a time; Close must be safe to call more than once.
type PagedDocument interface {
	PageCount() int
	// RenderPage rasterizes the page (0-based) into the viewport.
	RenderPage(page int, viewport domain.Viewport) (domain.ExtractionResult, error)
	// PageText returns the page's embedded text. An empty string with a nil
	// error means the page genuinely has no text, which is distinct from an
	// extraction failure.
	PageText(page int) (string, error)
	Close() error
}

// DocumentRenderer produces the original view for a classified file.
// Failures never propagate: they come back as error-flavored text results.
// For paginated categories the returned document is non-nil and the result
// shows its first page; callers own the handle.
type DocumentRenderer interface {
	Preview(ctx context.Context, path string, category domain.Category, viewport domain.Viewport) (domain.ExtractionResult, PagedDocument)
}

// AnalysisExtractor yields the locally extracted text sent to the analyzer
// for Office categories. ok is false when the raw file should be uploaded
// instead.
type AnalysisExtractor interface {
	Text(ctx context.Context, path string, category domain.Category) (text string, ok bool)
}

// Analyzer performs the remote document analysis. It does not cache;
// caching belongs to the preview session.
type Analyzer interface {
	AnalyzeFile(ctx context.Context, path string) (string, error)
	AnalyzeText(ctx context.Context, filename, text string) (string, error)
}

// APIKeySource hands out the plaintext API key, empty when unset.
type APIKeySource interface {
	GeminiAPIKeyPlain() string
}

// FieldSink receives normalized metadata as discrete notifications. The
// collaborator decides what to accept; the core never writes form state.
type FieldSink interface {
	SetDate(value string)
	SetOrganization(value string)
	SetSubject(value string)
	SetReceiver(value string)
}
