package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/rinomina/facile/internal/core/domain"
	"github.com/rinomina/facile/internal/core/ports"
	"github.com/rinomina/facile/internal/observability/metrics"
)

// Classifier assigns a category to a path. Kept as a function type so the
// session can be exercised with fakes.
type Classifier func(path string) domain.Category

// PreviewSession is the single-threaded state machine behind the preview
// surface: Empty -> Loaded(Original) <-> Loaded(ExtractedText). It owns at
// most one open paginated handle and the per-path analysis cache.
type PreviewSession struct {
	log      *slog.Logger
	classify Classifier
	renderer ports.DocumentRenderer
	texts    ports.AnalysisExtractor
	analyzer ports.Analyzer
	sink     ports.FieldSink
	metrics  *metrics.PreviewMetrics
	viewport domain.Viewport

	loaded   bool
	path     string
	category domain.Category
	view     domain.ViewMode
	doc      ports.PagedDocument
	cursor   domain.PageCursor
	current  domain.ExtractionResult

	cache map[string]*domain.AnalysisRecord
}

type SessionOption func(*PreviewSession)

// WithViewport fixes the preview surface size for rendered output.
func WithViewport(vp domain.Viewport) SessionOption {
	return func(s *PreviewSession) { s.viewport = vp }
}

// WithFieldSink attaches the rename-form collaborator.
func WithFieldSink(sink ports.FieldSink) SessionOption {
	return func(s *PreviewSession) { s.sink = sink }
}

// WithMetrics attaches the preview metrics recorder.
func WithMetrics(m *metrics.PreviewMetrics) SessionOption {
	return func(s *PreviewSession) { s.metrics = m }
}

func NewPreviewSession(
	log *slog.Logger,
	classify Classifier,
	renderer ports.DocumentRenderer,
	texts ports.AnalysisExtractor,
	analyzer ports.Analyzer,
	opts ...SessionOption,
) *PreviewSession {
	if log == nil {
		log = slog.Default()
	}
	s := &PreviewSession{
		log:      log,
		classify: classify,
		renderer: renderer,
		texts:    texts,
		analyzer: analyzer,
		cache:    make(map[string]*domain.AnalysisRecord),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the session content with the given file. The previous
// paginated handle is always closed first; extractor failures become the
// displayed content, so Load never fails at the state-machine level.
func (s *PreviewSession) Load(ctx context.Context, path string) domain.ExtractionResult {
	s.closeDoc()

	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}

	category := s.classify(path)
	result, doc := s.renderer.Preview(ctx, path, category, s.viewport)

	s.loaded = true
	s.path = path
	s.category = category
	s.view = domain.ViewOriginal
	s.current = result
	s.doc = doc
	if doc != nil {
		s.cursor = domain.PageCursor{Current: 0, Total: doc.PageCount()}
	} else {
		s.cursor = domain.PageCursor{}
	}

	s.log.Info("document_loaded", "path", path, "category", category, "pages", s.cursor.Total)
	return result
}

// Current returns the active content and view mode.
func (s *PreviewSession) Current() (domain.ExtractionResult, domain.ViewMode) {
	return s.current, s.view
}

func (s *PreviewSession) Loaded() bool              { return s.loaded }
func (s *PreviewSession) Path() string              { return s.path }
func (s *PreviewSession) Category() domain.Category { return s.category }
func (s *PreviewSession) Cursor() domain.PageCursor { return s.cursor }

// ShowExtractedText switches the surface to the given text content.
func (s *PreviewSession) ShowExtractedText(result domain.ExtractionResult) {
	if !s.loaded {
		return
	}
	s.current = result
	s.view = domain.ViewExtractedText
}

// ReturnToOriginal re-renders the original view: images re-extract, PDFs
// re-render at the current cursor. A no-op when nothing is loaded or the
// original view is already active.
func (s *PreviewSession) ReturnToOriginal(ctx context.Context) domain.ExtractionResult {
	if !s.loaded || s.view == domain.ViewOriginal {
		return s.current
	}

	if s.doc != nil {
		result, err := s.doc.RenderPage(s.cursor.Current, s.viewport)
		if err != nil {
			result = domain.FailureResult(domain.ErrDecodeFailure, fmt.Sprintf("re-render page: %v", err))
		}
		s.current = result
	} else {
		result, doc := s.renderer.Preview(ctx, s.path, s.category, s.viewport)
		// Non-paginated categories never return a handle; drop one
		// defensively if a renderer misbehaves.
		if doc != nil {
			doc.Close()
		}
		s.current = result
	}
	s.view = domain.ViewOriginal
	return s.current
}

// NextPage advances the page cursor. Valid only for the paginated original
// view; out-of-range requests are no-ops.
func (s *PreviewSession) NextPage() domain.ExtractionResult {
	return s.turnPage(s.cursor.Current + 1)
}

// PreviousPage steps the page cursor back, saturating at page zero.
func (s *PreviewSession) PreviousPage() domain.ExtractionResult {
	return s.turnPage(s.cursor.Current - 1)
}

func (s *PreviewSession) turnPage(target int) domain.ExtractionResult {
	if !s.loaded || s.doc == nil || s.view != domain.ViewOriginal {
		return s.current
	}
	if target < 0 || target >= s.cursor.Total {
		return s.current
	}

	result, err := s.doc.RenderPage(target, s.viewport)
	if err != nil {
		s.log.Warn("page_render_failed", "path", s.path, "page", target, "error", err)
		return s.current
	}
	s.cursor.Current = target
	s.current = result
	return s.current
}

// Clear closes any open handle and returns to Empty. Idempotent.
func (s *PreviewSession) Clear() {
	s.closeDoc()
	s.loaded = false
	s.path = ""
	s.category = ""
	s.view = domain.ViewOriginal
	s.cursor = domain.PageCursor{}
	s.current = domain.ExtractionResult{}
}

// RunAnalysis analyzes the loaded file, serving repeats from the per-path
// cache unless forceRefresh is set. Adapter failures become the displayed
// content; the session stays interactive either way.
func (s *PreviewSession) RunAnalysis(ctx context.Context, forceRefresh bool) domain.ExtractionResult {
	if !s.loaded {
		return s.current
	}

	if !forceRefresh {
		if record, ok := s.cache[s.path]; ok {
			s.metrics.CacheHit()
			s.log.Info("analysis_cache_hit", "path", s.path)
			s.emitFields(record.Fields)
			s.ShowExtractedText(domain.TextResult(record.Header, record.Body))
			return s.current
		}
	}

	raw, err := s.analyze(ctx)
	if err != nil {
		s.log.Warn("analysis_failed", "path", s.path, "error", err)
		s.ShowExtractedText(domain.FailureResult(err, err.Error()))
		return s.current
	}

	fields := Normalize(raw)
	record := &domain.AnalysisRecord{
		ID:         uuid.NewString(),
		Path:       s.path,
		RawText:    raw,
		Header:     fmt.Sprintf("AI analysis · %s", filepath.Base(s.path)),
		Body:       fields.DisplayBody(),
		Fields:     fields,
		AnalyzedAt: time.Now(),
	}
	s.cache[s.path] = record

	s.emitFields(fields)
	s.ShowExtractedText(domain.TextResult(record.Header, record.Body))
	return s.current
}

func (s *PreviewSession) analyze(ctx context.Context) (string, error) {
	start := time.Now()
	var (
		raw string
		err error
	)
	if text, ok := s.texts.Text(ctx, s.path, s.category); ok {
		raw, err = s.analyzer.AnalyzeText(ctx, s.path, text)
	} else {
		raw, err = s.analyzer.AnalyzeFile(ctx, s.path)
	}

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.metrics.AnalysisObserved(outcome, time.Since(start))
	return raw, err
}

// emitFields notifies the rename-form collaborator of present values only;
// absent fields are not pushed.
func (s *PreviewSession) emitFields(fields domain.NormalizedFields) {
	if s.sink == nil {
		return
	}
	if fields.Date != "" {
		s.sink.SetDate(fields.Date)
	}
	if fields.Organization != "" {
		s.sink.SetOrganization(fields.Organization)
	}
	if fields.Subject != "" {
		s.sink.SetSubject(fields.Subject)
	}
	if fields.Receiver != "" {
		s.sink.SetReceiver(fields.Receiver)
	}
}

func (s *PreviewSession) closeDoc() {
	if s.doc == nil {
		return
	}
	if err := s.doc.Close(); err != nil {
		s.log.Warn("close_document_failed", "path", s.path, "error", err)
	}
	s.doc = nil
}
