// Package extract dispatches a classified file to its per-format
// extractor and folds every failure into a displayable result.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/rinomina/facile/internal/core/domain"
	"github.com/rinomina/facile/internal/core/ports"
	"github.com/rinomina/facile/internal/extract/imaging"
	"github.com/rinomina/facile/internal/extract/msoffice"
	"github.com/rinomina/facile/internal/extract/pdfx"
	"github.com/rinomina/facile/internal/extract/plaintext"
	"github.com/rinomina/facile/internal/observability/metrics"
)

const unsupportedMessage = "Cannot preview this format."

// Service implements ports.DocumentRenderer and ports.AnalysisExtractor.
type Service struct {
	log     *slog.Logger
	metrics *metrics.PreviewMetrics
}

func NewService(log *slog.Logger, m *metrics.PreviewMetrics) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{log: log, metrics: m}
}

// Preview renders the original view. For PDFs the returned document is the
// open handle, owned by the caller; the result shows page 0.
func (s *Service) Preview(_ context.Context, path string, category domain.Category, viewport domain.Viewport) (domain.ExtractionResult, ports.PagedDocument) {
	result, doc := s.preview(path, category, viewport)
	s.metrics.ExtractionObserved(string(category), status(result))
	if result.Failed() {
		s.log.Warn("preview_failed", "path", path, "category", category, "error", result.Failure)
	}
	return result, doc
}

func (s *Service) preview(path string, category domain.Category, viewport domain.Viewport) (domain.ExtractionResult, ports.PagedDocument) {
	switch category {
	case domain.CategoryImage:
		return imaging.Extract(path, viewport), nil

	case domain.CategoryPlainText:
		return plaintext.Extract(path), nil

	case domain.CategoryPdf:
		doc, err := pdfx.Open(path)
		if err != nil {
			return failureFromError(err), nil
		}
		result, err := doc.RenderPage(0, viewport)
		if err != nil {
			doc.Close()
			return failureFromError(err), nil
		}
		return result, doc

	case domain.CategoryWordModern, domain.CategoryWordLegacy:
		text, err := msoffice.WordText(path, category)
		if err != nil {
			return failureFromError(err), nil
		}
		return s.textResult(path, text), nil

	case domain.CategoryExcelModern, domain.CategoryExcelLegacy:
		text, err := msoffice.ExcelText(path, category, msoffice.ExcelPreviewLimits)
		if err != nil {
			return failureFromError(err), nil
		}
		return s.textResult(path, text), nil

	case domain.CategoryPowerpointModern, domain.CategoryPowerpointLegacy:
		text, err := msoffice.PowerpointText(path, category, msoffice.SlidesPreviewMax)
		if err != nil {
			return failureFromError(err), nil
		}
		return s.textResult(path, text), nil

	default:
		return domain.FailureResult(domain.ErrUnsupportedFormat, unsupportedMessage), nil
	}
}

// Text produces the analysis-path local extraction for Office categories.
// Other categories upload the raw file, so ok is false for them.
func (s *Service) Text(_ context.Context, path string, category domain.Category) (string, bool) {
	if !category.OfficeDocument() {
		return "", false
	}

	var (
		text string
		err  error
	)
	switch category {
	case domain.CategoryWordModern, domain.CategoryWordLegacy:
		text, err = msoffice.WordText(path, category)
	case domain.CategoryExcelModern, domain.CategoryExcelLegacy:
		text, err = msoffice.ExcelText(path, category, msoffice.ExcelAnalysisLimits)
	case domain.CategoryPowerpointModern, domain.CategoryPowerpointLegacy:
		text, err = msoffice.PowerpointText(path, category, msoffice.SlidesAnalysisMax)
	}
	if err != nil {
		s.log.Warn("analysis_extraction_failed", "path", path, "category", category, "error", err)
		return "", false
	}
	return text, true
}

func (s *Service) textResult(path, body string) domain.ExtractionResult {
	header := ""
	if info, err := os.Stat(path); err == nil {
		header = domain.FileHeader(path, info.Size())
	}
	return domain.TextResult(header, body)
}

// failureFromError picks the failure category for display from the error's
// kind, defaulting to a decode failure.
func failureFromError(err error) domain.ExtractionResult {
	for _, kind := range []error{
		domain.ErrNotFound,
		domain.ErrMissingCapability,
		domain.ErrUnsupportedFormat,
		domain.ErrDecodeFailure,
	} {
		if domain.IsKind(err, kind) {
			return domain.FailureResult(kind, err.Error())
		}
	}
	return domain.FailureResult(domain.ErrDecodeFailure, fmt.Sprintf("extraction failed: %v", err))
}

func status(result domain.ExtractionResult) string {
	if result.Failed() {
		return "error"
	}
	return "ok"
}
