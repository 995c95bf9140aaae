package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rinomina/facile/internal/core/domain"
	"github.com/rinomina/facile/internal/core/ports"
)

type fakePagedDoc struct {
	pages   int
	closed  int
	renders []int
}

func (f *fakePagedDoc) PageCount() int { return f.pages }

func (f *fakePagedDoc) RenderPage(page int, _ domain.Viewport) (domain.ExtractionResult, error) {
	f.renders = append(f.renders, page)
	return domain.TextResult("", fmt.Sprintf("rendered page %d", page)), nil
}

func (f *fakePagedDoc) PageText(page int) (string, error) {
	return fmt.Sprintf("text of page %d", page), nil
}

func (f *fakePagedDoc) Close() error {
	f.closed++
	return nil
}

type fakeRenderer struct {
	paginated bool
	pages     int
	docs      []*fakePagedDoc
	calls     int
}

func (f *fakeRenderer) Preview(_ context.Context, path string, category domain.Category, _ domain.Viewport) (domain.ExtractionResult, ports.PagedDocument) {
	f.calls++
	if !f.paginated {
		return domain.TextResult("", "original view of "+path), nil
	}
	doc := &fakePagedDoc{pages: f.pages}
	f.docs = append(f.docs, doc)
	result, _ := doc.RenderPage(0, domain.Viewport{})
	return result, doc
}

type fakeTexts struct {
	text string
	ok   bool
}

func (f *fakeTexts) Text(context.Context, string, domain.Category) (string, bool) {
	return f.text, f.ok
}

type fakeAnalyzer struct {
	response  string
	err       error
	fileCalls int
	textCalls int
}

func (f *fakeAnalyzer) AnalyzeFile(context.Context, string) (string, error) {
	f.fileCalls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeAnalyzer) AnalyzeText(context.Context, string, string) (string, error) {
	f.textCalls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type fakeSink struct {
	dates, orgs, subjects, receivers []string
}

func (f *fakeSink) SetDate(v string)         { f.dates = append(f.dates, v) }
func (f *fakeSink) SetOrganization(v string) { f.orgs = append(f.orgs, v) }
func (f *fakeSink) SetSubject(v string)      { f.subjects = append(f.subjects, v) }
func (f *fakeSink) SetReceiver(v string)     { f.receivers = append(f.receivers, v) }

func classifyAs(category domain.Category) Classifier {
	return func(string) domain.Category { return category }
}

func newPagedSession(t *testing.T, pages int) (*PreviewSession, *fakeRenderer) {
	t.Helper()
	renderer := &fakeRenderer{paginated: true, pages: pages}
	session := NewPreviewSession(nil, classifyAs(domain.CategoryPdf), renderer, &fakeTexts{}, &fakeAnalyzer{})
	session.Load(context.Background(), "/docs/sample.pdf")
	return session, renderer
}

func TestPageNavigationBoundariesAreNoOps(t *testing.T) {
	session, _ := newPagedSession(t, 3)

	if result := session.PreviousPage(); result.Body != "rendered page 0" {
		t.Errorf("PreviousPage at page 0 should be a no-op, got %q", result.Body)
	}
	if session.Cursor().Current != 0 {
		t.Errorf("cursor moved to %d at lower boundary", session.Cursor().Current)
	}

	session.NextPage()
	session.NextPage()
	if session.Cursor().Current != 2 {
		t.Fatalf("cursor = %d, want 2", session.Cursor().Current)
	}
	if result := session.NextPage(); result.Body != "rendered page 2" {
		t.Errorf("NextPage at last page should be a no-op, got %q", result.Body)
	}
	if session.Cursor().Current != 2 {
		t.Errorf("cursor moved past last page to %d", session.Cursor().Current)
	}
}

func TestReturnToOriginalRestoresCurrentPage(t *testing.T) {
	session, renderer := newPagedSession(t, 5)
	session.NextPage()
	session.NextPage()

	session.ShowExtractedText(domain.TextResult("AI", "extracted"))
	if _, view := session.Current(); view != domain.ViewExtractedText {
		t.Fatalf("view = %q, want extracted text", view)
	}

	result := session.ReturnToOriginal(context.Background())
	if result.Body != "rendered page 2" {
		t.Errorf("ReturnToOriginal rendered %q, want page 2", result.Body)
	}
	if _, view := session.Current(); view != domain.ViewOriginal {
		t.Errorf("view = %q, want original", view)
	}
	if renderer.calls != 1 {
		t.Errorf("paginated return must re-render via the handle, not reload (%d loads)", renderer.calls)
	}
}

func TestReturnToOriginalWhenEmptyIsNoOp(t *testing.T) {
	renderer := &fakeRenderer{}
	session := NewPreviewSession(nil, classifyAs(domain.CategoryImage), renderer, &fakeTexts{}, &fakeAnalyzer{})

	session.ReturnToOriginal(context.Background())
	if renderer.calls != 0 {
		t.Error("ReturnToOriginal on an empty session must not render")
	}
}

func TestLoadClosesPreviousHandle(t *testing.T) {
	session, renderer := newPagedSession(t, 2)
	first := renderer.docs[0]

	session.Load(context.Background(), "/docs/other.pdf")
	if first.closed != 1 {
		t.Errorf("previous handle closed %d times, want 1", first.closed)
	}
	if session.Cursor() != (domain.PageCursor{Current: 0, Total: 2}) {
		t.Errorf("cursor not reset: %+v", session.Cursor())
	}
}

func TestClearIsIdempotent(t *testing.T) {
	session, renderer := newPagedSession(t, 2)

	session.Clear()
	session.Clear()
	if renderer.docs[0].closed != 1 {
		t.Errorf("handle closed %d times, want 1", renderer.docs[0].closed)
	}
	if session.Loaded() {
		t.Error("session still loaded after Clear")
	}
}

func TestRunAnalysisCachesByPath(t *testing.T) {
	analyzer := &fakeAnalyzer{response: `{"ocr_text":"body","file_organization":"Acme"}`}
	renderer := &fakeRenderer{}
	sink := &fakeSink{}
	session := NewPreviewSession(nil, classifyAs(domain.CategoryImage), renderer, &fakeTexts{}, analyzer,
		WithFieldSink(sink))
	session.Load(context.Background(), "/docs/scan.png")

	first := session.RunAnalysis(context.Background(), false)
	second := session.RunAnalysis(context.Background(), false)

	if analyzer.fileCalls != 1 {
		t.Errorf("two cached analyses issued %d network calls, want 1", analyzer.fileCalls)
	}
	if first.Header != second.Header || first.Body != second.Body {
		t.Error("cache hit must reproduce byte-identical header and body")
	}
	if len(sink.orgs) != 2 || sink.orgs[0] != "Acme" {
		t.Errorf("organization notifications = %v", sink.orgs)
	}
	if len(sink.dates) != 0 {
		t.Errorf("absent fields must not be emitted, got dates %v", sink.dates)
	}

	session.RunAnalysis(context.Background(), true)
	if analyzer.fileCalls != 2 {
		t.Errorf("forceRefresh did not issue a new call (%d total)", analyzer.fileCalls)
	}
}

func TestRunAnalysisUsesTextPathForOfficeDocs(t *testing.T) {
	analyzer := &fakeAnalyzer{response: `{"ocr_text":"x"}`}
	session := NewPreviewSession(nil, classifyAs(domain.CategoryExcelModern), &fakeRenderer{},
		&fakeTexts{text: "sheet text", ok: true}, analyzer)
	session.Load(context.Background(), "/docs/book.xlsx")

	session.RunAnalysis(context.Background(), false)
	if analyzer.textCalls != 1 || analyzer.fileCalls != 0 {
		t.Errorf("office analysis used file path (%d text, %d file calls)", analyzer.textCalls, analyzer.fileCalls)
	}
}

func TestRunAnalysisFailureKeepsSessionInteractive(t *testing.T) {
	analyzer := &fakeAnalyzer{err: domain.WrapError(domain.ErrTransport, "generate", errors.New("boom"))}
	session := NewPreviewSession(nil, classifyAs(domain.CategoryImage), &fakeRenderer{}, &fakeTexts{}, analyzer)
	session.Load(context.Background(), "/docs/scan.png")

	result := session.RunAnalysis(context.Background(), false)
	if !result.Failed() {
		t.Fatal("expected failure content")
	}
	if _, view := session.Current(); view != domain.ViewExtractedText {
		t.Errorf("view = %q after failure", view)
	}

	back := session.ReturnToOriginal(context.Background())
	if back.Failed() {
		t.Error("session must return to original after an analysis failure")
	}
}

func TestLoadNeverFailsAtStateMachineLevel(t *testing.T) {
	renderer := &fakeRenderer{}
	session := NewPreviewSession(nil, classifyAs(domain.CategoryUnsupported), renderer, &fakeTexts{}, &fakeAnalyzer{})

	session.Load(context.Background(), "/docs/archive.zip")
	if !session.Loaded() {
		t.Error("session must enter Loaded even when the extractor reports an error")
	}
	if _, view := session.Current(); view != domain.ViewOriginal {
		t.Errorf("view = %q, want original", view)
	}
}
