package api

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gompdf/manuscript/internal/settle"
)

// wordMetrics gives every word ten points of height on a 100pt page
type wordMetrics struct{}

func (wordMetrics) ContentHeight(content string) float64 {
	return float64(len(strings.Fields(content))) * 10
}

func (wordMetrics) VisibleHeight() float64 { return 100 }

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "word"
	}
	return strings.Join(parts, " ")
}

var settings = ProjectSettings{BookSize: "6x9", EstimatedPageCount: 200, BookType: "novel", ProjectName: "Test"}

func newTestSession(t *testing.T, opts ...Option) (*Session, *settle.Manual) {
	t.Helper()
	clock := settle.NewManual()
	opts = append([]Option{WithMetrics(wordMetrics{}), WithScheduler(clock)}, opts...)
	s := New(opts...)
	if _, err := s.InitializeProject(settings); err != nil {
		t.Fatalf("InitializeProject: %v", err)
	}
	return s, clock
}

func TestInitializeProject(t *testing.T) {
	s, _ := newTestSession(t)
	if got := s.Active().ID; got != DefaultChapterID {
		t.Errorf("expected active %q, got %q", DefaultChapterID, got)
	}
	c := s.GetCounts()
	if c.PageCount != 1 || c.WordCount != 0 {
		t.Errorf("expected 1 page and 0 words, got %+v", c)
	}
	if s.Geometry().Size.Name != "6x9" {
		t.Errorf("expected 6x9 geometry, got %+v", s.Geometry().Size)
	}
	if s.Settings() != settings {
		t.Errorf("expected settings to be kept, got %+v", s.Settings())
	}
}

func TestInitializeProject_UnknownSize(t *testing.T) {
	s := New(WithMetrics(wordMetrics{}))
	_, err := s.InitializeProject(ProjectSettings{BookSize: "4x4", EstimatedPageCount: 100})
	if !errors.Is(err, ErrUnknownSizeKind) {
		t.Fatalf("expected ErrUnknownSizeKind, got %v", err)
	}
	if err := s.Type("x"); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
	_, err = s.InitializeProject(ProjectSettings{BookSize: "6x9"})
	if !errors.Is(err, ErrInvalidPageCount) {
		t.Errorf("expected ErrInvalidPageCount, got %v", err)
	}
}

func TestTypeHelloWorld(t *testing.T) {
	s, clock := newTestSession(t)
	var got []Counts
	s.OnContentSettled(func(c Counts) { got = append(got, c) })

	if err := s.Type("hello world"); err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no notification before the settle delay")
	}
	clock.Advance(DefaultSettleDelay)

	if len(got) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(got))
	}
	if got[0].WordCount != 2 || got[0].PageCount != 1 {
		t.Errorf("expected 2 words on 1 page, got %+v", got[0])
	}
	if c := s.GetCounts(); c != got[0] {
		t.Errorf("GetCounts %+v differs from notification %+v", c, got[0])
	}
	chapters := s.Chapters()
	if len(chapters) != 1 || chapters[0].Content != "hello world" {
		t.Errorf("expected the settled input to be saved, got %+v", chapters)
	}
}

func TestTypeDebounce(t *testing.T) {
	s, clock := newTestSession(t)
	n := 0
	s.OnContentSettled(func(Counts) { n++ })

	s.Type("a")
	clock.Advance(DefaultSettleDelay / 2)
	s.Type(" b")
	clock.Advance(DefaultSettleDelay / 2)
	if n != 0 {
		t.Fatalf("expected the first settle to be superseded, got %d", n)
	}
	clock.Advance(DefaultSettleDelay)
	if n != 1 {
		t.Errorf("expected 1 notification, got %d", n)
	}
}

func TestOverflowAppendsBlankPage(t *testing.T) {
	s, clock := newTestSession(t)
	s.Type(words(11))
	clock.Advance(DefaultSettleDelay)

	pages := s.Pages()
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	if pages[0] != words(11) || pages[1] != "" {
		t.Errorf("expected typed text to stay on page 1 and page 2 blank, got %q", pages)
	}
	if s.Focus() != 1 {
		t.Errorf("expected focus on the new page, got %d", s.Focus())
	}

	s.Flush()
	if len(s.Pages()) != 2 {
		t.Errorf("expected the check to be idempotent")
	}

	s.Type(" more")
	clock.Advance(DefaultSettleDelay)
	pages = s.Pages()
	if pages[0] != words(11) || pages[1] != " more" {
		t.Errorf("expected input on the focused page only, got %q", pages)
	}
}

func TestWithinToleranceDoesNotAppend(t *testing.T) {
	s, clock := newTestSession(t, WithTolerance(10))
	s.Type(words(11))
	clock.Advance(DefaultSettleDelay)
	if n := len(s.Pages()); n != 1 {
		t.Errorf("expected 1 page within tolerance, got %d", n)
	}
}

func TestSwitchChapter_Unknown(t *testing.T) {
	s, clock := newTestSession(t)
	s.Type("keep me")
	clock.Advance(DefaultSettleDelay)

	err := s.SwitchChapter("missing")
	if !errors.Is(err, ErrChapterNotFound) {
		t.Fatalf("expected ErrChapterNotFound, got %v", err)
	}
	if s.Active().ID != DefaultChapterID {
		t.Errorf("expected active chapter unchanged, got %q", s.Active().ID)
	}
	if pages := s.Pages(); len(pages) != 1 || pages[0] != "keep me" {
		t.Errorf("expected pages unchanged, got %q", pages)
	}
}

func TestCreateChapter(t *testing.T) {
	s, _ := newTestSession(t)
	if err := s.CreateChapter("chapter-2"); err != nil {
		t.Fatal(err)
	}
	if s.Active().ID != DefaultChapterID {
		t.Errorf("expected CreateChapter not to activate")
	}
	if err := s.CreateChapter("chapter-2"); !errors.Is(err, ErrChapterAlreadyExists) {
		t.Errorf("expected ErrChapterAlreadyExists, got %v", err)
	}
	if err := s.CreateChapter(""); !errors.Is(err, ErrInvalidChapterID) {
		t.Errorf("expected ErrInvalidChapterID, got %v", err)
	}
	chapters := s.Chapters()
	if len(chapters) != 2 || chapters[0].ID != DefaultChapterID || chapters[1].ID != "chapter-2" {
		t.Errorf("unexpected chapters %+v", chapters)
	}
}

func TestSwitchChapter_RoundTripPaginates(t *testing.T) {
	s, clock := newTestSession(t)
	text := words(25)
	s.Type(text)
	clock.Advance(DefaultSettleDelay)
	if n := len(s.Pages()); n != 2 {
		t.Fatalf("expected typing to leave 2 pages, got %d", n)
	}

	var last Counts
	s.OnContentSettled(func(c Counts) { last = c })

	if err := s.CreateChapter("chapter-2"); err != nil {
		t.Fatal(err)
	}
	if err := s.SwitchChapter("chapter-2"); err != nil {
		t.Fatal(err)
	}
	if c := s.GetCounts(); c.PageCount != 1 || c.WordCount != 0 {
		t.Errorf("expected an empty chapter, got %+v", c)
	}
	if err := s.SwitchChapter(DefaultChapterID); err != nil {
		t.Fatal(err)
	}

	pages := s.Pages()
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages after reload, got %d: %q", len(pages), pages)
	}
	if strings.Join(pages, "") != text {
		t.Errorf("expected pages to concatenate to the stored content")
	}
	if last.PageCount != 3 || last.WordCount != 25 {
		t.Errorf("expected switch to refresh counts, got %+v", last)
	}
}

func TestSwitchChapter_FlushesPendingInput(t *testing.T) {
	s, _ := newTestSession(t)
	s.CreateChapter("chapter-2")
	s.Type("unsettled")
	if err := s.SwitchChapter("chapter-2"); err != nil {
		t.Fatal(err)
	}
	chapters := s.Chapters()
	if chapters[0].Content != "unsettled" {
		t.Errorf("expected pending input saved before switching, got %q", chapters[0].Content)
	}
}

func TestSetPageContent(t *testing.T) {
	s, clock := newTestSession(t)
	if err := s.SetPageContent(3, "x"); !errors.Is(err, ErrPageOutOfRange) {
		t.Errorf("expected ErrPageOutOfRange, got %v", err)
	}
	if err := s.SetPageContent(0, "<p>set directly</p>"); err != nil {
		t.Fatal(err)
	}
	clock.Advance(DefaultSettleDelay)
	if c := s.GetCounts(); c.WordCount != 2 {
		t.Errorf("expected 2 words, got %+v", c)
	}
	if err := s.SetFocus(4); !errors.Is(err, ErrPageOutOfRange) {
		t.Errorf("expected ErrPageOutOfRange, got %v", err)
	}
}

func TestUpdateSettings(t *testing.T) {
	s, clock := newTestSession(t)
	s.Type(words(25))
	clock.Advance(DefaultSettleDelay)

	next := settings
	next.BookSize = "5x8"
	next.EstimatedPageCount = 600
	if err := s.UpdateSettings(next); err != nil {
		t.Fatal(err)
	}
	if s.Geometry().Size.Name != "5x8" {
		t.Errorf("expected 5x8, got %+v", s.Geometry().Size)
	}
	if n := len(s.Pages()); n != 3 {
		t.Errorf("expected the chapter to be paginated again into 3 pages, got %d", n)
	}

	next.BookSize = "nope"
	if err := s.UpdateSettings(next); !errors.Is(err, ErrUnknownSizeKind) {
		t.Errorf("expected ErrUnknownSizeKind, got %v", err)
	}
	if s.Settings().BookSize != "5x8" {
		t.Errorf("expected failed update to keep settings")
	}
}

func TestGetGeometry(t *testing.T) {
	small, err := GetGeometry("6x9", 200)
	if err != nil {
		t.Fatal(err)
	}
	large, err := GetGeometry("6x9", 800)
	if err != nil {
		t.Fatal(err)
	}
	if large.Margins.Gutter < small.Margins.Gutter {
		t.Errorf("expected gutter to grow with page count: %v < %v", large.Margins.Gutter, small.Margins.Gutter)
	}
	if _, err := GetGeometry("10x10", 200); !errors.Is(err, ErrUnknownSizeKind) {
		t.Errorf("expected ErrUnknownSizeKind, got %v", err)
	}
	if len(BookSizes()) < 6 {
		t.Errorf("expected at least 6 book sizes, got %v", BookSizes())
	}
}

func TestProjectFile_Restore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.json")
	s, clock := newTestSession(t, WithProjectFile(path))
	s.CreateChapter("epilogue")
	s.Type("first draft")
	clock.Advance(DefaultSettleDelay)
	if err := s.LastSaveError(); err != nil {
		t.Fatal(err)
	}

	restored, _ := newTestSession(t, WithProjectFile(path))
	pages := restored.Pages()
	if len(pages) != 1 || pages[0] != "first draft" {
		t.Errorf("expected restored content, got %q", pages)
	}
	if n := len(restored.Chapters()); n != 2 {
		t.Errorf("expected 2 restored chapters, got %d", n)
	}
}

func TestProjectFile_SaveFailureIsNonFatal(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "project")
	s, clock := newTestSession(t, WithProjectFile(filepath.Join(dir, "book.json")))
	// a file where the project directory should be
	if err := os.WriteFile(dir, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	s.Type("still editing")
	clock.Advance(DefaultSettleDelay)
	if err := s.LastSaveError(); !errors.Is(err, ErrSaveFailed) {
		t.Fatalf("expected ErrSaveFailed, got %v", err)
	}
	if c := s.Chapters(); c[0].Content != "still editing" {
		t.Errorf("expected in-memory save despite sink failure, got %q", c[0].Content)
	}
	s.Type(" more")
	clock.Advance(DefaultSettleDelay)
	if c := s.GetCounts(); c.WordCount != 3 {
		t.Errorf("expected editing to continue, got %+v", c)
	}
}

func TestImportChapter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("one two\n\nthree"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, _ := newTestSession(t)

	if err := s.ImportChapter("notes", path); err != nil {
		t.Fatal(err)
	}
	if s.Active().ID != DefaultChapterID {
		t.Errorf("expected import into a new chapter not to activate it")
	}
	if err := s.ImportChapter(DefaultChapterID, path); err != nil {
		t.Fatal(err)
	}
	if c := s.GetCounts(); c.WordCount != 3 {
		t.Errorf("expected 3 imported words, got %+v", c)
	}
	if err := s.ImportChapter("x", filepath.Join(dir, "missing.txt")); err == nil {
		t.Errorf("expected an error for a missing file")
	}
}

func TestExportPDF(t *testing.T) {
	s := New(WithScheduler(settle.NewManual()))
	if _, err := s.InitializeProject(settings); err != nil {
		t.Fatal(err)
	}
	s.Type("It was a dark and stormy night.")

	var buf bytes.Buffer
	if err := s.ExportPDF(&buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Errorf("expected PDF output")
	}
	if c := s.GetCounts(); c.WordCount != 7 {
		t.Errorf("expected export to settle pending input, got %+v", c)
	}
}

func TestExportPreview(t *testing.T) {
	s, _ := newTestSession(t, WithPreview(nil, 0.5))
	s.Type("preview text")
	paths, err := s.ExportPreview(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 {
		t.Fatalf("expected 1 preview, got %d", len(paths))
	}
	if _, err := os.Stat(paths[0]); err != nil {
		t.Errorf("expected preview file: %v", err)
	}
}

func TestRealScheduler(t *testing.T) {
	s := New(WithMetrics(wordMetrics{}), WithSettleDelay(time.Millisecond))
	if _, err := s.InitializeProject(settings); err != nil {
		t.Fatal(err)
	}
	var mu sync.Mutex
	done := make(chan Counts, 1)
	s.OnContentSettled(func(c Counts) {
		mu.Lock()
		defer mu.Unlock()
		select {
		case done <- c:
		default:
		}
	})
	s.Type(words(3))

	select {
	case c := <-done:
		if c.WordCount != 3 {
			t.Errorf("expected 3 words, got %+v", c)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for settle")
	}
}

func TestExportPDFFile(t *testing.T) {
	s, _ := newTestSession(t)
	s.Type("to the printer")
	path := filepath.Join(t.TempDir(), "out", "chapter.pdf")
	if err := s.ExportPDFFile(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("expected a PDF file")
	}
}

func TestSettleSchedulerIsInternal(t *testing.T) {
	var s any = New()
	if _, ok := s.(settle.Scheduler); ok {
		t.Errorf("expected Session not to expose a scheduler method")
	}
	var _ settle.Scheduler = sessionScheduler{}
}
