package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/gompdf/manuscript/internal/counts"
	"github.com/gompdf/manuscript/internal/geometry"
	"github.com/gompdf/manuscript/internal/importer"
	"github.com/gompdf/manuscript/internal/layout"
	"github.com/gompdf/manuscript/internal/pagination"
	"github.com/gompdf/manuscript/internal/render/pdf"
	"github.com/gompdf/manuscript/internal/render/preview"
	"github.com/gompdf/manuscript/internal/res"
	"github.com/gompdf/manuscript/internal/settle"
	"github.com/gompdf/manuscript/internal/store"
	"github.com/gompdf/manuscript/internal/surface"
	"github.com/gompdf/manuscript/internal/text"
)

type (
	PageGeometry = geometry.PageGeometry
	PageSize     = geometry.PageSize
	Margins      = geometry.Margins
	Counts       = counts.Counts
	Chapter      = store.Chapter
)

// ProjectSettings describes the book being written
type ProjectSettings struct {
	// BookSize is a trim key such as "6x9"
	BookSize           string
	EstimatedPageCount int
	BookType           string
	ProjectName        string
}

// ActiveChapter identifies the chapter bound to the visible pages
type ActiveChapter struct {
	ID string
}

// GetGeometry returns the page geometry for a trim size and estimated length
func GetGeometry(bookSize string, estimatedPageCount int) (PageGeometry, error) {
	return geometry.Compute(bookSize, estimatedPageCount)
}

// BookSizes lists the supported trim keys
func BookSizes() []string {
	return geometry.SizeKeys()
}

// Session is one open manuscript project. All methods are safe for
// concurrent use; settle callbacks run on timer goroutines and are
// serialized with the rest of the session.
type Session struct {
	mu       sync.Mutex
	options  Options
	log      *slog.Logger
	settings ProjectSettings
	geom     PageGeometry
	metrics  surface.Metrics
	settle   *settle.Debouncer
	engine   *pagination.Engine
	store    *store.Store
	importer *importer.Importer

	ready     bool
	lastSave  error
	listeners []func(Counts)
	queued    []Counts
}

// New creates a session. InitializeProject must be called before editing.
func New(opts ...Option) *Session {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return NewWithOptions(options)
}

// NewWithOptions creates a session with the specified options
func NewWithOptions(options Options) *Session {
	if options.DefaultChapterID == "" {
		options.DefaultChapterID = DefaultChapterID
	}
	if options.SettleDelay < 0 {
		options.SettleDelay = 0
	}
	logger := options.Logger
	if logger == nil {
		if options.Debug {
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		} else {
			logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		}
	}
	loader := res.NewLoader("")
	for _, p := range options.ResourcePaths {
		loader.AddSearchPath(p)
	}
	return &Session{
		options:  options,
		log:      logger,
		importer: importer.New(loader),
	}
}

// sessionScheduler runs settle callbacks with the session lock held and
// delivers the notifications they queued after releasing it
type sessionScheduler struct {
	s *Session
}

func (ss sessionScheduler) AfterFunc(d time.Duration, f func()) settle.Timer {
	s := ss.s
	sched := s.options.Scheduler
	if sched == nil {
		sched = settle.RealScheduler{}
	}
	return sched.AfterFunc(d, func() {
		s.mu.Lock()
		f()
		pending := s.takeQueued()
		s.mu.Unlock()
		s.dispatch(pending)
	})
}

// InitializeProject computes the page geometry, creates the default chapter
// and loads it. With a project file configured, a previously saved project
// is restored instead.
func (s *Session) InitializeProject(settings ProjectSettings) (ActiveChapter, error) {
	s.mu.Lock()
	active, err := s.initialize(settings)
	pending := s.takeQueued()
	s.mu.Unlock()
	s.dispatch(pending)
	return active, err
}

func (s *Session) initialize(settings ProjectSettings) (ActiveChapter, error) {
	geom, err := s.geometryFor(settings)
	if err != nil {
		return ActiveChapter{}, err
	}
	if s.settle != nil {
		s.settle.Cancel()
	}

	s.settings = settings
	s.geom = geom
	s.metrics = s.metricsFor(geom)
	s.settle = settle.NewDebouncer(s.options.SettleDelay, sessionScheduler{s: s})
	s.engine = pagination.NewEngine(s.metrics, s.settle)
	s.engine.SetOptions(pagination.Options{Tolerance: s.options.Tolerance})
	s.engine.OnSettled = s.handleSettled
	s.engine.OnStructureChanged = s.handleStructureChanged

	st, err := store.New(s.engine, s.options.DefaultChapterID)
	if err != nil {
		return ActiveChapter{}, fmt.Errorf("failed to create chapter store: %w", err)
	}
	st.OnSaveError = s.recordSaveError
	s.store = st
	s.lastSave = nil

	if path := s.options.ProjectFile; path != "" {
		snapshot, err := store.ReadSnapshot(path)
		switch {
		case err == nil:
			if err := st.Restore(snapshot); err != nil {
				return ActiveChapter{}, fmt.Errorf("failed to restore %s: %w", path, err)
			}
			s.log.Info("project restored", "path", path, "chapters", len(snapshot.Chapters), "active", st.Active())
		case errors.Is(err, os.ErrNotExist):
			s.log.Debug("no project file yet", "path", path)
		default:
			return ActiveChapter{}, err
		}
		st.SetSink(store.NewFileSink(path))
	}

	s.ready = true
	s.log.Info("project initialized",
		"name", settings.ProjectName,
		"size", settings.BookSize,
		"estimated_pages", settings.EstimatedPageCount,
		"gutter", geom.Margins.Gutter)
	s.queue()
	return ActiveChapter{ID: st.Active()}, nil
}

func (s *Session) geometryFor(settings ProjectSettings) (PageGeometry, error) {
	if settings.EstimatedPageCount <= 0 {
		return PageGeometry{}, fmt.Errorf("%w: %d", ErrInvalidPageCount, settings.EstimatedPageCount)
	}
	geom, err := geometry.Compute(settings.BookSize, settings.EstimatedPageCount)
	if err != nil {
		return PageGeometry{}, fmt.Errorf("failed to compute geometry: %w", err)
	}
	return geom, nil
}

func (s *Session) metricsFor(geom PageGeometry) surface.Metrics {
	if s.options.Metrics != nil {
		return s.options.Metrics
	}
	return s.flowMetrics(geom)
}

func (s *Session) flowMetrics(geom PageGeometry) *layout.FlowMetrics {
	return layout.NewFlowMetrics(layout.Options{
		Width:  geom.ContentWidth(),
		Height: geom.ContentHeight(),
		Font: text.Font{
			Family:     s.options.FontFamily,
			Style:      s.options.FontStyle,
			Size:       s.options.FontSize,
			LineHeight: s.options.LineHeight,
		},
		ParagraphSpacing: s.options.ParagraphSpacing,
	})
}

// handleSettled runs after a surface mutation settles and the engine has
// checked it for overflow
func (s *Session) handleSettled(*surface.Surface) {
	if err := s.store.Save(s.store.Active()); err != nil {
		s.recordSaveError(err)
	}
	s.queue()
}

func (s *Session) handleStructureChanged() {
	c := counts.Of(s.engine.Surfaces())
	s.log.Debug("pages changed", "pages", c.PageCount, "words", c.WordCount, "focus", s.engine.Focus())
}

func (s *Session) recordSaveError(err error) {
	s.lastSave = err
	s.log.Warn("save failed", "error", err)
}

func (s *Session) queue() {
	if len(s.listeners) == 0 {
		return
	}
	s.queued = append(s.queued, counts.Of(s.engine.Surfaces()))
}

func (s *Session) takeQueued() []Counts {
	if len(s.queued) == 0 {
		return nil
	}
	pending := s.queued
	s.queued = nil
	return pending
}

func (s *Session) dispatch(pending []Counts) {
	if len(pending) == 0 {
		return
	}
	s.mu.Lock()
	listeners := make([]func(Counts), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()
	for _, c := range pending {
		for _, f := range listeners {
			f(c)
		}
	}
}

// do runs f with the session locked and delivers the notifications it queued
func (s *Session) do(f func() error) error {
	s.mu.Lock()
	var err error
	if !s.ready {
		err = ErrNotInitialized
	} else {
		err = f()
	}
	pending := s.takeQueued()
	s.mu.Unlock()
	s.dispatch(pending)
	return err
}

// OnContentSettled registers f to receive the counts after every settle
func (s *Session) OnContentSettled(f func(Counts)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, f)
}

// Type appends typed text to the focused page
func (s *Session) Type(text string) error {
	return s.do(func() error {
		s.engine.Focused().Type(text)
		return nil
	})
}

// Paste appends pasted text to the focused page
func (s *Session) Paste(text string) error {
	return s.do(func() error {
		s.engine.Focused().Paste(text)
		return nil
	})
}

// Backspace removes the last character of the focused page
func (s *Session) Backspace() error {
	return s.do(func() error {
		s.engine.Focused().Backspace()
		return nil
	})
}

// SetPageContent replaces the content of page index
func (s *Session) SetPageContent(index int, content string) error {
	return s.do(func() error {
		page := s.engine.Surface(index)
		if page == nil {
			return fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, index, s.engine.Len())
		}
		page.SetContent(content)
		return nil
	})
}

// SetFocus moves input to page index
func (s *Session) SetFocus(index int) error {
	return s.do(func() error {
		if !s.engine.SetFocus(index) {
			return fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, index, s.engine.Len())
		}
		return nil
	})
}

// Flush runs a pending settle now
func (s *Session) Flush() {
	_ = s.do(func() error {
		s.settle.Flush()
		return nil
	})
}

// SwitchChapter saves the active chapter and loads id. An unknown id fails
// with ErrChapterNotFound and leaves the active chapter displayed.
func (s *Session) SwitchChapter(id string) error {
	return s.do(func() error {
		if !s.store.Has(id) {
			return fmt.Errorf("failed to switch chapter: %w: %q", ErrChapterNotFound, id)
		}
		s.settle.Flush()
		from := s.store.Active()
		if err := s.store.Switch(id); err != nil {
			return fmt.Errorf("failed to switch chapter: %w", err)
		}
		s.log.Info("chapter switched", "from", from, "to", id, "pages", s.engine.Len())
		s.queue()
		return nil
	})
}

// CreateChapter adds an empty chapter without activating it
func (s *Session) CreateChapter(id string) error {
	return s.do(func() error {
		if err := s.store.Create(id); err != nil {
			return fmt.Errorf("failed to create chapter: %w", err)
		}
		s.log.Debug("chapter created", "id", id)
		return nil
	})
}

// ImportChapter converts the file at path into chapter id, creating the
// chapter if needed. Importing into the active chapter re-paginates it.
func (s *Session) ImportChapter(id, path string) error {
	content, err := s.importer.Import(path)
	if err != nil {
		return err
	}
	return s.do(func() error {
		if !s.store.Has(id) {
			if err := s.store.Create(id); err != nil {
				return fmt.Errorf("failed to import chapter: %w", err)
			}
		}
		if id == s.store.Active() {
			s.settle.Cancel()
		}
		if err := s.store.Put(id, content); err != nil {
			if !errors.Is(err, ErrSaveFailed) {
				return fmt.Errorf("failed to import chapter: %w", err)
			}
			s.recordSaveError(err)
		}
		s.log.Info("chapter imported", "id", id, "path", path, "bytes", len(content))
		if id == s.store.Active() {
			s.queue()
		}
		return nil
	})
}

// GetCounts returns the page and word counts of the active chapter
func (s *Session) GetCounts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return Counts{}
	}
	return counts.Of(s.engine.Surfaces())
}

// Pages returns the content of every page of the active chapter
func (s *Session) Pages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pages()
}

func (s *Session) pages() []string {
	if !s.ready {
		return nil
	}
	surfaces := s.engine.Surfaces()
	out := make([]string, len(surfaces))
	for i, p := range surfaces {
		out[i] = p.Content()
	}
	return out
}

// PlainText returns the rendered text of every page of the active chapter
func (s *Session) PlainText() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil
	}
	surfaces := s.engine.Surfaces()
	out := make([]string, len(surfaces))
	for i, p := range surfaces {
		out[i] = p.PlainText()
	}
	return out
}

// Focus returns the index of the page receiving input
func (s *Session) Focus() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return 0
	}
	return s.engine.Focus()
}

// Active returns the chapter bound to the pages
func (s *Session) Active() ActiveChapter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return ActiveChapter{}
	}
	return ActiveChapter{ID: s.store.Active()}
}

// Chapters returns every chapter in creation order. The active chapter's
// content is as of its last save.
func (s *Session) Chapters() []Chapter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil
	}
	return s.store.Chapters()
}

// Settings returns the project settings
func (s *Session) Settings() ProjectSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Geometry returns the page geometry of the project
func (s *Session) Geometry() PageGeometry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.geom
}

// LastSaveError returns the most recent save failure, or nil
func (s *Session) LastSaveError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSave
}

// UpdateSettings changes the project settings. The geometry is recomputed
// and the active chapter is paginated again for the new page size.
func (s *Session) UpdateSettings(settings ProjectSettings) error {
	return s.do(func() error {
		geom, err := s.geometryFor(settings)
		if err != nil {
			return err
		}
		s.settle.Flush()
		if err := s.store.Save(s.store.Active()); err != nil {
			s.recordSaveError(err)
		}
		s.settings = settings
		s.geom = geom
		s.metrics = s.metricsFor(geom)
		s.engine.SetMetrics(s.metrics)
		s.log.Info("settings updated", "size", settings.BookSize, "estimated_pages", settings.EstimatedPageCount, "pages", s.engine.Len())
		s.queue()
		return nil
	})
}

func (s *Session) renderOptions() pdf.RenderOptions {
	return pdf.RenderOptions{
		Title:    s.settings.ProjectName,
		Author:   s.options.Author,
		Subject:  s.options.Subject,
		Keywords: s.settings.BookType,
		Creator:  "Manuscript",
		Producer: "Manuscript",
	}
}

// ExportPDF writes the active chapter to w, one PDF page per page
func (s *Session) ExportPDF(w io.Writer) error {
	return s.do(func() error {
		s.settle.Flush()
		renderer := pdf.NewRenderer(s.flowMetrics(s.geom))
		renderer.Log = s.log
		if err := renderer.Render(s.pages(), s.geom, w, s.renderOptions()); err != nil {
			return fmt.Errorf("failed to export PDF: %w", err)
		}
		return nil
	})
}

// ExportPDFFile writes the active chapter to a PDF file at path
func (s *Session) ExportPDFFile(path string) error {
	return s.do(func() error {
		s.settle.Flush()
		renderer := pdf.NewRenderer(s.flowMetrics(s.geom))
		renderer.Log = s.log
		if err := renderer.RenderFile(s.pages(), s.geom, path, s.renderOptions()); err != nil {
			return fmt.Errorf("failed to export PDF: %w", err)
		}
		s.log.Info("pdf exported", "path", path, "chapter", s.store.Active())
		return nil
	})
}

// ExportPreview writes a PNG per page of the active chapter into dir and
// returns their paths
func (s *Session) ExportPreview(dir string) ([]string, error) {
	var paths []string
	err := s.do(func() error {
		s.settle.Flush()
		previewer, err := preview.NewPreviewer(s.flowMetrics(s.geom), s.options.PreviewFont, s.options.PreviewScale)
		if err != nil {
			return fmt.Errorf("failed to create previewer: %w", err)
		}
		paths, err = previewer.SavePages(dir, s.pages(), s.geom)
		if err != nil {
			return fmt.Errorf("failed to export preview: %w", err)
		}
		s.log.Debug("preview exported", "dir", dir, "pages", len(paths))
		return nil
	})
	return paths, err
}
