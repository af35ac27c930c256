package api

import (
	"log/slog"
	"time"

	"github.com/gompdf/manuscript/internal/pagination"
	"github.com/gompdf/manuscript/internal/settle"
	"github.com/gompdf/manuscript/internal/surface"
)

// DefaultChapterID is the chapter every new project starts with
const DefaultChapterID = "chapter-1"

// DefaultSettleDelay is how long input must be idle before it settles
const DefaultSettleDelay = 150 * time.Millisecond

// Metrics measures page content; see surface.Metrics
type Metrics = surface.Metrics

// Scheduler runs delayed callbacks; see settle.Scheduler
type Scheduler = settle.Scheduler

// Options represents configuration options for an editing session
type Options struct {
	// Overflow handling
	SettleDelay time.Duration
	Tolerance   float64

	// Typesetting of the text block
	FontFamily       string
	FontStyle        string
	FontSize         float64
	LineHeight       float64
	ParagraphSpacing float64

	// Metrics replaces font based measurement. Tests use fixed-height doubles.
	Metrics Metrics
	// Scheduler replaces wall-clock timers for the settle delay
	Scheduler Scheduler

	Logger *slog.Logger
	Debug  bool

	// ProjectFile, when set, is restored on InitializeProject and written
	// after every save
	ProjectFile      string
	DefaultChapterID string

	// Export metadata
	Author  string
	Subject string

	// Resource paths searched by ImportChapter
	ResourcePaths []string
	// TrueType font for page previews; empty uses Go Regular
	PreviewFont  []byte
	PreviewScale float64
}

// Option is a function that modifies Options
type Option func(*Options)

// DefaultOptions returns the default options
func DefaultOptions() Options {
	return Options{
		SettleDelay: DefaultSettleDelay,
		Tolerance:   pagination.DefaultTolerance,

		FontFamily: "Times",
		FontSize:   11,
		LineHeight: 1.4,

		DefaultChapterID: DefaultChapterID,
	}
}

// WithSettleDelay sets the idle time after which input settles
func WithSettleDelay(d time.Duration) Option {
	return func(o *Options) {
		o.SettleDelay = d
	}
}

// WithTolerance sets the overflow tolerance in points
func WithTolerance(points float64) Option {
	return func(o *Options) {
		o.Tolerance = points
	}
}

// WithFont sets the body font
func WithFont(family string, size, lineHeight float64) Option {
	return func(o *Options) {
		o.FontFamily = family
		o.FontSize = size
		o.LineHeight = lineHeight
	}
}

// WithFontStyle sets the body font style ("", "B", "I" or "BI")
func WithFontStyle(style string) Option {
	return func(o *Options) {
		o.FontStyle = style
	}
}

// WithParagraphSpacing sets the space after each paragraph, in lines
func WithParagraphSpacing(lines float64) Option {
	return func(o *Options) {
		o.ParagraphSpacing = lines
	}
}

// WithMetrics replaces font based measurement
func WithMetrics(m Metrics) Option {
	return func(o *Options) {
		o.Metrics = m
	}
}

// WithScheduler replaces wall-clock timers
func WithScheduler(s Scheduler) Option {
	return func(o *Options) {
		o.Scheduler = s
	}
}

// WithLogger sets the session logger
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithDebug enables debug logging
func WithDebug(debug bool) Option {
	return func(o *Options) {
		o.Debug = debug
	}
}

// WithProjectFile persists chapters to path
func WithProjectFile(path string) Option {
	return func(o *Options) {
		o.ProjectFile = path
	}
}

// WithDefaultChapter sets the id of the chapter a new project starts with
func WithDefaultChapter(id string) Option {
	return func(o *Options) {
		o.DefaultChapterID = id
	}
}

// WithAuthor sets the author written to exported documents
func WithAuthor(author string) Option {
	return func(o *Options) {
		o.Author = author
	}
}

// WithSubject sets the subject written to exported documents
func WithSubject(subject string) Option {
	return func(o *Options) {
		o.Subject = subject
	}
}

// WithResourcePath adds a search path for imported files
func WithResourcePath(path string) Option {
	return func(o *Options) {
		o.ResourcePaths = append(o.ResourcePaths, path)
	}
}

// WithPreview sets the preview font and scale
func WithPreview(fontData []byte, scale float64) Option {
	return func(o *Options) {
		o.PreviewFont = fontData
		o.PreviewScale = scale
	}
}
