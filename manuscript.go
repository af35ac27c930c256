// Package manuscript is a paginated manuscript editor core: text typed into
// fixed-size book pages flows onto new pages as each page fills, with word
// and page counts and per-chapter storage kept in step.
package manuscript

import (
	"github.com/gompdf/manuscript/pkg/api"
)

type Session = api.Session
type Options = api.Options
type Option = api.Option
type ProjectSettings = api.ProjectSettings
type ActiveChapter = api.ActiveChapter
type PageGeometry = api.PageGeometry
type PageSize = api.PageSize
type Margins = api.Margins
type Counts = api.Counts
type Chapter = api.Chapter
type Metrics = api.Metrics
type Scheduler = api.Scheduler

func New(opts ...Option) *Session             { return api.New(opts...) }
func NewWithOptions(options Options) *Session { return api.NewWithOptions(options) }
func DefaultOptions() Options                 { return api.DefaultOptions() }
func BookSizes() []string                     { return api.BookSizes() }

func GetGeometry(bookSize string, estimatedPageCount int) (PageGeometry, error) {
	return api.GetGeometry(bookSize, estimatedPageCount)
}

var (
	WithSettleDelay      = api.WithSettleDelay
	WithTolerance        = api.WithTolerance
	WithFont             = api.WithFont
	WithFontStyle        = api.WithFontStyle
	WithParagraphSpacing = api.WithParagraphSpacing
	WithMetrics          = api.WithMetrics
	WithScheduler        = api.WithScheduler
	WithLogger           = api.WithLogger
	WithDebug            = api.WithDebug
	WithProjectFile      = api.WithProjectFile
	WithDefaultChapter   = api.WithDefaultChapter
	WithAuthor           = api.WithAuthor
	WithSubject          = api.WithSubject
	WithResourcePath     = api.WithResourcePath
	WithPreview          = api.WithPreview
)

var (
	ErrUnknownSizeKind      = api.ErrUnknownSizeKind
	ErrChapterNotFound      = api.ErrChapterNotFound
	ErrChapterAlreadyExists = api.ErrChapterAlreadyExists
	ErrInvalidChapterID     = api.ErrInvalidChapterID
	ErrSaveFailed           = api.ErrSaveFailed
	ErrUnsupportedFormat    = api.ErrUnsupportedFormat
	ErrNotInitialized       = api.ErrNotInitialized
	ErrPageOutOfRange       = api.ErrPageOutOfRange
	ErrInvalidPageCount     = api.ErrInvalidPageCount
)

const (
	DefaultChapterID   = api.DefaultChapterID
	DefaultSettleDelay = api.DefaultSettleDelay
)
