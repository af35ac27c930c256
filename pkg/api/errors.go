package api

import (
	"errors"

	"github.com/gompdf/manuscript/internal/geometry"
	"github.com/gompdf/manuscript/internal/importer"
	"github.com/gompdf/manuscript/internal/store"
)

var (
	ErrUnknownSizeKind      = geometry.ErrUnknownSizeKind
	ErrChapterNotFound      = store.ErrChapterNotFound
	ErrChapterAlreadyExists = store.ErrChapterAlreadyExists
	ErrInvalidChapterID     = store.ErrInvalidChapterID
	ErrSaveFailed           = store.ErrSaveFailed
	ErrUnsupportedFormat    = importer.ErrUnsupportedFormat

	ErrNotInitialized   = errors.New("project not initialized")
	ErrPageOutOfRange   = errors.New("page index out of range")
	ErrInvalidPageCount = errors.New("estimated page count must be positive")
)
