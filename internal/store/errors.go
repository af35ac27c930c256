package store

import "errors"

// Sentinel errors returned by store operations.
var (
	// ErrChapterNotFound is returned when a chapter id is not in the store.
	ErrChapterNotFound = errors.New("chapter not found")

	// ErrChapterAlreadyExists is returned when creating a duplicate chapter.
	ErrChapterAlreadyExists = errors.New("chapter already exists")

	// ErrInvalidChapterID is returned for an empty chapter id.
	ErrInvalidChapterID = errors.New("invalid chapter id")

	// ErrSaveFailed wraps a failed write to the persistence sink. The
	// in-memory chapter is already updated when it is returned.
	ErrSaveFailed = errors.New("save failed")
)
