// Package store keeps chapter content and binds one chapter at a time to the
// page surfaces being edited.
package store

import (
	"errors"
	"fmt"
	"strings"
)

// Pages is the active surface sequence the store serializes and rebuilds
type Pages interface {
	Content() string
	Rebuild(content string) int
}

// Chapter is a stored chapter
type Chapter struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// Snapshot is the full store state handed to a Sink
type Snapshot struct {
	Active   string    `json:"active"`
	Chapters []Chapter `json:"chapters"`
}

// Sink persists snapshots outside the process
type Sink interface {
	Write(snapshot Snapshot) error
}

// Store maps chapter ids to serialized page content. Exactly one chapter is
// active: the one whose content the pages currently show.
type Store struct {
	pages    Pages
	chapters map[string]string
	order    []string
	active   string
	sink     Sink

	// OnSaveError receives sink failures from saves the store makes on its
	// own, such as the save before a chapter switch
	OnSaveError func(error)
}

// New creates a store with one empty chapter, defaultID, bound to pages
func New(pages Pages, defaultID string) (*Store, error) {
	s := &Store{
		pages:    pages,
		chapters: make(map[string]string),
	}
	if err := s.Create(defaultID); err != nil {
		return nil, err
	}
	if err := s.Load(defaultID); err != nil {
		return nil, err
	}
	return s, nil
}

// SetSink sets the persistence sink; nil disables write-through
func (s *Store) SetSink(sink Sink) {
	s.sink = sink
}

func validID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: %q", ErrInvalidChapterID, id)
	}
	return nil
}

// Create adds an empty chapter. It does not become active.
func (s *Store) Create(id string) error {
	if err := validID(id); err != nil {
		return err
	}
	if _, ok := s.chapters[id]; ok {
		return fmt.Errorf("%w: %q", ErrChapterAlreadyExists, id)
	}
	s.chapters[id] = ""
	s.order = append(s.order, id)
	return nil
}

// Has reports whether a chapter exists
func (s *Store) Has(id string) bool {
	_, ok := s.chapters[id]
	return ok
}

// Get returns the stored content of a chapter
func (s *Store) Get(id string) (string, error) {
	content, ok := s.chapters[id]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrChapterNotFound, id)
	}
	return content, nil
}

// Put overwrites a chapter's stored content. If the chapter is active its
// pages are rebuilt from the new content.
func (s *Store) Put(id, content string) error {
	if _, ok := s.chapters[id]; !ok {
		return fmt.Errorf("%w: %q", ErrChapterNotFound, id)
	}
	s.chapters[id] = content
	if id == s.active {
		s.pages.Rebuild(content)
	}
	return s.flush(id)
}

// Active returns the id of the active chapter
func (s *Store) Active() string {
	return s.active
}

// Chapters returns all chapters in creation order
func (s *Store) Chapters() []Chapter {
	out := make([]Chapter, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, Chapter{ID: id, Content: s.chapters[id]})
	}
	return out
}

// Save serializes the pages into chapter id, overwriting its content. A sink
// failure is returned wrapped in ErrSaveFailed; the in-memory chapter is
// updated regardless.
func (s *Store) Save(id string) error {
	if _, ok := s.chapters[id]; !ok {
		return fmt.Errorf("%w: %q", ErrChapterNotFound, id)
	}
	s.chapters[id] = s.pages.Content()
	return s.flush(id)
}

func (s *Store) flush(id string) error {
	if s.sink == nil {
		return nil
	}
	if err := s.sink.Write(s.snapshot()); err != nil {
		return fmt.Errorf("%w: chapter %q: %w", ErrSaveFailed, id, err)
	}
	return nil
}

func (s *Store) snapshot() Snapshot {
	return Snapshot{Active: s.active, Chapters: s.Chapters()}
}

// Load binds chapter id to the pages: every surface is discarded and the
// stored content is paginated from scratch. The chapter becomes active.
func (s *Store) Load(id string) error {
	content, ok := s.chapters[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrChapterNotFound, id)
	}
	s.pages.Rebuild(content)
	s.active = id
	return nil
}

// Switch saves the active chapter and loads id. An unknown id leaves the
// active chapter and its pages untouched. Sink failures while saving are
// reported through OnSaveError and do not stop the switch.
func (s *Store) Switch(id string) error {
	if _, ok := s.chapters[id]; !ok {
		return fmt.Errorf("%w: %q", ErrChapterNotFound, id)
	}
	if err := s.Save(s.active); err != nil {
		if !errors.Is(err, ErrSaveFailed) {
			return err
		}
		s.reportSaveError(err)
	}
	if err := s.Load(id); err != nil {
		return err
	}
	if err := s.flush(id); err != nil {
		s.reportSaveError(err)
	}
	return nil
}

func (s *Store) reportSaveError(err error) {
	if s.OnSaveError != nil {
		s.OnSaveError(err)
	}
}

// Restore replaces every chapter with snapshot and loads its active chapter,
// or the first chapter when the active id is missing.
func (s *Store) Restore(snapshot Snapshot) error {
	if len(snapshot.Chapters) == 0 {
		return fmt.Errorf("%w: snapshot has no chapters", ErrChapterNotFound)
	}
	chapters := make(map[string]string, len(snapshot.Chapters))
	order := make([]string, 0, len(snapshot.Chapters))
	for _, c := range snapshot.Chapters {
		if err := validID(c.ID); err != nil {
			return err
		}
		if _, ok := chapters[c.ID]; ok {
			return fmt.Errorf("%w: %q", ErrChapterAlreadyExists, c.ID)
		}
		chapters[c.ID] = c.Content
		order = append(order, c.ID)
	}
	s.chapters = chapters
	s.order = order
	active := snapshot.Active
	if _, ok := chapters[active]; !ok {
		active = order[0]
	}
	return s.Load(active)
}
