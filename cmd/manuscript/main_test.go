package main

import "testing"

func TestChapterID(t *testing.T) {
	tests := map[string]string{
		"drafts/opening.md":  "opening",
		"chapter-2.docx":     "chapter-2",
		"/tmp/notes.tar.txt": "notes.tar",
	}
	for in, want := range tests {
		if got := chapterID(in); got != want {
			t.Errorf("chapterID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOutputPath(t *testing.T) {
	if got := outputPath("book.pdf", "one", 1); got != "book.pdf" {
		t.Errorf("expected single chapter to keep the name, got %q", got)
	}
	if got := outputPath("out/book.pdf", "two", 3); got != "out/book-two.pdf" {
		t.Errorf("expected per-chapter name, got %q", got)
	}
}
