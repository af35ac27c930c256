package html

import (
	"reflect"
	"strings"
	"testing"
)

func TestBlocks_Paragraphs(t *testing.T) {
	p := NewParser()
	got := p.Blocks("<p>First one.</p><p>Second <b>bold</b> one.</p>")
	want := []string{"First one.", "Second bold one."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestBlocks_BreaksAndNewlines(t *testing.T) {
	p := NewParser()
	got := p.Blocks("line one<br>line two\nline three")
	want := []string{"line one", "line two", "line three"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestBlocks_EmptyParagraphKeepsLine(t *testing.T) {
	p := NewParser()
	got := p.Blocks("<p>a</p><p></p><p>b</p>")
	want := []string{"a", "", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestBlocks_SourceFormattingBetweenBlocks(t *testing.T) {
	p := NewParser()
	got := p.Blocks("<h1>Title</h1>\n<p>Body text.</p>\n")
	want := []string{"Title", "Body text."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestBlocks_Empty(t *testing.T) {
	p := NewParser()
	if got := p.Blocks(""); len(got) != 0 {
		t.Errorf("expected no blocks, got %q", got)
	}
}

func TestPlainText_UnbalancedFragment(t *testing.T) {
	p := NewParser()
	got := p.PlainText("ends mid <em>paragraph")
	if got != "ends mid paragraph" {
		t.Errorf("expected %q, got %q", "ends mid paragraph", got)
	}
	words := strings.Fields(p.PlainText("tail of it</p><p>next"))
	if !reflect.DeepEqual(words, []string{"tail", "of", "it", "next"}) {
		t.Errorf("expected words of both halves, got %q", words)
	}
}

func TestPlainText_Entities(t *testing.T) {
	p := NewParser()
	if got := p.PlainText("a &amp; b"); got != "a & b" {
		t.Errorf("expected %q, got %q", "a & b", got)
	}
}

func TestSplitPoints_SkipsTags(t *testing.T) {
	content := `<p class="x y">ab cd</p> <p>ef</p>`
	got := SplitPoints(content)
	want := []int{18, 25}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if content[18:20] != "cd" {
		t.Errorf("expected split before %q, got %q", "cd", content[18:20])
	}
	if content[25:28] != "<p>" {
		t.Errorf("expected split before second paragraph, got %q", content[25:28])
	}
}

func TestSplitPoints_NoLeadingOrTrailing(t *testing.T) {
	if got := SplitPoints("  word  "); len(got) != 0 {
		t.Errorf("expected no split points, got %v", got)
	}
	if got := SplitPoints("one two three"); !reflect.DeepEqual(got, []int{4, 8}) {
		t.Errorf("expected [4 8], got %v", got)
	}
}

func TestEscapeText(t *testing.T) {
	got := EscapeText("a < b\nc")
	if got != "a &lt; b<br>c" {
		t.Errorf("expected %q, got %q", "a &lt; b<br>c", got)
	}
}
