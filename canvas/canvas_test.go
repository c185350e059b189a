package canvas

import (
	"strings"
	"testing"
)

func TestWriteStringAndRow(t *testing.T) {
	c := New(20, 3)
	used := c.WriteString(2, 1, "hello", Style{Bold: true})
	if used != 5 {
		t.Errorf("cells used = %d", used)
	}
	if got := c.Row(1); got != "  hello" {
		t.Errorf("row = %q", got)
	}
	if !c.Get(2, 1).Style.Bold {
		t.Error("style not applied")
	}
}

func TestWriteStringClipsAtEdge(t *testing.T) {
	c := New(5, 1)
	c.WriteString(3, 0, "abcdef", Style{})
	if got := c.Row(0); got != "   ab" {
		t.Errorf("row = %q", got)
	}
}

func TestWriteStringWideRunes(t *testing.T) {
	c := New(10, 1)
	used := c.WriteString(0, 0, "日本", Style{})
	if used != 4 {
		t.Errorf("wide runes used %d cells, want 4", used)
	}
}

func TestSetOutOfRangeIgnored(t *testing.T) {
	c := New(2, 2)
	c.Set(-1, 0, 'x', Style{})
	c.Set(5, 5, 'x', Style{})
	if strings.TrimSpace(c.PlainText()) != "" {
		t.Errorf("out-of-range set modified canvas: %q", c.PlainText())
	}
}

func TestRestyleKeepsRune(t *testing.T) {
	c := New(5, 1)
	c.WriteString(0, 0, "ab", Style{})
	c.Restyle(0, 0, Style{Reverse: true})
	cell := c.Get(0, 0)
	if cell.Rune != 'a' || !cell.Style.Reverse {
		t.Errorf("cell = %+v", cell)
	}
}

func TestDrawBox(t *testing.T) {
	c := New(6, 4)
	c.DrawBox(0, 0, 6, 4, SingleBox, Style{})
	if c.Get(0, 0).Rune != '┌' || c.Get(5, 3).Rune != '┘' {
		t.Error("corners wrong")
	}
	if c.Get(2, 0).Rune != '─' || c.Get(0, 2).Rune != '│' {
		t.Error("edges wrong")
	}
}

func TestDimAll(t *testing.T) {
	c := New(3, 1)
	c.WriteString(0, 0, "abc", Style{Bold: true})
	c.DimAll()
	cell := c.Get(1, 0)
	if !cell.Style.Dim || cell.Style.Bold {
		t.Errorf("dim pass left %+v", cell.Style)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate short = %q", got)
	}
	got := Truncate("a long string", 6)
	if !strings.HasSuffix(got, "…") {
		t.Errorf("no ellipsis: %q", got)
	}
}

func TestPlainTextTrimsTrailing(t *testing.T) {
	c := New(10, 4)
	c.WriteString(0, 0, "top", Style{})
	got := c.PlainText()
	if got != "top\n" {
		t.Errorf("plain text = %q", got)
	}
}
