package layout

import (
	"reflect"
	"strings"
	"testing"

	"skiff/markup"
)

func parse(t *testing.T, src string) *markup.Node {
	t.Helper()
	doc, err := markup.ParseString(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc.Root
}

func TestLayoutDeterministic(t *testing.T) {
	tree := parse(t, `<h1>Title</h1><p>Some body text with <a href="/x">a link</a> and <b>bold</b> words that will wrap.</p><ul><li>first</li><li>second</li></ul>`)

	lines1, links1 := Layout(tree, 24)
	lines2, links2 := Layout(tree, 24)

	if !reflect.DeepEqual(lines1, lines2) {
		t.Error("lines differ between identical layout runs")
	}
	if !reflect.DeepEqual(links1, links2) {
		t.Error("links differ between identical layout runs")
	}
}

func TestLayoutRespectsWidth(t *testing.T) {
	tree := parse(t, `<p>the quick brown fox jumps over the lazy dog again and again and again</p>`)

	for _, width := range []int{10, 20, 40, 80} {
		lines, _ := Layout(tree, width)
		for i, line := range lines {
			if line.Width() > width {
				t.Errorf("width %d: line %d is %d cells: %q", width, i, line.Width(), line.Text())
			}
		}
	}
}

func TestLayoutOverwideTokenEmittedAlone(t *testing.T) {
	long := strings.Repeat("x", 30)
	tree := parse(t, "<p>short "+long+" tail</p>")

	lines, _ := Layout(tree, 10)
	found := false
	for _, line := range lines {
		if strings.Contains(line.Text(), long) {
			found = true
			if got := strings.TrimSpace(line.Text()); got != long {
				t.Errorf("overwide token shares a line: %q", line.Text())
			}
		}
	}
	if !found {
		t.Fatal("overwide token missing from output")
	}
}

func TestLayoutLinkTable(t *testing.T) {
	tree := parse(t, `<p>go to <a href="/first">first page</a> or <a href="/second">second</a></p>`)

	lines, links := Layout(tree, 80)
	if len(links) != 2 {
		t.Fatalf("got %d links, want 2", len(links))
	}
	for _, l := range links {
		if l.EndLine < l.StartLine {
			t.Errorf("link %d has empty span", l.ID)
		}
		if l.StartLine == l.EndLine && l.EndCol <= l.StartCol {
			t.Errorf("link %d span is empty: cols %d..%d", l.ID, l.StartCol, l.EndCol)
		}
	}
	if links[0].Href != "/first" || links[1].Href != "/second" {
		t.Errorf("hrefs = %q, %q", links[0].Href, links[1].Href)
	}

	// The first span should cover "first page" on line 0.
	text := lines[links[0].StartLine].Text()
	covered := text[links[0].StartCol:links[0].EndCol]
	if covered != "first page" {
		t.Errorf("link 0 covers %q", covered)
	}
}

func TestLayoutWrappedLinkSingleEntry(t *testing.T) {
	tree := parse(t, `<p>aaa <a href="/x">some quite long link text here</a> bbb</p>`)

	_, links := Layout(tree, 12)
	if len(links) != 1 {
		t.Fatalf("wrapped link produced %d entries, want 1", len(links))
	}
	l := links[0]
	if l.EndLine <= l.StartLine {
		t.Errorf("expected link to cross lines, got %d..%d", l.StartLine, l.EndLine)
	}
}

func TestLayoutEmptyLinkGetsVisibleSpan(t *testing.T) {
	tree := parse(t, `<p>before <a href="/target"></a> after</p>`)

	lines, links := Layout(tree, 80)
	if len(links) != 1 {
		t.Fatalf("got %d links, want 1", len(links))
	}
	l := links[0]
	if l.StartLine == l.EndLine && l.EndCol <= l.StartCol {
		t.Fatal("empty link has no span")
	}
	if !strings.Contains(lines[l.StartLine].Text(), "/target") {
		t.Errorf("empty link text not substituted: %q", lines[l.StartLine].Text())
	}
}

func TestLayoutHeadingUppercase(t *testing.T) {
	tree := parse(t, `<h1>Main Title</h1>`)

	lines, _ := Layout(tree, 80)
	if len(lines) == 0 || lines[0].Text() != "MAIN TITLE" {
		t.Fatalf("h1 output = %q", lines[0].Text())
	}
	if !lines[0].Spans[0].Style.Bold {
		t.Error("h1 not bold")
	}
}

func TestLayoutListBullets(t *testing.T) {
	tree := parse(t, `<ul><li>alpha</li><li>beta</li></ul>`)

	lines, _ := Layout(tree, 80)
	var items []string
	for _, l := range lines {
		if txt := l.Text(); txt != "" {
			items = append(items, txt)
		}
	}
	if len(items) != 2 {
		t.Fatalf("got %d list lines: %v", len(items), items)
	}
	for _, it := range items {
		if !strings.HasPrefix(it, "• ") {
			t.Errorf("list line missing bullet: %q", it)
		}
	}
}

func TestLayoutZeroWidth(t *testing.T) {
	tree := parse(t, `<p>text</p>`)
	lines, links := Layout(tree, 0)
	if lines != nil || links != nil {
		t.Error("zero width should produce no output")
	}
}

func TestLayoutResizeOnlyChangesWrapping(t *testing.T) {
	tree := parse(t, `<p>one two three four five six seven eight nine ten</p>`)

	narrow, _ := Layout(tree, 12)
	wide, _ := Layout(tree, 200)

	joinWords := func(lines []Line) string {
		var all []string
		for _, l := range lines {
			all = append(all, strings.Fields(l.Text())...)
		}
		return strings.Join(all, " ")
	}
	if joinWords(narrow) != joinWords(wide) {
		t.Errorf("content differs across widths: %q vs %q", joinWords(narrow), joinWords(wide))
	}
}

func TestSourceHardWrap(t *testing.T) {
	raw := "<p>" + strings.Repeat("a", 25) + "</p>\nshort"
	lines := Source(raw, 10)

	for i, l := range lines {
		if l.Width() > 10 {
			t.Errorf("source line %d exceeds width: %q", i, l.Text())
		}
	}
	var joined strings.Builder
	for _, l := range lines[:len(lines)-1] {
		joined.WriteString(l.Text())
	}
	if !strings.Contains(joined.String()+lines[len(lines)-1].Text(), strings.Repeat("a", 25)) {
		t.Error("hard wrap lost content")
	}
}

func TestExtractText(t *testing.T) {
	tree := parse(t, `<p>first line words</p><p>second line words</p>`)
	lines, _ := Layout(tree, 80)

	// lines: "first line words", "", "second line words"
	got := ExtractText(lines, 0, 0, 0, 4)
	if got != "first" {
		t.Errorf("single-line extract = %q", got)
	}

	got = ExtractText(lines, 0, 6, 2, 5)
	want := "line words\n\nsecond"
	if got != want {
		t.Errorf("multi-line extract = %q, want %q", got, want)
	}

	// Reversed endpoints normalise.
	if fwd, rev := ExtractText(lines, 0, 0, 0, 4), ExtractText(lines, 0, 4, 0, 0); fwd != rev {
		t.Errorf("reversed extract differs: %q vs %q", fwd, rev)
	}
}

func TestLinkAt(t *testing.T) {
	links := []Link{{ID: 0, Href: "/x", StartLine: 1, StartCol: 4, EndLine: 2, EndCol: 3}}

	cases := []struct {
		line, col int
		want      bool
	}{
		{1, 4, true},
		{1, 3, false},
		{1, 99, true}, // later on the start line
		{2, 2, true},
		{2, 3, false},
		{0, 5, false},
		{3, 0, false},
	}
	for _, c := range cases {
		if _, ok := LinkAt(links, c.line, c.col); ok != c.want {
			t.Errorf("LinkAt(%d,%d) = %v, want %v", c.line, c.col, ok, c.want)
		}
	}
}
