// Package layout turns a markup tree into render lines and a link table for a
// fixed-width character grid. The transformation is pure: the same tree and
// width always produce the same output, so a resize only needs a re-layout,
// never a refetch.
package layout

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"skiff/canvas"
	"skiff/markup"
)

// Span is a run of identically-styled text within a render line.
// Link is the link-table id covering this span, or -1.
type Span struct {
	Text  string
	Style canvas.Style
	Link  int
}

// Line is one render line of the laid-out document.
type Line struct {
	Spans []Span
}

// Text returns the plain text of the line.
func (l Line) Text() string {
	var sb strings.Builder
	for _, s := range l.Spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// Width returns the display width of the line in terminal cells.
func (l Line) Width() int {
	w := 0
	for _, s := range l.Spans {
		w += runewidth.StringWidth(s.Text)
	}
	return w
}

// RuneLen returns the number of runes in the line.
func (l Line) RuneLen() int {
	n := 0
	for _, s := range l.Spans {
		n += len([]rune(s.Text))
	}
	return n
}

// XAt returns the display column of the rune at the given rune index.
func (l Line) XAt(runeIdx int) int {
	x := 0
	i := 0
	for _, s := range l.Spans {
		for _, r := range s.Text {
			if i == runeIdx {
				return x
			}
			x += runewidth.RuneWidth(r)
			i++
		}
	}
	return x
}

// Link is one entry of the link table: a target and the span of render cells
// it occupies. A link wrapped across lines still yields a single entry;
// columns are display cells.
type Link struct {
	ID        int
	Href      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int // exclusive
}

// Covers reports whether the link occupies the given line and column.
func (l Link) Covers(line, col int) bool {
	if line < l.StartLine || line > l.EndLine {
		return false
	}
	if line == l.StartLine && col < l.StartCol {
		return false
	}
	if line == l.EndLine && col >= l.EndCol {
		return false
	}
	return true
}

// LinkAt returns the link covering (line, col), if any.
func LinkAt(links []Link, line, col int) (Link, bool) {
	for _, l := range links {
		if l.Covers(line, col) {
			return l, true
		}
	}
	return Link{}, false
}

// Layout lays out the document tree for the given width.
// Every produced line fits the width, except a single token wider than the
// width, which is emitted alone on its own line and may exceed it.
func Layout(root *markup.Node, width int) ([]Line, []Link) {
	if width <= 0 {
		return nil, nil
	}
	e := &engine{width: width, activeLink: -1}
	for _, child := range root.Children {
		e.block(child)
	}
	e.flush()
	e.trimTrailingBlank()
	return e.lines, e.links
}

// Source lays out raw markup as monospace text with an empty link table,
// hard-wrapped at the width boundary.
func Source(raw string, width int) []Line {
	if width <= 0 {
		return nil
	}
	var lines []Line
	style := canvas.Style{}
	for _, src := range strings.Split(raw, "\n") {
		src = strings.TrimRight(src, "\r")
		if src == "" {
			lines = append(lines, Line{})
			continue
		}
		for _, chunk := range hardBreak(src, width) {
			lines = append(lines, Line{Spans: []Span{{Text: chunk, Style: style, Link: -1}}})
		}
	}
	return lines
}

type engine struct {
	width int
	lines []Line
	links []Link

	cur      []Span
	curWidth int

	style      canvas.Style
	activeLink int // current link-table id, -1 when outside a link
	listDepth  int
}

func (e *engine) flush() {
	if len(e.cur) == 0 {
		return
	}
	e.lines = append(e.lines, Line{Spans: e.cur})
	e.cur = nil
	e.curWidth = 0
}

func (e *engine) blankLine() {
	e.flush()
	if len(e.lines) == 0 {
		return
	}
	if len(e.lines[len(e.lines)-1].Spans) == 0 {
		return
	}
	e.lines = append(e.lines, Line{})
}

func (e *engine) trimTrailingBlank() {
	for len(e.lines) > 0 && len(e.lines[len(e.lines)-1].Spans) == 0 {
		e.lines = e.lines[:len(e.lines)-1]
	}
}

// emit places one word on the current line, wrapping first if it does not
// fit. A word wider than the whole width goes on a line of its own.
func (e *engine) emit(word string) {
	if word == "" {
		return
	}
	w := runewidth.StringWidth(word)

	if e.curWidth > 0 && e.curWidth+w > e.width {
		e.flush()
		e.indentContinuation()
		// A leading space carried over from the previous line is dropped.
		if word == " " {
			return
		}
	}

	startLine := len(e.lines)
	startCol := e.curWidth
	e.cur = append(e.cur, Span{Text: word, Style: e.style, Link: e.activeLink})
	e.curWidth += w

	if e.activeLink >= 0 && strings.TrimSpace(word) != "" {
		e.extendLink(startLine, startCol, e.curWidth)
	}

	// Oversized token: it already owns the line, close it out.
	if w > e.width && startCol == 0 {
		e.flush()
		e.indentContinuation()
	}
}

func (e *engine) indentContinuation() {
	if e.listDepth > 0 {
		indent := strings.Repeat("  ", e.listDepth)
		e.cur = append(e.cur, Span{Text: indent, Style: canvas.Style{}, Link: -1})
		e.curWidth = len(indent)
	}
}

func (e *engine) extendLink(line, startCol, endCol int) {
	link := &e.links[e.activeLink]
	if link.EndLine == -1 {
		link.StartLine = line
		link.StartCol = startCol
	}
	link.EndLine = line
	link.EndCol = endCol
}

// words emits inline text word by word, keeping inter-word spacing as
// separate one-cell tokens so wrapping lands on whitespace.
func (e *engine) words(text string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return
	}
	leading := text[0] == ' ' || text[0] == '\t' || text[0] == '\n'
	trailing := strings.TrimRight(text, " \t\n") != text

	for i, f := range fields {
		if i > 0 || (leading && e.curWidth > 0) {
			e.emit(" ")
		}
		e.emit(f)
	}
	if trailing {
		e.emit(" ")
	}
}

func (e *engine) block(n *markup.Node) {
	switch n.Type {
	case markup.NodeHeading1:
		e.heading(n, canvas.Style{Bold: true}, strings.ToUpper(n.Text))
	case markup.NodeHeading2:
		e.heading(n, canvas.Style{Bold: true}, n.Text)
	case markup.NodeHeading3:
		e.heading(n, canvas.Style{Bold: true, Underline: true}, n.Text)

	case markup.NodeParagraph:
		e.blankLine()
		e.inlineChildren(n)
		e.flush()

	case markup.NodeBlockquote:
		e.blankLine()
		e.quote(n)

	case markup.NodeList:
		e.blankLine()
		e.list(n)

	case markup.NodeCodeBlock:
		e.blankLine()
		e.codeBlock(n.Text)

	case markup.NodeRule:
		e.blankLine()
		e.cur = append(e.cur, Span{
			Text:  strings.Repeat("─", e.width),
			Style: canvas.Style{Dim: true},
			Link:  -1,
		})
		e.curWidth = e.width
		e.flush()

	default:
		// Stray inline node at block level: treat as a short paragraph.
		e.blankLine()
		e.inline(n)
		e.flush()
	}
}

func (e *engine) heading(n *markup.Node, style canvas.Style, text string) {
	e.blankLine()
	if text == "" {
		return
	}
	prev := e.style
	e.style = style
	if n.Href != "" {
		e.beginLink(n.Href)
		e.words(text)
		e.endLink()
	} else {
		e.words(text)
	}
	e.style = prev
	e.flush()
}

func (e *engine) quote(n *markup.Node) {
	prev := e.style
	e.style = canvas.Style{Dim: true}
	for _, child := range n.Children {
		switch child.Type {
		case markup.NodeParagraph:
			e.cur = append(e.cur, Span{Text: "│ ", Style: canvas.Style{Dim: true}, Link: -1})
			e.curWidth = 2
			e.inlineChildren(child)
			e.flush()
		default:
			e.block(child)
		}
	}
	e.style = prev
	e.flush()
}

func (e *engine) list(n *markup.Node) {
	e.listDepth++
	for _, item := range n.Children {
		e.flush()
		indent := strings.Repeat("  ", e.listDepth-1)
		e.cur = append(e.cur, Span{Text: indent + "• ", Style: canvas.Style{}, Link: -1})
		e.curWidth = len(indent) + 2
		e.inlineChildren(item)
		e.flush()
	}
	e.listDepth--
	e.flush()
}

func (e *engine) codeBlock(text string) {
	prev := e.style
	e.style = canvas.Style{Dim: true}
	for _, src := range strings.Split(text, "\n") {
		if src == "" {
			e.lines = append(e.lines, Line{})
			continue
		}
		for _, chunk := range hardBreak(src, e.width) {
			e.cur = append(e.cur, Span{Text: chunk, Style: e.style, Link: -1})
			e.curWidth = runewidth.StringWidth(chunk)
			e.flush()
		}
	}
	e.style = prev
}

func (e *engine) inlineChildren(n *markup.Node) {
	for _, child := range n.Children {
		e.inline(child)
	}
}

func (e *engine) inline(n *markup.Node) {
	switch n.Type {
	case markup.NodeText:
		e.words(n.Text)

	case markup.NodeStrong:
		prev := e.style
		e.style.Bold = true
		e.inlineChildren(n)
		e.style = prev

	case markup.NodeEmphasis:
		prev := e.style
		e.style.Underline = true
		e.inlineChildren(n)
		e.style = prev

	case markup.NodeCode:
		prev := e.style
		e.style.Dim = true
		e.words(n.Text)
		e.style = prev

	case markup.NodeLink:
		prev := e.style
		e.style.Underline = true
		e.beginLink(n.Href)
		e.inlineChildren(n)
		e.endLink()
		e.style = prev

	case markup.NodeImage:
		prev := e.style
		e.style.Dim = true
		e.words("[" + n.Text + "]")
		e.style = prev

	case markup.NodeBreak:
		e.flush()

	default:
		e.inlineChildren(n)
	}
}

func (e *engine) beginLink(href string) {
	e.links = append(e.links, Link{
		ID:      len(e.links),
		Href:    href,
		EndLine: -1, // no cells occupied yet
	})
	e.activeLink = len(e.links) - 1
}

// endLink closes the active link. A link that produced no visible text still
// gets a non-empty span: its target is emitted as the link text.
func (e *engine) endLink() {
	id := e.activeLink
	if e.links[id].EndLine == -1 {
		text := e.links[id].Href
		if text == "" {
			text = "[link]"
		}
		e.words(text)
	}
	e.activeLink = -1
	if e.links[id].EndLine == -1 {
		// Still empty (blank href and no text): give it a placeholder cell.
		e.activeLink = id
		e.words("[link]")
		e.activeLink = -1
	}
}

// hardBreak splits a string into chunks of at most width display cells.
func hardBreak(s string, width int) []string {
	var result []string
	runes := []rune(s)

	for len(runes) > 0 {
		var line strings.Builder
		lineWidth := 0

		for len(runes) > 0 {
			r := runes[0]
			w := runewidth.RuneWidth(r)
			if lineWidth+w > width {
				break
			}
			line.WriteRune(r)
			lineWidth += w
			runes = runes[1:]
		}

		if line.Len() > 0 {
			result = append(result, line.String())
		} else if len(runes) > 0 {
			line.WriteRune(runes[0])
			result = append(result, line.String())
			runes = runes[1:]
		}
	}

	return result
}

// ExtractText returns the plain text covered by the span from (startLine,
// startCol) to (endLine, endCol) inclusive, in rune columns. Used by visual
// selection.
func ExtractText(lines []Line, startLine, startCol, endLine, endCol int) string {
	if startLine > endLine || (startLine == endLine && startCol > endCol) {
		startLine, startCol, endLine, endCol = endLine, endCol, startLine, startCol
	}
	if startLine < 0 {
		startLine = 0
	}
	if endLine >= len(lines) {
		endLine = len(lines) - 1
	}

	var parts []string
	for i := startLine; i <= endLine && i >= 0; i++ {
		text := []rune(lines[i].Text())
		from, to := 0, len(text)
		if i == startLine {
			from = clamp(startCol, 0, len(text))
		}
		if i == endLine {
			to = clamp(endCol+1, 0, len(text))
		}
		if from > to {
			from = to
		}
		parts = append(parts, string(text[from:to]))
	}
	return strings.Join(parts, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
