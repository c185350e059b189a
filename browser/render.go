package browser

import (
	"fmt"
	"net/url"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"skiff/canvas"
	"skiff/download"
	"skiff/layout"
	"skiff/session"
	"skiff/term"
)

// render paints the whole frame: page lines, highlights, status bar, prompt
// and overlays, then flushes to the backend.
func (a *App) render() {
	if a.width <= 0 || a.height <= 0 {
		return
	}
	c := canvas.New(a.width, a.height)
	tab := a.sess.Active()
	lines := a.currentLines(tab)

	a.drawPage(c, tab, lines)
	a.drawHighlights(c, tab, lines)
	a.drawStatusBar(c, tab)

	if a.showDownloads {
		a.drawDownloads(c)
	}
	a.drawPrompt(c)

	term.Draw(a.backend, c)
}

func (a *App) drawPage(c *canvas.Canvas, tab *session.Tab, lines []layout.Line) {
	for row := 0; row < a.contentHeight(); row++ {
		i := tab.Scroll + row
		if i >= len(lines) {
			break
		}
		x := 0
		for _, span := range lines[i].Spans {
			x += c.WriteString(x, row, span.Text, span.Style)
		}
	}
}

// drawHighlights restyles cells for the link cursor, search matches and the
// visual selection on top of the drawn page.
func (a *App) drawHighlights(c *canvas.Canvas, tab *session.Tab, lines []layout.Line) {
	if !tab.SourceView {
		if link, ok := a.cursorLink(tab); ok {
			a.restyleLink(c, tab, link)
		}
	}

	inSearch := a.sess.Mode == session.ModeSearch
	if tab.Find.Active || inSearch {
		for i, m := range tab.Find.Matches {
			if m.Line < tab.Scroll || m.Line >= tab.Scroll+a.contentHeight() {
				continue
			}
			row := m.Line - tab.Scroll
			line := lines[m.Line]
			startX := line.XAt(m.Col)
			endX := line.XAt(m.Col + m.Len)
			style := canvas.Style{Reverse: true}
			if i == tab.Find.Current {
				style.Bold = true
			}
			for x := startX; x < endX; x++ {
				c.Restyle(x, row, style)
			}
		}
	}

	if a.sess.Mode == session.ModeVisual {
		a.restyleSelection(c, tab, lines)
	}
}

func (a *App) restyleLink(c *canvas.Canvas, tab *session.Tab, link layout.Link) {
	for line := link.StartLine; line <= link.EndLine; line++ {
		if line < tab.Scroll || line >= tab.Scroll+a.contentHeight() {
			continue
		}
		row := line - tab.Scroll
		from, to := 0, a.contentWidth()
		if line == link.StartLine {
			from = link.StartCol
		}
		if line == link.EndLine {
			to = link.EndCol
		}
		for x := from; x < to; x++ {
			c.Restyle(x, row, canvas.Style{Reverse: true, Underline: true})
		}
	}
}

func (a *App) restyleSelection(c *canvas.Canvas, tab *session.Tab, lines []layout.Line) {
	sl, sc, el, ec := tab.SelAnchorLine, tab.SelAnchorCol, tab.SelLine, tab.SelCol
	if sl > el || (sl == el && sc > ec) {
		sl, sc, el, ec = el, ec, sl, sc
	}
	for line := sl; line <= el; line++ {
		if line < tab.Scroll || line >= tab.Scroll+a.contentHeight() || line >= len(lines) {
			continue
		}
		row := line - tab.Scroll
		text := lines[line]
		from := 0
		to := text.Width()
		if line == sl {
			from = text.XAt(sc)
		}
		if line == el {
			to = text.XAt(ec + 1)
		}
		if to == from {
			to = from + 1 // keep the cursor visible on empty lines
		}
		for x := from; x < to; x++ {
			c.Restyle(x, row, canvas.Style{Reverse: true})
		}
	}
}

// drawStatusBar paints the bottom row: mode, page title or URL, proxy flag,
// tab position and scroll percentage.
func (a *App) drawStatusBar(c *canvas.Canvas, tab *session.Tab) {
	y := a.height - 1
	style := canvas.Style{Reverse: true}
	c.FillRect(0, y, a.width, 1, style)

	left := fmt.Sprintf(" %s  %s", a.sess.Mode, a.statusTitle(tab))
	if tab.Loading {
		left += " …"
	}
	if a.status != "" {
		left += "  [" + a.status + "]"
	}

	right := ""
	if a.sess.Proxy {
		right += "proxy  "
	}
	if a.downloads.Active() {
		right += "⇣  "
	}
	if n := len(a.sess.Tabs()); n > 1 {
		right += fmt.Sprintf("%d/%d  ", a.sess.ActiveIndex()+1, n)
	}
	if a.cfg.Display.ShowScrollPercentage {
		right += a.scrollPercent(tab) + " "
	}

	rw := runewidth.StringWidth(right)
	c.WriteString(0, y, canvas.Truncate(left, a.width-rw-1), style)
	c.WriteString(a.width-rw, y, right, style)
}

func (a *App) statusTitle(tab *session.Tab) string {
	if tab.URL == "" {
		return "new tab"
	}
	doc := a.document(tab)
	title := doc.Title
	if u, err := url.Parse(tab.URL); err == nil && u.Host != "" {
		if title != "" && title != tab.URL {
			return fmt.Sprintf("%s — %s", u.Host, title)
		}
		return u.Host
	}
	return tab.URL
}

func (a *App) scrollPercent(tab *session.Tab) string {
	lines := a.currentLines(tab)
	max := len(lines) - a.contentHeight()
	if max <= 0 {
		return "all"
	}
	return fmt.Sprintf("%d%%", tab.Scroll*100/max)
}

// drawPrompt replaces the status bar with the line editor during Edit and
// Search modes, placing the terminal cursor inside the buffer.
func (a *App) drawPrompt(c *canvas.Canvas) {
	var label string
	switch a.sess.Mode {
	case session.ModeEdit:
		label = "open: "
	case session.ModeSearch:
		label = "find: "
	default:
		a.backend.HideCursor()
		return
	}

	y := a.height - 1
	c.FillRect(0, y, a.width, 1, canvas.Style{})
	c.WriteString(0, y, label, canvas.Style{Bold: true})
	c.WriteString(len(label), y, canvas.Truncate(a.editor.Text(), a.width-len(label)-1), canvas.Style{})
	a.backend.ShowCursor(len(label)+a.editor.Cursor(), y)
}

// drawDownloads paints the task list overlay on a dimmed page.
func (a *App) drawDownloads(c *canvas.Canvas) {
	c.DimAll()

	tasks := a.downloads.Tasks()
	w := a.width - 6
	if w > 64 {
		w = 64
	}
	if w < 20 {
		return
	}
	h := len(tasks) + 2
	if h < 3 {
		h = 3
	}
	if max := a.height - 2; h > max {
		h = max
	}
	x := (a.width - w) / 2
	y := (a.height - h) / 2

	c.FillRect(x, y, w, h, canvas.Style{})
	c.DrawBox(x, y, w, h, canvas.SingleBox, canvas.Style{})
	c.WriteString(x+2, y, " downloads ", canvas.Style{Bold: true})

	if len(tasks) == 0 {
		c.WriteString(x+2, y+1, "no downloads", canvas.Style{Dim: true})
		return
	}
	for i, t := range tasks {
		if i >= h-2 {
			break
		}
		style := taskStyle(t)
		if i == a.taskCursor {
			style.Reverse = true
		}
		c.WriteString(x+2, y+1+i, canvas.Truncate(taskLine(t), w-4), style)
	}
}

func taskLine(t *download.Task) string {
	name := t.Dest
	progress := humanize.Bytes(uint64(t.Received))
	if t.Total > 0 {
		progress = fmt.Sprintf("%s / %s", humanize.Bytes(uint64(t.Received)), humanize.Bytes(uint64(t.Total)))
	}
	line := fmt.Sprintf("%-11s %s  %s", t.Status, progress, name)
	if t.Err != "" && t.Status == download.StatusFailed {
		line += "  (" + t.Err + ")"
	}
	return line
}

func taskStyle(t *download.Task) canvas.Style {
	switch t.Status {
	case download.StatusCompleted:
		return canvas.Style{Bold: true}
	case download.StatusFailed, download.StatusCancelled:
		return canvas.Style{Dim: true}
	}
	return canvas.Style{}
}
