package browser

import (
	"fmt"

	"skiff/fetch"
	"skiff/layout"
	"skiff/session"
	"skiff/term"
)

// handleNormalKey routes a Normal-mode key press through the configured
// bindings.
func (a *App) handleNormalKey(ev term.KeyEvent) {
	tab := a.sess.Active()
	kb := a.cfg.Keybindings

	if a.showDownloads && a.handleDownloadsKey(ev) {
		return
	}

	switch ev.Key {
	case term.KeyUp:
		a.scrollBy(tab, -1)
		return
	case term.KeyDown:
		a.scrollBy(tab, 1)
		return
	case term.KeyPgUp:
		a.scrollBy(tab, -a.contentHeight())
		return
	case term.KeyPgDn:
		a.scrollBy(tab, a.contentHeight())
		return
	case term.KeyEnter:
		a.activateLink(tab, false)
		return
	case term.KeyTab:
		a.cycleLink(tab, 1)
		return
	}
	if ev.Key != term.KeyRune {
		return
	}
	if ev.Ctrl && ev.Rune == 'c' {
		a.quit = true
		return
	}

	switch string(ev.Rune) {
	case kb.Quit:
		a.quit = true
	case kb.ScrollDown:
		a.scrollBy(tab, 1)
	case kb.ScrollUp:
		a.scrollBy(tab, -1)
	case kb.HalfPageDown:
		a.scrollBy(tab, a.contentHeight()/2)
	case kb.HalfPageUp:
		a.scrollBy(tab, -a.contentHeight()/2)
	case kb.GoTop:
		tab.Scroll = 0
	case kb.GoBottom:
		a.scrollBy(tab, 1<<30)

	case kb.NextLink:
		if tab.Find.Active {
			a.jumpToMatch(tab, +1)
		} else {
			a.cycleLink(tab, 1)
		}
	case kb.PrevLink:
		if tab.Find.Active {
			a.jumpToMatch(tab, -1)
		} else {
			a.cycleLink(tab, -1)
		}
	case kb.FollowLink:
		a.activateLink(tab, false)
	case kb.Download:
		a.downloadLink(tab)

	case kb.EditAddress:
		a.editor.Set(tab.URL)
		a.sess.Mode = session.ModeEdit
	case kb.Find:
		a.editor.Clear()
		tab.Find.Clear()
		a.sess.Mode = session.ModeSearch
	case kb.Visual:
		a.enterVisual(tab)

	case kb.Back:
		a.goBack(tab)
	case kb.Forward:
		a.goForward(tab)
	case kb.Reload:
		if tab.URL != "" {
			a.startFetch(tab)
		}
	case kb.SourceView:
		tab.SourceView = !tab.SourceView
		a.clampScroll(tab)
	case kb.ToggleProxy:
		a.sess.Proxy = !a.sess.Proxy
		if a.sess.Proxy {
			a.status = "proxy on (subsequent requests)"
		} else {
			a.status = "proxy off (subsequent requests)"
		}

	case kb.NewTab:
		a.sess.OpenTab("")
	case kb.CloseTab:
		a.sess.CloseTab()
	case kb.NextTab:
		a.sess.NextTab()
	case kb.PrevTab:
		a.sess.PrevTab()

	case kb.Downloads:
		a.showDownloads = !a.showDownloads
	case kb.DismissTasks:
		a.downloads.Dismiss()
	}
}

// handleDownloadsKey operates the open task overlay: the scroll keys move the
// selector, the cancel key stops the selected transfer. Keys it does not
// claim fall through to the normal bindings.
func (a *App) handleDownloadsKey(ev term.KeyEvent) bool {
	kb := a.cfg.Keybindings
	a.clampTaskCursor()

	switch ev.Key {
	case term.KeyEsc:
		a.showDownloads = false
		return true
	case term.KeyUp:
		a.moveTaskCursor(-1)
		return true
	case term.KeyDown:
		a.moveTaskCursor(1)
		return true
	}
	if ev.Key != term.KeyRune || ev.Ctrl {
		return false
	}

	switch string(ev.Rune) {
	case kb.ScrollUp:
		a.moveTaskCursor(-1)
	case kb.ScrollDown:
		a.moveTaskCursor(1)
	case kb.CancelTask:
		tasks := a.downloads.Tasks()
		if a.taskCursor < len(tasks) {
			t := tasks[a.taskCursor]
			if !t.Status.Terminal() {
				a.manager.Cancel(t.ID)
			}
		}
	case kb.DismissTasks:
		a.downloads.Dismiss()
		a.clampTaskCursor()
	default:
		return false
	}
	return true
}

func (a *App) moveTaskCursor(delta int) {
	a.taskCursor += delta
	a.clampTaskCursor()
}

func (a *App) clampTaskCursor() {
	if n := a.downloads.Len(); a.taskCursor >= n {
		a.taskCursor = n - 1
	}
	if a.taskCursor < 0 {
		a.taskCursor = 0
	}
}

func (a *App) scrollBy(tab *session.Tab, delta int) {
	tab.Scroll += delta
	a.clampScroll(tab)
}

// cycleLink moves the link cursor through the link table, wrapping at either
// end, and scrolls the selected link into view.
func (a *App) cycleLink(tab *session.Tab, dir int) {
	if tab.SourceView {
		return
	}
	_, links := a.document(tab).Layout(a.contentWidth())
	if len(links) == 0 {
		tab.LinkCursor = -1
		return
	}
	if tab.LinkCursor < 0 {
		if dir > 0 {
			tab.LinkCursor = 0
		} else {
			tab.LinkCursor = len(links) - 1
		}
	} else {
		tab.LinkCursor = (tab.LinkCursor + dir + len(links)) % len(links)
	}

	link := links[tab.LinkCursor]
	if link.StartLine < tab.Scroll {
		tab.Scroll = link.StartLine
	}
	if bottom := tab.Scroll + a.contentHeight() - 1; link.StartLine > bottom {
		tab.Scroll = link.StartLine - a.contentHeight() + 1
	}
	a.clampScroll(tab)
}

func (a *App) activateLink(tab *session.Tab, newTab bool) {
	link, ok := a.cursorLink(tab)
	if !ok {
		return
	}
	a.followLink(tab, link.Href, newTab)
}

// downloadLink sends the link under the cursor to the download manager
// regardless of its extension.
func (a *App) downloadLink(tab *session.Tab) {
	link, ok := a.cursorLink(tab)
	if !ok {
		return
	}
	target, err := fetch.Resolve(tab.URL, link.Href)
	if err != nil {
		a.status = fmt.Sprintf("bad link: %v", err)
		return
	}
	a.manager.Enqueue(target, a.sess.Proxy)
	a.showDownloads = true
}

func (a *App) cursorLink(tab *session.Tab) (layout.Link, bool) {
	if tab.SourceView || tab.LinkCursor < 0 {
		return layout.Link{}, false
	}
	_, links := a.document(tab).Layout(a.contentWidth())
	if tab.LinkCursor >= len(links) {
		return layout.Link{}, false
	}
	return links[tab.LinkCursor], true
}

// handleEditKey edits the address buffer. Submit normalises the input or
// falls back to a web search; cancel leaves the page untouched.
func (a *App) handleEditKey(ev term.KeyEvent) {
	tab := a.sess.Active()

	switch ev.Key {
	case term.KeyEsc:
		a.sess.Mode = session.ModeNormal
		return
	case term.KeyEnter:
		a.sess.Mode = session.ModeNormal
		target := fetch.NormalizeAddress(a.editor.Text(), a.provider)
		if target == "" {
			return
		}
		a.navigate(tab, target)
		return
	case term.KeyBackspace:
		a.editor.Backspace()
		return
	case term.KeyDelete:
		a.editor.Delete()
		return
	case term.KeyLeft:
		a.editor.Left()
		return
	case term.KeyRight:
		a.editor.Right()
		return
	case term.KeyHome:
		a.editor.Home()
		return
	case term.KeyEnd:
		a.editor.End()
		return
	}
	if ev.Key != term.KeyRune {
		return
	}

	if ev.Ctrl {
		switch ev.Rune {
		case 'u':
			a.editor.KillToStart()
		case 'y':
			if err := a.clip.Copy(a.editor.Text()); err != nil {
				a.status = fmt.Sprintf("copy failed: %v", err)
			}
		case 'v':
			text, err := a.clip.Paste()
			if err != nil {
				a.status = fmt.Sprintf("paste failed: %v", err)
				return
			}
			a.editor.InsertString(text)
		}
		return
	}
	a.editor.Insert(ev.Rune)
}

// handleSearchKey edits the find query, rescanning on every change so the
// highlights track the buffer live.
func (a *App) handleSearchKey(ev term.KeyEvent) {
	tab := a.sess.Active()

	switch ev.Key {
	case term.KeyEsc:
		tab.Find.Clear()
		a.sess.Mode = session.ModeNormal
		return
	case term.KeyEnter:
		tab.Find.Active = tab.Find.Query != ""
		a.sess.Mode = session.ModeNormal
		a.scrollToCurrentMatch(tab)
		return
	case term.KeyBackspace:
		a.editor.Backspace()
	case term.KeyDelete:
		a.editor.Delete()
	case term.KeyLeft:
		a.editor.Left()
	case term.KeyRight:
		a.editor.Right()
	default:
		if ev.Key != term.KeyRune || ev.Ctrl {
			return
		}
		a.editor.Insert(ev.Rune)
	}

	lines := a.currentLines(tab)
	tab.Find.Update(a.editor.Text(), lines)
	a.scrollToCurrentMatch(tab)
}

func (a *App) jumpToMatch(tab *session.Tab, dir int) {
	if dir > 0 {
		tab.Find.Next()
	} else {
		tab.Find.Prev()
	}
	a.scrollToCurrentMatch(tab)
}

func (a *App) scrollToCurrentMatch(tab *session.Tab) {
	m, ok := tab.Find.CurrentMatch()
	if !ok {
		return
	}
	if m.Line < tab.Scroll || m.Line >= tab.Scroll+a.contentHeight() {
		tab.Scroll = m.Line - a.contentHeight()/2
	}
	a.clampScroll(tab)
}

// enterVisual starts a selection anchored at the top visible line.
func (a *App) enterVisual(tab *session.Tab) {
	tab.SelAnchorLine, tab.SelAnchorCol = tab.Scroll, 0
	tab.SelLine, tab.SelCol = tab.Scroll, 0
	a.sess.Mode = session.ModeVisual
}

// handleVisualKey moves the selection cursor; y copies the covered text.
func (a *App) handleVisualKey(ev term.KeyEvent) {
	tab := a.sess.Active()
	lines := a.currentLines(tab)

	switch ev.Key {
	case term.KeyEsc:
		a.sess.Mode = session.ModeNormal
		return
	case term.KeyUp:
		a.moveSelection(tab, lines, -1, 0)
		return
	case term.KeyDown:
		a.moveSelection(tab, lines, 1, 0)
		return
	case term.KeyLeft:
		a.moveSelection(tab, lines, 0, -1)
		return
	case term.KeyRight:
		a.moveSelection(tab, lines, 0, 1)
		return
	}
	if ev.Key != term.KeyRune {
		return
	}

	switch ev.Rune {
	case 'k':
		a.moveSelection(tab, lines, -1, 0)
	case 'j':
		a.moveSelection(tab, lines, 1, 0)
	case 'h':
		a.moveSelection(tab, lines, 0, -1)
	case 'l':
		a.moveSelection(tab, lines, 0, 1)
	case '0':
		tab.SelCol = 0
	case '$':
		tab.SelCol = a.lineRuneLen(lines, tab.SelLine)
	case 'y':
		text := layout.ExtractText(lines, tab.SelAnchorLine, tab.SelAnchorCol, tab.SelLine, tab.SelCol)
		if err := a.clip.Copy(text); err != nil {
			a.status = fmt.Sprintf("copy failed: %v", err)
		} else {
			a.status = "copied selection"
		}
		a.sess.Mode = session.ModeNormal
	}
}

func (a *App) moveSelection(tab *session.Tab, lines []layout.Line, dl, dc int) {
	tab.SelLine += dl
	if tab.SelLine < 0 {
		tab.SelLine = 0
	}
	if n := len(lines); tab.SelLine >= n && n > 0 {
		tab.SelLine = n - 1
	}
	tab.SelCol += dc
	if tab.SelCol < 0 {
		tab.SelCol = 0
	}
	if max := a.lineRuneLen(lines, tab.SelLine); tab.SelCol > max {
		tab.SelCol = max
	}

	// Keep the cursor on screen.
	if tab.SelLine < tab.Scroll {
		tab.Scroll = tab.SelLine
	}
	if tab.SelLine >= tab.Scroll+a.contentHeight() {
		tab.Scroll = tab.SelLine - a.contentHeight() + 1
	}
	a.clampScroll(tab)
}

func (a *App) lineRuneLen(lines []layout.Line, i int) int {
	if i < 0 || i >= len(lines) {
		return 0
	}
	return lines[i].RuneLen()
}

// currentLines returns the render lines for what the tab is showing, source
// or layout view.
func (a *App) currentLines(tab *session.Tab) []layout.Line {
	doc := a.document(tab)
	if tab.SourceView {
		return doc.SourceLines(a.contentWidth())
	}
	lines, _ := doc.Layout(a.contentWidth())
	return lines
}

// handleMouse: wheel scrolls, left click focuses or follows the link under
// the pointer, ctrl-click opens it in a new tab.
func (a *App) handleMouse(ev term.MouseEvent) {
	tab := a.sess.Active()

	switch ev.Button {
	case term.MouseWheelUp:
		a.scrollBy(tab, -3)
	case term.MouseWheelDown:
		a.scrollBy(tab, 3)
	case term.MouseLeft:
		if a.sess.Mode != session.ModeNormal || tab.SourceView {
			return
		}
		if ev.Y >= a.contentHeight() {
			return
		}
		line := tab.Scroll + ev.Y
		_, links := a.document(tab).Layout(a.contentWidth())
		link, ok := layout.LinkAt(links, line, ev.X)
		if !ok {
			return
		}
		tab.LinkCursor = link.ID
		a.followLink(tab, link.Href, ev.Ctrl)
	}
}
