package session

import "skiff/find"

// HistoryEntry is one step in a tab's history: the URL plus the scroll offset
// to restore. Entries never hold documents; those live in the arena.
type HistoryEntry struct {
	URL    string
	Scroll int
}

// Tab is one browsing context: current URL, history stacks and view state.
type Tab struct {
	ID  int
	URL string

	Scroll     int
	LinkCursor int // index into the document's link table, -1 when none
	Loading    bool
	SourceView bool
	Find       find.Session

	// Visual mode selection, line/col of anchor and cursor.
	SelAnchorLine, SelAnchorCol int
	SelLine, SelCol             int

	back    []HistoryEntry
	forward []HistoryEntry
	gen     uint64
}

// NextGen advances and returns the tab's fetch generation. A fetch result
// tagged with an older generation is stale and must be discarded.
func (t *Tab) NextGen() uint64 {
	t.gen++
	return t.gen
}

// Gen returns the current fetch generation.
func (t *Tab) Gen() uint64 { return t.gen }

// CanBack reports whether the back-stack is non-empty.
func (t *Tab) CanBack() bool { return len(t.back) > 0 }

// CanForward reports whether the forward-stack is non-empty.
func (t *Tab) CanForward() bool { return len(t.forward) > 0 }

// RecordNavigate commits a navigation to url: the current page goes on the
// back-stack and the forward-stack empties. View state resets for the new
// page.
func (t *Tab) RecordNavigate(url string) {
	if t.URL != "" {
		t.back = append(t.back, HistoryEntry{URL: t.URL, Scroll: t.Scroll})
	}
	t.forward = t.forward[:0]
	t.setCurrent(url, 0)
}

// GoBack pops the back-stack, pushing the current page onto the forward-stack.
func (t *Tab) GoBack() (HistoryEntry, bool) {
	if len(t.back) == 0 {
		return HistoryEntry{}, false
	}
	entry := t.back[len(t.back)-1]
	t.back = t.back[:len(t.back)-1]
	if t.URL != "" {
		t.forward = append(t.forward, HistoryEntry{URL: t.URL, Scroll: t.Scroll})
	}
	t.setCurrent(entry.URL, entry.Scroll)
	return entry, true
}

// GoForward pops the forward-stack, pushing the current page onto the
// back-stack.
func (t *Tab) GoForward() (HistoryEntry, bool) {
	if len(t.forward) == 0 {
		return HistoryEntry{}, false
	}
	entry := t.forward[len(t.forward)-1]
	t.forward = t.forward[:len(t.forward)-1]
	if t.URL != "" {
		t.back = append(t.back, HistoryEntry{URL: t.URL, Scroll: t.Scroll})
	}
	t.setCurrent(entry.URL, entry.Scroll)
	return entry, true
}

func (t *Tab) setCurrent(url string, scroll int) {
	t.URL = url
	t.Scroll = scroll
	t.LinkCursor = -1
	t.SourceView = false
	t.Find.Clear()
}
