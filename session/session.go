// Package session owns the browser's mutable state: tabs, history stacks, the
// interaction mode and the document arena. One Session value is threaded
// through the interaction loop; nothing here is touched concurrently.
package session

// Mode is the session-local interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeEdit
	ModeSearch
	ModeVisual
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "NORMAL"
	case ModeEdit:
		return "EDIT"
	case ModeSearch:
		return "SEARCH"
	case ModeVisual:
		return "VISUAL"
	}
	return "?"
}

// Session holds the tab list and session-wide flags. At least one tab always
// exists and the active index is always valid.
type Session struct {
	Mode  Mode
	Proxy bool
	Docs  *DocStore

	tabs   []*Tab
	active int
	nextID int
}

// New creates a session with a single blank tab.
func New() *Session {
	s := &Session{Docs: NewDocStore(32)}
	s.tabs = []*Tab{s.newTab("")}
	return s
}

func (s *Session) newTab(url string) *Tab {
	s.nextID++
	return &Tab{ID: s.nextID, URL: url, LinkCursor: -1}
}

// Active returns the focused tab.
func (s *Session) Active() *Tab {
	return s.tabs[s.active]
}

// ActiveIndex returns the position of the focused tab.
func (s *Session) ActiveIndex() int { return s.active }

// Tabs returns the tabs in order.
func (s *Session) Tabs() []*Tab { return s.tabs }

// OpenTab appends a new tab for the URL (blank when empty) and focuses it.
func (s *Session) OpenTab(url string) *Tab {
	t := s.newTab(url)
	s.tabs = append(s.tabs, t)
	s.active = len(s.tabs) - 1
	return t
}

// CloseTab closes the focused tab. Closing the last remaining tab replaces it
// with a fresh blank one, so the session never has zero tabs.
func (s *Session) CloseTab() {
	s.tabs = append(s.tabs[:s.active], s.tabs[s.active+1:]...)
	if len(s.tabs) == 0 {
		s.tabs = []*Tab{s.newTab("")}
		s.active = 0
		return
	}
	if s.active >= len(s.tabs) {
		s.active = len(s.tabs) - 1
	}
}

// NextTab focuses the next tab, wrapping.
func (s *Session) NextTab() {
	s.active = (s.active + 1) % len(s.tabs)
}

// PrevTab focuses the previous tab, wrapping.
func (s *Session) PrevTab() {
	s.active = (s.active - 1 + len(s.tabs)) % len(s.tabs)
}
