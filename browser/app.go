// Package browser runs the interactive session: one event loop multiplexing
// terminal input, fetch results and download events over a single Session
// value.
package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"skiff/clipboard"
	"skiff/config"
	"skiff/download"
	"skiff/fetch"
	"skiff/lineedit"
	"skiff/markup"
	"skiff/search"
	"skiff/session"
	"skiff/term"
)

// fetchResult carries a completed page load back into the loop. Tab id and
// generation identify which request this answers; a stale generation means a
// newer navigation superseded it.
type fetchResult struct {
	tabID int
	gen   uint64
	url   string
	page  *fetch.Page
	err   error
}

// App wires the collaborators together and owns the event loop.
type App struct {
	cfg      *config.Config
	backend  term.Backend
	client   *fetch.Client
	manager  *download.Manager
	clip     clipboard.Clipboard
	provider search.Provider

	sess          *session.Session
	downloads     *download.List
	showDownloads bool
	taskCursor    int

	editor  *lineedit.Editor
	landing *session.Document

	width, height int
	fetches       chan fetchResult
	status        string
	quit          bool
}

// New assembles an app from its collaborators.
func New(cfg *config.Config, backend term.Backend, client *fetch.Client, manager *download.Manager, clip clipboard.Clipboard) *App {
	provider, err := search.ByName(cfg.Search.DefaultProvider)
	if err != nil {
		provider = search.Default()
	}

	sess := session.New()
	sess.Proxy = cfg.Network.StartWithProxy

	return &App{
		cfg:       cfg,
		backend:   backend,
		client:    client,
		manager:   manager,
		clip:      clip,
		provider:  provider,
		sess:      sess,
		downloads: download.NewList(),
		editor:    lineedit.New(),
		landing:   landingDocument(),
		fetches:   make(chan fetchResult, 8),
	}
}

// Open navigates the active tab to a URL before or during the loop.
func (a *App) Open(rawURL string) {
	tab := a.sess.Active()
	tab.RecordNavigate(rawURL)
	a.startFetch(tab)
}

// Run drives the event loop until quit. All state mutation happens here, on
// this goroutine.
func (a *App) Run() error {
	if err := a.backend.Init(); err != nil {
		return fmt.Errorf("starting terminal: %w", err)
	}
	defer a.backend.Fini()

	a.width, a.height = a.backend.Size()
	events := term.Events(a.backend)
	a.render()

	for !a.quit {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			a.handleEvent(ev)

		case res := <-a.fetches:
			a.handleFetch(res)

		case ev := <-a.manager.Events():
			a.downloads.Apply(ev)
			a.drainDownloadEvents()
		}
		a.render()
	}
	return nil
}

// drainDownloadEvents folds any further buffered download events before the
// next render, so a fast transfer costs one redraw per loop turn rather than
// one per chunk.
func (a *App) drainDownloadEvents() {
	for {
		select {
		case ev := <-a.manager.Events():
			a.downloads.Apply(ev)
		default:
			return
		}
	}
}

// handleEvent is the single dispatch point: resize and mouse are mode
// independent, keys go to the active mode's handler.
func (a *App) handleEvent(ev term.Event) {
	a.status = ""

	switch ev := ev.(type) {
	case term.ResizeEvent:
		a.width, a.height = ev.Width, ev.Height
		a.clampScroll(a.sess.Active())

	case term.MouseEvent:
		a.handleMouse(ev)

	case term.KeyEvent:
		switch a.sess.Mode {
		case session.ModeNormal:
			a.handleNormalKey(ev)
		case session.ModeEdit:
			a.handleEditKey(ev)
		case session.ModeSearch:
			a.handleSearchKey(ev)
		case session.ModeVisual:
			a.handleVisualKey(ev)
		}
	}
}

// navigate commits a navigation on the tab and starts the fetch. History is
// recorded up front so a failed load still lands in the back-stack and can be
// retried or left.
func (a *App) navigate(tab *session.Tab, rawURL string) {
	tab.RecordNavigate(rawURL)
	a.startFetch(tab)
}

// startFetch launches a background page load for the tab's current URL. The
// result is tagged with the tab's new generation; older in-flight fetches for
// this tab become stale.
func (a *App) startFetch(tab *session.Tab) {
	gen := tab.NextGen()
	tab.Loading = true
	url := tab.URL
	proxy := a.sess.Proxy
	tabID := tab.ID

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(),
			time.Duration(a.cfg.Network.BrowseTimeoutSeconds)*time.Second)
		defer cancel()
		page, err := a.client.FetchPage(ctx, url, proxy)
		a.fetches <- fetchResult{tabID: tabID, gen: gen, url: url, page: page, err: err}
	}()
}

// handleFetch folds a completed load into the session. Results for closed
// tabs or superseded generations are dropped without side effects.
func (a *App) handleFetch(res fetchResult) {
	tab := a.findTab(res.tabID)
	if tab == nil || res.gen != tab.Gen() {
		return
	}
	tab.Loading = false

	var doc *session.Document
	if res.err != nil {
		doc = session.ErrorDocument(res.url, res.err)
	} else {
		parsed, err := markup.ParseString(res.page.Body)
		if err != nil {
			doc = session.ErrorDocument(res.url, fmt.Errorf("parsing page: %w", err))
		} else {
			doc = session.NewDocument(res.url, parsed, res.page.Body)
		}
	}
	a.sess.Docs.Put(doc)
	a.clampScroll(tab)
	if tab.Find.Query != "" {
		lines, _ := doc.Layout(a.contentWidth())
		tab.Find.Rescan(lines)
	}
}

func (a *App) findTab(id int) *session.Tab {
	for _, t := range a.sess.Tabs() {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// document returns the page the tab is showing: the arena entry for its URL,
// a loading placeholder, or the landing page for a blank tab.
func (a *App) document(tab *session.Tab) *session.Document {
	if tab.URL == "" {
		return a.landing
	}
	if doc, ok := a.sess.Docs.Get(tab.URL); ok {
		return doc
	}
	if tab.Loading {
		return loadingDocument(tab.URL)
	}
	return session.ErrorDocument(tab.URL, fmt.Errorf("page not loaded"))
}

// goBack steps the tab back, preferring the arena copy and refetching only on
// a miss.
func (a *App) goBack(tab *session.Tab) {
	if _, ok := tab.GoBack(); !ok {
		a.status = "history empty"
		return
	}
	a.afterHistoryMove(tab)
}

func (a *App) goForward(tab *session.Tab) {
	if _, ok := tab.GoForward(); !ok {
		a.status = "no forward history"
		return
	}
	a.afterHistoryMove(tab)
}

func (a *App) afterHistoryMove(tab *session.Tab) {
	if tab.URL == "" {
		return
	}
	if _, ok := a.sess.Docs.Get(tab.URL); ok {
		a.clampScroll(tab)
		return
	}
	a.startFetch(tab)
}

// followLink resolves and opens the link under the cursor. Downloadable
// targets go to the download manager; everything else navigates, in this tab
// or a new one.
func (a *App) followLink(tab *session.Tab, href string, newTab bool) {
	target, err := fetch.Resolve(tab.URL, href)
	if err != nil {
		a.status = fmt.Sprintf("bad link: %v", err)
		return
	}
	if fetch.Downloadable(target) {
		a.manager.Enqueue(target, a.sess.Proxy)
		a.showDownloads = true
		return
	}
	if newTab {
		t := a.sess.OpenTab("")
		a.navigate(t, target)
		return
	}
	a.navigate(tab, target)
}

// contentWidth is the layout width: the terminal width capped by config.
func (a *App) contentWidth() int {
	w := a.width
	if max := a.cfg.Display.MaxContentWidth; max > 0 && w > max {
		w = max
	}
	return w
}

// contentHeight is the rows available for the page, above the status bar.
func (a *App) contentHeight() int {
	h := a.height - 1
	if h < 0 {
		h = 0
	}
	return h
}

// clampScroll keeps the tab's scroll offset within the document.
func (a *App) clampScroll(tab *session.Tab) {
	doc := a.document(tab)
	var n int
	if tab.SourceView {
		n = len(doc.SourceLines(a.contentWidth()))
	} else {
		lines, _ := doc.Layout(a.contentWidth())
		n = len(lines)
	}
	max := n - a.contentHeight()
	if max < 0 {
		max = 0
	}
	if tab.Scroll > max {
		tab.Scroll = max
	}
	if tab.Scroll < 0 {
		tab.Scroll = 0
	}
}

func loadingDocument(url string) *session.Document {
	root := &markup.Node{Type: markup.NodeDocument, Children: []*markup.Node{
		{Type: markup.NodeParagraph, Children: []*markup.Node{
			{Type: markup.NodeText, Text: "Loading " + url + " …"},
		}},
	}}
	return &session.Document{URL: url, Title: "Loading", Tree: root}
}

func landingDocument() *session.Document {
	body := strings.NewReader(landingHTML)
	parsed, err := markup.Parse(body)
	if err != nil {
		// landingHTML is a constant; Parse on well-formed input cannot fail.
		panic(err)
	}
	doc := session.NewDocument("", parsed, landingHTML)
	doc.Title = "skiff"
	return doc
}

const landingHTML = `<html><head><title>skiff</title></head><body>
<h1>skiff</h1>
<p>A keyboard-driven terminal browser.</p>
<p>Press <code>e</code> to enter an address or search, <code>/</code> to find in
page, <code>t</code> for a new tab, <code>o</code> to view downloads and
<code>q</code> to quit.</p>
<ul>
<li><a href="https://html.duckduckgo.com/html/">DuckDuckGo</a></li>
<li><a href="https://search.marginalia.nu/">Marginalia</a></li>
<li><a href="https://lite.cnn.com/">CNN lite</a></li>
<li><a href="https://text.npr.org/">NPR text</a></li>
</ul>
</body></html>`
