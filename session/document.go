package session

import (
	"fmt"

	"skiff/layout"
	"skiff/markup"
)

// Document is a parsed page held in the arena. Layout output is cached per
// width so scrolling and searching never re-run the layout engine.
type Document struct {
	URL     string
	Title   string
	Raw     string // original markup, for source view
	Tree    *markup.Node
	IsError bool

	width int
	lines []layout.Line
	links []layout.Link

	srcWidth int
	srcLines []layout.Line
}

// NewDocument wraps a parsed page for the arena.
func NewDocument(url string, doc *markup.Document, raw string) *Document {
	title := doc.Title
	if title == "" {
		title = url
	}
	return &Document{URL: url, Title: title, Raw: raw, Tree: doc.Root}
}

// ErrorDocument builds an in-place page describing a failed load. The tab
// stays usable: the page renders and history still works.
func ErrorDocument(url string, err error) *Document {
	root := &markup.Node{Type: markup.NodeDocument, Children: []*markup.Node{
		{Type: markup.NodeHeading2, Text: "Page failed to load"},
		{Type: markup.NodeParagraph, Children: []*markup.Node{
			{Type: markup.NodeText, Text: fmt.Sprintf("%v", err)},
		}},
		{Type: markup.NodeParagraph, Children: []*markup.Node{
			{Type: markup.NodeText, Text: "Press r to retry or b to go back."},
		}},
	}}
	return &Document{URL: url, Title: "Error", Tree: root, IsError: true}
}

// Layout returns the render lines and link table for the width, re-running
// the layout engine only when the width changed.
func (d *Document) Layout(width int) ([]layout.Line, []layout.Link) {
	if width != d.width || d.lines == nil {
		d.lines, d.links = layout.Layout(d.Tree, width)
		d.width = width
	}
	return d.lines, d.links
}

// SourceLines returns the hard-wrapped raw markup for source view.
func (d *Document) SourceLines(width int) []layout.Line {
	if width != d.srcWidth || d.srcLines == nil {
		d.srcLines = layout.Source(d.Raw, width)
		d.srcWidth = width
	}
	return d.srcLines
}

// DocStore is the document arena: parsed pages keyed by URL, bounded in size.
// Tabs and history entries reference documents by URL only, so two tabs on
// the same page share one entry.
type DocStore struct {
	cap   int
	order []string
	docs  map[string]*Document
}

// NewDocStore creates an arena holding at most cap documents.
func NewDocStore(cap int) *DocStore {
	if cap < 1 {
		cap = 1
	}
	return &DocStore{cap: cap, docs: make(map[string]*Document)}
}

// Get returns the cached document for the URL.
func (s *DocStore) Get(url string) (*Document, bool) {
	d, ok := s.docs[url]
	return d, ok
}

// Put stores a document, evicting the oldest entry when full. Storing an
// existing URL refreshes both the document and its age.
func (s *DocStore) Put(d *Document) {
	if _, ok := s.docs[d.URL]; ok {
		s.touch(d.URL)
		s.docs[d.URL] = d
		return
	}
	for len(s.order) >= s.cap {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.docs, oldest)
	}
	s.order = append(s.order, d.URL)
	s.docs[d.URL] = d
}

func (s *DocStore) touch(url string) {
	for i, u := range s.order {
		if u == url {
			s.order = append(s.order[:i], s.order[i+1:]...)
			s.order = append(s.order, url)
			return
		}
	}
}

// Len returns the number of cached documents.
func (s *DocStore) Len() int { return len(s.docs) }
