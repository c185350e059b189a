// Package find implements in-page text search over laid-out render lines.
package find

import (
	"unicode"

	"skiff/layout"
)

// Match is one occurrence of the query in the render lines. Col and Len are in
// runes.
type Match struct {
	Line int
	Col  int
	Len  int
}

// Scan returns all non-overlapping case-insensitive occurrences of query in
// the lines, ordered by line then column. Matching folds rune by rune over
// the original text, so columns always index the line as rendered even for
// runes whose case pair lives elsewhere in the table. An empty query yields
// no matches.
func Scan(lines []layout.Line, query string) []Match {
	needle := []rune(query)
	if len(needle) == 0 {
		return nil
	}

	var matches []Match
	for i, line := range lines {
		runes := []rune(line.Text())
		for col := 0; col+len(needle) <= len(runes); {
			if foldEqual(runes[col:col+len(needle)], needle) {
				matches = append(matches, Match{Line: i, Col: col, Len: len(needle)})
				col += len(needle)
			} else {
				col++
			}
		}
	}
	return matches
}

func foldEqual(window, needle []rune) bool {
	for i := range needle {
		if window[i] != needle[i] && unicode.ToLower(window[i]) != unicode.ToLower(needle[i]) {
			return false
		}
	}
	return true
}

// Session is the transient per-tab search state: the query being edited, the
// current match list and a cyclic pointer into it.
type Session struct {
	Query   string
	Matches []Match
	Current int
	Active  bool // highlights locked after submit
}

// Update replaces the query and rescans the lines. The pointer resets to the
// first match.
func (s *Session) Update(query string, lines []layout.Line) {
	s.Query = query
	s.Matches = Scan(lines, query)
	s.Current = 0
}

// Rescan recomputes matches for the current query, after a re-layout. The
// pointer is clamped into range.
func (s *Session) Rescan(lines []layout.Line) {
	s.Matches = Scan(lines, s.Query)
	if s.Current >= len(s.Matches) {
		s.Current = 0
	}
}

// Next advances the pointer, wrapping past the last match.
func (s *Session) Next() {
	if len(s.Matches) == 0 {
		return
	}
	s.Current = (s.Current + 1) % len(s.Matches)
}

// Prev moves the pointer back, wrapping past the first match.
func (s *Session) Prev() {
	if len(s.Matches) == 0 {
		return
	}
	s.Current = (s.Current - 1 + len(s.Matches)) % len(s.Matches)
}

// CurrentMatch returns the match under the pointer.
func (s *Session) CurrentMatch() (Match, bool) {
	if len(s.Matches) == 0 {
		return Match{}, false
	}
	return s.Matches[s.Current], true
}

// Clear resets the session to its inactive empty state.
func (s *Session) Clear() {
	*s = Session{}
}
