// Package lineedit provides the single-line text editor behind the address
// and search prompts.
package lineedit

// Editor is a single-line rune editor with cursor tracking.
type Editor struct {
	text   []rune
	cursor int
}

// New creates an empty editor.
func New() *Editor {
	return &Editor{}
}

// Text returns the current text.
func (e *Editor) Text() string {
	return string(e.text)
}

// Cursor returns the cursor position in runes.
func (e *Editor) Cursor() int {
	return e.cursor
}

// Len returns the text length in runes.
func (e *Editor) Len() int {
	return len(e.text)
}

// Set replaces the text and moves the cursor to the end.
func (e *Editor) Set(text string) {
	e.text = []rune(text)
	e.cursor = len(e.text)
}

// Clear empties the editor.
func (e *Editor) Clear() {
	e.text = e.text[:0]
	e.cursor = 0
}

// Insert places a rune at the cursor.
func (e *Editor) Insert(r rune) {
	e.text = append(e.text, 0)
	copy(e.text[e.cursor+1:], e.text[e.cursor:])
	e.text[e.cursor] = r
	e.cursor++
}

// InsertString places a string at the cursor, used for clipboard paste.
func (e *Editor) InsertString(s string) {
	for _, r := range s {
		if r == '\n' || r == '\r' {
			continue
		}
		e.Insert(r)
	}
}

// Backspace removes the rune before the cursor.
func (e *Editor) Backspace() {
	if e.cursor == 0 {
		return
	}
	e.text = append(e.text[:e.cursor-1], e.text[e.cursor:]...)
	e.cursor--
}

// Delete removes the rune under the cursor.
func (e *Editor) Delete() {
	if e.cursor >= len(e.text) {
		return
	}
	e.text = append(e.text[:e.cursor], e.text[e.cursor+1:]...)
}

// Left moves the cursor one rune left.
func (e *Editor) Left() {
	if e.cursor > 0 {
		e.cursor--
	}
}

// Right moves the cursor one rune right.
func (e *Editor) Right() {
	if e.cursor < len(e.text) {
		e.cursor++
	}
}

// Home moves the cursor to the start of the line.
func (e *Editor) Home() {
	e.cursor = 0
}

// End moves the cursor to the end of the line.
func (e *Editor) End() {
	e.cursor = len(e.text)
}

// KillToStart deletes everything before the cursor.
func (e *Editor) KillToStart() {
	e.text = append(e.text[:0], e.text[e.cursor:]...)
	e.cursor = 0
}
