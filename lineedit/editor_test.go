package lineedit

import "testing"

func typeString(e *Editor, s string) {
	for _, r := range s {
		e.Insert(r)
	}
}

func TestInsertAndText(t *testing.T) {
	e := New()
	typeString(e, "hello")
	if e.Text() != "hello" || e.Cursor() != 5 {
		t.Errorf("text = %q cursor = %d", e.Text(), e.Cursor())
	}
}

func TestInsertMidLine(t *testing.T) {
	e := New()
	typeString(e, "held")
	e.Left()
	typeString(e, "lo wor")
	if e.Text() != "hello word" {
		t.Errorf("text = %q", e.Text())
	}
}

func TestBackspaceAndDelete(t *testing.T) {
	e := New()
	e.Set("abc")
	e.Backspace()
	if e.Text() != "ab" {
		t.Errorf("after backspace: %q", e.Text())
	}
	e.Home()
	e.Delete()
	if e.Text() != "b" {
		t.Errorf("after delete: %q", e.Text())
	}

	// At the boundaries both are no-ops.
	e.Home()
	e.Backspace()
	e.End()
	e.Delete()
	if e.Text() != "b" {
		t.Errorf("boundary edits changed text: %q", e.Text())
	}
}

func TestCursorMovementClamps(t *testing.T) {
	e := New()
	e.Set("ab")
	e.Right()
	if e.Cursor() != 2 {
		t.Errorf("cursor ran past end: %d", e.Cursor())
	}
	e.Home()
	e.Left()
	if e.Cursor() != 0 {
		t.Errorf("cursor ran before start: %d", e.Cursor())
	}
}

func TestSetMovesCursorToEnd(t *testing.T) {
	e := New()
	e.Set("https://example.com")
	if e.Cursor() != e.Len() {
		t.Errorf("cursor = %d, want %d", e.Cursor(), e.Len())
	}
}

func TestKillToStart(t *testing.T) {
	e := New()
	e.Set("https://example.com/path")
	for i := 0; i < 5; i++ {
		e.Left()
	}
	e.KillToStart()
	if e.Text() != "/path" || e.Cursor() != 0 {
		t.Errorf("text = %q cursor = %d", e.Text(), e.Cursor())
	}
}

func TestInsertStringStripsNewlines(t *testing.T) {
	e := New()
	e.InsertString("one\ntwo\r")
	if e.Text() != "onetwo" {
		t.Errorf("text = %q", e.Text())
	}
}

func TestUnicode(t *testing.T) {
	e := New()
	typeString(e, "héllo")
	if e.Len() != 5 {
		t.Errorf("rune length = %d", e.Len())
	}
	e.Left()
	e.Left()
	e.Left()
	e.Left()
	e.Delete()
	if e.Text() != "hllo" {
		t.Errorf("text = %q", e.Text())
	}
}
