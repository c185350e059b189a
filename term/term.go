// Package term abstracts the terminal behind a backend interface so the
// interaction loop can be driven by a real tcell screen or by a test double.
package term

import "skiff/canvas"

// Key identifies a non-rune key press.
type Key int

const (
	KeyRune Key = iota
	KeyEnter
	KeyEsc
	KeyBackspace
	KeyDelete
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyHome
	KeyEnd
	KeyPgUp
	KeyPgDn
	KeyTab
)

// MouseButton identifies which mouse action an event carries.
type MouseButton int

const (
	MouseNone MouseButton = iota
	MouseLeft
	MouseWheelUp
	MouseWheelDown
)

// Event is a terminal input event: key, mouse or resize.
type Event interface{ isEvent() }

// KeyEvent is a key press. Rune is set when Key is KeyRune.
type KeyEvent struct {
	Key  Key
	Rune rune
	Ctrl bool
}

// MouseEvent is a mouse click or wheel movement at a cell position.
type MouseEvent struct {
	X, Y   int
	Button MouseButton
	Ctrl   bool
}

// ResizeEvent reports the new terminal dimensions.
type ResizeEvent struct {
	Width, Height int
}

func (KeyEvent) isEvent()    {}
func (MouseEvent) isEvent()  {}
func (ResizeEvent) isEvent() {}

// Backend is the terminal the browser draws to and reads events from.
type Backend interface {
	Init() error
	Fini()
	Size() (width, height int)
	SetCell(x, y int, c canvas.Cell)
	ShowCursor(x, y int)
	HideCursor()
	Show()
	PollEvent() Event // nil after Fini
}

// Draw paints an entire canvas onto the backend and flushes it.
func Draw(b Backend, c *canvas.Canvas) {
	for y := 0; y < c.Height(); y++ {
		for x := 0; x < c.Width(); x++ {
			b.SetCell(x, y, c.Get(x, y))
		}
	}
	b.Show()
}

// Events pumps backend events into a channel until the backend is closed,
// letting the interaction loop select over input alongside fetch and
// download results.
func Events(b Backend) <-chan Event {
	ch := make(chan Event)
	go func() {
		defer close(ch)
		for {
			ev := b.PollEvent()
			if ev == nil {
				return
			}
			ch <- ev
		}
	}()
	return ch
}
