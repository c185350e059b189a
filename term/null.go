package term

import "skiff/canvas"

// Null is an in-memory backend for tests. Events are fed with Send; painted
// cells accumulate in a canvas that tests inspect.
type Null struct {
	width, height int
	cells         *canvas.Canvas
	events        chan Event
	cursorX       int
	cursorY       int
	cursorShown   bool
}

// NewNull creates a test backend with the given dimensions.
func NewNull(width, height int) *Null {
	return &Null{
		width:  width,
		height: height,
		cells:  canvas.New(width, height),
		events: make(chan Event, 64),
	}
}

func (n *Null) Init() error { return nil }

func (n *Null) Fini() {
	close(n.events)
}

func (n *Null) Size() (int, int) {
	return n.width, n.height
}

func (n *Null) SetCell(x, y int, c canvas.Cell) {
	n.cells.Set(x, y, c.Rune, c.Style)
}

func (n *Null) ShowCursor(x, y int) {
	n.cursorX, n.cursorY, n.cursorShown = x, y, true
}

func (n *Null) HideCursor() {
	n.cursorShown = false
}

func (n *Null) Show() {}

func (n *Null) PollEvent() Event {
	ev, ok := <-n.events
	if !ok {
		return nil
	}
	return ev
}

// Send queues an event for the interaction loop.
func (n *Null) Send(ev Event) {
	n.events <- ev
}

// Resize changes the reported size and queues the resize event.
func (n *Null) Resize(width, height int) {
	n.width, n.height = width, height
	n.cells = canvas.New(width, height)
	n.Send(ResizeEvent{Width: width, Height: height})
}

// Screen returns the painted cells.
func (n *Null) Screen() *canvas.Canvas { return n.cells }

// Cursor reports the cursor position and whether it is visible.
func (n *Null) Cursor() (x, y int, shown bool) {
	return n.cursorX, n.cursorY, n.cursorShown
}
