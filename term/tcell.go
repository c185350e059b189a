package term

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"skiff/canvas"
)

// Screen is the tcell-backed terminal.
type Screen struct {
	screen tcell.Screen
}

// NewScreen creates an uninitialised tcell backend.
func NewScreen() *Screen {
	return &Screen{}
}

func (s *Screen) Init() error {
	sc, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := sc.Init(); err != nil {
		return fmt.Errorf("initialising screen: %w", err)
	}
	sc.EnableMouse()
	sc.HideCursor()
	s.screen = sc
	return nil
}

func (s *Screen) Fini() {
	if s.screen != nil {
		s.screen.Fini()
	}
}

func (s *Screen) Size() (int, int) {
	return s.screen.Size()
}

func (s *Screen) SetCell(x, y int, c canvas.Cell) {
	s.screen.SetContent(x, y, c.Rune, nil, toTcell(c.Style))
}

func (s *Screen) ShowCursor(x, y int) {
	s.screen.ShowCursor(x, y)
}

func (s *Screen) HideCursor() {
	s.screen.HideCursor()
}

func (s *Screen) Show() {
	s.screen.Show()
}

// PollEvent blocks for the next input event, translating tcell's event types.
// Unrecognised events are skipped. Returns nil once the screen is finalised.
func (s *Screen) PollEvent() Event {
	for {
		switch ev := s.screen.PollEvent().(type) {
		case *tcell.EventKey:
			if ke, ok := translateKey(ev); ok {
				return ke
			}

		case *tcell.EventMouse:
			x, y := ev.Position()
			ctrl := ev.Modifiers()&tcell.ModCtrl != 0
			switch {
			case ev.Buttons()&tcell.WheelUp != 0:
				return MouseEvent{X: x, Y: y, Button: MouseWheelUp, Ctrl: ctrl}
			case ev.Buttons()&tcell.WheelDown != 0:
				return MouseEvent{X: x, Y: y, Button: MouseWheelDown, Ctrl: ctrl}
			case ev.Buttons()&tcell.Button1 != 0:
				return MouseEvent{X: x, Y: y, Button: MouseLeft, Ctrl: ctrl}
			}

		case *tcell.EventResize:
			w, h := ev.Size()
			s.screen.Sync()
			return ResizeEvent{Width: w, Height: h}

		case nil:
			return nil
		}
	}
}

func translateKey(ev *tcell.EventKey) (KeyEvent, bool) {
	ctrl := ev.Modifiers()&tcell.ModCtrl != 0

	switch ev.Key() {
	case tcell.KeyRune:
		return KeyEvent{Key: KeyRune, Rune: ev.Rune(), Ctrl: ctrl}, true
	case tcell.KeyEnter:
		return KeyEvent{Key: KeyEnter}, true
	case tcell.KeyEscape:
		return KeyEvent{Key: KeyEsc}, true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return KeyEvent{Key: KeyBackspace}, true
	case tcell.KeyDelete:
		return KeyEvent{Key: KeyDelete}, true
	case tcell.KeyLeft:
		return KeyEvent{Key: KeyLeft}, true
	case tcell.KeyRight:
		return KeyEvent{Key: KeyRight}, true
	case tcell.KeyUp:
		return KeyEvent{Key: KeyUp}, true
	case tcell.KeyDown:
		return KeyEvent{Key: KeyDown}, true
	case tcell.KeyHome:
		return KeyEvent{Key: KeyHome}, true
	case tcell.KeyEnd:
		return KeyEvent{Key: KeyEnd}, true
	case tcell.KeyPgUp:
		return KeyEvent{Key: KeyPgUp}, true
	case tcell.KeyPgDn:
		return KeyEvent{Key: KeyPgDn}, true
	case tcell.KeyTab:
		return KeyEvent{Key: KeyTab}, true
	case tcell.KeyCtrlC:
		return KeyEvent{Key: KeyRune, Rune: 'c', Ctrl: true}, true
	case tcell.KeyCtrlU:
		return KeyEvent{Key: KeyRune, Rune: 'u', Ctrl: true}, true
	case tcell.KeyCtrlV:
		return KeyEvent{Key: KeyRune, Rune: 'v', Ctrl: true}, true
	case tcell.KeyCtrlY:
		return KeyEvent{Key: KeyRune, Rune: 'y', Ctrl: true}, true
	case tcell.KeyCtrlA:
		return KeyEvent{Key: KeyHome}, true
	case tcell.KeyCtrlE:
		return KeyEvent{Key: KeyEnd}, true
	}
	return KeyEvent{}, false
}

func toTcell(s canvas.Style) tcell.Style {
	st := tcell.StyleDefault
	if s.Bold {
		st = st.Bold(true)
	}
	if s.Dim {
		st = st.Dim(true)
	}
	if s.Underline {
		st = st.Underline(true)
	}
	if s.Reverse {
		st = st.Reverse(true)
	}
	return st
}
