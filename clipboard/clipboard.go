// Package clipboard copies text to and from the system clipboard by shelling
// out to the platform tool.
package clipboard

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Clipboard abstracts the system clipboard so the interaction loop can be
// tested without one.
type Clipboard interface {
	Copy(text string) error
	Paste() (string, error)
}

// System uses the platform clipboard tool (pbcopy/pbpaste, wl-copy, xclip or
// xsel, whichever is installed).
type System struct{}

func (System) Copy(text string) error {
	name, args, err := copyCommand()
	if err != nil {
		return err
	}
	cmd := exec.Command(name, args...)
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("clipboard copy via %s: %w", name, err)
	}
	return nil
}

func (System) Paste() (string, error) {
	name, args, err := pasteCommand()
	if err != nil {
		return "", err
	}
	out, err := exec.Command(name, args...).Output()
	if err != nil {
		return "", fmt.Errorf("clipboard paste via %s: %w", name, err)
	}
	return string(out), nil
}

func copyCommand() (string, []string, error) {
	if runtime.GOOS == "darwin" {
		return "pbcopy", nil, nil
	}
	for _, c := range []struct {
		name string
		args []string
	}{
		{"wl-copy", nil},
		{"xclip", []string{"-selection", "clipboard"}},
		{"xsel", []string{"--clipboard", "--input"}},
	} {
		if _, err := exec.LookPath(c.name); err == nil {
			return c.name, c.args, nil
		}
	}
	return "", nil, fmt.Errorf("no clipboard tool found (install xclip, xsel or wl-clipboard)")
}

func pasteCommand() (string, []string, error) {
	if runtime.GOOS == "darwin" {
		return "pbpaste", nil, nil
	}
	for _, c := range []struct {
		name string
		args []string
	}{
		{"wl-paste", []string{"--no-newline"}},
		{"xclip", []string{"-selection", "clipboard", "-o"}},
		{"xsel", []string{"--clipboard", "--output"}},
	} {
		if _, err := exec.LookPath(c.name); err == nil {
			return c.name, c.args, nil
		}
	}
	return "", nil, fmt.Errorf("no clipboard tool found (install xclip, xsel or wl-clipboard)")
}

// Memory is an in-process clipboard for tests.
type Memory struct {
	Contents string
}

func (m *Memory) Copy(text string) error {
	m.Contents = text
	return nil
}

func (m *Memory) Paste() (string, error) {
	return m.Contents, nil
}
