package tui

import "github.com/gdamore/tcell/v2"

// NewScreen creates and initializes a terminal screen. The caller must call
// Fini on it when done.
func NewScreen() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}

	// Pasted text arrives as ordinary key events.
	screen.EnablePaste()
	screen.SetCursorStyle(tcell.CursorStyleSteadyBar)
	return screen, nil
}
