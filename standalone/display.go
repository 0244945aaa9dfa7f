package standalone

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
)

var (
	errDisplayLocked = errors.New("display is locked")
	errNoVideoMode   = errors.New("display has no video mode")
)

// rowAlign is the byte alignment of every back buffer row.
const rowAlign = 16

// Window is the part of the host window a Display drives.
type Window interface {
	SetFullscreen(fullscreen bool)
	SetCursorVisible(visible bool)
	SetTitle(title string)
}

// ebitenWindow drives the Ebiten window. These calls are safe from the
// emulation goroutine.
type ebitenWindow struct{}

func (ebitenWindow) SetFullscreen(fullscreen bool) { ebiten.SetFullscreen(fullscreen) }

func (ebitenWindow) SetCursorVisible(visible bool) {
	if visible {
		ebiten.SetCursorMode(ebiten.CursorModeVisible)
		return
	}
	ebiten.SetCursorMode(ebiten.CursorModeHidden)
}

func (ebitenWindow) SetTitle(title string) { ebiten.SetWindowTitle(title) }

// Display is a software swap chain of 16-bit buffers. Flip publishes the
// back buffer to a SharedFramebuffer, which the Ebiten thread scales to
// the window, and rotates to the next buffer. The next back buffer starts
// as a copy of the presented one, so reads after a flip see the last
// presented frame.
type Display struct {
	window  Window
	out     *SharedFramebuffer
	count   int
	buffers [][]uint16
	back    int
	width   int
	height  int
	pitch   int
	locked  bool
}

// NewDisplay creates a display publishing to out with a swap chain of
// bufferCount buffers, clamped to 2 or 3.
func NewDisplay(window Window, out *SharedFramebuffer, bufferCount int) *Display {
	return &Display{
		window: window,
		out:    out,
		count:  min(max(bufferCount, 2), 3),
	}
}

// SetVideoMode implements surface.Display.
func (d *Display) SetVideoMode(width, height int, fullscreen bool) error {
	if d.locked {
		return errDisplayLocked
	}
	d.width = width
	d.height = height
	d.pitch = (width*2 + rowAlign - 1) &^ (rowAlign - 1)
	d.buffers = make([][]uint16, d.count)
	for i := range d.buffers {
		d.buffers[i] = make([]uint16, d.pitch/2*height)
	}
	d.back = 0
	d.window.SetFullscreen(fullscreen)
	return nil
}

// Pitch implements surface.Display.
func (d *Display) Pitch() int { return d.pitch }

// BufferCount implements surface.Display.
func (d *Display) BufferCount() int { return d.count }

// Lock implements surface.Display.
func (d *Display) Lock() ([]uint16, error) {
	if d.buffers == nil {
		return nil, errNoVideoMode
	}
	if d.locked {
		return nil, errDisplayLocked
	}
	d.locked = true
	return d.buffers[d.back], nil
}

// Unlock implements surface.Display.
func (d *Display) Unlock() {
	d.locked = false
}

// Flip implements surface.Display.
func (d *Display) Flip() error {
	if d.locked {
		return errDisplayLocked
	}
	if d.buffers == nil {
		return errNoVideoMode
	}
	front := d.buffers[d.back]
	d.out.Publish(front, d.pitch/2, d.width, d.height)
	d.back = (d.back + 1) % len(d.buffers)
	copy(d.buffers[d.back], front)
	return nil
}

// ShowCursor implements surface.Display.
func (d *Display) ShowCursor(show bool) { d.window.SetCursorVisible(show) }

// SetTitle implements surface.Display.
func (d *Display) SetTitle(title string) { d.window.SetTitle(title) }

// Size returns the current mode size.
func (d *Display) Size() (width, height int) { return d.width, d.height }
