package surface

import "errors"

var (
	errHeadlessLocked = errors.New("headless display is locked")
	errHeadlessNoMode = errors.New("headless display has no video mode")
)

// Mode records a SetVideoMode call.
type Mode struct {
	Width      int
	Height     int
	Fullscreen bool
}

// Headless is an in-memory Display. It enforces the lock discipline and
// keeps a copy of the last flipped buffer, which makes it suitable for
// tests and for running without a window.
type Headless struct {
	Buffers    int // Swap chain depth, 2 when zero
	RowPadding int // Extra bytes per row beyond the visible width

	Modes  []Mode
	Flips  int
	Locks  int
	Clears int // Flips observed with an all-zero back buffer
	Title  string
	Cursor bool

	width  int
	height int
	pitch  int
	back   []uint16
	front  []uint16
	locked bool
}

// NewHeadless creates a headless display with double buffering.
func NewHeadless() *Headless {
	return &Headless{Buffers: 2, Cursor: true}
}

// SetVideoMode implements Display.
func (h *Headless) SetVideoMode(width, height int, fullscreen bool) error {
	if h.locked {
		return errHeadlessLocked
	}
	h.Modes = append(h.Modes, Mode{Width: width, Height: height, Fullscreen: fullscreen})
	h.width = width
	h.height = height
	h.pitch = width*2 + h.RowPadding
	h.back = make([]uint16, h.pitch/2*height)
	h.front = make([]uint16, len(h.back))
	// Fresh video memory is not guaranteed to be clean.
	for i := range h.back {
		h.back[i] = 0xDEAD
	}
	return nil
}

// Pitch implements Display.
func (h *Headless) Pitch() int { return h.pitch }

// BufferCount implements Display.
func (h *Headless) BufferCount() int {
	if h.Buffers == 0 {
		return 2
	}
	return h.Buffers
}

// Lock implements Display.
func (h *Headless) Lock() ([]uint16, error) {
	if h.back == nil {
		return nil, errHeadlessNoMode
	}
	if h.locked {
		return nil, errHeadlessLocked
	}
	h.locked = true
	h.Locks++
	return h.back, nil
}

// Unlock implements Display.
func (h *Headless) Unlock() {
	h.locked = false
}

// Flip implements Display. The back buffer content is kept so that the
// next frame can draw over it, as with a copying flip.
func (h *Headless) Flip() error {
	if h.locked {
		return errHeadlessLocked
	}
	if h.back == nil {
		return errHeadlessNoMode
	}
	copy(h.front, h.back)
	h.Flips++
	zero := true
	for _, p := range h.back {
		if p != 0 {
			zero = false
			break
		}
	}
	if zero {
		h.Clears++
	}
	return nil
}

// ShowCursor implements Display.
func (h *Headless) ShowCursor(show bool) { h.Cursor = show }

// SetTitle implements Display.
func (h *Headless) SetTitle(title string) { h.Title = title }

// IsLocked reports whether the display is currently locked.
func (h *Headless) IsLocked() bool { return h.locked }

// Front returns the last presented buffer.
func (h *Headless) Front() []uint16 { return h.front }

// Back returns the back buffer regardless of lock state, for inspection.
func (h *Headless) Back() []uint16 { return h.back }

