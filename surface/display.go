package surface

// Display is the platform layer a Surface presents through. Pixel memory
// handed out by Lock is only valid until the matching Unlock, and Flip must
// not be called while locked.
type Display interface {
	// SetVideoMode (re)creates the output at the given size. The previous
	// pixel memory is invalid afterwards.
	SetVideoMode(width, height int, fullscreen bool) error

	// Pitch returns the bytes per row of the current mode, including any
	// padding past the visible width.
	Pitch() int

	// BufferCount returns the depth of the swap chain (2 or 3).
	BufferCount() int

	// Lock grants access to the back buffer: pitch/2 * height packed pixels.
	Lock() ([]uint16, error)

	// Unlock ends pixel access.
	Unlock()

	// Flip presents the back buffer.
	Flip() error

	ShowCursor(show bool)
	SetTitle(title string)
}
