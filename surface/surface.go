// Package surface owns the 16-bit output buffer the emulation core renders
// into, and handles mode changes, centering and presentation.
package surface

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

var (
	// ErrLocked is returned when an operation requires the surface to be unlocked.
	ErrLocked = errors.New("surface is locked")

	// ErrNotLocked is returned when pixel access is attempted outside a lock.
	ErrNotLocked = errors.New("surface is not locked")

	// ErrInvalidMode is returned for non-positive mode dimensions.
	ErrInvalidMode = errors.New("invalid video mode")
)

// Config describes the startup mode and the emulated frame size.
type Config struct {
	OriginWidth  int // Physical size set at startup
	OriginHeight int
	FrameWidth   int // Logical (emulated) frame size
	FrameHeight  int
	Fullscreen   bool // Fullscreen with dynamic sizing to the frame
}

// DefaultConfig returns a 320x240 surface centering a 256x224 frame.
func DefaultConfig() Config {
	return Config{
		OriginWidth:  320,
		OriginHeight: 240,
		FrameWidth:   256,
		FrameHeight:  224,
	}
}

// Framebuffer is the write-only view handed to the emulation core. Pix
// starts at the render origin; rows are Stride pixels apart.
type Framebuffer struct {
	Pix    []uint16
	Stride int
}

// Surface is the presentation buffer. It also implements draw.Image over
// the locked pixel memory so standard image code can composite onto it.
type Surface struct {
	display Display

	width      int
	height     int
	pitch      int
	fullscreen bool

	frameWidth  int
	frameHeight int
	offset      int

	pixels       []uint16
	locked       bool
	clearPending bool
}

// New creates a surface on display and sets the origin resolution. The
// returned surface is locked and ready for the first frame.
func New(display Display, cfg Config) (*Surface, error) {
	if cfg.FrameWidth <= 0 || cfg.FrameHeight <= 0 {
		return nil, fmt.Errorf("%w: frame %dx%d", ErrInvalidMode, cfg.FrameWidth, cfg.FrameHeight)
	}
	s := &Surface{
		display:     display,
		fullscreen:  cfg.Fullscreen,
		frameWidth:  cfg.FrameWidth,
		frameHeight: cfg.FrameHeight,
	}
	if err := s.SetMode(cfg.OriginWidth, cfg.OriginHeight, cfg.Fullscreen); err != nil {
		return nil, err
	}
	return s, nil
}

// roundUp8 rounds v up to the next multiple of 8.
func roundUp8(v int) int {
	return (v + 7) &^ 7
}

// SetMode reinitializes the display at width x height, clears every buffer
// in the swap chain, recomputes the centering offset and leaves the surface
// locked.
func (s *Surface) SetMode(width, height int, fullscreen bool) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidMode, width, height)
	}
	s.Unlock()

	if err := s.setVideoMode(width, height, fullscreen); err != nil {
		return err
	}
	s.clearPending = false
	if err := s.clearSwapChain(); err != nil {
		return err
	}
	return s.Lock()
}

func (s *Surface) setVideoMode(width, height int, fullscreen bool) error {
	if err := s.display.SetVideoMode(width, height, fullscreen); err != nil {
		return fmt.Errorf("failed to set video mode %dx%d: %w", width, height, err)
	}
	s.width = width
	s.height = height
	s.fullscreen = fullscreen
	s.pitch = s.display.Pitch()
	s.updateOffset()
	return nil
}

// updateOffset centers the logical frame, rounded up to a multiple of 8,
// inside the physical surface.
func (s *Surface) updateOffset() {
	w := roundUp8(s.frameWidth)
	h := roundUp8(s.frameHeight)
	s.offset = 0
	if w < s.width {
		s.offset += (s.width - w) / 2
	}
	if h < s.height {
		s.offset += (s.height - h) / 2 * s.Stride()
	}
}

// SetFrameSize changes the logical frame size and recomputes the offset.
func (s *Surface) SetFrameSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: frame %dx%d", ErrInvalidMode, width, height)
	}
	s.frameWidth = width
	s.frameHeight = height
	s.updateOffset()
	return nil
}

// Resize adapts a fullscreen surface to the emulated frame size, rounded
// up to multiples of 8. Windowed surfaces keep their size and only
// re-center the new frame. When the size or the offset changes, a clear of
// the whole swap chain is scheduled for the next FlushClear. The surface
// must be unlocked.
func (s *Surface) Resize(frameWidth, frameHeight int) (bool, error) {
	if s.locked {
		return false, ErrLocked
	}
	if !s.fullscreen {
		if frameWidth == s.frameWidth && frameHeight == s.frameHeight {
			return false, nil
		}
		offset := s.offset
		if err := s.SetFrameSize(frameWidth, frameHeight); err != nil {
			return false, err
		}
		if s.offset != offset {
			s.clearPending = true
		}
		return false, nil
	}
	width := roundUp8(frameWidth)
	height := roundUp8(frameHeight)
	if width <= 0 || height <= 0 {
		return false, fmt.Errorf("%w: %dx%d", ErrInvalidMode, width, height)
	}
	s.frameWidth = frameWidth
	s.frameHeight = frameHeight
	if width == s.width && height == s.height {
		return false, nil
	}

	if err := s.setVideoMode(width, height, s.fullscreen); err != nil {
		return false, err
	}
	s.clearPending = true
	return true, nil
}

// ClearCache schedules a clear of the whole swap chain.
func (s *Surface) ClearCache() {
	s.clearPending = true
}

// ClearPending reports whether a swap-chain clear is scheduled.
func (s *Surface) ClearPending() bool {
	return s.clearPending
}

// FlushClear runs a scheduled swap-chain clear. The surface must be unlocked.
func (s *Surface) FlushClear() error {
	if !s.clearPending {
		return nil
	}
	if s.locked {
		return ErrLocked
	}
	s.clearPending = false
	return s.clearSwapChain()
}

// clearSwapChain zeroes every buffer in the swap chain so no stale frame
// is shown after a mode switch.
func (s *Surface) clearSwapChain() error {
	n := s.display.BufferCount()
	for i := 0; i < n; i++ {
		if i > 0 {
			if err := s.display.Flip(); err != nil {
				return fmt.Errorf("failed to flip: %w", err)
			}
		}
		if err := s.Clear(); err != nil {
			return err
		}
	}
	return nil
}

// Lock begins pixel access.
func (s *Surface) Lock() error {
	if s.locked {
		return ErrLocked
	}
	pixels, err := s.display.Lock()
	if err != nil {
		return fmt.Errorf("failed to lock surface: %w", err)
	}
	s.pixels = pixels
	s.locked = true
	return nil
}

// Unlock ends pixel access. Unlocking an unlocked surface does nothing.
func (s *Surface) Unlock() {
	if !s.locked {
		return
	}
	s.display.Unlock()
	s.pixels = nil
	s.locked = false
}

// Locked reports whether pixel memory is currently accessible.
func (s *Surface) Locked() bool {
	return s.locked
}

// Clear zero-fills the whole buffer, padding included. An unlocked surface
// is locked for the duration of the clear.
func (s *Surface) Clear() error {
	if s.locked {
		clear(s.pixels)
		return nil
	}
	if err := s.Lock(); err != nil {
		return err
	}
	clear(s.pixels)
	s.Unlock()
	return nil
}

// Present flips the back buffer to the screen. The caller must lock again
// before writing the next frame.
func (s *Surface) Present() error {
	if s.locked {
		return ErrLocked
	}
	if err := s.display.Flip(); err != nil {
		return fmt.Errorf("failed to flip: %w", err)
	}
	return nil
}

// EndFrame presents the finished frame, follows the emulated frame size in
// fullscreen mode, runs any pending swap-chain clear and relocks for the
// next frame.
func (s *Surface) EndFrame(frameWidth, frameHeight int) error {
	s.Unlock()
	if err := s.Present(); err != nil {
		return err
	}
	if _, err := s.Resize(frameWidth, frameHeight); err != nil {
		return err
	}
	if err := s.FlushClear(); err != nil {
		return err
	}
	return s.Lock()
}

// Flip presents the current buffer, keeping the caller's lock state.
func (s *Surface) Flip() error {
	wasLocked := s.locked
	s.Unlock()
	if err := s.Present(); err != nil {
		return err
	}
	if wasLocked {
		return s.Lock()
	}
	return nil
}

// Frame returns the core's view of the locked buffer, starting at the
// render origin. It is empty while unlocked.
func (s *Surface) Frame() Framebuffer {
	if !s.locked || s.offset > len(s.pixels) {
		return Framebuffer{}
	}
	return Framebuffer{Pix: s.pixels[s.offset:], Stride: s.Stride()}
}

// Pixels returns the whole locked buffer, or nil while unlocked.
func (s *Surface) Pixels() []uint16 {
	return s.pixels
}

// Width returns the physical width in pixels.
func (s *Surface) Width() int { return s.width }

// Height returns the physical height in pixels.
func (s *Surface) Height() int { return s.height }

// Pitch returns bytes per row.
func (s *Surface) Pitch() int { return s.pitch }

// Stride returns pixels per row.
func (s *Surface) Stride() int { return s.pitch / 2 }

// Offset returns the render origin in pixels from the start of the buffer.
func (s *Surface) Offset() int { return s.offset }

// Fullscreen reports whether dynamic fullscreen sizing is active.
func (s *Surface) Fullscreen() bool { return s.fullscreen }

// FrameSize returns the logical frame size.
func (s *Surface) FrameSize() (int, int) { return s.frameWidth, s.frameHeight }

// Display returns the platform display.
func (s *Surface) Display() Display { return s.display }

// PixelAt returns the packed pixel at x, y, or Black outside the buffer or
// while unlocked.
func (s *Surface) PixelAt(x, y int) RGB565 {
	i, ok := s.index(x, y)
	if !ok {
		return Black
	}
	return RGB565(s.pixels[i])
}

// SetPixel writes a packed pixel. Writes outside the buffer or while
// unlocked are dropped.
func (s *Surface) SetPixel(x, y int, c RGB565) {
	if i, ok := s.index(x, y); ok {
		s.pixels[i] = uint16(c)
	}
}

func (s *Surface) index(x, y int) (int, bool) {
	if !s.locked || x < 0 || y < 0 || x >= s.width || y >= s.height {
		return 0, false
	}
	i := y*s.Stride() + x
	if i >= len(s.pixels) {
		return 0, false
	}
	return i, true
}

// ColorModel implements image.Image.
func (s *Surface) ColorModel() color.Model { return RGB565Model }

// Bounds implements image.Image.
func (s *Surface) Bounds() image.Rectangle { return image.Rect(0, 0, s.width, s.height) }

// At implements image.Image.
func (s *Surface) At(x, y int) color.Color { return s.PixelAt(x, y) }

// Set implements draw.Image.
func (s *Surface) Set(x, y int, c color.Color) {
	s.SetPixel(x, y, RGB565Model.Convert(c).(RGB565))
}
