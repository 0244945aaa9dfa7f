package standalone

import (
	"sync"

	"github.com/user-none/eblitvideo/surface"
)

// SharedFramebuffer holds the last presented frame as RGBA, written by the
// emulation goroutine on every flip and read by Ebiten's Draw() method.
// Uses separate write and read buffers so the emu goroutine can publish a
// new frame while Draw uses the read copy.
type SharedFramebuffer struct {
	mu          sync.Mutex
	writePixels []byte // Written by emu goroutine under lock
	readPixels  []byte // Snapshot copied on Read for safe external use
	width       int
	height      int
}

// NewSharedFramebuffer creates a framebuffer pre-allocated for width x
// height pixels. It grows on demand when a larger frame is published.
func NewSharedFramebuffer(width, height int) *SharedFramebuffer {
	size := width * height * 4
	return &SharedFramebuffer{
		writePixels: make([]byte, size),
		readPixels:  make([]byte, size),
	}
}

// Publish converts a 16-bit buffer with rows stride pixels apart to RGBA.
// Called from the emulation goroutine.
func (sf *SharedFramebuffer) Publish(src []uint16, stride, width, height int) {
	if width <= 0 || height <= 0 || stride < width {
		return
	}
	if n := (height-1)*stride + width; n > len(src) {
		return
	}

	sf.mu.Lock()
	size := width * height * 4
	if size > len(sf.writePixels) {
		sf.writePixels = make([]byte, size)
	}
	dst := sf.writePixels
	i := 0
	for y := 0; y < height; y++ {
		row := src[y*stride : y*stride+width]
		for _, p := range row {
			r, g, b := surface.RGB565(p).Expand()
			dst[i] = r
			dst[i+1] = g
			dst[i+2] = b
			dst[i+3] = 0xFF
			i += 4
		}
	}
	sf.width = width
	sf.height = height
	sf.mu.Unlock()
}

// Read returns a snapshot of the current frame: RGBA pixels with rows
// stride bytes apart, and the frame height.
func (sf *SharedFramebuffer) Read() (pixels []byte, stride, height int) {
	sf.mu.Lock()
	stride = sf.width * 4
	height = sf.height
	n := stride * height
	if n > len(sf.readPixels) {
		sf.readPixels = make([]byte, n)
	}
	copy(sf.readPixels[:n], sf.writePixels[:n])
	pixels = sf.readPixels
	sf.mu.Unlock()
	return
}

// EmuControl manages pause/resume/stop coordination between the Ebiten
// thread and the emulation goroutine, and carries commands that must run
// on the emulation goroutine because they touch the presenter.
type EmuControl struct {
	mu       sync.Mutex
	cond     *sync.Cond
	pauseReq bool
	paused   bool
	stopReq  bool
	commands []func()
	ackCh    chan struct{}
	exitCh   chan struct{}
	exitOnce sync.Once
}

// NewEmuControl creates a new emulation control.
func NewEmuControl() *EmuControl {
	ec := &EmuControl{
		ackCh:  make(chan struct{}, 1),
		exitCh: make(chan struct{}),
	}
	ec.cond = sync.NewCond(&ec.mu)
	return ec
}

// RequestPause asks the emulation goroutine to pause and blocks until it
// acknowledges the pause or exits.
func (ec *EmuControl) RequestPause() {
	ec.mu.Lock()
	if ec.paused || ec.pauseReq || ec.stopReq {
		ec.mu.Unlock()
		return
	}
	ec.pauseReq = true
	ec.mu.Unlock()

	select {
	case <-ec.ackCh:
	case <-ec.exitCh:
	}
}

// RequestResume tells the emulation goroutine to resume.
func (ec *EmuControl) RequestResume() {
	ec.mu.Lock()
	ec.pauseReq = false
	ec.paused = false
	ec.cond.Broadcast()
	ec.mu.Unlock()
}

// Post queues fn to run on the emulation goroutine at its next CheckPause,
// including while paused. Commands run in the order they were posted.
func (ec *EmuControl) Post(fn func()) {
	ec.mu.Lock()
	ec.commands = append(ec.commands, fn)
	ec.cond.Broadcast()
	ec.mu.Unlock()
}

// CheckPause is called by the emulation goroutine between frames. It runs
// queued commands and, when a pause has been requested, acknowledges it
// and waits until resumed or stopped. Returns false if the goroutine
// should exit.
func (ec *EmuControl) CheckPause() bool {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	ec.runCommandsLocked()
	if ec.pauseReq && !ec.stopReq {
		ec.paused = true
		select {
		case ec.ackCh <- struct{}{}:
		default:
		}
		for ec.pauseReq && !ec.stopReq {
			ec.cond.Wait()
			ec.runCommandsLocked()
		}
		ec.paused = false
	}
	return !ec.stopReq
}

// runCommandsLocked drains the command queue with the lock released, so
// commands may call back into the control.
func (ec *EmuControl) runCommandsLocked() {
	for len(ec.commands) > 0 {
		cmds := ec.commands
		ec.commands = nil
		ec.mu.Unlock()
		for _, fn := range cmds {
			fn()
		}
		ec.mu.Lock()
	}
}

// Stop signals the emulation goroutine to exit.
func (ec *EmuControl) Stop() {
	ec.mu.Lock()
	ec.stopReq = true
	// Also clear pause so CheckPause unblocks
	ec.pauseReq = false
	ec.cond.Broadcast()
	ec.mu.Unlock()
}

// Exit is called by the emulation goroutine when it returns. It releases
// any caller blocked in RequestPause.
func (ec *EmuControl) Exit() {
	ec.exitOnce.Do(func() { close(ec.exitCh) })
}

// ShouldRun returns true if the goroutine should continue running.
func (ec *EmuControl) ShouldRun() bool {
	ec.mu.Lock()
	r := !ec.stopReq
	ec.mu.Unlock()
	return r
}

// IsPaused returns true if the emulation goroutine is currently paused.
func (ec *EmuControl) IsPaused() bool {
	ec.mu.Lock()
	p := ec.paused
	ec.mu.Unlock()
	return p
}
