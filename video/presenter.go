// Package video is the presentation context of the emulator: it paces the
// frame loop, hands the core its framebuffer, overlays text and presents.
//
// A Presenter is driven from the emulation goroutine only.
package video

import (
	"fmt"
	"log"
	"time"

	"github.com/user-none/eblitvideo/capture"
	"github.com/user-none/eblitvideo/emucore"
	"github.com/user-none/eblitvideo/glyph"
	"github.com/user-none/eblitvideo/imagecodec"
	"github.com/user-none/eblitvideo/scheduler"
	"github.com/user-none/eblitvideo/surface"
)

const (
	// maxLogMessage is the longest log message kept, in bytes.
	maxLogMessage = 255

	// customLineHeight is the line pitch of DrawCustomString.
	customLineHeight = 9
)

// logOrigin is where the log message is drawn.
var logOrigin = [2]int{16, 16}

// creditOrigins are the positions of the credit lines drawn over the
// menu background.
var creditOrigins = [][2]int{{110, 10}, {90, 22}, {64, 34}}

// Options configures a Presenter.
type Options struct {
	Surface    surface.Config
	Scheduler  scheduler.Config
	FontFiles  []string // Scalable fonts, tried in order
	FontSize   float64
	Background string   // Menu background image or archive
	Credits    []string // Lines drawn over the menu background
	Title      string
}

// DefaultOptions returns a 320x240 display centering a 256x224 frame at
// 60 frames per second with automatic frame skipping.
func DefaultOptions() Options {
	return Options{
		Surface: surface.DefaultConfig(),
		Scheduler: scheduler.Config{
			FrameTime:       scheduler.FrameTimeForFPS(60),
			SkipFrames:      scheduler.AutoFrameSkip,
			TurboSkipFrames: 15,
		},
		FontSize: glyph.DefaultSize,
	}
}

// PreDrawFunc draws underneath a menu frame.
type PreDrawFunc func(p *Presenter)

// Presenter owns the presentation state for one display.
type Presenter struct {
	display surface.Display
	clock   scheduler.Clock
	opts    Options

	surf    *surface.Surface
	glyphs  *glyph.Renderer
	sched   *scheduler.Scheduler
	capture *capture.Buffer

	background imagecodec.Image
	preDraw    PreDrawFunc

	logMsg      string
	logDeadline time.Duration
}

// New creates a presenter. Nothing touches the display until InitDisplay.
func New(display surface.Display, clock scheduler.Clock, opts Options) *Presenter {
	return &Presenter{
		display: display,
		clock:   clock,
		opts:    opts,
		sched:   scheduler.New(clock, opts.Scheduler),
	}
}

// InitDisplay hides the cursor, sets the origin resolution, loads the font
// chain and the menu background, and installs the default pre-draw hook.
func (p *Presenter) InitDisplay() error {
	p.display.ShowCursor(false)
	if p.opts.Title != "" {
		p.display.SetTitle(p.opts.Title)
	}

	surf, err := surface.New(p.display, p.opts.Surface)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	p.surf = surf
	p.capture = capture.New(p.opts.Surface.FrameWidth, p.opts.Surface.FrameHeight)

	p.glyphs = glyph.New(p.opts.FontSize)
	p.glyphs.LoadFonts(p.opts.FontFiles)

	if p.opts.Background != "" {
		p.SetBackground(p.opts.Background)
	}
	p.preDraw = (*Presenter).DrawMenuBackground
	return nil
}

// Deinit releases the fonts and the background image and unlocks the
// surface.
func (p *Presenter) Deinit() error {
	p.background = imagecodec.Image{}
	p.preDraw = nil
	if p.surf != nil {
		p.surf.Unlock()
	}
	if p.glyphs != nil {
		return p.glyphs.Close()
	}
	return nil
}

// SetOriginResolution returns the display to its startup mode.
func (p *Presenter) SetOriginResolution() error {
	cfg := p.opts.Surface
	return p.surf.SetMode(cfg.OriginWidth, cfg.OriginHeight, cfg.Fullscreen)
}

// SetFullscreen switches between the origin resolution and a fullscreen
// mode sized to the current frame.
func (p *Presenter) SetFullscreen(on bool) error {
	p.opts.Surface.Fullscreen = on
	if !on {
		return p.SetOriginResolution()
	}
	w, h := p.surf.FrameSize()
	return p.surf.SetMode((w+7)&^7, (h+7)&^7, true)
}

// Surface returns the presentation surface.
func (p *Presenter) Surface() *surface.Surface {
	return p.surf
}

// Scheduler returns the frame scheduler.
func (p *Presenter) Scheduler() *scheduler.Scheduler {
	return p.sched
}

// BeginFrame runs the frame scheduler, which may sleep, and reports
// whether the coming frame should be rendered.
func (p *Presenter) BeginFrame() bool {
	return p.sched.Decide().Render
}

// Frame returns the core's view of the surface for this frame.
func (p *Presenter) Frame() surface.Framebuffer {
	return p.surf.Frame()
}

// EndFrame overlays the log message, presents, follows the core's frame
// size and relocks for the next frame.
func (p *Presenter) EndFrame(frameWidth, frameHeight int) error {
	if p.logMsg != "" {
		p.glyphs.DrawPixel(p.surf, logOrigin[0], logOrigin[1], p.logMsg, true, true)
		if p.clock.Now() >= p.logDeadline {
			p.logMsg = ""
		}
	}
	return p.surf.EndFrame(frameWidth, frameHeight)
}

// RunFrame drives core through one scheduled frame.
func (p *Presenter) RunFrame(core emucore.Core) error {
	if s, ok := core.(emucore.Seeker); ok {
		if n := s.PendingSeek(); n > 0 {
			p.sched.Seek(n)
		}
	}

	render := p.BeginFrame()
	var fb surface.Framebuffer
	if render {
		fb = p.Frame()
	}
	core.RunFrame(render, fb)
	if !render {
		return nil
	}
	w, h := core.FrameSize()
	return p.EndFrame(w, h)
}

// SetLogMessage shows msg over the next frames for at least msecs
// milliseconds. Messages longer than 255 bytes are truncated.
func (p *Presenter) SetLogMessage(msg string, msecs int) {
	if len(msg) > maxLogMessage {
		msg = msg[:maxLogMessage]
	}
	p.logMsg = msg
	p.logDeadline = p.clock.Now() + time.Duration(msecs)*time.Millisecond
}

// LogMessage returns the pending log message.
func (p *Presenter) LogMessage() string {
	return p.logMsg
}

// DrawString draws text with the preferred font backend.
func (p *Presenter) DrawString(x, y int, text string, allowWrap, shadow bool) {
	p.glyphs.Draw(p.surf, x, y, text, allowWrap, shadow)
}

// DrawPixelString draws text with the built-in bitmap font.
func (p *Presenter) DrawPixelString(x, y int, text string, allowWrap, shadow bool) {
	p.glyphs.DrawPixel(p.surf, x, y, text, allowWrap, shadow)
}

// DrawCustomString draws shadowed bitmap text linesFromBottom lines above
// the bottom of the surface.
func (p *Presenter) DrawCustomString(text string, linesFromBottom, pixelsFromLeft int, allowWrap bool) {
	y := p.surf.Height() - linesFromBottom*customLineHeight
	p.glyphs.DrawPixel(p.surf, pixelsFromLeft, y, text, allowWrap, true)
}

// SetBackground loads the menu background. A file that cannot be loaded
// leaves no background.
func (p *Presenter) SetBackground(path string) {
	img, err := imagecodec.Load(path)
	if err != nil {
		log.Printf("Warning: background not loaded: %v", err)
	}
	p.background = img
}

// Background returns the loaded menu background.
func (p *Presenter) Background() imagecodec.Image {
	return p.background
}

// SetPreDraw replaces the hook run underneath menu frames. nil disables it.
func (p *Presenter) SetPreDraw(fn PreDrawFunc) {
	p.preDraw = fn
}

// DrawMenuBackground is the default pre-draw hook: the background image at
// the top-left corner with the credit lines over it.
func (p *Presenter) DrawMenuBackground() {
	imagecodec.Draw(p.surf, 0, 0, p.background)
	for i, line := range p.opts.Credits {
		if i >= len(creditOrigins) {
			break
		}
		p.glyphs.Draw(p.surf, creditOrigins[i][0], creditOrigins[i][1], line, false, true)
	}
}

// MenuFrame presents one menu frame: cleared surface, pre-draw hook, then
// lines of bitmap text starting under the credits.
func (p *Presenter) MenuFrame(lines []string) error {
	if err := p.surf.Clear(); err != nil {
		return err
	}
	if p.preDraw != nil {
		p.preDraw(p)
	}
	y := creditOrigins[len(creditOrigins)-1][1] + 2*glyph.LineHeight
	for _, line := range lines {
		p.glyphs.DrawPixel(p.surf, logOrigin[0], y, line, false, true)
		y += glyph.LineHeight
	}
	return p.surf.Flip()
}

// Freeze snapshots the current frame into the capture buffer.
func (p *Presenter) Freeze() error {
	return p.capture.Freeze(p.surf)
}

// Unfreeze releases the capture snapshot.
func (p *Presenter) Unfreeze() {
	p.capture.Unfreeze()
}

// Resume leaves a pause: the snapshot is released, the swap chain is
// cleared at the end of the next frame and the frame schedule starts over,
// so the time spent paused is not run back unthrottled.
func (p *Presenter) Resume() {
	p.capture.Unfreeze()
	p.surf.ClearCache()
	p.sched.Reset()
}

// Frozen reports whether a capture snapshot is held.
func (p *Presenter) Frozen() bool {
	return p.capture.Frozen()
}

// Capture returns the capture buffer.
func (p *Presenter) Capture() *capture.Buffer {
	return p.capture
}

// Screenshot writes the current frame, or the held snapshot, as a
// half-resolution PNG.
func (p *Presenter) Screenshot(path string) error {
	return p.capture.Screenshot(p.surf, path)
}

// ClearCache clears the whole swap chain at the end of the next frame.
func (p *Presenter) ClearCache() {
	p.surf.ClearCache()
}

// Flip presents the surface outside the normal frame loop.
func (p *Presenter) Flip() error {
	return p.surf.Flip()
}

// SetTitle sets the window title.
func (p *Presenter) SetTitle(title string) {
	p.display.SetTitle(title)
}

// SetTurbo switches turbo mode.
func (p *Presenter) SetTurbo(on bool) {
	p.sched.SetTurbo(on)
}

// Seek runs the next frames at full speed.
func (p *Presenter) Seek(frames int) {
	p.sched.Seek(frames)
}
