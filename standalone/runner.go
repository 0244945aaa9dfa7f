// Package standalone runs an emulation core in an Ebiten window. The core
// and the presenter live on a dedicated emulation goroutine; the Ebiten
// thread polls keys, posts commands to that goroutine and scales the last
// presented frame to the window.
package standalone

import (
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/sqweek/dialog"
	"github.com/user-none/eblitvideo/assetloader"
	"github.com/user-none/eblitvideo/emucore"
	"github.com/user-none/eblitvideo/scheduler"
	"github.com/user-none/eblitvideo/standalone/storage"
	"github.com/user-none/eblitvideo/video"
)

// turboMessageMsecs is how long the turbo notice stays on screen.
const turboMessageMsecs = 1000

// runner implements ebiten.Game around a presenter driven on its own
// goroutine.
type runner struct {
	core       emucore.Core
	config     *storage.Config
	presenter  *video.Presenter
	renderer   *FramebufferRenderer
	sharedFB   *SharedFramebuffer
	emuControl *EmuControl
	turbo      *TurboState
	shots      *ScreenshotManager
	state      RunState
	fullscreen bool
	picking    atomic.Bool

	emuDone chan struct{}
	emuErr  error // Set before emuDone is closed

	windowX, windowY   int
	lastWindowedWidth  int
	lastWindowedHeight int
}

// Options configures Run.
type Options struct {
	Video           video.Options
	TripleBuffer    bool
	CopyToClipboard bool
}

// Run shows core in a window until the window is closed, Escape is pressed
// or the emulation goroutine fails. cfg supplies the window geometry;
// window state and fullscreen toggles are written back to it and saved on
// exit.
func Run(core emucore.Core, info emucore.SystemInfo, cfg *storage.Config, opts Options) error {
	ebiten.SetWindowTitle(opts.Video.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSizeLimits(storage.MinWindowWidth, storage.MinWindowHeight, -1, -1)
	ebiten.SetWindowSize(max(cfg.Window.Width, storage.MinWindowWidth), max(cfg.Window.Height, storage.MinWindowHeight))
	if cfg.Window.X != nil && cfg.Window.Y != nil {
		ebiten.SetWindowPosition(*cfg.Window.X, *cfg.Window.Y)
	}
	ebiten.SetTPS(60)

	bufferCount := 2
	if opts.TripleBuffer {
		bufferCount = 3
	}

	surf := opts.Video.Surface
	sharedFB := NewSharedFramebuffer(surf.OriginWidth, surf.OriginHeight)
	display := NewDisplay(ebitenWindow{}, sharedFB, bufferCount)

	r := &runner{
		core:       core,
		config:     cfg,
		presenter:  video.New(display, scheduler.NewSystemClock(), opts.Video),
		renderer:   NewFramebufferRenderer(info.PixelAspect),
		sharedFB:   sharedFB,
		emuControl: NewEmuControl(),
		turbo:      &TurboState{},
		shots:      NewScreenshotManager(opts.CopyToClipboard),
		fullscreen: surf.Fullscreen,
		emuDone:    make(chan struct{}),
	}

	go r.emulationLoop()

	err := ebiten.RunGame(r)

	r.Close()

	return err
}

// emulationLoop owns the presenter and the core.
func (r *runner) emulationLoop() {
	defer close(r.emuDone)
	defer r.emuControl.Exit()

	if err := r.presenter.InitDisplay(); err != nil {
		r.emuErr = err
		return
	}
	defer func() {
		if err := r.presenter.Deinit(); err != nil {
			log.Printf("Warning: failed to release display: %v", err)
		}
	}()

	turbo := false
	for r.emuControl.CheckPause() {
		if on := r.turbo.Read(); on != turbo {
			turbo = on
			r.presenter.SetTurbo(on)
			r.presenter.SetLogMessage(turboMessage(on), turboMessageMsecs)
		}
		if err := r.presenter.RunFrame(r.core); err != nil {
			r.emuErr = fmt.Errorf("failed to run frame: %w", err)
			return
		}
	}
}

// Update implements ebiten.Game.
func (r *runner) Update() error {
	select {
	case <-r.emuDone:
		if r.emuErr != nil {
			return r.emuErr
		}
		return ebiten.Termination
	default:
	}

	r.windowX, r.windowY = ebiten.WindowPosition()

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		r.togglePause()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		r.toggleFullscreen()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		r.emuControl.Post(r.takeScreenshot)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		r.turbo.Toggle()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF9) {
		r.pickBackground()
	}
	return nil
}

// Draw implements ebiten.Game.
func (r *runner) Draw(screen *ebiten.Image) {
	pixels, stride, height := r.sharedFB.Read()
	if height == 0 {
		return
	}
	r.renderer.DrawFramebuffer(screen, pixels, stride, height)
}

// Layout implements ebiten.Game.
func (r *runner) Layout(outsideWidth, outsideHeight int) (int, int) {
	if !ebiten.IsFullscreen() {
		r.lastWindowedWidth = outsideWidth
		r.lastWindowedHeight = outsideHeight
	}
	s := 1.0
	if m := ebiten.Monitor(); m != nil {
		s = m.DeviceScaleFactor()
	}
	return int(float64(outsideWidth) * s), int(float64(outsideHeight) * s)
}

// togglePause freezes the frame under the pause menu, or releases it.
func (r *runner) togglePause() {
	if r.state == StatePaused {
		r.emuControl.Post(r.presenter.Resume)
		r.emuControl.RequestResume()
		r.state = StateRunning
		return
	}
	r.emuControl.RequestPause()
	r.emuControl.Post(r.showPauseMenu)
	r.state = StatePaused
}

// showPauseMenu runs on the emulation goroutine.
func (r *runner) showPauseMenu() {
	if !r.presenter.Frozen() {
		if err := r.presenter.Freeze(); err != nil {
			log.Printf("Warning: failed to freeze frame: %v", err)
		}
	}
	if err := r.presenter.MenuFrame(pauseMenuLines); err != nil {
		log.Printf("Warning: failed to draw pause menu: %v", err)
	}
}

// toggleFullscreen switches the presenter mode and records it in the config.
func (r *runner) toggleFullscreen() {
	r.fullscreen = !r.fullscreen
	r.config.Video.Fullscreen = r.fullscreen
	on := r.fullscreen
	r.emuControl.Post(func() {
		if err := r.presenter.SetFullscreen(on); err != nil {
			log.Printf("Warning: failed to switch fullscreen: %v", err)
		}
		if r.presenter.Frozen() {
			r.showPauseMenu()
		}
	})
}

// takeScreenshot runs on the emulation goroutine.
func (r *runner) takeScreenshot() {
	path, err := r.shots.Take(r.presenter)
	if err != nil {
		log.Printf("Warning: %v", err)
		return
	}
	log.Printf("Screenshot saved to %s", path)
}

// pickBackground asks for a new menu background without blocking the
// Ebiten thread.
func (r *runner) pickBackground() {
	if !r.picking.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer r.picking.Store(false)

		exts := make([]string, 0, len(assetloader.ImageExtensions))
		for _, ext := range assetloader.ImageExtensions {
			exts = append(exts, ext[1:])
		}
		path, err := dialog.File().
			Title("Select Background").
			Filter("Images", exts...).
			Filter("Archives", "zip", "7z", "rar", "gz", "tgz").
			Load()
		if err != nil {
			if !errors.Is(err, dialog.ErrCancelled) {
				log.Printf("Warning: file dialog failed: %v", err)
			}
			return
		}

		r.emuControl.Post(func() {
			r.presenter.SetBackground(path)
			r.config.Video.Background = path
			if r.presenter.Frozen() {
				r.showPauseMenu()
			}
		})
	}()
}

// saveWindowState saves the last windowed size and position to config.
func (r *runner) saveWindowState() {
	if r.lastWindowedWidth == 0 || r.lastWindowedHeight == 0 {
		return
	}
	r.config.Window.Width = r.lastWindowedWidth
	r.config.Window.Height = r.lastWindowedHeight
	x, y := r.windowX, r.windowY
	r.config.Window.X = &x
	r.config.Window.Y = &y

	if err := storage.SaveConfig(r.config); err != nil {
		log.Printf("Warning: failed to save config: %v", err)
	}
}

// Close stops the emulation goroutine and releases the core.
func (r *runner) Close() {
	r.emuControl.Stop()
	<-r.emuDone

	r.core.Close()
	r.saveWindowState()
}
