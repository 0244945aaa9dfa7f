// Package emucore defines the contract between an emulation core and the
// presentation pipeline.
package emucore

import "github.com/user-none/eblitvideo/surface"

// Core is the emulation side of the frame loop. It is driven from a single
// goroutine.
type Core interface {
	// RunFrame emulates one frame. When render is false the core may skip
	// its video work and must not touch fb. When render is true, fb is the
	// write-only view at the render origin.
	RunFrame(render bool, fb surface.Framebuffer)

	// FrameSize returns the logical size of the frame just emulated. It may
	// change between frames.
	FrameSize() (width, height int)

	// Timing returns the frame rate for the current region.
	Timing() Timing

	// Close releases any resources held by the core.
	Close()
}

// Seeker is implemented by cores that can request a burst of unpaced
// frames, such as while scrubbing to a save state.
type Seeker interface {
	// PendingSeek returns, and clears, the number of frames to run at full
	// speed.
	PendingSeek() int
}

// SystemInfo describes the emulated display.
type SystemInfo struct {
	Name            string
	ScreenWidth     int
	MaxScreenHeight int
	PixelAspect     float64
}

// AspectRatio returns the display aspect ratio for a height.
func (s SystemInfo) AspectRatio(height int) float64 {
	return DisplayAspectRatio(s.ScreenWidth, height, s.PixelAspect)
}

// DisplayAspectRatio is the frame's width:height scaled by the pixel aspect
// ratio. A zero par is treated as square pixels.
func DisplayAspectRatio(width, height int, par float64) float64 {
	if height <= 0 {
		return 0
	}
	if par <= 0 {
		par = 1
	}
	return float64(width) / float64(height) * par
}
