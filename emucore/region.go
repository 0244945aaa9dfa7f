package emucore

import (
	"fmt"
	"strings"
	"time"

	"github.com/user-none/eblitvideo/scheduler"
)

// Region represents a console video region.
type Region int

const (
	RegionNTSC Region = iota
	RegionPAL
)

// String returns the display name of the region.
func (r Region) String() string {
	switch r {
	case RegionNTSC:
		return "NTSC"
	case RegionPAL:
		return "PAL"
	default:
		return "Unknown"
	}
}

// ParseRegion converts "ntsc" or "pal", in any case, to a Region.
func ParseRegion(s string) (Region, error) {
	switch strings.ToLower(s) {
	case "ntsc":
		return RegionNTSC, nil
	case "pal":
		return RegionPAL, nil
	default:
		return 0, fmt.Errorf("unknown region %q: use ntsc or pal", s)
	}
}

// Timing holds the frame rate and scanline count for the current region.
type Timing struct {
	FPS       int
	Scanlines int
}

// TimingFor returns the standard timing of a region.
func TimingFor(r Region) Timing {
	if r == RegionPAL {
		return Timing{FPS: 50, Scanlines: 312}
	}
	return Timing{FPS: 60, Scanlines: 262}
}

// FrameTime returns the wall-clock length of one frame.
func (t Timing) FrameTime() time.Duration {
	return scheduler.FrameTimeForFPS(t.FPS)
}
