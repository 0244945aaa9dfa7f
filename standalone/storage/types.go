package storage

// Config represents the application configuration stored in config.json
type Config struct {
	Version    int              `json:"version"`
	Video      VideoConfig      `json:"video"`
	Window     WindowConfig     `json:"window"`
	Screenshot ScreenshotConfig `json:"screenshot"`
}

// AutoSkipFrames selects adaptive frame skipping.
const AutoSkipFrames = -1

// VideoConfig contains presentation and frame pacing settings
type VideoConfig struct {
	Fullscreen      bool   `json:"fullscreen"`
	TripleBuffer    bool   `json:"tripleBuffer"`
	SkipFrames      int    `json:"skipFrames"`      // -1 = auto, otherwise render 1 in N
	TurboSkipFrames int    `json:"turboSkipFrames"` // frames skipped per render in turbo
	FrameTimeMicros int    `json:"frameTimeMicros"` // 0 = use the core's timing
	SoundSync       bool   `json:"soundSync"`       // pacing is driven by audio
	DumpStreams     bool   `json:"dumpStreams"`     // pacing is driven by a stream dump
	FontFiles       string `json:"fontFiles"`       // '|' separated, tried in order
	FontSize        int    `json:"fontSize"`
	Background      string `json:"background"` // image or archive, relative to the themes dir
}

// WindowConfig contains window position and size
type WindowConfig struct {
	Width  int  `json:"width"`
	Height int  `json:"height"`
	X      *int `json:"x,omitempty"` // nil = OS decides position
	Y      *int `json:"y,omitempty"`
}

// ScreenshotConfig contains screenshot settings
type ScreenshotConfig struct {
	CopyToClipboard bool `json:"copyToClipboard"`
}

// Validation limits.
const (
	MaxSkipFrames      = 59
	MaxTurboSkipFrames = 200
	MinFrameTimeMicros = 1000
	MaxFrameTimeMicros = 1000000
	MinWindowWidth     = 320
	MinWindowHeight    = 240
)

// FontSizePresets lists the available font size options
var FontSizePresets = []int{8, 10, 12, 14, 16, 18, 20, 24}

// ValidFontSize returns the nearest valid preset font size.
func ValidFontSize(size int) int {
	best := FontSizePresets[0]
	for _, p := range FontSizePresets {
		if abs(p-size) < abs(best-size) {
			best = p
		}
	}
	return best
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// DefaultConfig returns a new Config with default values
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Video: VideoConfig{
			SkipFrames:      AutoSkipFrames,
			TurboSkipFrames: 15,
			FontSize:        12,
		},
		Window: WindowConfig{
			Width:  640,
			Height: 480,
		},
	}
}
