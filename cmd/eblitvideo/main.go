// Command eblitvideo runs the presentation pipeline in a window with the
// built-in test pattern core.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/user-none/eblitvideo/emucore"
	"github.com/user-none/eblitvideo/glyph"
	"github.com/user-none/eblitvideo/standalone"
	"github.com/user-none/eblitvideo/standalone/storage"
	"github.com/user-none/eblitvideo/video"
)

const (
	appName = "eblitvideo"
	version = "0.1.0"
)

// overrides holds the command line values that replace config fields for
// one run. Only flags given on the command line are applied.
type overrides struct {
	set map[string]bool

	fullscreen   bool
	tripleBuffer bool
	skipFrames   int
	turboSkip    int
	frameTime    int
	fonts        string
	fontSize     int
	background   string
	clipboard    bool
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [options]\n", appName)
		fmt.Fprintf(fs.Output(), "Shows a test pattern through the frame pacing and presentation pipeline.\n")
		fmt.Fprintf(fs.Output(), "Options override the saved configuration for this run only.\n\n")
		fs.PrintDefaults()
	}

	var o overrides
	regionStr := fs.String("region", "ntsc", "video region: ntsc or pal")
	overscan := fs.Int("overscan", 0, "toggle overscan every N frames (0 = never)")
	fs.BoolVar(&o.fullscreen, "fullscreen", false, "start fullscreen")
	fs.BoolVar(&o.tripleBuffer, "triple-buffer", false, "use three buffers in the swap chain")
	fs.IntVar(&o.skipFrames, "skip", storage.AutoSkipFrames, "render 1 in N frames (-1 = auto)")
	fs.IntVar(&o.turboSkip, "turbo-skip", 15, "frames skipped per render in turbo")
	fs.IntVar(&o.frameTime, "frame-time", 0, "frame time in microseconds (0 = region rate)")
	fs.StringVar(&o.fonts, "fonts", "", "'|' separated font files, tried in order")
	fs.IntVar(&o.fontSize, "font-size", 12, "scalable font size in pixels")
	fs.StringVar(&o.background, "background", "", "menu background image or archive")
	fs.BoolVar(&o.clipboard, "clipboard", false, "copy screenshots to the clipboard")
	if err := fs.Parse(args); err != nil {
		return err
	}
	o.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })

	region, err := emucore.ParseRegion(*regionStr)
	if err != nil {
		return err
	}

	storage.Init(appName)
	if err := storage.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to create data directories: %w", err)
	}
	if err := storage.CreateConfigIfMissing(); err != nil {
		log.Printf("Warning: failed to create config: %v", err)
	}
	cfg, err := storage.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	runCfg := *cfg
	o.apply(&runCfg)
	for _, problem := range storage.ValidateConfig(&runCfg) {
		log.Printf("Warning: config %s, using default", problem)
	}
	storage.CorrectConfig(&runCfg)
	if runCfg.Video.SoundSync || runCfg.Video.DumpStreams {
		log.Printf("Warning: frame pacing is disabled by soundSync/dumpStreams")
	}

	core := emucore.NewTestPattern(region)
	core.OverscanEvery = *overscan
	info := core.SystemInfo()

	opts := buildOptions(&runCfg, info, core.Timing())
	opts.Video.Credits = []string{
		appName + " " + version,
		info.Name,
		fmt.Sprintf("%s %d Hz", region, core.Timing().FPS),
	}

	return standalone.Run(core, info, cfg, opts)
}

// apply copies the flags that were given into cfg.
func (o *overrides) apply(cfg *storage.Config) {
	v := &cfg.Video
	for name := range o.set {
		switch name {
		case "fullscreen":
			v.Fullscreen = o.fullscreen
		case "triple-buffer":
			v.TripleBuffer = o.tripleBuffer
		case "skip":
			v.SkipFrames = o.skipFrames
		case "turbo-skip":
			v.TurboSkipFrames = o.turboSkip
		case "frame-time":
			v.FrameTimeMicros = o.frameTime
		case "fonts":
			v.FontFiles = absFontList(o.fonts)
		case "font-size":
			v.FontSize = o.fontSize
		case "background":
			v.Background = absPath(o.background)
		case "clipboard":
			cfg.Screenshot.CopyToClipboard = o.clipboard
		}
	}
}

// absPath makes a command line path absolute so it is not looked up in the
// themes directory.
func absPath(path string) string {
	if path == "" {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

func absFontList(list string) string {
	fonts := glyph.ParseFontList(list)
	for i, f := range fonts {
		if f != glyph.BuiltinMono {
			fonts[i] = absPath(f)
		}
	}
	return strings.Join(fonts, "|")
}

// buildOptions maps a validated config onto the runner options.
func buildOptions(cfg *storage.Config, info emucore.SystemInfo, timing emucore.Timing) standalone.Options {
	opts := video.DefaultOptions()
	opts.Title = appName + " - " + info.Name
	opts.Surface.FrameWidth = info.ScreenWidth
	opts.Surface.Fullscreen = cfg.Video.Fullscreen

	opts.Scheduler.FrameTime = timing.FrameTime()
	if cfg.Video.FrameTimeMicros > 0 {
		opts.Scheduler.FrameTime = time.Duration(cfg.Video.FrameTimeMicros) * time.Microsecond
	}
	opts.Scheduler.SkipFrames = cfg.Video.SkipFrames
	opts.Scheduler.TurboSkipFrames = cfg.Video.TurboSkipFrames
	opts.Scheduler.SoundSync = cfg.Video.SoundSync
	opts.Scheduler.DumpStreams = cfg.Video.DumpStreams

	opts.FontSize = float64(cfg.Video.FontSize)
	for _, f := range glyph.ParseFontList(cfg.Video.FontFiles) {
		if f != glyph.BuiltinMono {
			resolved, err := storage.ResolveAssetPath(f)
			if err != nil {
				log.Printf("Warning: font %s skipped: %v", f, err)
				continue
			}
			f = resolved
		}
		opts.FontFiles = append(opts.FontFiles, f)
	}

	if cfg.Video.Background != "" {
		bg, err := storage.ResolveAssetPath(cfg.Video.Background)
		if err != nil {
			log.Printf("Warning: background skipped: %v", err)
		} else {
			opts.Background = bg
		}
	}

	return standalone.Options{
		Video:           opts,
		TripleBuffer:    cfg.Video.TripleBuffer,
		CopyToClipboard: cfg.Screenshot.CopyToClipboard,
	}
}
