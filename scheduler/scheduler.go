// Package scheduler decides, once per emulated frame, whether the frame
// should be rendered or skipped, and throttles the caller so that wall-clock
// time tracks emulated time.
package scheduler

import "time"

// AutoFrameSkip selects automatic frame skipping for Config.SkipFrames.
const AutoFrameSkip = -1

const (
	// lagResync is how far behind schedule a skipping frame must be before
	// the schedule is snapped forward to now. Anything longer is treated as
	// a pause rather than as lag to catch up on.
	lagResync = 500 * time.Millisecond

	// autoCatchUpLimit is the consecutive skip limit in automatic mode
	// while running behind schedule.
	autoCatchUpLimit = 10

	// bootstrapSlack is added to now when there is no known next frame.
	bootstrapSlack = 1000 * time.Microsecond
)

// Clock is the monotonic tick source and sleep primitive the scheduler
// paces against.
type Clock interface {
	// Now returns monotonic time elapsed since an arbitrary fixed origin.
	Now() time.Duration
	// Sleep blocks the calling goroutine for d.
	Sleep(d time.Duration)
}

// Config holds the emulation-speed settings the scheduler reads.
type Config struct {
	FrameTime       time.Duration // Wall-clock time of one emulated frame
	SkipFrames      int           // Fixed render interval, or AutoFrameSkip
	TurboSkipFrames int           // Render interval while in turbo mode
	SoundSync       bool          // Pacing is driven by the audio device
	DumpStreams     bool          // Pacing is irrelevant while dumping
}

// Decision is the outcome of one Decide call.
type Decision struct {
	Render bool          // Whether the core should render this frame
	Sleep  time.Duration // How long Decide blocked to throttle
}

// Scheduler is the adaptive frame timing engine. It is not safe for
// concurrent use; it is driven from the emulation loop only.
type Scheduler struct {
	clock Clock
	cfg   Config

	turbo         bool
	highSpeedSeek int

	next    time.Duration
	started bool

	skippedFrames int // Frames skipped since the last render
	turboSkip     int // Turbo mode counter against TurboSkipFrames
}

// New creates a scheduler reading time from clock.
func New(clock Clock, cfg Config) *Scheduler {
	return &Scheduler{
		clock: clock,
		cfg:   cfg,
	}
}

// SetConfig replaces the speed configuration. The frame schedule is kept.
func (s *Scheduler) SetConfig(cfg Config) {
	s.cfg = cfg
}

// Config returns the current speed configuration.
func (s *Scheduler) Config() Config {
	return s.cfg
}

// SetTurbo enables or disables turbo mode.
func (s *Scheduler) SetTurbo(on bool) {
	s.turbo = on
}

// Turbo reports whether turbo mode is enabled.
func (s *Scheduler) Turbo() bool {
	return s.turbo
}

// Seek requests maximum-throughput rendering for the given number of frames.
func (s *Scheduler) Seek(frames int) {
	if frames < 0 {
		frames = 0
	}
	s.highSpeedSeek = frames
}

// SeekRemaining returns the high-speed seek countdown.
func (s *Scheduler) SeekRemaining() int {
	return s.highSpeedSeek
}

// SkippedFrames returns the number of frames skipped since the last render.
func (s *Scheduler) SkippedFrames() int {
	return s.skippedFrames
}

// Next returns the scheduled time of the next frame and whether a schedule
// has been established yet.
func (s *Scheduler) Next() (time.Duration, bool) {
	return s.next, s.started
}

// Reset forgets the frame schedule and counters. The next Decide call
// bootstraps a fresh schedule.
func (s *Scheduler) Reset() {
	s.next = 0
	s.started = false
	s.skippedFrames = 0
	s.turboSkip = 0
}

// Decide is called once per emulated frame. It reports whether the frame
// should be rendered and may block for up to one frame time to throttle
// the emulation loop.
func (s *Scheduler) Decide() Decision {
	if s.cfg.SoundSync || s.cfg.DumpStreams {
		return Decision{Render: true}
	}

	if s.highSpeedSeek > 0 {
		s.highSpeedSeek--
	}

	if s.turbo {
		return s.decideTurbo()
	}

	now := s.clock.Now()
	if !s.started {
		s.next = now + bootstrapSlack
		s.started = true
	}

	var limit int
	if s.cfg.SkipFrames == AutoFrameSkip {
		if s.next < now {
			limit = autoCatchUpLimit
		} else {
			limit = 1
		}
	} else {
		limit = s.cfg.SkipFrames
	}

	s.skippedFrames++
	render := s.skippedFrames >= limit
	if render {
		s.skippedFrames = 0
	} else if s.next < now && now-s.next >= lagResync {
		s.next = now
	}

	// Leave a full frame time for the caller; sleep only past that.
	var slept time.Duration
	deadline := now + s.cfg.FrameTime
	if s.next > deadline {
		slept = s.next - deadline
		s.clock.Sleep(slept)
	}

	s.next += s.cfg.FrameTime

	return Decision{Render: render, Sleep: slept}
}

func (s *Scheduler) decideTurbo() Decision {
	s.turboSkip++
	if s.turboSkip >= s.cfg.TurboSkipFrames && s.highSpeedSeek == 0 {
		s.turboSkip = 0
		s.skippedFrames = 0
		return Decision{Render: true}
	}
	s.skippedFrames++
	return Decision{Render: false}
}

// SystemClock is a Clock backed by the runtime monotonic clock.
type SystemClock struct {
	origin time.Time
}

// NewSystemClock creates a clock whose origin is the current instant.
func NewSystemClock() *SystemClock {
	return &SystemClock{origin: time.Now()}
}

// Now returns the time elapsed since the clock was created.
func (c *SystemClock) Now() time.Duration {
	return time.Since(c.origin)
}

// Sleep blocks for d.
func (c *SystemClock) Sleep(d time.Duration) {
	time.Sleep(d)
}

// FrameTimeForFPS converts a frame rate to a per-frame duration.
func FrameTimeForFPS(fps int) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Second / time.Duration(fps)
}
