package scheduler

import (
	"testing"
	"time"
)

const testFrameTime = 16667 * time.Microsecond

// fakeClock only moves when told to or when slept on.
type fakeClock struct {
	now    time.Duration
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Duration { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.now += d
}

func (c *fakeClock) totalSlept() time.Duration {
	var total time.Duration
	for _, d := range c.sleeps {
		total += d
	}
	return total
}

func TestDecide_Bootstrap(t *testing.T) {
	clock := &fakeClock{now: 5 * time.Second}
	s := New(clock, Config{FrameTime: testFrameTime, SkipFrames: 1})

	if _, ok := s.Next(); ok {
		t.Fatal("expected no schedule before the first call")
	}

	d := s.Decide()
	if !d.Render {
		t.Fatal("expected first frame to render with SkipFrames=1")
	}
	if d.Sleep != 0 {
		t.Fatalf("expected no sleep on first call, got %v", d.Sleep)
	}

	next, ok := s.Next()
	if !ok {
		t.Fatal("expected schedule after first call")
	}
	want := 5*time.Second + bootstrapSlack + testFrameTime
	if next != want {
		t.Fatalf("next = %v, want %v", next, want)
	}
}

func TestDecide_FixedSkipRatio(t *testing.T) {
	tests := []struct {
		name  string
		limit int
	}{
		{"every frame", 1},
		{"every second frame", 2},
		{"every third frame", 3},
		{"every fifth frame", 5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clock := &fakeClock{}
			s := New(clock, Config{FrameTime: testFrameTime, SkipFrames: tc.limit})

			const calls = 300
			renders := 0
			var prev time.Duration
			for i := 0; i < calls; i++ {
				d := s.Decide()
				if d.Render {
					renders++
				}
				// The emulated frame costs a little real time.
				clock.now += time.Millisecond

				next, _ := s.Next()
				if i > 0 && next-prev != testFrameTime {
					t.Fatalf("call %d: schedule advanced by %v, want %v", i, next-prev, testFrameTime)
				}
				prev = next
			}

			if renders != calls/tc.limit {
				t.Errorf("renders = %d, want %d", renders, calls/tc.limit)
			}
		})
	}
}

func TestDecide_FixedSkipPattern(t *testing.T) {
	clock := &fakeClock{}
	s := New(clock, Config{FrameTime: testFrameTime, SkipFrames: 3})

	want := []bool{false, false, true, false, false, true}
	for i, w := range want {
		d := s.Decide()
		if d.Render != w {
			t.Errorf("call %d: render = %v, want %v", i, d.Render, w)
		}
		if d.Render && s.SkippedFrames() != 0 {
			t.Errorf("call %d: skip counter not reset on render", i)
		}
	}
}

func TestDecide_PacingSleepsUpToSchedule(t *testing.T) {
	clock := &fakeClock{}
	s := New(clock, Config{FrameTime: testFrameTime, SkipFrames: 1})

	for i := 0; i < 60; i++ {
		d := s.Decide()
		if d.Sleep > testFrameTime {
			t.Fatalf("call %d: slept %v, more than one frame time", i, d.Sleep)
		}
	}

	// With free frames the loop runs at the scheduled rate.
	next, _ := s.Next()
	if clock.now+testFrameTime > next {
		t.Fatalf("wall clock %v ran ahead of schedule %v", clock.now, next)
	}
	if next-clock.now > 2*testFrameTime+bootstrapSlack {
		t.Fatalf("schedule %v too far ahead of wall clock %v", next, clock.now)
	}
}

func TestDecide_AutoCaughtUpRendersEveryFrame(t *testing.T) {
	clock := &fakeClock{}
	s := New(clock, Config{FrameTime: testFrameTime, SkipFrames: AutoFrameSkip})

	for i := 0; i < 30; i++ {
		if d := s.Decide(); !d.Render {
			t.Fatalf("call %d: expected render while on schedule", i)
		}
	}
}

func TestDecide_AutoLaggingSkipsUpToTen(t *testing.T) {
	clock := &fakeClock{}
	s := New(clock, Config{FrameTime: testFrameTime, SkipFrames: AutoFrameSkip})
	s.Decide()

	// Fall 100ms behind: below the resync threshold.
	clock.now += 100 * time.Millisecond

	for i := 1; i < autoCatchUpLimit; i++ {
		if d := s.Decide(); d.Render {
			t.Fatalf("call %d: expected skip while lagging", i)
		}
		// Each frame costs more than a frame time, so the lag persists.
		clock.now += 2 * testFrameTime
	}
	if d := s.Decide(); !d.Render {
		t.Fatal("expected render after ten consecutive skips")
	}
	if s.SkippedFrames() != 0 {
		t.Fatalf("skip counter = %d after render, want 0", s.SkippedFrames())
	}
}

func TestDecide_AutoStallResynchronizes(t *testing.T) {
	clock := &fakeClock{}
	s := New(clock, Config{FrameTime: testFrameTime, SkipFrames: AutoFrameSkip})
	s.Decide()
	s.Decide()

	// Simulate a pause of two seconds.
	clock.now += 2 * time.Second
	stallNow := clock.now

	d := s.Decide()
	if d.Render {
		t.Fatal("expected skip on the frame that detects the stall")
	}
	if d.Sleep != 0 {
		t.Fatalf("expected no sleep after stall, got %v", d.Sleep)
	}

	next, _ := s.Next()
	if next != stallNow+testFrameTime {
		t.Fatalf("next = %v, want snapped schedule %v", next, stallNow+testFrameTime)
	}

	// Back on schedule: the following frame renders, no burst of skips.
	if d := s.Decide(); !d.Render {
		t.Fatal("expected render after resynchronization")
	}
}

func TestDecide_LagBelowThresholdIsNotSnapped(t *testing.T) {
	clock := &fakeClock{}
	s := New(clock, Config{FrameTime: testFrameTime, SkipFrames: AutoFrameSkip})
	s.Decide()
	before, _ := s.Next()

	clock.now += 400 * time.Millisecond
	s.Decide()

	next, _ := s.Next()
	if next != before+testFrameTime {
		t.Fatalf("next = %v, want accumulated %v", next, before+testFrameTime)
	}
}

func TestDecide_TurboNeverSleeps(t *testing.T) {
	clock := &fakeClock{}
	s := New(clock, Config{FrameTime: testFrameTime, SkipFrames: 1, TurboSkipFrames: 4})
	s.SetTurbo(true)

	renders := 0
	for i := 0; i < 40; i++ {
		d := s.Decide()
		if d.Sleep != 0 {
			t.Fatalf("call %d: turbo slept %v", i, d.Sleep)
		}
		if d.Render {
			renders++
			if (i+1)%4 != 0 {
				t.Errorf("call %d: unexpected render", i)
			}
		}
	}
	if renders != 10 {
		t.Errorf("renders = %d, want 10", renders)
	}
	if clock.totalSlept() != 0 {
		t.Errorf("clock slept %v in turbo mode", clock.totalSlept())
	}
	if _, ok := s.Next(); ok {
		t.Error("turbo mode should not establish a schedule")
	}
}

func TestDecide_SeekSuppressesTurboRender(t *testing.T) {
	clock := &fakeClock{}
	s := New(clock, Config{FrameTime: testFrameTime, TurboSkipFrames: 1})
	s.SetTurbo(true)
	s.Seek(3)

	want := []bool{false, false, true, true}
	for i, w := range want {
		if d := s.Decide(); d.Render != w {
			t.Errorf("call %d: render = %v, want %v", i, d.Render, w)
		}
	}
	if s.SeekRemaining() != 0 {
		t.Errorf("seek countdown = %d, want 0", s.SeekRemaining())
	}
}

func TestDecide_SeekCountsDownOutsideTurbo(t *testing.T) {
	clock := &fakeClock{}
	s := New(clock, Config{FrameTime: testFrameTime, SkipFrames: 1})
	s.Seek(2)

	s.Decide()
	if s.SeekRemaining() != 1 {
		t.Fatalf("seek countdown = %d, want 1", s.SeekRemaining())
	}
	s.Decide()
	s.Decide()
	if s.SeekRemaining() != 0 {
		t.Fatalf("seek countdown = %d, want 0", s.SeekRemaining())
	}
}

func TestDecide_ExternalPacingIsNoop(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"sound sync", Config{FrameTime: testFrameTime, SkipFrames: 5, SoundSync: true}},
		{"dump streams", Config{FrameTime: testFrameTime, SkipFrames: 5, DumpStreams: true}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clock := &fakeClock{}
			s := New(clock, tc.cfg)
			s.Seek(4)
			for i := 0; i < 10; i++ {
				d := s.Decide()
				if !d.Render || d.Sleep != 0 {
					t.Fatalf("call %d: got %+v, want render without sleep", i, d)
				}
			}
			if _, ok := s.Next(); ok {
				t.Error("external pacing should not establish a schedule")
			}
			if s.SeekRemaining() != 4 {
				t.Errorf("seek countdown = %d, want untouched 4", s.SeekRemaining())
			}
		})
	}
}

func TestReset(t *testing.T) {
	clock := &fakeClock{}
	s := New(clock, Config{FrameTime: testFrameTime, SkipFrames: 3})
	s.Decide()
	s.Reset()

	if _, ok := s.Next(); ok {
		t.Fatal("expected no schedule after Reset")
	}
	if s.SkippedFrames() != 0 {
		t.Fatalf("skip counter = %d after Reset", s.SkippedFrames())
	}
}

func TestFrameTimeForFPS(t *testing.T) {
	tests := []struct {
		fps  int
		want time.Duration
	}{
		{60, 16666666 * time.Nanosecond},
		{50, 20 * time.Millisecond},
		{0, 0},
		{-1, 0},
	}
	for _, tc := range tests {
		if got := FrameTimeForFPS(tc.fps); got != tc.want {
			t.Errorf("FrameTimeForFPS(%d) = %v, want %v", tc.fps, got, tc.want)
		}
	}
}
