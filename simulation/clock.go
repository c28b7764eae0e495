package simulation

import "fmt"

// Clock turns absolute frame timestamps into deltas.
type Clock struct {
	last    float64
	started bool
}

// Tick returns the seconds elapsed since the previous tick. The first tick
// returns 0 and a clock that went backwards yields 0.
func (c *Clock) Tick(now float64) float32 {
	if !c.started {
		c.started = true
		c.last = now
		return 0
	}
	dt := now - c.last
	c.last = now
	if dt < 0 {
		return 0
	}
	return float32(dt)
}

// FrameStats counts frames and measures FPS over fixed windows.
type FrameStats struct {
	// Window is the averaging window in seconds.
	Window float64
	FPS    float64
	Frames uint64

	windowStart  float64
	windowFrames int
	started      bool
}

// NewFrameStats returns stats averaged over one second.
func NewFrameStats() *FrameStats {
	return &FrameStats{Window: 1}
}

// Tick records a frame finished at now and reports whether FPS was updated.
func (f *FrameStats) Tick(now float64) bool {
	f.Frames++
	if !f.started {
		f.started = true
		f.windowStart = now
		return false
	}

	f.windowFrames++
	elapsed := now - f.windowStart
	if elapsed < f.Window {
		return false
	}
	f.FPS = float64(f.windowFrames) / elapsed
	f.windowFrames = 0
	f.windowStart = now
	return true
}

// Stats is the per-frame status shown in the overlay.
type Stats struct {
	FPS       float64
	Frames    uint64
	Particles int
	Running   bool
	Backend   string
}

// StatusLine formats the stats as one overlay line.
func (s Stats) StatusLine() string {
	state := "running"
	if !s.Running {
		state = "paused"
	}
	return fmt.Sprintf("FPS: %.1f | Particles: %d | Backend: %s | %s", s.FPS, s.Particles, s.Backend, state)
}
