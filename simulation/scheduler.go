package simulation

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"particlesim/config"
	"particlesim/core"
	"particlesim/input"
)

// Integrator advances the particles. Barrier must order the dispatch
// writes before the draw that follows it.
type Integrator interface {
	Name() string
	Dispatch(frame core.FrameState) error
	Barrier()
}

// Switcher is implemented by integrators that can change backend at
// runtime.
type Switcher interface {
	Toggle() error
}

// Display is the window the frames are presented in.
type Display interface {
	Clear()
	Draw(view, proj mgl32.Mat4)
	DrawOverlay(stats Stats)
	SwapBuffers()
	PollEvents()
	ShouldClose() bool
	Time() float64
	Aspect() float32
}

// Controls turns window input into camera matrices and frame flags.
type Controls interface {
	Matrices(aspect float32) (view, proj mgl32.Mat4)
	Process(now float64, view, proj mgl32.Mat4) input.Sample
}

// Options configures a Scheduler.
type Options struct {
	Particles   int
	ShowOverlay bool

	// Updates delivers reloaded settings; Apply is called with each of them
	// on the frame thread.
	Updates <-chan config.Settings
	Apply   func(config.Settings)
}

// Scheduler runs the frame pipeline on the calling thread.
type Scheduler struct {
	logger     *zap.Logger
	integrator Integrator
	display    Display
	controls   Controls
	opts       Options

	clock       Clock
	stats       *FrameStats
	showOverlay bool
}

// NewScheduler wires the pipeline stages together.
func NewScheduler(logger *zap.Logger, integrator Integrator, display Display, controls Controls, opts Options) *Scheduler {
	return &Scheduler{
		logger:      logger,
		integrator:  integrator,
		display:     display,
		controls:    controls,
		opts:        opts,
		stats:       NewFrameStats(),
		showOverlay: opts.ShowOverlay,
	}
}

// Stats returns the frame counters.
func (s *Scheduler) Stats() *FrameStats {
	return s.stats
}

// Run executes frames until the window closes or ctx is done. The context
// is checked between frames only.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("Starting simulation",
		zap.Int("particles", s.opts.Particles),
		zap.String("backend", s.integrator.Name()))

	for !s.display.ShouldClose() {
		select {
		case <-ctx.Done():
			s.logger.Info("Shutdown requested", zap.Error(ctx.Err()))
			return nil
		default:
		}

		if err := s.Frame(); err != nil {
			return err
		}
	}

	s.logger.Info("Window closed", zap.Uint64("frames", s.stats.Frames))
	return nil
}

// Frame runs one iteration: time, matrices, input, dispatch, barrier,
// clear, draw, overlay, swap, poll.
func (s *Scheduler) Frame() error {
	s.drainUpdates()

	now := s.display.Time()
	dt := s.clock.Tick(now)

	view, proj := s.controls.Matrices(s.display.Aspect())
	sample := s.controls.Process(now, view, proj)
	s.handleToggles(sample)

	frame := core.FrameState{
		DeltaTime:  dt,
		Attractor:  sample.Attractor,
		Active:     sample.Active,
		Running:    sample.Running,
		View:       view,
		Projection: proj,
	}
	if err := s.integrator.Dispatch(frame); err != nil {
		return fmt.Errorf("frame %d dispatch: %w", s.stats.Frames, err)
	}
	s.integrator.Barrier()

	s.display.Clear()
	s.display.Draw(view, proj)
	if s.showOverlay {
		s.display.DrawOverlay(Stats{
			FPS:       s.stats.FPS,
			Frames:    s.stats.Frames,
			Particles: s.opts.Particles,
			Running:   sample.Running,
			Backend:   s.integrator.Name(),
		})
	}
	s.display.SwapBuffers()
	s.display.PollEvents()

	if s.stats.Tick(now) {
		s.logger.Debug("Frame stats",
			zap.Float64("fps", s.stats.FPS),
			zap.Uint64("frames", s.stats.Frames))
	}
	return nil
}

func (s *Scheduler) handleToggles(sample input.Sample) {
	if sample.PauseToggled {
		s.logger.Info("Simulation toggled", zap.Bool("running", sample.Running))
	}

	if sample.CursorToggled {
		s.logger.Info("Cursor capture toggled")
	}

	if sample.ToggleOverlay {
		s.showOverlay = !s.showOverlay
		s.logger.Info("Overlay toggled", zap.Bool("visible", s.showOverlay))
	}

	if sample.ToggleBackend {
		sw, ok := s.integrator.(Switcher)
		if !ok {
			return
		}
		if err := sw.Toggle(); err != nil {
			s.logger.Warn("Backend switch failed", zap.Error(err))
		}
	}
}

func (s *Scheduler) drainUpdates() {
	for {
		select {
		case settings, ok := <-s.opts.Updates:
			if !ok {
				s.opts.Updates = nil
				return
			}
			s.showOverlay = settings.Window.ShowOverlay
			if s.opts.Apply != nil {
				s.opts.Apply(settings)
			}
		default:
			return
		}
	}
}
