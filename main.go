package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"particlesim/config"
	"particlesim/core"
	"particlesim/gpu"
	"particlesim/input"
	"particlesim/logging"
	"particlesim/physics"
	"particlesim/rendering/opengl"
	"particlesim/rendering/opengl/shaders"
	"particlesim/simulation"
)

func init() {
	// GLFW and the GL context must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	var (
		configPath   = flag.String("config", config.DefaultPath, "Settings file")
		particles    = flag.Int("particles", 0, "Number of particles")
		backend      = flag.String("backend", "", "Integrator backend (gpu, cpu)")
		vertexSource = flag.String("vertex-source", "", "Vertex source for drawing (alias, copy)")
		workers      = flag.Int("workers", 0, "Worker goroutines for the cpu backend")
		seed         = flag.Int64("seed", 0, "Seed for the initial distribution, 0 for time based")
		width        = flag.Int("width", 0, "Window width")
		height       = flag.Int("height", 0, "Window height")
		logLevel     = flag.String("log-level", "", "Log level (debug, info, warn, error)")
	)
	flag.Parse()

	settings, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load settings: %v\n", err)
		os.Exit(1)
	}

	// Flags given on the command line win over the file, also on reload.
	var overrides []config.Override
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "particles":
			overrides = append(overrides, func(s *config.Settings) { s.Simulation.Particles = *particles })
		case "backend":
			overrides = append(overrides, func(s *config.Settings) { s.Simulation.Backend = *backend })
		case "vertex-source":
			overrides = append(overrides, func(s *config.Settings) { s.Simulation.VertexSource = *vertexSource })
		case "workers":
			overrides = append(overrides, func(s *config.Settings) { s.Simulation.Workers = *workers })
		case "seed":
			overrides = append(overrides, func(s *config.Settings) { s.Simulation.Seed = *seed })
		case "width":
			overrides = append(overrides, func(s *config.Settings) { s.Window.Width = *width })
		case "height":
			overrides = append(overrides, func(s *config.Settings) { s.Window.Height = *height })
		case "log-level":
			overrides = append(overrides, func(s *config.Settings) { s.Logging.Level = *logLevel })
		}
	})
	settings.Apply(overrides...)
	if err := settings.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid settings: %v\n", err)
		os.Exit(2)
	}

	log, err := logging.New(logging.Config{
		Level:       settings.Logging.Level,
		Development: settings.Logging.Development,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	printControls()

	if err := run(settings, *configPath, overrides, log); err != nil {
		log.Fatal("Particle simulator failed", zap.Error(err))
	}
	log.Info("Shut down cleanly")
}

func run(settings config.Settings, configPath string, overrides []config.Override, log *logging.Logger) error {
	seed := settings.Simulation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	store, err := core.NewParticleStore(settings.Simulation.Particles, rand.New(rand.NewSource(seed)))
	if err != nil {
		return fmt.Errorf("initialize particles: %w", err)
	}
	log.Info("Particles initialized",
		zap.Int("particles", store.Len()),
		zap.Int64("seed", seed),
		zap.Int("bytes", store.ByteSize()))

	renderer, err := opengl.NewParticleRenderer(settings.Window, log.Logger)
	if err != nil {
		return err
	}
	defer renderer.Terminate()

	mode, err := gpu.ParseVertexSourceMode(settings.Simulation.VertexSource)
	if err != nil {
		return err
	}
	buffers, err := gpu.NewParticleBuffers(store, mode, log.Logger)
	if err != nil {
		return err
	}
	defer buffers.Release()
	renderer.AttachBuffers(buffers)

	program, err := shaders.CreateIntegratorProgram()
	if err != nil {
		return err
	}
	compute := gpu.NewComputeIntegrator(program, buffers, log.Logger)
	defer compute.Release()

	cpu := physics.NewCPUIntegrator(settings.Simulation.Workers)
	host := gpu.NewHostIntegrator(store, buffers, cpu)
	integrator, err := gpu.NewBackends(settings.Simulation.Backend, compute, host, store, buffers, log.Logger)
	if err != nil {
		return err
	}
	log.Info("Integrator ready",
		zap.String("backend", integrator.Name()),
		zap.Int("cpuWorkers", cpu.Workers()))

	camera := input.NewCamera()
	applyCamera(camera, settings.Camera)
	inputCtx := input.NewContext(camera)
	inputCtx.Debounce = settings.Input.Debounce
	inputCtx.AttractorDistance = settings.Input.AttractorDistance
	controller := input.NewController(inputCtx, opengl.NewGLFWInput(renderer, inputCtx))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var updates <-chan config.Settings
	watcher, err := config.NewWatcher(log.Logger, configPath, settings, overrides...)
	if err != nil {
		log.Warn("Settings hot reload disabled", zap.Error(err))
	} else {
		defer watcher.Stop()
		watcher.Start(ctx)
		updates = watcher.Updates()
	}

	scheduler := simulation.NewScheduler(log.Logger, integrator, renderer, controller, simulation.Options{
		Particles:   store.Len(),
		ShowOverlay: settings.Window.ShowOverlay,
		Updates:     updates,
		Apply: func(s config.Settings) {
			applyCamera(camera, s.Camera)
			inputCtx.Debounce = s.Input.Debounce
			inputCtx.AttractorDistance = s.Input.AttractorDistance
			log.SetLevel(s.Logging.Level)
		},
	})
	return scheduler.Run(ctx)
}

func applyCamera(c *input.Camera, s config.CameraSettings) {
	c.Speed = s.Speed
	c.Sensitivity = s.Sensitivity
	c.Fov = s.Fov
	c.Near = s.Near
	c.Far = s.Far
}

func printControls() {
	title := color.New(color.FgCyan, color.Bold)
	key := color.New(color.FgYellow)

	title.Println("=== Particle Simulator ===")
	fmt.Println("Controls:")
	for _, c := range []struct{ keys, action string }{
		{"Left mouse", "pull particles towards the cursor"},
		{"W/A/S/D", "move"},
		{"Space/Ctrl", "move up/down"},
		{"Shift", "move faster"},
		{"T", "pause/resume"},
		{"Escape", "capture/release the mouse"},
		{"B", "switch GPU/CPU integrator"},
		{"F1", "toggle overlay"},
	} {
		fmt.Printf("  %s: %s\n", key.Sprint(c.keys), c.action)
	}
}
