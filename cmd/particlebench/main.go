package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"

	"particlesim/core"
	"particlesim/logging"
	"particlesim/physics"
)

type result struct {
	particles int
	frames    int
	elapsed   time.Duration
}

func (r result) nsPerParticle() float64 {
	steps := float64(r.particles) * float64(r.frames)
	if steps == 0 {
		return 0
	}
	return float64(r.elapsed.Nanoseconds()) / steps
}

func (r result) framesPerSecond() float64 {
	if r.elapsed <= 0 {
		return 0
	}
	return float64(r.frames) / r.elapsed.Seconds()
}

func main() {
	var (
		counts   = flag.String("counts", "1000,100000,1000000", "Comma separated particle counts")
		frames   = flag.Int("frames", 60, "Frames to integrate per count")
		workers  = flag.Int("workers", 0, "Worker goroutines, 0 for every core")
		seed     = flag.Int64("seed", 1, "Seed for the initial distribution")
		logLevel = flag.String("log-level", "info", "Log level")
	)
	flag.Parse()

	log, err := logging.New(logging.Config{Level: *logLevel, Development: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	sizes, err := parseCounts(*counts)
	if err != nil {
		log.Fatal("Invalid -counts", zap.Error(err))
	}

	if err := radialScenario(); err != nil {
		color.Red("Attraction check FAILED: %v", err)
		os.Exit(1)
	}
	color.Green("Attraction check passed")

	integrator := physics.NewCPUIntegrator(*workers)
	log.Info("Benchmarking CPU integrator",
		zap.Ints("counts", sizes),
		zap.Int("frames", *frames),
		zap.Int("workers", integrator.Workers()))

	table := tablewriter.NewWriter(os.Stdout)
	if err := table.Append([]string{"Particles", "Frames", "Total", "ns/particle", "Frames/s"}); err != nil {
		log.Fatal("Failed to build table", zap.Error(err))
	}
	for _, n := range sizes {
		r, err := benchmark(integrator, n, *frames, *seed)
		if err != nil {
			log.Fatal("Benchmark failed", zap.Int("particles", n), zap.Error(err))
		}
		log.Debug("Benchmark finished", zap.Int("particles", n), zap.Duration("elapsed", r.elapsed))

		row := []string{
			strconv.Itoa(r.particles),
			strconv.Itoa(r.frames),
			r.elapsed.Round(time.Microsecond).String(),
			fmt.Sprintf("%.2f", r.nsPerParticle()),
			fmt.Sprintf("%.1f", r.framesPerSecond()),
		}
		if err := table.Append(row); err != nil {
			log.Fatal("Failed to build table", zap.Error(err))
		}
	}
	if err := table.Render(); err != nil {
		log.Fatal("Failed to render table", zap.Error(err))
	}
}

func parseCounts(s string) ([]int, error) {
	var counts []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("particle count %q: %w", field, err)
		}
		if n < 0 {
			return nil, fmt.Errorf("particle count %d: %w", n, core.ErrNegativeCount)
		}
		counts = append(counts, n)
	}
	if len(counts) == 0 {
		return nil, fmt.Errorf("no particle counts in %q", s)
	}
	return counts, nil
}

// benchmark integrates n particles for frames steps at 60 Hz with the
// attractor engaged at the origin.
func benchmark(integrator *physics.CPUIntegrator, n, frames int, seed int64) (result, error) {
	store, err := core.NewParticleStore(n, rand.New(rand.NewSource(seed)))
	if err != nil {
		return result{}, err
	}
	u := physics.Uniforms{DeltaTime: 1.0 / 60.0, Active: true, Running: true}

	start := time.Now()
	for i := 0; i < frames; i++ {
		if err := integrator.Step(store, u); err != nil {
			return result{}, err
		}
	}
	return result{particles: n, frames: frames, elapsed: time.Since(start)}, nil
}

// radialScenario steps four particles on the axes once toward an attractor
// at the origin and checks each moved strictly inward along its axis.
func radialScenario() error {
	start := []mgl32.Vec4{{1, 0, 0, 1}, {0, 1, 0, 1}, {0, 0, 1, 1}, {-1, 0, 0, 1}}
	store := core.NewEmptyStore(len(start))
	copy(store.Positions, start)

	u := physics.Uniforms{DeltaTime: 0.016, Active: true, Running: true}
	if err := physics.NewCPUIntegrator(1).Step(store, u); err != nil {
		return err
	}

	for i, p := range store.Positions {
		before := start[i].Vec3()
		after := p.Vec3()
		if after.Len() >= before.Len() {
			return fmt.Errorf("particle %d did not move closer: %v -> %v", i, before, after)
		}
		if after.Dot(before) <= 0 {
			return fmt.Errorf("particle %d overshot the attractor: %v -> %v", i, before, after)
		}
		if !after.Normalize().ApproxEqualThreshold(before.Normalize(), 1e-5) {
			return fmt.Errorf("particle %d left its radial line: %v -> %v", i, before, after)
		}
	}
	return nil
}
