package config

import (
	"errors"
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
)

// ErrInvalidSettings is wrapped by every validation failure.
var ErrInvalidSettings = errors.New("invalid settings")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultPath is the settings file looked up next to the binary.
const DefaultPath = "settings.json"

type Settings struct {
	Simulation SimulationSettings `json:"simulation"`
	Window     WindowSettings     `json:"window"`
	Camera     CameraSettings     `json:"camera"`
	Input      InputSettings      `json:"input"`
	Logging    LoggingSettings    `json:"logging"`
}

type SimulationSettings struct {
	Particles int `json:"particles"`
	// Seed of the initial distribution; 0 seeds from the clock.
	Seed int64 `json:"seed"`
	// Backend is "gpu" (compute shader) or "cpu".
	Backend string `json:"backend"`
	// VertexSource is "alias" or "copy".
	VertexSource string `json:"vertexSource"`
	// Workers for the cpu backend; 0 uses every core.
	Workers int `json:"workers"`
}

type WindowSettings struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Title       string `json:"title"`
	VSync       bool   `json:"vsync"`
	ShowOverlay bool   `json:"showOverlay"`
}

type CameraSettings struct {
	Speed       float32 `json:"speed"`
	Sensitivity float32 `json:"sensitivity"`
	Fov         float32 `json:"fov"`
	Near        float32 `json:"near"`
	Far         float32 `json:"far"`
}

type InputSettings struct {
	// Debounce is the minimum time in seconds between two toggles.
	Debounce          float64 `json:"debounce"`
	AttractorDistance float32 `json:"attractorDistance"`
}

type LoggingSettings struct {
	Level       string `json:"level"`
	Development bool   `json:"development"`
}

// Default returns the settings used when no file is present.
func Default() Settings {
	return Settings{
		Simulation: SimulationSettings{
			Particles:    1000000,
			Backend:      "gpu",
			VertexSource: "alias",
		},
		Window: WindowSettings{
			Width:       1920,
			Height:      1080,
			Title:       "Particle Simulator",
			ShowOverlay: true,
		},
		Camera: CameraSettings{
			Speed:       0.5,
			Sensitivity: 0.1,
			Fov:         70,
			Near:        0.1,
			Far:         1000,
		},
		Input: InputSettings{
			Debounce:          0.2,
			AttractorDistance: 25,
		},
		Logging: LoggingSettings{
			Level:       "info",
			Development: true,
		},
	}
}

// Override adjusts loaded settings, such as values given on the command line.
type Override func(*Settings)

// Apply runs the overrides in order.
func (s *Settings) Apply(overrides ...Override) {
	for _, o := range overrides {
		o(s)
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("read %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Validate checks the values that cannot be corrected at runtime.
func (s Settings) Validate() error {
	var errs []error

	if s.Simulation.Particles < 0 {
		errs = append(errs, fmt.Errorf("particles must not be negative, got %d", s.Simulation.Particles))
	}
	switch s.Simulation.Backend {
	case "gpu", "cpu":
	default:
		errs = append(errs, fmt.Errorf("unknown backend %q", s.Simulation.Backend))
	}
	switch s.Simulation.VertexSource {
	case "alias", "copy":
	default:
		errs = append(errs, fmt.Errorf("unknown vertex source %q", s.Simulation.VertexSource))
	}
	if s.Simulation.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", s.Simulation.Workers))
	}
	if s.Window.Width <= 0 || s.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", s.Window.Width, s.Window.Height))
	}
	if s.Camera.Fov <= 0 || s.Camera.Fov >= 180 {
		errs = append(errs, fmt.Errorf("fov must be in (0, 180), got %g", s.Camera.Fov))
	}
	if s.Camera.Near <= 0 || s.Camera.Far <= s.Camera.Near {
		errs = append(errs, fmt.Errorf("clip planes must satisfy 0 < near < far, got %g/%g", s.Camera.Near, s.Camera.Far))
	}
	if s.Input.Debounce < 0 {
		errs = append(errs, fmt.Errorf("debounce must not be negative, got %g", s.Input.Debounce))
	}
	if s.Input.AttractorDistance <= 0 {
		errs = append(errs, fmt.Errorf("attractor distance must be positive, got %g", s.Input.AttractorDistance))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidSettings, errors.Join(errs...))
}

// RestartRequired reports whether moving from s to next changes values that
// are only read at startup.
func (s Settings) RestartRequired(next Settings) bool {
	return s.Simulation != next.Simulation ||
		s.Window.Width != next.Window.Width ||
		s.Window.Height != next.Window.Height ||
		s.Window.Title != next.Window.Title ||
		s.Window.VSync != next.Window.VSync
}
