package bench

import "fmt"

// Default tuning values.
const (
	DefaultTargetFPS            = 59.0
	DefaultOverloadFPS          = 30.0
	DefaultWindowSize           = 10
	DefaultInitialStep          = 1000
	DefaultSettleDelay          = 2.0
	DefaultMinObservations      = 30
	DefaultHeavyMinObservations = 10
	DefaultReportPath           = "/tmp/performance.test"
)

// Config holds the benchmark tuning. It is embedded in the run configuration
// file and can be overridden from CAPBENCH_* environment variables.
type Config struct {
	// TargetFPS is the rate above which an entity count counts as sustainable.
	TargetFPS float64 `yaml:"target_fps" env:"CAPBENCH_TARGET_FPS"`
	// OverloadFPS is the rate below which the controller backs off.
	OverloadFPS float64 `yaml:"overload_fps" env:"CAPBENCH_OVERLOAD_FPS"`
	WindowSize  int     `yaml:"window_size" env:"CAPBENCH_WINDOW_SIZE"`
	InitialStep int     `yaml:"initial_step" env:"CAPBENCH_INITIAL_STEP"`
	// SettleDelay is the pause in seconds after a population change while a
	// gravity profile is active.
	SettleDelay          float64  `yaml:"settle_delay" env:"CAPBENCH_SETTLE_DELAY"`
	MinObservations      int      `yaml:"min_observations" env:"CAPBENCH_MIN_OBSERVATIONS"`
	HeavyMinObservations int      `yaml:"heavy_min_observations" env:"CAPBENCH_HEAVY_MIN_OBSERVATIONS"`
	ReportPath           string   `yaml:"report_path" env:"CAPBENCH_REPORT_PATH"`
	Profiles             []string `yaml:"profiles" env:"CAPBENCH_PROFILES" envSeparator:","`
}

// DefaultConfig returns the tuning used by the reference benchmark.
func DefaultConfig() Config {
	return Config{
		TargetFPS:            DefaultTargetFPS,
		OverloadFPS:          DefaultOverloadFPS,
		WindowSize:           DefaultWindowSize,
		InitialStep:          DefaultInitialStep,
		SettleDelay:          DefaultSettleDelay,
		MinObservations:      DefaultMinObservations,
		HeavyMinObservations: DefaultHeavyMinObservations,
		ReportPath:           DefaultReportPath,
		Profiles:             append([]string(nil), DefaultProfileOrder...),
	}
}

// Validate checks parameter ranges and profile names.
func (c *Config) Validate() error {
	if c.OverloadFPS <= 0 {
		return fmt.Errorf("overload_fps must be positive, got %f", c.OverloadFPS)
	}
	if c.TargetFPS < c.OverloadFPS {
		return fmt.Errorf("target_fps (%f) must not be below overload_fps (%f)", c.TargetFPS, c.OverloadFPS)
	}
	if c.WindowSize < 1 {
		return fmt.Errorf("window_size must be at least 1, got %d", c.WindowSize)
	}
	if c.InitialStep < 1 {
		return fmt.Errorf("initial_step must be at least 1, got %d", c.InitialStep)
	}
	if c.SettleDelay < 0 {
		return fmt.Errorf("settle_delay must be non-negative, got %f", c.SettleDelay)
	}
	if c.MinObservations < 1 || c.HeavyMinObservations < 1 {
		return fmt.Errorf("min_observations and heavy_min_observations must be at least 1, got %d and %d",
			c.MinObservations, c.HeavyMinObservations)
	}
	if len(c.Profiles) == 0 {
		return fmt.Errorf("at least one profile is required")
	}
	seen := make(map[string]bool, len(c.Profiles))
	for _, name := range c.Profiles {
		if !IsValidProfile(name) {
			return fmt.Errorf("unknown profile %q", name)
		}
		if seen[name] {
			return fmt.Errorf("profile %q listed twice", name)
		}
		seen[name] = true
	}
	return nil
}

// ResolveProfiles returns the configured profiles in run order with the
// convergence thresholds applied.
func (c *Config) ResolveProfiles() ([]Profile, error) {
	profiles := make([]Profile, 0, len(c.Profiles))
	for _, name := range c.Profiles {
		p, err := LookupProfile(name, c.MinObservations, c.HeavyMinObservations)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}
