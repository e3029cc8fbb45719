// Package config provides configuration loading and access for the body engine.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all engine configuration parameters.
type Config struct {
	Genome    GenomeConfig    `yaml:"genome"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Blueprint BlueprintConfig `yaml:"blueprint"`
	Mutation  MutationConfig  `yaml:"mutation"`
	Sim       SimConfig       `yaml:"sim"`
	Logging   LoggingConfig   `yaml:"logging"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// GenomeConfig holds genome budget defaults.
type GenomeConfig struct {
	DefaultMaxMass       float64 `yaml:"default_max_mass"`       // Used when a graph carries no budget
	DefaultNerveCapacity float64 `yaml:"default_nerve_capacity"` // Used when a graph carries no budget
	SafetyMargin         float64 `yaml:"safety_margin"`          // Serialized budgets = max(existing, realized * this)
}

// CatalogConfig holds per-category module tuning, keyed by category name.
type CatalogConfig struct {
	NerveLoad    map[string]float64 `yaml:"nerve_load"`   // Nerve capacity consumed per module
	Streamlining map[string]float64 `yaml:"streamlining"` // Drag multiplier per module
}

// PhysicsConfig holds PhysicsBody derivation constants.
type PhysicsConfig struct {
	MinMass       float64 `yaml:"min_mass"`
	MinVolume     float64 `yaml:"min_volume"`
	MinThrust     float64 `yaml:"min_thrust"`
	DragMin       float64 `yaml:"drag_min"`
	DragMax       float64 `yaml:"drag_max"`
	FrontalWeight float64 `yaml:"frontal_weight"` // Reference area = frontal*this + lateral*lateral_weight
	LateralWeight float64 `yaml:"lateral_weight"`
	WaterDensity  float64 `yaml:"water_density"` // Density at which a body is neutrally buoyant
}

// BlueprintConfig holds starter genome parameters.
type BlueprintConfig struct {
	MaxMass       float64           `yaml:"max_mass"`
	NerveCapacity float64           `yaml:"nerve_capacity"`
	Archetypes    []ArchetypeConfig `yaml:"archetypes"`
}

// ArchetypeConfig defines a starter body plan.
type ArchetypeConfig struct {
	Name            string           `yaml:"name"`
	Head            bool             `yaml:"head"`       // Attach a head (adds a cranial sensor socket)
	Propulsion      string           `yaml:"propulsion"` // Catalog key for the propulsion module
	Limb            string           `yaml:"limb"`       // Catalog key for the symmetric limb pair
	CoreScale       float64          `yaml:"core_scale"`
	LimbScale       float64          `yaml:"limb_scale"`
	PropulsionScale float64          `yaml:"propulsion_scale"`
	SensorWeights   []float64        `yaml:"sensor_weights"` // Weight of attaching 0, 1, 2... sensors
	Spectra         []SpectrumOption `yaml:"spectra"`
}

// SpectrumOption is one weighted sensor configuration.
type SpectrumOption struct {
	Sensor   string   `yaml:"sensor"` // Catalog key
	Spectrum []string `yaml:"spectrum"`
	Weight   float64  `yaml:"weight"`
}

// MutationConfig holds mutation operator parameters.
type MutationConfig struct {
	MaxAttempts    int     `yaml:"max_attempts"`     // Operator attempts before giving up
	ScaleDelta     float64 `yaml:"scale_delta"`      // Max relative size_scale change
	NewModuleScale float64 `yaml:"new_module_scale"` // size_scale of freshly grown modules
	MinScale       float64 `yaml:"min_scale"`
}

// SimConfig holds creature world parameters.
type SimConfig struct {
	DT            float64 `yaml:"dt"`
	Workers       int     `yaml:"workers"`        // Parallel genome builds (0 = GOMAXPROCS)
	GridCellSize  float64 `yaml:"grid_cell_size"` // Spatial grid cell size for mate search
	MaturityAge   float64 `yaml:"maturity_age"`   // Seconds before a creature may breed
	ReproCooldown float64 `yaml:"repro_cooldown"` // Seconds between breedings
	MateSpectrum  string  `yaml:"mate_spectrum"`  // Spectrum mates must sense; empty accepts any sensor
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32           float32        // Sim.DT as float32
	LogLevel       slog.Level     // Parsed Logging.Level
	ArchetypeIndex map[string]int // name -> index into Blueprint.Archetypes
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived calculates values derived from loaded config and fills gaps.
func (c *Config) computeDerived() error {
	c.Derived.DT32 = float32(c.Sim.DT)
	if c.Sim.GridCellSize <= 0 {
		c.Sim.GridCellSize = 64
	}

	if c.Genome.SafetyMargin < 1 {
		c.Genome.SafetyMargin = 1
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug":
		c.Derived.LogLevel = slog.LevelDebug
	case "", "info":
		c.Derived.LogLevel = slog.LevelInfo
	case "warn", "warning":
		c.Derived.LogLevel = slog.LevelWarn
	case "error":
		c.Derived.LogLevel = slog.LevelError
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}

	// Apply defaults to archetypes that don't specify all fields
	for i := range c.Blueprint.Archetypes {
		arch := &c.Blueprint.Archetypes[i]
		if arch.Propulsion == "" {
			arch.Propulsion = "thruster"
		}
		if arch.Limb == "" {
			arch.Limb = "fin"
		}
		if arch.CoreScale == 0 {
			arch.CoreScale = 1
		}
		if arch.LimbScale == 0 {
			arch.LimbScale = 1
		}
		if arch.PropulsionScale == 0 {
			arch.PropulsionScale = 1
		}
		if len(arch.SensorWeights) == 0 {
			arch.SensorWeights = []float64{1}
		}
	}

	// Build archetype index for fast lookup
	c.Derived.ArchetypeIndex = make(map[string]int, len(c.Blueprint.Archetypes))
	for i, arch := range c.Blueprint.Archetypes {
		if _, dup := c.Derived.ArchetypeIndex[arch.Name]; dup {
			return fmt.Errorf("duplicate archetype %q", arch.Name)
		}
		c.Derived.ArchetypeIndex[arch.Name] = i
	}
	return nil
}

// Archetype returns the named archetype.
func (c *Config) Archetype(name string) (*ArchetypeConfig, bool) {
	i, ok := c.Derived.ArchetypeIndex[name]
	if !ok {
		return nil, false
	}
	return &c.Blueprint.Archetypes[i], true
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
