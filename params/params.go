// Package params holds the read-only configuration of a simulation run.
package params

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Params configures one simulation run. It is read-only during a tick.
type Params struct {
	// MaxSectionSize is the number of nodes above which a section tries to
	// split, and above which the validator reports a capacity warning.
	MaxSectionSize int `yaml:"max_section_size"`

	// MinSectionSize is the number of nodes below which a non-root section
	// asks to merge back into its parent.
	MinSectionSize int `yaml:"min_section_size"`

	// SplitBuffer is the number of nodes beyond MinSectionSize that each
	// projected child must hold before a split is allowed.
	SplitBuffer int `yaml:"split_buffer"`

	// AdultAge is the age at which a node counts as an adult and is
	// relocated once to a derived target address.
	AdultAge uint `yaml:"adult_age"`

	// InitialAge is the age assigned to a freshly joined node.
	InitialAge uint `yaml:"initial_age"`

	// Iterations is the number of ticks to simulate.
	Iterations uint64 `yaml:"iterations"`

	// Seed drives the churn generator.
	Seed int64 `yaml:"seed"`

	// JoinsPerTick and DropsPerTick set how many nodes the churn generator
	// adds and removes before each tick.
	JoinsPerTick int `yaml:"joins_per_tick"`
	DropsPerTick int `yaml:"drops_per_tick"`

	// MaxRoundsPerTick caps the fixpoint loop. Zero derives the cap from
	// the current population.
	MaxRoundsPerTick int `yaml:"max_rounds_per_tick"`
}

// Default returns the parameters used when no configuration is given.
func Default() Params {
	return Params{
		MaxSectionSize: 100,
		MinSectionSize: 8,
		SplitBuffer:    3,
		AdultAge:       5,
		InitialAge:     1,
		Iterations:     1000,
		Seed:           1,
		JoinsPerTick:   10,
		DropsPerTick:   3,
	}
}

// Load reads parameters from a YAML file, starting from the defaults.
func Load(path string) (Params, error) {
	p := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("reading params: %w", err)
	}

	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parsing params: %w", err)
	}

	return p, nil
}

// ApplyEnv overlays PREFIXNET_* environment variables onto p. A .env file in
// the working directory is honored when present.
func (p *Params) ApplyEnv() error {
	_ = godotenv.Load()

	intVars := map[string]*int{
		"PREFIXNET_MAX_SECTION_SIZE":    &p.MaxSectionSize,
		"PREFIXNET_MIN_SECTION_SIZE":    &p.MinSectionSize,
		"PREFIXNET_SPLIT_BUFFER":        &p.SplitBuffer,
		"PREFIXNET_JOINS_PER_TICK":      &p.JoinsPerTick,
		"PREFIXNET_DROPS_PER_TICK":      &p.DropsPerTick,
		"PREFIXNET_MAX_ROUNDS_PER_TICK": &p.MaxRoundsPerTick,
	}
	for name, field := range intVars {
		v, ok := os.LookupEnv(name)
		if !ok {
			continue
		}

		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", name, err)
		}

		*field = n
	}

	if v, ok := os.LookupEnv("PREFIXNET_SEED"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parsing PREFIXNET_SEED: %w", err)
		}

		p.Seed = n
	}

	if v, ok := os.LookupEnv("PREFIXNET_ITERATIONS"); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parsing PREFIXNET_ITERATIONS: %w", err)
		}

		p.Iterations = n
	}

	return nil
}

// Validate checks that the parameters describe a runnable simulation.
func (p *Params) Validate() error {
	if p.MinSectionSize < 1 {
		return fmt.Errorf("min_section_size must be at least 1, got %d",
			p.MinSectionSize)
	}

	if p.MaxSectionSize < 2*(p.MinSectionSize+p.SplitBuffer) {
		return fmt.Errorf(
			"max_section_size %d too small for min_section_size %d "+
				"and split_buffer %d",
			p.MaxSectionSize, p.MinSectionSize, p.SplitBuffer)
	}

	if p.SplitBuffer < 0 {
		return fmt.Errorf("split_buffer must not be negative, got %d",
			p.SplitBuffer)
	}

	if p.JoinsPerTick < 0 || p.DropsPerTick < 0 {
		return fmt.Errorf("churn rates must not be negative")
	}

	return nil
}
