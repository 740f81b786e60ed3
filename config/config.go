// Package config loads the bridge configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/PatttF/Zynthian-Launchkey-Mini-MK4/gesture"
	"github.com/PatttF/Zynthian-Launchkey-Mini-MK4/logging"
	"github.com/PatttF/Zynthian-Launchkey-Mini-MK4/surface"
)

const DefaultPath = "launchkey.yaml"

type Config struct {
	Midi    Midi    `yaml:"midi"`
	Osc     Osc     `yaml:"osc"`
	Surface Surface `yaml:"surface"`
	Logging Logging `yaml:"logging"`
}

// Midi names ports by their driver names. An empty Synth disables synth output.
type Midi struct {
	In    string `yaml:"in"`
	Out   string `yaml:"out"`
	Synth string `yaml:"synth"`
}

type Osc struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// Listen is where host mixer feedback arrives.
	Listen string `yaml:"listen"`
	// Logging serves runtime log level changes. Empty disables it.
	Logging string `yaml:"logging"`
}

type Surface struct {
	InitialBank     int           `yaml:"initial_bank"`
	Chains          int           `yaml:"chains"`
	Encoder         string        `yaml:"encoder"`
	NavigationSteps string        `yaml:"navigation_steps"`
	SelectDebounce  time.Duration `yaml:"select_debounce"`
	Gesture         Gesture       `yaml:"gesture"`
}

type Gesture struct {
	Bold time.Duration `yaml:"bold"`
	Long time.Duration `yaml:"long"`
}

type Logging struct {
	Levels map[string]string `yaml:"levels"`
}

const (
	StepsSingle       = "single"
	StepsProportional = "proportional"
)

func Default() Config {
	th := gesture.DefaultThresholds()
	return Config{
		Midi: Midi{
			In:  "Launchkey Mini MK4 37 IN 2",
			Out: "Launchkey Mini MK4 37 OUT 2",
		},
		Osc: Osc{
			Host:    "127.0.0.1",
			Port:    1370,
			Listen:  "0.0.0.0:1371",
			Logging: "0.0.0.0:9085",
		},
		Surface: Surface{
			InitialBank:     int(surface.DefaultBank),
			Chains:          surface.MaxChains,
			Encoder:         string(surface.EncoderRelative),
			NavigationSteps: StepsSingle,
			SelectDebounce:  600 * time.Millisecond,
			Gesture:         Gesture{Bold: th.Bold, Long: th.Long},
		},
	}
}

// Load reads path on top of the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	if err := Parse(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML into cfg, keeping fields the document omits, and validates the result.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	return cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error
	if c.Surface.InitialBank < 0 || c.Surface.InitialBank > int(surface.BankPassthrough) {
		errs = append(errs, fmt.Errorf("surface.initial_bank must be 0, 1 or 2, got %d", c.Surface.InitialBank))
	}
	if c.Surface.Chains < 0 || c.Surface.Chains > surface.MaxChains {
		errs = append(errs, fmt.Errorf("surface.chains must be between 0 and %d, got %d", surface.MaxChains, c.Surface.Chains))
	}
	if _, err := surface.ParseEncoderMode(c.Surface.Encoder); err != nil {
		errs = append(errs, fmt.Errorf("surface.encoder: %w", err))
	}
	if c.Surface.NavigationSteps != StepsSingle && c.Surface.NavigationSteps != StepsProportional {
		errs = append(errs, fmt.Errorf("surface.navigation_steps must be %q or %q, got %q", StepsSingle, StepsProportional, c.Surface.NavigationSteps))
	}
	if c.Surface.SelectDebounce < 0 {
		errs = append(errs, fmt.Errorf("surface.select_debounce must not be negative"))
	}
	if g := c.Surface.Gesture; g.Bold <= 0 || g.Bold >= g.Long {
		errs = append(errs, fmt.Errorf("surface.gesture: need 0 < bold < long, got bold=%s long=%s", g.Bold, g.Long))
	}
	if c.Osc.Port <= 0 || c.Osc.Port > 65535 {
		errs = append(errs, fmt.Errorf("osc.port out of range: %d", c.Osc.Port))
	}
	for name, lvl := range c.Logging.Levels {
		if _, err := logging.ParseCategory(name); err != nil {
			errs = append(errs, fmt.Errorf("logging.levels: %w", err))
		}
		if _, err := logging.ParseLevel(lvl); err != nil {
			errs = append(errs, fmt.Errorf("logging.levels: %w", err))
		}
	}
	return errors.Join(errs...)
}

// SurfaceConfig translates the surface section. Call Validate first.
func (c Config) SurfaceConfig() surface.Config {
	return surface.Config{
		InitialBank:            surface.Bank(c.Surface.InitialBank),
		MixerChannels:          surface.DefaultMixerChannels(c.Surface.Chains),
		Encoder:                surface.EncoderMode(c.Surface.Encoder),
		ProportionalNavigation: c.Surface.NavigationSteps == StepsProportional,
		SelectDebounce:         c.Surface.SelectDebounce,
		Gesture:                gesture.Thresholds{Bold: c.Surface.Gesture.Bold, Long: c.Surface.Gesture.Long},
	}
}
