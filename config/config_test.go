package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PatttF/Zynthian-Launchkey-Mini-MK4/surface"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "launchkey.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
midi:
  synth: "ZynMidiRouter:main_in"
osc:
  port: 1400
surface:
  initial_bank: 0
  chains: 4
  encoder: absolute
  navigation_steps: proportional
  select_debounce: 0s
  gesture: { bold: 400ms, long: 2s }
logging:
  levels: { midi_in: debug }
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal("Launchkey Mini MK4 37 IN 2", cfg.Midi.In, "unset keys keep defaults")
	assert.Equal("ZynMidiRouter:main_in", cfg.Midi.Synth)
	assert.Equal(1400, cfg.Osc.Port)
	assert.Equal("127.0.0.1", cfg.Osc.Host)
	assert.Equal(map[string]string{"midi_in": "debug"}, cfg.Logging.Levels)

	sc := cfg.SurfaceConfig()
	assert.Equal(surface.BankMixer, sc.InitialBank)
	assert.Equal([]int{0, 1, 2, 3}, sc.MixerChannels)
	assert.Equal(surface.EncoderAbsolute, sc.Encoder)
	assert.True(sc.ProportionalNavigation)
	assert.Zero(sc.SelectDebounce)
	assert.Equal(400*time.Millisecond, sc.Gesture.Bold)
	assert.Equal(2*time.Second, sc.Gesture.Long)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"bank out of range", func(c *Config) { c.Surface.InitialBank = 3 }, "initial_bank"},
		{"negative bank", func(c *Config) { c.Surface.InitialBank = -1 }, "initial_bank"},
		{"too many chains", func(c *Config) { c.Surface.Chains = 8 }, "chains"},
		{"encoder", func(c *Config) { c.Surface.Encoder = "sideways" }, "encoder"},
		{"navigation steps", func(c *Config) { c.Surface.NavigationSteps = "many" }, "navigation_steps"},
		{"bold not below long", func(c *Config) { c.Surface.Gesture.Bold = c.Surface.Gesture.Long }, "gesture"},
		{"negative debounce", func(c *Config) { c.Surface.SelectDebounce = -time.Second }, "select_debounce"},
		{"port", func(c *Config) { c.Osc.Port = 0 }, "osc.port"},
		{"log category", func(c *Config) { c.Logging.Levels = map[string]string{"gui": "info"} }, "gui"},
		{"log level", func(c *Config) { c.Logging.Levels = map[string]string{"app": "loud"} }, "loud"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestParseRejectsBadYAML(t *testing.T) {
	cfg := Default()
	assert.Error(t, Parse([]byte("surface: [1, 2"), &cfg))
	assert.Error(t, Parse([]byte("surface: { select_debounce: soon }"), &cfg))
}
