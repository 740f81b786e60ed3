package surface

import (
	"fmt"

	"github.com/PatttF/Zynthian-Launchkey-Mini-MK4/gesture"
)

// Event is anything the surface produces for the host, the synth layer or the controller LEDs.
type Event interface {
	String() string
}

// LevelChanged asks the host to set a strip's level.
type LevelChanged struct {
	Strip        Strip
	MixerChannel int
	Level        uint8
}

func (e LevelChanged) String() string {
	return fmt.Sprintf("level %s = %d", e.Strip, e.Level)
}

type SoloToggled struct {
	Strip        Strip
	MixerChannel int
	Soloed       bool
}

func (e SoloToggled) String() string {
	return fmt.Sprintf("solo %s = %t", e.Strip, e.Soloed)
}

type MuteToggled struct {
	Strip        Strip
	MixerChannel int
	Muted        bool
}

func (e MuteToggled) String() string {
	return fmt.Sprintf("mute %s = %t", e.Strip, e.Muted)
}

// ZynpotTick turns one of the host's four virtual rotary encoders.
type ZynpotTick struct {
	Pot   int
	Delta int
}

func (e ZynpotTick) String() string {
	return fmt.Sprintf("zynpot %d %+d", e.Pot, e.Delta)
}

type Direction uint8

const (
	Left Direction = iota
	Right
	Up
	Down
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

type ArrowPressed struct {
	Dir Direction
}

func (e ArrowPressed) String() string {
	return "arrow " + e.Dir.String()
}

type PresetDirection int

const (
	PresetPrevious PresetDirection = -1
	PresetNext     PresetDirection = 1
)

type PresetNav struct {
	Dir PresetDirection
}

func (e PresetNav) String() string {
	if e.Dir == PresetPrevious {
		return "preset previous"
	}
	return "preset next"
}

// Command is a parameterless host command.
type Command string

const (
	Select           Command = "SELECT"
	Back             Command = "BACK"
	Menu             Command = "MENU"
	Preset           Command = "PRESET"
	TogglePlay       Command = "TOGGLE_PLAY"
	ToggleMidiPlay   Command = "TOGGLE_MIDI_PLAY"
	ToggleRecord     Command = "TOGGLE_RECORD"
	ToggleMidiRecord Command = "TOGGLE_MIDI_RECORD"
	Tempo            Command = "TEMPO"
)

func (c Command) String() string {
	return string(c)
}

// SwitchGesture is a classified press of one of the host's switches.
type SwitchGesture struct {
	Switch int
	Class  gesture.Class
	Shift  bool
}

func (e SwitchGesture) String() string {
	return fmt.Sprintf("switch %d %s", e.Switch, e.Class)
}

// RawCC is forwarded unmodified to the synth layer.
type RawCC struct {
	Channel    uint8
	Controller uint8
	Value      uint8
}

func (e RawCC) String() string {
	return fmt.Sprintf("cc ch%d #%d = %d", e.Channel, e.Controller, e.Value)
}

// NotePassthrough forwards a keyboard note to the synth layer.
type NotePassthrough struct {
	Channel  uint8
	Note     uint8
	Velocity uint8
	On       bool
}

func (e NotePassthrough) String() string {
	if e.On {
		return fmt.Sprintf("note on ch%d %d vel %d", e.Channel, e.Note, e.Velocity)
	}
	return fmt.Sprintf("note off ch%d %d", e.Channel, e.Note)
}

// SequenceBank selects a sequencer bank on the host (1-based).
type SequenceBank struct {
	Bank int
}

func (e SequenceBank) String() string {
	return fmt.Sprintf("sequence bank %d", e.Bank)
}

type BankChanged struct {
	Bank Bank
}

func (e BankChanged) String() string {
	return "bank " + e.Bank.String()
}

// LedUpdate sets a pad LED on the controller.
type LedUpdate struct {
	Pad      Pad
	Velocity uint8
}

func (e LedUpdate) String() string {
	return fmt.Sprintf("led %s = %d", e.Pad, e.Velocity)
}

// ButtonLed sets the LED of a CC button on the controller.
type ButtonLed struct {
	Controller uint8
	Value      uint8
}

func (e ButtonLed) String() string {
	return fmt.Sprintf("button led #%d = %d", e.Controller, e.Value)
}
