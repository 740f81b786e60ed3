// Package zynthian talks to the Zynthian UI over OSC: surface events become CUIA and mixer messages,
// and mixer state reported by the UI is fed back into the surface.
package zynthian

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/PatttF/Zynthian-Launchkey-Mini-MK4/logging"
	"github.com/PatttF/Zynthian-Launchkey-Mini-MK4/surface"
)

var oscOutLog, oscInLog *slog.Logger

func init() {
	oscOutLog = logging.Get(logging.OSC_OUT)
	oscInLog = logging.Get(logging.OSC_IN)
}

// Sender is satisfied by *devices.OscDevice.
type Sender interface {
	Send(addr string, args ...any) error
}

// Switch pressed for Select, as on the Zynthian's own select knob.
const selectSwitch = 3

var arrowCuia = map[surface.Direction]string{
	surface.Left:  "ARROW_LEFT",
	surface.Right: "ARROW_RIGHT",
	surface.Up:    "ARROW_UP",
	surface.Down:  "ARROW_DOWN",
}

var presetCuia = map[surface.PresetDirection]string{
	surface.PresetPrevious: "PRESET_PREV",
	surface.PresetNext:     "PRESET_NEXT",
}

func cuia(name string) string {
	return "/cuia/" + name
}

func mixerAddr(channel int, field surface.StripField) string {
	return fmt.Sprintf("/mixer/%d/%s", channel, field)
}

func boolArg(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// Host implements launchkey.Host.
type Host struct {
	out Sender
}

func NewHost(out Sender) *Host {
	return &Host{out: out}
}

func (h *Host) Handle(ev surface.Event) error {
	switch ev := ev.(type) {
	case surface.LevelChanged:
		return h.out.Send(mixerAddr(ev.MixerChannel, surface.FieldLevel), float32(ev.Level)/float32(surface.MaxLevel))
	case surface.SoloToggled:
		return h.out.Send(mixerAddr(ev.MixerChannel, surface.FieldSolo), boolArg(ev.Soloed))
	case surface.MuteToggled:
		return h.out.Send(mixerAddr(ev.MixerChannel, surface.FieldMute), boolArg(ev.Muted))
	case surface.ZynpotTick:
		return h.out.Send(cuia("ZYNPOT"), int32(ev.Pot), int32(ev.Delta))
	case surface.SwitchGesture:
		return h.out.Send(cuia("ZYNSWITCH"), int32(ev.Switch), ev.Class.Code())
	case surface.ArrowPressed:
		return h.out.Send(cuia(arrowCuia[ev.Dir]))
	case surface.PresetNav:
		return h.out.Send(cuia(presetCuia[ev.Dir]))
	case surface.SequenceBank:
		return h.out.Send(cuia("SELECT_BANK"), int32(ev.Bank))
	case surface.Command:
		if ev == surface.Select {
			return h.out.Send(cuia("ZYNSWITCH"), int32(selectSwitch), "S")
		}
		return h.out.Send(cuia(string(ev)))
	default:
		oscOutLog.Debug("Event has no host message", "event", ev.String())
		return nil
	}
}

// levelFromHost converts a normalized host level to the surface's 0-127 range.
func levelFromHost(v float64) int {
	return int(math.Round(v * float64(surface.MaxLevel)))
}
