package surface

import (
	"fmt"
)

// LED velocities understood by the pad LEDs.
const (
	VelocityOff         uint8 = 0
	VelocitySoloed      uint8 = 14  // yellow
	VelocitySoloIdle    uint8 = 118 // dim
	VelocityMuted       uint8 = 5   // red
	VelocityUnmuted     uint8 = 64  // green
	VelocityButtonLit   uint8 = 127
	VelocityButtonUnlit uint8 = 0
)

// Row is a pad row: the top row controls solo, the bottom row mute.
type Row uint8

const (
	RowTop Row = iota
	RowBottom
)

// Pad is one of the 16 pads. Column 7 is the master/solo-off column.
type Pad struct {
	Row    Row
	Column int
}

const masterColumn = NumPads - 1

func (p Pad) String() string {
	if p.Row == RowTop {
		return fmt.Sprintf("top%d", p.Column)
	}
	return fmt.Sprintf("bottom%d", p.Column)
}

// Index numbers pads 0-7 on the top row and 8-15 on the bottom row.
func (p Pad) Index() int {
	return int(p.Row)*NumPads + p.Column
}

// Note returns the MIDI note the pad sends and listens on.
func (p Pad) Note() uint8 {
	if p.Row == RowTop {
		return NotePadTopFirst + uint8(p.Column)
	}
	return NotePadBottomFirst + uint8(p.Column)
}

// PadFromNote is the inverse of Pad.Note.
func PadFromNote(note uint8) (Pad, bool) {
	switch {
	case note >= NotePadTopFirst && note <= NotePadTopLast:
		return Pad{RowTop, int(note - NotePadTopFirst)}, true
	case note >= NotePadBottomFirst && note <= NotePadBottomLast:
		return Pad{RowBottom, int(note - NotePadBottomFirst)}, true
	default:
		return Pad{}, false
	}
}

// Frame holds one velocity per pad, indexed by Pad.Index.
type Frame [2 * NumPads]uint8

func (f Frame) At(p Pad) uint8 {
	return f[p.Index()]
}

// Render projects mixer state onto the pad LEDs.
//
// Top row: soloed chains are yellow, other chains dim, empty slots off. The solo-off pad is dim while
// anything is soloed. Bottom row: muted strips red, unmuted green, empty slots off; pad 7 is the master.
func Render(m *MixerState) Frame {
	var f Frame
	anySolo := m.AnySoloed()
	for col := 0; col < masterColumn; col++ {
		top, bottom := Pad{RowTop, col}, Pad{RowBottom, col}
		c, ok := m.Chain(col)
		if !ok {
			f[top.Index()] = VelocityOff
			f[bottom.Index()] = VelocityOff
			continue
		}
		f[top.Index()] = VelocitySoloIdle
		if c.Soloed {
			f[top.Index()] = VelocitySoloed
		}
		f[bottom.Index()] = muteVelocity(c.Muted)
	}
	if anySolo {
		f[Pad{RowTop, masterColumn}.Index()] = VelocitySoloIdle
	}
	f[Pad{RowBottom, masterColumn}.Index()] = muteVelocity(m.Master().Muted)
	return f
}

func muteVelocity(muted bool) uint8 {
	if muted {
		return VelocityMuted
	}
	return VelocityUnmuted
}

// diff returns LED updates for every pad whose velocity changed. A nil prev yields the whole frame.
func diff(prev *Frame, next Frame) []Event {
	var out []Event
	for row := RowTop; row <= RowBottom; row++ {
		for col := 0; col < NumPads; col++ {
			p := Pad{row, col}
			if prev != nil && prev.At(p) == next.At(p) {
				continue
			}
			out = append(out, LedUpdate{Pad: p, Velocity: next.At(p)})
		}
	}
	return out
}

// bankLeds lights the bank-down button for the mixer bank and the bank-up button for the navigation
// bank; both are dark for the passthrough bank.
func bankLeds(b Bank) []Event {
	return []Event{
		ButtonLed{Controller: CCBankDown, Value: lit(b == BankMixer)},
		ButtonLed{Controller: CCBankUp, Value: lit(b == BankNavigation)},
	}
}

func navLeds() []Event {
	out := make([]Event, 0, len(navButtonOrder))
	for _, cc := range navButtonOrder {
		out = append(out, ButtonLed{Controller: cc, Value: VelocityButtonLit})
	}
	return out
}

func lit(on bool) uint8 {
	if on {
		return VelocityButtonLit
	}
	return VelocityButtonUnlit
}
