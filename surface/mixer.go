package surface

import (
	"fmt"
)

// Strip addresses a chain by position (0-6) or the master strip.
type Strip int

const (
	Master Strip = -1

	// MaxChains is the number of chain strips reachable from the controller.
	MaxChains = 7
	// MasterMixerChannel is the host mixer channel of the master strip.
	MasterMixerChannel = 16

	MaxLevel uint8 = 127
)

func (s Strip) String() string {
	if s == Master {
		return "master"
	}
	return fmt.Sprintf("chain%d", int(s))
}

// Chain is one mixer strip.
type Chain struct {
	MixerChannel int
	Level        uint8
	Soloed       bool
	Muted        bool
}

// MixerState holds up to MaxChains chains in display order plus the master strip.
//
// The master strip can never be soloed.
type MixerState struct {
	chains []Chain
	master Chain
}

// NewMixerState returns a mixer with chains at the given host mixer channels.
// Channels beyond MaxChains are ignored.
func NewMixerState(mixerChannels ...int) *MixerState {
	m := &MixerState{master: Chain{MixerChannel: MasterMixerChannel}}
	m.SetChains(mixerChannels)
	return m
}

// DefaultMixerChannels returns n chains on mixer channels 0..n-1.
func DefaultMixerChannels(n int) []int {
	if n > MaxChains {
		n = MaxChains
	}
	chans := make([]int, 0, n)
	for i := 0; i < n; i++ {
		chans = append(chans, i)
	}
	return chans
}

// SetChains replaces the chain set. Chains whose mixer channel is still present keep their state.
func (m *MixerState) SetChains(mixerChannels []int) {
	prev := make(map[int]Chain, len(m.chains))
	for _, c := range m.chains {
		prev[c.MixerChannel] = c
	}
	m.chains = m.chains[:0]
	for _, ch := range mixerChannels {
		if len(m.chains) == MaxChains {
			break
		}
		if ch == MasterMixerChannel {
			continue
		}
		c, ok := prev[ch]
		if !ok {
			c = Chain{MixerChannel: ch}
		}
		m.chains = append(m.chains, c)
	}
}

// NumChains returns the number of chains present.
func (m *MixerState) NumChains() int {
	return len(m.chains)
}

// Chain returns the chain at position i.
func (m *MixerState) Chain(i int) (Chain, bool) {
	if i < 0 || i >= len(m.chains) {
		return Chain{}, false
	}
	return m.chains[i], true
}

// Master returns the master strip.
func (m *MixerState) Master() Chain {
	return m.master
}

// strip returns a pointer to the addressed strip, or nil if no such chain exists.
func (m *MixerState) strip(s Strip) *Chain {
	if s == Master {
		return &m.master
	}
	if int(s) < 0 || int(s) >= len(m.chains) {
		return nil
	}
	return &m.chains[s]
}

// StripByMixerChannel finds the strip currently bound to a host mixer channel.
func (m *MixerState) StripByMixerChannel(ch int) (Strip, bool) {
	if ch == MasterMixerChannel {
		return Master, true
	}
	for i, c := range m.chains {
		if c.MixerChannel == ch {
			return Strip(i), true
		}
	}
	return 0, false
}

// SoloSet returns the positions of soloed chains in ascending order.
func (m *MixerState) SoloSet() []Strip {
	var set []Strip
	for i, c := range m.chains {
		if c.Soloed {
			set = append(set, Strip(i))
		}
	}
	return set
}

// AnySoloed reports whether the solo set is non-empty.
func (m *MixerState) AnySoloed() bool {
	for _, c := range m.chains {
		if c.Soloed {
			return true
		}
	}
	return false
}

// Nudge adds delta to a strip's level, clamped to [0, MaxLevel].
func (m *MixerState) Nudge(s Strip, delta int) (LevelChanged, bool) {
	c := m.strip(s)
	if c == nil {
		return LevelChanged{}, false
	}
	c.Level = clampLevel(int(c.Level) + delta)
	return LevelChanged{Strip: s, MixerChannel: c.MixerChannel, Level: c.Level}, true
}

// ToggleSolo flips a chain's solo flag. The master strip is not soloable.
func (m *MixerState) ToggleSolo(s Strip) (SoloToggled, bool) {
	if s == Master {
		return SoloToggled{}, false
	}
	c := m.strip(s)
	if c == nil {
		return SoloToggled{}, false
	}
	c.Soloed = !c.Soloed
	return SoloToggled{Strip: s, MixerChannel: c.MixerChannel, Soloed: c.Soloed}, true
}

// ClearSolo empties the solo set and reports one event per chain that was soloed.
func (m *MixerState) ClearSolo() []SoloToggled {
	var cleared []SoloToggled
	for i := range m.chains {
		if m.chains[i].Soloed {
			m.chains[i].Soloed = false
			cleared = append(cleared, SoloToggled{Strip: Strip(i), MixerChannel: m.chains[i].MixerChannel})
		}
	}
	return cleared
}

// ToggleMute flips the mute flag of a chain or the master strip.
func (m *MixerState) ToggleMute(s Strip) (MuteToggled, bool) {
	c := m.strip(s)
	if c == nil {
		return MuteToggled{}, false
	}
	c.Muted = !c.Muted
	return MuteToggled{Strip: s, MixerChannel: c.MixerChannel, Muted: c.Muted}, true
}

// StripField names a strip attribute reported by the host.
type StripField string

const (
	FieldLevel StripField = "level"
	FieldSolo  StripField = "solo"
	FieldMute  StripField = "mute"
)

// Apply stores a value reported by the host. Solo reports for the master strip are ignored.
func (m *MixerState) Apply(s Strip, field StripField, value int) bool {
	c := m.strip(s)
	if c == nil {
		return false
	}
	switch field {
	case FieldLevel:
		c.Level = clampLevel(value)
	case FieldSolo:
		if s == Master {
			return false
		}
		c.Soloed = value != 0
	case FieldMute:
		c.Muted = value != 0
	default:
		return false
	}
	return true
}

func clampLevel(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > int(MaxLevel) {
		return MaxLevel
	}
	return uint8(v)
}
