package surface

import (
	"fmt"
)

// EncoderMode selects how knob CC values turn into deltas.
type EncoderMode string

const (
	// EncoderRelative decodes the controller's transport-mode encoding: 64 is rest, values
	// below 64 turn counter-clockwise and values above turn clockwise.
	EncoderRelative EncoderMode = "relative"
	// EncoderAbsolute treats values as positions and diffs them against the last value seen.
	EncoderAbsolute EncoderMode = "absolute"
)

func ParseEncoderMode(s string) (EncoderMode, error) {
	switch EncoderMode(s) {
	case EncoderRelative, EncoderAbsolute:
		return EncoderMode(s), nil
	default:
		return "", fmt.Errorf("unknown encoder mode %q", s)
	}
}

// relativeDelta decodes one transport-mode tick.
func relativeDelta(v uint8) int {
	switch {
	case v == 1:
		return -1
	case v < 64:
		return -(64 - int(v))
	case v == 127:
		return 1
	case v > 64:
		return int(v) - 64
	default:
		return 0
	}
}

// knobState keeps the last raw value seen per knob.
type knobState struct {
	last [NumKnobs]uint8
	seen [NumKnobs]bool
}

// delta records value for knob and returns the signed change it represents.
// In absolute mode the first value after a reset only seeds the state.
func (k *knobState) delta(mode EncoderMode, knob int, value uint8) int {
	prev, seen := k.last[knob], k.seen[knob]
	k.last[knob], k.seen[knob] = value, true
	if mode == EncoderAbsolute {
		if !seen {
			return 0
		}
		return int(value) - int(prev)
	}
	return relativeDelta(value)
}

func (k *knobState) reset() {
	*k = knobState{}
}
