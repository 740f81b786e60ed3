package zynthian

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/hypebeast/go-osc/osc"

	"github.com/PatttF/Zynthian-Launchkey-Mini-MK4/devices"
	"github.com/PatttF/Zynthian-Launchkey-Mini-MK4/surface"
)

// Syncer accepts host state. *launchkey.Launchkey implements it by updating its surface and sending
// the resulting LED updates in one step.
type Syncer interface {
	SyncStrip(mixerChannel int, field surface.StripField, value int) error
	SetChains(mixerChannels []int) error
}

// BindFeedback routes mixer state reported by the host into s.
//
// Routes:
// /mixer/{chan}/level as float in [0, 1]
// /mixer/{chan}/solo and /mixer/{chan}/mute as int, non-zero meaning on
// /chains as one int per chain, the mixer channel of each chain in display order
func BindFeedback(o *devices.OscDevice, s Syncer) {
	o.BindFloat("/mixer/@/level", func(args devices.Args[float64]) error {
		ch, err := mixerChannel(args.Captures)
		if err != nil {
			return err
		}
		return s.SyncStrip(ch, surface.FieldLevel, levelFromHost(args.Value))
	})
	for _, field := range []surface.StripField{surface.FieldSolo, surface.FieldMute} {
		field := field
		o.BindInt("/mixer/@/"+string(field), func(args devices.Args[int64]) error {
			ch, err := mixerChannel(args.Captures)
			if err != nil {
				return err
			}
			return s.SyncStrip(ch, field, int(args.Value))
		})
	}
	o.BindRaw("/chains", func(msg *osc.Message, _ []string) error {
		chans, err := intArgs(msg.Arguments)
		if err != nil {
			return err
		}
		oscInLog.Info("Host reported chains", "mixerChannels", chans)
		return s.SetChains(chans)
	})
}

func mixerChannel(captures []string) (int, error) {
	if len(captures) != 1 {
		return 0, errors.New("missing mixer channel")
	}
	ch, err := strconv.Atoi(captures[0])
	if err != nil {
		return 0, fmt.Errorf("bad mixer channel %q: %w", captures[0], err)
	}
	return ch, nil
}

func intArgs(args []any) ([]int, error) {
	out := make([]int, 0, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case int32:
			out = append(out, int(v))
		case int64:
			out = append(out, int(v))
		default:
			return nil, fmt.Errorf("argument %d: want int, got %T", i, arg)
		}
	}
	return out, nil
}
