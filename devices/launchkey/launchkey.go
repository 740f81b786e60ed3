// Package launchkey drives a Novation Launchkey Mini MK4 in DAW mode: it feeds decoded controls to a
// surface.Surface and routes what the surface produces to the controller LEDs, the synth and the host.
package launchkey

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	midi "gitlab.com/gomidi/midi/v2"

	"github.com/PatttF/Zynthian-Launchkey-Mini-MK4/devices"
	"github.com/PatttF/Zynthian-Launchkey-Mini-MK4/logging"
	"github.com/PatttF/Zynthian-Launchkey-Mini-MK4/surface"
)

var log *slog.Logger

func init() {
	log = logging.Get(logging.APP)
}

// DAW mode handshake.
const (
	dawModeChannel uint8 = 15
	dawModeNote    uint8 = 12

	encoderModeChannel    uint8 = 6
	encoderModeController uint8 = 30
	encoderModeTransport  uint8 = 5

	// LEDs are addressed on channel 1 for static colours.
	ledChannel uint8 = 0

	dawModeSettle     = 200 * time.Millisecond
	encoderModeSettle = 100 * time.Millisecond
)

// Host receives every event meant for the host.
type Host interface {
	Handle(ev surface.Event) error
}

type Option func(*Launchkey)

// WithSynth forwards passthrough notes, passthrough knobs and unhandled messages to synth.
func WithSynth(synth *devices.MidiDevice) Option {
	return func(l *Launchkey) {
		l.synth = synth
	}
}

// WithSleep replaces time.Sleep during the handshake.
func WithSleep(sleep func(time.Duration)) Option {
	return func(l *Launchkey) {
		l.sleep = sleep
	}
}

type Launchkey struct {
	daw     *devices.MidiDevice
	synth   *devices.MidiDevice
	surface *surface.Surface
	host    Host
	sleep   func(time.Duration)

	// held from the surface call until its events are routed, so LED diffs reach the
	// controller in the order the surface computed them
	mu sync.Mutex
}

// New binds daw's input to s. Events for the host go to host.
func New(daw *devices.MidiDevice, s *surface.Surface, host Host, opts ...Option) *Launchkey {
	l := &Launchkey{
		daw:     daw,
		surface: s,
		host:    host,
		sleep:   time.Sleep,
	}
	for _, opt := range opts {
		opt(l)
	}

	daw.BindCC(devices.PathCC{Channel: devices.Any, Controller: devices.Any}, func(args devices.ArgsCC) error {
		return l.apply(func() []surface.Event {
			return s.HandleControl(surface.ControlEvent{
				Channel:    args.Channel,
				Controller: args.Controller,
				Value:      args.Value,
			})
		})
	})
	daw.BindNote(devices.PathNote{Channel: devices.Any, Key: devices.Any}, func(args devices.ArgsNote) error {
		return l.apply(func() []surface.Event {
			return s.HandleNote(surface.NoteEvent{
				Channel:  args.Channel,
				Note:     args.Key,
				Velocity: args.Velocity,
				On:       args.On,
			})
		})
	})
	daw.BindProgramChange(devices.PathProgramChange{Channel: devices.Any}, func(args devices.ArgsProgramChange) error {
		return l.apply(func() []surface.Event { return s.HandleProgramChange(args.Program) })
	})
	daw.BindUnhandled(func(msg midi.Message) error {
		if l.synth == nil {
			return nil
		}
		return l.synth.Send(msg)
	})
	return l
}

// Open puts the controller into DAW mode with transport-mode encoders and paints every LED.
// On failure every port it opened is closed again.
func (l *Launchkey) Open() error {
	if err := l.daw.Open(); err != nil {
		return err
	}
	if err := l.handshake(); err != nil {
		return errors.Join(err, l.daw.Close())
	}
	return l.apply(func() []surface.Event {
		l.surface.Reset()
		return l.surface.Refresh()
	})
}

func (l *Launchkey) handshake() error {
	if l.synth != nil {
		if err := l.synth.Open(); err != nil {
			return err
		}
	}
	if err := l.daw.SendNoteOn(dawModeChannel, dawModeNote, 127); err != nil {
		return l.abort(fmt.Errorf("enabling DAW mode: %w", err))
	}
	l.sleep(dawModeSettle)
	if err := l.daw.SendCC(encoderModeChannel, encoderModeController, encoderModeTransport); err != nil {
		return l.abort(fmt.Errorf("selecting encoder mode: %w", err))
	}
	l.sleep(encoderModeSettle)
	return nil
}

// abort closes the synth port after it was opened by a failed handshake.
func (l *Launchkey) abort(err error) error {
	if l.synth == nil {
		return err
	}
	return errors.Join(err, l.synth.Close())
}

// Run dispatches controller input until ctx is done.
func (l *Launchkey) Run(ctx context.Context) error {
	return l.daw.Run(ctx)
}

// Close leaves DAW mode and closes the ports.
func (l *Launchkey) Close() error {
	errs := []error{l.daw.SendNoteOn(dawModeChannel, dawModeNote, 0), l.daw.Close()}
	if l.synth != nil {
		errs = append(errs, l.synth.Close())
	}
	return errors.Join(errs...)
}

// SyncStrip applies a strip value reported by the host and updates the pad LEDs.
func (l *Launchkey) SyncStrip(mixerChannel int, field surface.StripField, value int) error {
	return l.apply(func() []surface.Event { return l.surface.SyncStrip(mixerChannel, field, value) })
}

// SetChains replaces the chain set reported by the host and updates the pad LEDs.
func (l *Launchkey) SetChains(mixerChannels []int) error {
	return l.apply(func() []surface.Event { return l.surface.SetChains(mixerChannels) })
}

// apply runs one surface call and routes its events without letting another call in between.
func (l *Launchkey) apply(call func() []surface.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.deliver(call())
}

// deliver routes surface output. LED events go to the controller, passthrough events to the synth and
// everything else to the host. Every event is attempted; failures are joined. Callers hold l.mu.
func (l *Launchkey) deliver(evs []surface.Event) error {
	var errs []error
	for _, ev := range evs {
		if err := l.route(ev); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ev, err))
		}
	}
	return errors.Join(errs...)
}

func (l *Launchkey) route(ev surface.Event) error {
	switch ev := ev.(type) {
	case surface.LedUpdate:
		return l.daw.SendNoteOn(ledChannel, ev.Pad.Note(), ev.Velocity)
	case surface.ButtonLed:
		return l.daw.SendCC(ledChannel, ev.Controller, ev.Value)
	case surface.RawCC:
		if l.synth == nil {
			return nil
		}
		return l.synth.SendCC(ev.Channel, ev.Controller, ev.Value)
	case surface.NotePassthrough:
		if l.synth == nil {
			return nil
		}
		if ev.On {
			return l.synth.SendNoteOn(ev.Channel, ev.Note, ev.Velocity)
		}
		return l.synth.SendNoteOff(ev.Channel, ev.Note)
	default:
		if l.host == nil {
			log.Debug("No host for event", "event", ev.String())
			return nil
		}
		return l.host.Handle(ev)
	}
}
