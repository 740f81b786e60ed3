package devices

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	midi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/PatttF/Zynthian-Launchkey-Mini-MK4/logging"
)

var midiInLog, midiOutLog *slog.Logger

func init() {
	midiInLog = logging.Get(logging.MIDI_IN)
	midiOutLog = logging.Get(logging.MIDI_OUT)
}

// Any matches every channel, controller or key in a binding path. MIDI data bytes never exceed 127.
const Any uint8 = 0xFF

type PathCC struct {
	Channel    uint8
	Controller uint8
}

type ArgsCC struct {
	Channel    uint8
	Controller uint8
	Value      uint8
}

type PathNote struct {
	Channel uint8
	Key     uint8
}

// ArgsNote carries both note on and note off. A note on with velocity 0 is reported as off.
type ArgsNote struct {
	Channel  uint8
	Key      uint8
	Velocity uint8
	On       bool
}

type PathProgramChange struct {
	Channel uint8
}

type ArgsProgramChange struct {
	Channel uint8
	Program uint8
}

func matches(want, got uint8) bool {
	return want == Any || want == got
}

type ccBinding struct {
	path     PathCC
	callback func(ArgsCC) error
}

type noteBinding struct {
	path     PathNote
	callback func(ArgsNote) error
}

type programChangeBinding struct {
	path     PathProgramChange
	callback func(ArgsProgramChange) error
}

// MidiDevice represents a generic MIDI device and allows registering effects for various messages the device may receive.
//
// Callbacks run one at a time on the goroutine that called Run, in the order messages arrived.
// Bind everything before calling Run.
type MidiDevice struct {
	inPort  drivers.In
	outPort drivers.Out

	cc            []ccBinding
	note          []noteBinding
	programChange []programChangeBinding
	unhandled     []func(midi.Message) error
}

// NewMidiDevice returns a device on the given ports. A nil inPort makes an output-only device that cannot Run.
func NewMidiDevice(inPort drivers.In, outPort drivers.Out) *MidiDevice {
	return &MidiDevice{
		inPort:  inPort,
		outPort: outPort,
	}
}

func (d *MidiDevice) BindCC(path PathCC, callback func(ArgsCC) error) {
	d.cc = append(d.cc, ccBinding{path, callback})
}

func (d *MidiDevice) BindNote(path PathNote, callback func(ArgsNote) error) {
	d.note = append(d.note, noteBinding{path, callback})
}

func (d *MidiDevice) BindProgramChange(path PathProgramChange, callback func(ArgsProgramChange) error) {
	d.programChange = append(d.programChange, programChangeBinding{path, callback})
}

// BindUnhandled registers a callback for every message no other binding matched.
func (d *MidiDevice) BindUnhandled(callback func(midi.Message) error) {
	d.unhandled = append(d.unhandled, callback)
}

// Open opens both ports unless they are open already.
func (d *MidiDevice) Open() error {
	if d.inPort != nil && !d.inPort.IsOpen() {
		if err := d.inPort.Open(); err != nil {
			return fmt.Errorf("opening MIDI in port %q: %w", d.inPort.String(), err)
		}
	}
	if !d.outPort.IsOpen() {
		if err := d.outPort.Open(); err != nil {
			return fmt.Errorf("opening MIDI out port %q: %w", d.outPort.String(), err)
		}
	}
	return nil
}

func (d *MidiDevice) Close() error {
	var inErr error
	if d.inPort != nil {
		inErr = d.inPort.Close()
	}
	return errors.Join(inErr, d.outPort.Close())
}

// Send writes msg to the out port.
func (d *MidiDevice) Send(msg midi.Message) error {
	midiOutLog.Debug("Sending MIDI message", "port", d.outPort.String(), "message", msg.String())
	if err := d.outPort.Send(msg); err != nil {
		return fmt.Errorf("sending %s: %w", msg, err)
	}
	return nil
}

func (d *MidiDevice) SendCC(channel, controller, value uint8) error {
	return d.Send(midi.ControlChange(channel, controller, value))
}

func (d *MidiDevice) SendNoteOn(channel, key, velocity uint8) error {
	return d.Send(midi.NoteOn(channel, key, velocity))
}

func (d *MidiDevice) SendNoteOff(channel, key uint8) error {
	return d.Send(midi.NoteOff(channel, key))
}

// Run opens the ports if needed and dispatches incoming messages until ctx is done.
// It does not close the ports.
func (d *MidiDevice) Run(ctx context.Context) error {
	if d.inPort == nil {
		return errors.New("MIDI device has no in port")
	}
	if err := d.Open(); err != nil {
		return err
	}
	midiInLog.Info("Starting MIDI device", "inPort", d.inPort.String(), "outPort", d.outPort.String())

	msgs := make(chan midi.Message, 64)
	stop, err := midi.ListenTo(d.inPort, func(msg midi.Message, timestampms int32) {
		select {
		case msgs <- msg:
		case <-ctx.Done():
		}
	}, midi.UseSysEx())
	if err != nil {
		return fmt.Errorf("listening on %q: %w", d.inPort.String(), err)
	}
	defer stop()

	for {
		select {
		case <-ctx.Done():
			midiInLog.Info("Stopping MIDI device", "inPort", d.inPort.String())
			return nil
		case msg := <-msgs:
			d.dispatch(msg)
		}
	}
}

func (d *MidiDevice) dispatch(msg midi.Message) {
	var channel, a, b uint8
	handled := false
	switch {
	case msg.GetControlChange(&channel, &a, &b):
		midiInLog.Debug("received Control Change message", "channel", channel, "control", a, "value", b)
		for _, bnd := range d.cc {
			if matches(bnd.path.Channel, channel) && matches(bnd.path.Controller, a) {
				handled = true
				logCallbackErr("Control Change", bnd.callback(ArgsCC{channel, a, b}))
			}
		}
	case msg.GetNoteOn(&channel, &a, &b):
		midiInLog.Debug("received Note On message", "channel", channel, "key", a, "velocity", b)
		handled = d.dispatchNote(ArgsNote{Channel: channel, Key: a, Velocity: b, On: b > 0})
	case msg.GetNoteOff(&channel, &a, &b):
		midiInLog.Debug("received Note Off message", "channel", channel, "key", a, "velocity", b)
		handled = d.dispatchNote(ArgsNote{Channel: channel, Key: a, Velocity: b})
	case msg.GetProgramChange(&channel, &a):
		midiInLog.Debug("received Program Change message", "channel", channel, "program", a)
		for _, bnd := range d.programChange {
			if matches(bnd.path.Channel, channel) {
				handled = true
				logCallbackErr("Program Change", bnd.callback(ArgsProgramChange{channel, a}))
			}
		}
	}
	if handled {
		return
	}
	for _, cb := range d.unhandled {
		logCallbackErr("unhandled message", cb(msg))
	}
}

func (d *MidiDevice) dispatchNote(args ArgsNote) bool {
	handled := false
	for _, bnd := range d.note {
		if matches(bnd.path.Channel, args.Channel) && matches(bnd.path.Key, args.Key) {
			handled = true
			logCallbackErr("Note", bnd.callback(args))
		}
	}
	return handled
}

func logCallbackErr(kind string, err error) {
	if err != nil {
		midiInLog.Error("failed to process "+kind, "error", err)
	}
}
