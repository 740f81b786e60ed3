package launchkey

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	midi "gitlab.com/gomidi/midi/v2"

	"github.com/PatttF/Zynthian-Launchkey-Mini-MK4/devices"
	devtest "github.com/PatttF/Zynthian-Launchkey-Mini-MK4/devices/devicestesting"
	"github.com/PatttF/Zynthian-Launchkey-Mini-MK4/surface"
)

type recordingHost struct {
	mu     sync.Mutex
	events []surface.Event
	err    error
}

func (h *recordingHost) Handle(ev surface.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, ev)
	return h.err
}

func (h *recordingHost) Events() []surface.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]surface.Event(nil), h.events...)
}

type fixture struct {
	lk     *Launchkey
	s      *surface.Surface
	daw    *devtest.MockMIDIPort
	synth  *devtest.MockMIDIPort
	host   *recordingHost
	sleeps []time.Duration
}

func newFixture(t *testing.T, withSynth bool) *fixture {
	t.Helper()
	f := &fixture{
		daw:  devtest.NewMockMIDIPort("daw"),
		host: &recordingHost{},
	}
	opts := []Option{WithSleep(func(d time.Duration) { f.sleeps = append(f.sleeps, d) })}
	if withSynth {
		f.synth = devtest.NewMockMIDIPort("synth")
		opts = append(opts, WithSynth(devices.NewMidiDevice(nil, f.synth)))
	}
	f.s = surface.New(surface.DefaultConfig())
	f.lk = New(devices.NewMidiDevice(f.daw, f.daw), f.s, f.host, opts...)
	require.NoError(t, f.lk.Open())
	f.daw.ClearSentMessages()
	return f
}

func (f *fixture) run(t *testing.T) {
	devtest.RunMidiDevice(t, f.daw, f.lk.Run)
}

func TestOpenHandshake(t *testing.T) {
	assert := assert.New(t)
	daw := devtest.NewMockMIDIPort("daw")
	var sleeps []time.Duration
	lk := New(devices.NewMidiDevice(daw, daw), surface.New(surface.DefaultConfig()), nil,
		WithSleep(func(d time.Duration) { sleeps = append(sleeps, d) }))

	require.NoError(t, lk.Open())
	assert.Equal([]time.Duration{200 * time.Millisecond, 100 * time.Millisecond}, sleeps)

	sent := daw.GetSentMessages()
	require.Greater(t, len(sent), 2)
	assert.Equal(midi.NoteOn(15, 12, 127), sent[0])
	assert.Equal(midi.ControlChange(6, 30, 5), sent[1])

	var ccs, notes int
	for _, msg := range sent[2:] {
		var ch, key, vel uint8
		switch {
		case msg.GetControlChange(&ch, &key, &vel):
			ccs++
		case msg.GetNoteOn(&ch, &key, &vel):
			notes++
		}
		assert.Equal(uint8(0), ch)
	}
	assert.Equal(8, ccs, "six nav LEDs and two bank LEDs")
	assert.Equal(16, notes, "every pad LED")
	assert.Contains(sent, midi.NoteOn(0, surface.NotePadTopFirst, surface.VelocitySoloIdle))
	assert.Contains(sent, midi.ControlChange(0, surface.CCBankUp, surface.VelocityButtonLit))

	daw.ClearSentMessages()
	require.NoError(t, lk.Close())
	assert.Equal([]midi.Message{midi.NoteOn(15, 12, 0)}, daw.GetSentMessages())
	assert.False(daw.IsOpen())
}

func TestOpenFailsWithoutPort(t *testing.T) {
	daw := devtest.NewMockMIDIPort("daw")
	daw.SetError(true)
	lk := New(devices.NewMidiDevice(daw, daw), surface.New(surface.DefaultConfig()), nil, WithSleep(func(time.Duration) {}))
	assert.Error(t, lk.Open())
}

func TestOpenReleasesPortsOnFailure(t *testing.T) {
	t.Run("synth port", func(t *testing.T) {
		daw, synth := devtest.NewMockMIDIPort("daw"), devtest.NewMockMIDIPort("synth")
		synth.SetError(true)
		lk := New(devices.NewMidiDevice(daw, daw), surface.New(surface.DefaultConfig()), nil,
			WithSynth(devices.NewMidiDevice(nil, synth)), WithSleep(func(time.Duration) {}))

		assert.Error(t, lk.Open())
		assert.False(t, daw.IsOpen())
	})
	t.Run("handshake", func(t *testing.T) {
		daw, synth := devtest.NewMockMIDIPort("daw"), devtest.NewMockMIDIPort("synth")
		require.NoError(t, daw.Open())
		daw.SetError(true)
		lk := New(devices.NewMidiDevice(daw, daw), surface.New(surface.DefaultConfig()), nil,
			WithSynth(devices.NewMidiDevice(nil, synth)), WithSleep(func(time.Duration) {}))

		assert.ErrorContains(t, lk.Open(), "enabling DAW mode")
		assert.False(t, daw.IsOpen())
		assert.False(t, synth.IsOpen())
	})
}

func TestHostFeedbackUpdatesLeds(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, false)

	require.NoError(t, f.lk.SyncStrip(3, surface.FieldMute, 1))
	assert.Equal([]midi.Message{midi.NoteOn(0, surface.NotePadBottomFirst+3, surface.VelocityMuted)}, f.daw.GetSentMessages())

	f.daw.ClearSentMessages()
	require.NoError(t, f.lk.SetChains([]int{0, 1}))
	assert.Contains(f.daw.GetSentMessages(), midi.NoteOn(0, surface.NotePadBottomFirst+3, surface.VelocityOff))
	assert.Empty(f.host.Events(), "host state is not echoed back")
}

// lastPadLed returns the velocity of the last LED message sent for pad.
func lastPadLed(t *testing.T, sent []midi.Message, pad surface.Pad) uint8 {
	t.Helper()
	for i := len(sent) - 1; i >= 0; i-- {
		var ch, key, vel uint8
		if sent[i].GetNoteOn(&ch, &key, &vel) && ch == ledChannel && key == pad.Note() {
			return vel
		}
	}
	t.Fatalf("no LED message for %s", pad)
	return 0
}

func TestLedsFollowMixerWithConcurrentFeedback(t *testing.T) {
	const presses = 50
	f := newFixture(t, false)
	f.run(t)
	pad := surface.Pad{Row: surface.RowBottom, Column: 0}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < presses; i++ {
			assert.NoError(t, f.lk.SyncStrip(0, surface.FieldMute, i%2))
		}
	}()
	for i := 0; i < presses; i++ {
		f.daw.SimulateReceive(midi.NoteOn(0, pad.Note(), 100))
	}
	<-done
	require.Eventually(t, func() bool { return len(f.host.Events()) == presses }, time.Second, 5*time.Millisecond)

	want := surface.Render(f.s.Mixer()).At(pad)
	assert.Equal(t, want, lastPadLed(t, f.daw.GetSentMessages(), pad))

	// once the controller shows the mixer state, an unchanged report sends nothing
	f.daw.ClearSentMessages()
	c, ok := f.s.Mixer().Chain(0)
	require.True(t, ok)
	muted := 0
	if c.Muted {
		muted = 1
	}
	require.NoError(t, f.lk.SyncStrip(0, surface.FieldMute, muted))
	assert.Empty(t, f.daw.GetSentMessages())
}

func TestPadPressReachesHostAndLeds(t *testing.T) {
	f := newFixture(t, false)
	f.run(t)

	f.daw.SimulateReceive(midi.NoteOn(0, surface.NotePadTopFirst, 100))
	require.Eventually(t, func() bool { return len(f.host.Events()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, surface.SoloToggled{Strip: 0, MixerChannel: 0, Soloed: true}, f.host.Events()[0])
	assert.Equal(t, []midi.Message{
		midi.NoteOn(0, surface.NotePadTopFirst, surface.VelocitySoloed),
		midi.NoteOn(0, surface.NotePadTopLast, surface.VelocitySoloIdle),
	}, f.daw.GetSentMessages())
}

func TestKnobReachesHost(t *testing.T) {
	f := newFixture(t, false)
	f.run(t)

	f.daw.SimulateReceive(midi.ControlChange(0, surface.CCKnobFirst+1, 66))
	require.Eventually(t, func() bool { return len(f.host.Events()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, surface.ZynpotTick{Pot: 1, Delta: 2}, f.host.Events()[0])
}

func TestPassthroughToSynth(t *testing.T) {
	f := newFixture(t, true)
	f.run(t)

	f.daw.SimulateReceive(midi.NoteOn(2, 60, 90))
	f.daw.SimulateReceive(midi.NoteOff(2, 60))
	f.daw.SimulateReceive(midi.Pitchbend(2, 512))
	f.daw.SimulateReceive(midi.ControlChange(0, surface.CCBankDown, 127))
	f.daw.SimulateReceive(midi.ControlChange(0, surface.CCBankDown, 127))
	f.daw.SimulateReceive(midi.ControlChange(4, surface.CCKnobFirst+2, 70))

	want := []midi.Message{
		midi.NoteOn(2, 60, 90),
		midi.NoteOff(2, 60),
		midi.Pitchbend(2, 512),
		midi.ControlChange(4, surface.PassthroughCCBase+2, 70),
	}
	require.Eventually(t, func() bool { return len(f.synth.GetSentMessages()) == len(want) }, time.Second, 5*time.Millisecond)
	assert.Equal(t, want, f.synth.GetSentMessages())
	assert.Equal(t, []surface.Event{
		surface.BankChanged{Bank: surface.BankMixer},
		surface.BankChanged{Bank: surface.BankPassthrough},
	}, f.host.Events(), "LED and synth traffic never reaches the host")
}

func TestDeliverWithoutSynthDropsPassthrough(t *testing.T) {
	f := newFixture(t, false)
	assert.NoError(t, f.lk.deliver([]surface.Event{
		surface.NotePassthrough{Note: 60, Velocity: 1, On: true},
		surface.RawCC{Controller: 24, Value: 1},
	}))
	assert.Empty(t, f.daw.GetSentMessages())
}

func TestDeliverJoinsErrors(t *testing.T) {
	assert := assert.New(t)
	f := newFixture(t, false)
	f.host.err = errors.New("host down")

	err := f.lk.deliver([]surface.Event{
		surface.Select,
		surface.LedUpdate{Pad: surface.Pad{Row: surface.RowBottom, Column: 1}, Velocity: surface.VelocityMuted},
		surface.Back,
	})
	assert.ErrorContains(err, "host down")
	assert.Len(f.host.Events(), 2, "later events are still attempted")
	assert.Equal([]midi.Message{midi.NoteOn(0, surface.NotePadBottomFirst+1, surface.VelocityMuted)}, f.daw.GetSentMessages())
}
