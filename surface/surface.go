// Package surface maps Launchkey controls onto mixer, navigation and synth actions and renders
// mixer state back onto the pad LEDs.
//
// A Surface owns all mutable state. Every Handle method processes one decoded input event and returns
// the events it produced, in order. Methods are safe for concurrent use. LED updates are diffs against
// the previous call's frame, so callers must send each call's events before making the next call.
package surface

import (
	"log/slog"
	"sync"
	"time"

	"github.com/PatttF/Zynthian-Launchkey-Mini-MK4/gesture"
	"github.com/PatttF/Zynthian-Launchkey-Mini-MK4/logging"
	"github.com/PatttF/Zynthian-Launchkey-Mini-MK4/mode"
)

var appLog, midiInLog *slog.Logger

func init() {
	appLog = logging.Get(logging.APP)
	midiInLog = logging.Get(logging.MIDI_IN)
}

// ControlEvent is a decoded control change.
type ControlEvent struct {
	Channel    uint8
	Controller uint8
	Value      uint8
}

// NoteEvent is a decoded note on or off. A note on with velocity 0 counts as off.
type NoteEvent struct {
	Channel  uint8
	Note     uint8
	Velocity uint8
	On       bool
}

type Config struct {
	InitialBank Bank
	// MixerChannels lists the host mixer channel of each chain in display order.
	MixerChannels []int
	Encoder       EncoderMode
	// ProportionalNavigation makes arrow and preset knobs step |delta| times per message instead of once.
	ProportionalNavigation bool
	// SelectDebounce drops select/back knob messages arriving sooner than this after the last accepted one.
	SelectDebounce time.Duration
	Gesture        gesture.Thresholds
}

func DefaultConfig() Config {
	return Config{
		InitialBank:    DefaultBank,
		MixerChannels:  DefaultMixerChannels(MaxChains),
		Encoder:        EncoderRelative,
		SelectDebounce: 600 * time.Millisecond,
		Gesture:        gesture.DefaultThresholds(),
	}
}

type Option func(*Surface)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Surface) {
		s.now = now
	}
}

type knobInput struct {
	knob    int
	channel uint8
	raw     uint8
	delta   int
}

type Surface struct {
	mu sync.Mutex

	cfg Config
	now func() time.Time

	banks    bankState
	mixer    *MixerState
	knobs    knobState
	gestures *gesture.Classifier[uint8]
	shift    bool

	lastSelectBack time.Time
	sent           *Frame

	knobHandlers []func(knobInput) error
	out          []Event
}

func New(cfg Config, opts ...Option) *Surface {
	if cfg.Encoder == "" {
		cfg.Encoder = EncoderRelative
	}
	if cfg.Gesture == (gesture.Thresholds{}) {
		cfg.Gesture = gesture.DefaultThresholds()
	}
	s := &Surface{
		cfg:      cfg,
		now:      time.Now,
		banks:    newBankState(cfg.InitialBank),
		mixer:    NewMixerState(cfg.MixerChannels...),
		gestures: gesture.NewClassifier[uint8](cfg.Gesture),
	}
	for _, opt := range opts {
		opt(s)
	}

	mm := s.banks.ModeManager
	s.knobHandlers = []func(knobInput) error{
		mode.Guard(mm, BankMixer, s.mixerKnob),
		mode.Guard(mm, BankNavigation, s.navigationKnob),
		mode.Guard(mm, BankPassthrough, s.passthroughKnob),
	}
	for b := Bank(0); b < numBanks; b++ {
		b := b
		mm.OnTransition(b, func() error {
			appLog.Info("Bank changed", "bank", b)
			s.emit(BankChanged{Bank: b})
			s.emit(bankLeds(b)...)
			return nil
		})
	}
	return s
}

// Bank returns the active knob bank.
func (s *Surface) Bank() Bank {
	return s.banks.CurrMode()
}

// Shift reports whether the shift button is held.
func (s *Surface) Shift() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shift
}

// Mixer returns a copy of the mixer state.
func (s *Surface) Mixer() *MixerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *s.mixer
	cp.chains = append([]Chain(nil), s.mixer.chains...)
	return &cp
}

// HandleControl processes one control change.
func (s *Surface) HandleControl(ev ControlEvent) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.control(ev)
	return s.flush()
}

// HandleNote processes one note on or off.
func (s *Surface) HandleNote(ev NoteEvent) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.On && ev.Velocity == 0 {
		ev.On = false
	}
	if pad, ok := PadFromNote(ev.Note); ok {
		if ev.On {
			s.pressPad(pad)
		}
	} else {
		s.emit(NotePassthrough{Channel: ev.Channel, Note: ev.Note, Velocity: ev.Velocity, On: ev.On})
	}
	return s.flush()
}

// HandleProgramChange selects the sequencer bank matching the program number.
func (s *Surface) HandleProgramChange(program uint8) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emit(SequenceBank{Bank: int(program) + 1})
	return s.flush()
}

// AdvanceBank cycles the knob bank. While shift is held the bank buttons act as up/down arrows instead.
func (s *Surface) AdvanceBank(dir BankDirection) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceBank(dir)
	return s.flush()
}

// SetChains replaces the chain set after the host added, removed or moved chains.
func (s *Surface) SetChains(mixerChannels []int) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mixer.SetChains(mixerChannels)
	appLog.Debug("Chains updated", "mixerChannels", mixerChannels)
	s.render()
	return s.flush()
}

// SyncStrip stores a strip value reported by the host. It produces LED updates only.
func (s *Surface) SyncStrip(mixerChannel int, field StripField, value int) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	strip, ok := s.mixer.StripByMixerChannel(mixerChannel)
	if !ok {
		return nil
	}
	if s.mixer.Apply(strip, field, value) {
		s.render()
	}
	return s.flush()
}

// Refresh re-renders every LED the surface owns.
func (s *Surface) Refresh() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = nil
	s.emit(navLeds()...)
	s.emit(bankLeds(s.banks.CurrMode())...)
	s.render()
	return s.flush()
}

// Reset forgets open presses, knob positions, the shift state and the last LED frame. Use it when the
// controller reconnects; mixer state and the active bank are kept.
func (s *Surface) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gestures.Reset()
	s.knobs.reset()
	s.shift = false
	s.lastSelectBack = time.Time{}
	s.sent = nil
}

func (s *Surface) emit(evs ...Event) {
	s.out = append(s.out, evs...)
}

func (s *Surface) flush() []Event {
	out := s.out
	s.out = nil
	return out
}

// render emits LED updates for pads whose velocity changed since the last frame sent.
func (s *Surface) render() {
	next := Render(s.mixer)
	s.emit(diff(s.sent, next)...)
	s.sent = &next
}

func (s *Surface) control(ev ControlEvent) {
	cc, pressed := ev.Controller, ev.Value > 0
	switch {
	case cc == CCShift:
		s.shift = pressed
	case isKnob(cc):
		s.turnKnob(ev)
	case cc == CCBankDown || cc == CCBankUp:
		if pressed {
			dir := BankUp
			if cc == CCBankDown {
				dir = BankDown
			}
			s.advanceBank(dir)
		}
	case cc >= CCSwitchFirst && cc <= CCSwitchLast:
		s.switchButton(cc, pressed)
	case cc == CCPlay || cc == CCRecord:
		if pressed {
			s.transport(cc)
		}
	default:
		action, ok := navButtons[cc]
		if !ok {
			midiInLog.Debug("Dropping unmapped control change", "controller", cc, "value", ev.Value)
			return
		}
		if pressed {
			s.emit(ButtonLed{Controller: cc, Value: VelocityButtonLit}, action)
		}
	}
}

func (s *Surface) advanceBank(dir BankDirection) {
	if s.shift {
		if dir == BankDown {
			s.emit(ArrowPressed{Up})
		} else {
			s.emit(ArrowPressed{Down})
		}
		return
	}
	s.banks.advance(dir)
}

func (s *Surface) turnKnob(ev ControlEvent) {
	knob := int(ev.Controller - CCKnobFirst)
	in := knobInput{
		knob:    knob,
		channel: ev.Channel,
		raw:     ev.Value,
		delta:   s.knobs.delta(s.cfg.Encoder, knob, ev.Value),
	}
	for _, h := range s.knobHandlers {
		if err := h(in); err != nil {
			midiInLog.Error("failed to process knob", "knob", knob, "error", err)
		}
	}
}

func (s *Surface) switchButton(cc uint8, pressed bool) {
	if s.shift && cc == CCMetronome {
		if pressed {
			s.emit(Tempo)
		}
		return
	}
	now := s.now()
	if pressed {
		s.gestures.Down(cc, now, s.shift)
		return
	}
	g, ok := s.gestures.Up(cc, now)
	if !ok {
		midiInLog.Debug("Dropping release without press", "controller", cc)
		return
	}
	appLog.Debug("Switch gesture", "controller", cc, "class", g.Class)
	s.emit(SwitchGesture{Switch: switchIndex[cc], Class: g.Class, Shift: g.Shift})
}

func (s *Surface) transport(cc uint8) {
	switch {
	case cc == CCPlay && s.shift:
		s.emit(ToggleMidiPlay)
	case cc == CCPlay:
		s.emit(TogglePlay)
	case s.shift:
		s.emit(ToggleMidiRecord)
	default:
		s.emit(ToggleRecord)
	}
}
