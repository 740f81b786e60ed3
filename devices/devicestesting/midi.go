package devicestesting

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	midi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/PatttF/Zynthian-Launchkey-Mini-MK4/devices"
)

const (
	waitFor = time.Second
	tick    = 5 * time.Millisecond
)

// MockMIDIPort implements both drivers.In and drivers.Out interfaces
type MockMIDIPort struct {
	mu sync.Mutex

	name string

	// For tracking sent messages
	sentMessages []midi.Message

	// For simulating received messages, keyed so stop functions remove only their own listener
	listeners map[int]func(msg []byte, timestampms int32)
	nextID    int

	// For testing error conditions
	shouldError bool

	isOpen bool
}

func NewMockMIDIPort(name string) *MockMIDIPort {
	return &MockMIDIPort{
		name:      name,
		listeners: map[int]func(msg []byte, timestampms int32){},
	}
}

func (m *MockMIDIPort) Open() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldError {
		return errors.New("mock open error")
	}
	m.isOpen = true
	return nil
}

func (m *MockMIDIPort) Close() error {
	m.mu.Lock()
	m.isOpen = false
	m.mu.Unlock()
	return nil
}

func (m *MockMIDIPort) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isOpen
}

// Number implements drivers.Out and drivers.In
func (m *MockMIDIPort) Number() int {
	return 0
}

// String implements drivers.Out and drivers.In
func (m *MockMIDIPort) String() string {
	return m.name
}

func (m *MockMIDIPort) Underlying() interface{} {
	return m
}

// Send implements drivers.Out
func (m *MockMIDIPort) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldError {
		return errors.New("mock send error")
	}
	if !m.isOpen {
		return errors.New("port not open")
	}
	m.sentMessages = append(m.sentMessages, midi.Message(append([]byte(nil), data...)))
	return nil
}

// SimulateReceive delivers msg to every listener as if the hardware had sent it
func (m *MockMIDIPort) SimulateReceive(msg midi.Message) {
	m.mu.Lock()
	listeners := make([]func(msg []byte, timestampms int32), 0, len(m.listeners))
	for _, l := range m.listeners {
		listeners = append(listeners, l)
	}
	m.mu.Unlock()

	for _, listener := range listeners {
		listener(msg, 0)
	}
}

func (m *MockMIDIPort) Listen(onMsg func(msg []byte, milliseconds int32), config drivers.ListenConfig) (stopFn func(), err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.isOpen {
		return nil, errors.New("port not open")
	}
	id := m.nextID
	m.nextID++
	m.listeners[id] = onMsg

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}, nil
}

// Listening reports whether anything is listening on the port
func (m *MockMIDIPort) Listening() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listeners) > 0
}

// GetSentMessages returns all messages that were sent
func (m *MockMIDIPort) GetSentMessages() []midi.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]midi.Message, len(m.sentMessages))
	copy(result, m.sentMessages)
	return result
}

func (m *MockMIDIPort) ClearSentMessages() {
	m.mu.Lock()
	m.sentMessages = nil
	m.mu.Unlock()
}

// SetError configures the mock to return errors
func (m *MockMIDIPort) SetError(shouldError bool) {
	m.mu.Lock()
	m.shouldError = shouldError
	m.mu.Unlock()
}

// MidiDevice wraps a MidiDevice to automatically track all callbacks
type MidiDevice struct {
	*devices.MidiDevice
	Tracker *CallbackTracker
}

// NewTestMidiDevice creates a MidiDevice with a mock port and automatic callback tracking
func NewTestMidiDevice(t *testing.T) (*MidiDevice, *MockMIDIPort) {
	mockPort := NewMockMIDIPort("mock")
	device := devices.NewMidiDevice(mockPort, mockPort)
	return &MidiDevice{
		MidiDevice: device,
		Tracker:    NewCallbackTracker(t),
	}, mockPort
}

// RunMidiDevice runs run in the background until the test ends and waits until port is being listened on
func RunMidiDevice(t *testing.T, port *MockMIDIPort, run func(context.Context) error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	require.Eventually(t, port.Listening, waitFor, tick, "device never started listening")
}

// BindCC wraps the original BindCC with automatic callback tracking
func (d *MidiDevice) BindCC(path devices.PathCC, callback func(devices.ArgsCC) error) {
	d.MidiDevice.BindCC(path, WrapCallback(d.Tracker, callback))
}

// BindNote wraps the original BindNote with automatic callback tracking
func (d *MidiDevice) BindNote(path devices.PathNote, callback func(devices.ArgsNote) error) {
	d.MidiDevice.BindNote(path, WrapCallback(d.Tracker, callback))
}

// BindProgramChange wraps the original BindProgramChange with automatic callback tracking
func (d *MidiDevice) BindProgramChange(path devices.PathProgramChange, callback func(devices.ArgsProgramChange) error) {
	d.MidiDevice.BindProgramChange(path, WrapCallback(d.Tracker, callback))
}

// BindUnhandled wraps the original BindUnhandled with automatic callback tracking
func (d *MidiDevice) BindUnhandled(callback func(midi.Message) error) {
	d.MidiDevice.BindUnhandled(WrapCallback(d.Tracker, callback))
}
