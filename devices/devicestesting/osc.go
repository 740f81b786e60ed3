package devicestesting

import (
	"errors"
	"sync"
	"testing"

	"github.com/hypebeast/go-osc/osc"

	"github.com/PatttF/Zynthian-Launchkey-Mini-MK4/devices"
)

// MockOscClient records every message instead of sending it
type MockOscClient struct {
	mu           sync.Mutex
	sentMessages []*osc.Message
	shouldError  bool
}

func (m *MockOscClient) Send(packet osc.Packet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldError {
		return errors.New("mock send error")
	}
	switch p := packet.(type) {
	case *osc.Message:
		m.sentMessages = append(m.sentMessages, p)
	case *osc.Bundle:
		m.sentMessages = append(m.sentMessages, p.Messages...)
	}
	return nil
}

func (m *MockOscClient) SetError(shouldError bool) {
	m.mu.Lock()
	m.shouldError = shouldError
	m.mu.Unlock()
}

func (m *MockOscClient) GetSentMessages() []*osc.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*osc.Message(nil), m.sentMessages...)
}

func (m *MockOscClient) ClearSentMessages() {
	m.mu.Lock()
	m.sentMessages = nil
	m.mu.Unlock()
}

// TestOscDevice is an OscDevice whose outgoing messages are recorded and whose bindings are tracked
type TestOscDevice struct {
	*devices.OscDevice
	Client  *MockOscClient
	Tracker *CallbackTracker
}

func NewTestOscDevice(t *testing.T) *TestOscDevice {
	client := &MockOscClient{}
	return &TestOscDevice{
		OscDevice: devices.NewOscDevice(client, "127.0.0.1:0"),
		Client:    client,
		Tracker:   NewCallbackTracker(t),
	}
}

// SimulateMessage dispatches a message synchronously as if it had arrived over the network
func (d *TestOscDevice) SimulateMessage(addr string, args ...interface{}) {
	d.Dispatch(osc.NewMessage(addr, args...))
}

func (d *TestOscDevice) GetSentMessages() []*osc.Message {
	return d.Client.GetSentMessages()
}

// Bindings pre-wrapped with callback tracking
func (d *TestOscDevice) BindInt(addr string, callback devices.Callback[int64]) {
	d.OscDevice.BindInt(addr, WrapCallback(d.Tracker, callback))
}

func (d *TestOscDevice) BindFloat(addr string, callback devices.Callback[float64]) {
	d.OscDevice.BindFloat(addr, WrapCallback(d.Tracker, callback))
}

func (d *TestOscDevice) BindString(addr string, callback devices.Callback[string]) {
	d.OscDevice.BindString(addr, WrapCallback(d.Tracker, callback))
}

func (d *TestOscDevice) BindBool(addr string, callback devices.Callback[bool]) {
	d.OscDevice.BindBool(addr, WrapCallback(d.Tracker, callback))
}
