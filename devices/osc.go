package devices

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/hypebeast/go-osc/osc"

	"github.com/PatttF/Zynthian-Launchkey-Mini-MK4/logging"
)

var oscInLog, oscOutLog *slog.Logger

func init() {
	oscInLog = logging.Get(logging.OSC_IN)
	oscOutLog = logging.Get(logging.OSC_OUT)
}

// OscClient is satisfied by *osc.Client.
type OscClient interface {
	Send(packet osc.Packet) error
}

// OscDevice sends OSC messages to one peer and dispatches messages received on a local UDP address.
type OscDevice struct {
	client     OscClient
	listenAddr string
	dispatcher *Dispatcher
}

// NewOscDevice returns a device sending through client and, once Run is called, listening on listenAddr.
func NewOscDevice(client OscClient, listenAddr string) *OscDevice {
	return &OscDevice{
		client:     client,
		listenAddr: listenAddr,
		dispatcher: NewDispatcher(),
	}
}

// Send sends one message. Arguments should be OSC types: int32, float32, string or bool.
func (o *OscDevice) Send(addr string, args ...any) error {
	oscOutLog.Debug("Sending OSC message", "address", addr, "arguments", args)
	if err := o.client.Send(osc.NewMessage(addr, args...)); err != nil {
		return fmt.Errorf("sending %s: %w", addr, err)
	}
	return nil
}

func (o *OscDevice) SetInt(addr string, val int32) error {
	return o.Send(addr, val)
}

func (o *OscDevice) SetFloat(addr string, val float32) error {
	return o.Send(addr, val)
}

func (o *OscDevice) SetString(addr string, val string) error {
	return o.Send(addr, val)
}

// Dispatch feeds a packet to the bound handlers as if it had been received.
func (o *OscDevice) Dispatch(packet osc.Packet) {
	o.dispatcher.Dispatch(packet)
}

// BindRaw binds a callback that sees the whole message.
func (o *OscDevice) BindRaw(pattern string, effect func(msg *osc.Message, captures []string) error) {
	o.dispatcher.AddMsgHandler(pattern, func(msg *osc.Message, captures []string) {
		if err := effect(msg, captures); err != nil {
			oscInLog.Error("failed to process OSC message", "address", msg.Address, "error", err)
		}
	})
}

// Bind binds a callback to run whenever a message matching pattern is received. The first argument is
// converted to T; messages without arguments or with arguments that do not convert are logged and dropped.
func Bind[T BaseTypes](o *OscDevice, pattern string, effect Callback[T]) {
	o.BindRaw(pattern, func(msg *osc.Message, captures []string) error {
		if len(msg.Arguments) == 0 {
			return errors.New("missing argument")
		}
		val, err := convert[T](msg.Arguments[0])
		if err != nil {
			return err
		}
		return effect(Args[T]{Captures: captures, Value: val})
	})
}

func (o *OscDevice) BindInt(pattern string, effect Callback[int64]) {
	Bind(o, pattern, effect)
}

func (o *OscDevice) BindFloat(pattern string, effect Callback[float64]) {
	Bind(o, pattern, effect)
}

func (o *OscDevice) BindString(pattern string, effect Callback[string]) {
	Bind(o, pattern, effect)
}

func (o *OscDevice) BindBool(pattern string, effect Callback[bool]) {
	Bind(o, pattern, effect)
}

// Run serves incoming messages until ctx is done.
func (o *OscDevice) Run(ctx context.Context) error {
	conn, err := net.ListenPacket("udp", o.listenAddr)
	if err != nil {
		return fmt.Errorf("listening for OSC on %s: %w", o.listenAddr, err)
	}
	oscInLog.Info("Starting OSC server", "addr", conn.LocalAddr().String())

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	server := &osc.Server{Dispatcher: o.dispatcher}
	err = server.Serve(conn)
	if ctx.Err() != nil {
		return nil
	}
	return fmt.Errorf("serving OSC on %s: %w", o.listenAddr, err)
}
