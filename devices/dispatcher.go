package devices

import (
	"strings"
	"sync"

	"github.com/hypebeast/go-osc/osc"
)

type namedHandler struct {
	pattern string
	handler func(msg *osc.Message, captures []string)
}

// Dispatcher is an osc.Dispatcher that routes messages by address pattern.
//
// A "@" segment matches any single segment and captures it. A trailing "*" matches any remaining
// segments without capturing them. Every matching handler runs, in registration order.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers []namedHandler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

func (s *Dispatcher) AddMsgHandler(pattern string, handler func(msg *osc.Message, captures []string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, namedHandler{pattern, handler})
}

// matchAddr checks if messageAddr matches the path pattern and returns the captured segments.
func matchAddr(path, messageAddr string) (bool, []string) {
	pathSegs := strings.Split(path, "/")
	addrSegs := strings.Split(messageAddr, "/")

	endsWithStar := pathSegs[len(pathSegs)-1] == "*"
	matchLen := len(pathSegs)
	if endsWithStar {
		matchLen--
		if len(addrSegs) < matchLen {
			return false, nil
		}
	} else if len(pathSegs) != len(addrSegs) {
		return false, nil
	}

	var captures []string
	for i := 0; i < matchLen; i++ {
		p := pathSegs[i]
		if p == "@" {
			captures = append(captures, addrSegs[i])
		} else if p != addrSegs[i] {
			return false, nil
		}
	}
	return true, captures
}

// Dispatch implements osc.Dispatcher. Bundle time tags are ignored; their messages dispatch immediately.
func (s *Dispatcher) Dispatch(packet osc.Packet) {
	switch p := packet.(type) {
	case *osc.Message:
		s.dispatchMessage(p)
	case *osc.Bundle:
		for _, msg := range p.Messages {
			s.dispatchMessage(msg)
		}
		for _, b := range p.Bundles {
			s.Dispatch(b)
		}
	}
}

func (s *Dispatcher) dispatchMessage(msg *osc.Message) {
	oscInLog.Debug("received OSC message", "address", msg.Address, "arguments", msg.Arguments)
	s.mu.RLock()
	handlers := append([]namedHandler(nil), s.handlers...)
	s.mu.RUnlock()

	matched := false
	for _, h := range handlers {
		if ok, captures := matchAddr(h.pattern, msg.Address); ok {
			matched = true
			h.handler(msg, captures)
		}
	}
	if !matched {
		oscInLog.Debug("no handler for OSC message", "address", msg.Address)
	}
}
