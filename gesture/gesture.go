// Package gesture turns button-down/button-up pairs into press-duration classes.
package gesture

import (
	"fmt"
	"sync"
	"time"
)

// Class is the duration class of a completed press.
type Class uint8

const (
	Short Class = iota
	Bold
	Long
)

const (
	DefaultBoldThreshold = 500 * time.Millisecond
	DefaultLongThreshold = 1500 * time.Millisecond
)

func (c Class) String() string {
	switch c {
	case Short:
		return "short"
	case Bold:
		return "bold"
	case Long:
		return "long"
	default:
		return fmt.Sprintf("class(%d)", uint8(c))
	}
}

// Code is the single-letter form used by the host's switch command (S, B or L).
func (c Class) Code() string {
	switch c {
	case Bold:
		return "B"
	case Long:
		return "L"
	default:
		return "S"
	}
}

// Thresholds partition press durations: [0, Bold) is Short, [Bold, Long] is Bold, (Long, inf) is Long.
type Thresholds struct {
	Bold time.Duration
	Long time.Duration
}

func DefaultThresholds() Thresholds {
	return Thresholds{Bold: DefaultBoldThreshold, Long: DefaultLongThreshold}
}

// Classify maps an elapsed press duration onto a Class. Negative durations count as Short.
func (t Thresholds) Classify(elapsed time.Duration) Class {
	switch {
	case elapsed < t.Bold:
		return Short
	case elapsed <= t.Long:
		return Bold
	default:
		return Long
	}
}

// Gesture is emitted once per completed press.
type Gesture[K comparable] struct {
	Button K
	Class  Class
	// Shift reports whether the shift modifier was held when the button went down.
	Shift bool
}

type press struct {
	at    time.Time
	shift bool
}

// Classifier tracks open presses per button identity.
type Classifier[K comparable] struct {
	mu         sync.Mutex
	thresholds Thresholds
	presses    map[K]press
}

func NewClassifier[K comparable](t Thresholds) *Classifier[K] {
	return &Classifier[K]{
		thresholds: t,
		presses:    make(map[K]press),
	}
}

// Down records the start of a press. A second Down before the matching Up replaces the first.
func (c *Classifier[K]) Down(button K, at time.Time, shift bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.presses[button] = press{at: at, shift: shift}
}

// Up completes a press and returns its gesture. Without a recorded Down it returns false.
func (c *Classifier[K]) Up(button K, at time.Time) (Gesture[K], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.presses[button]
	if !ok {
		return Gesture[K]{}, false
	}
	delete(c.presses, button)
	return Gesture[K]{
		Button: button,
		Class:  c.thresholds.Classify(at.Sub(p.at)),
		Shift:  p.shift,
	}, true
}

// Pending reports whether button has an open press.
func (c *Classifier[K]) Pending(button K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.presses[button]
	return ok
}

// Reset drops every open press, e.g. after the device reconnects.
func (c *Classifier[K]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.presses = make(map[K]press)
}
