package mode

import (
	"errors"
	"sync"

	"golang.org/x/exp/constraints"
)

type callbackEvent[M constraints.Integer] struct {
	mode     M
	callback func() error
}

// ModeManager sets the current mode and manages which effects are active depending on the active mode.
//
// Modes are the integers [0, count). Effects bound with Bind only run while their mode is active, and
// callbacks registered with OnTransition run each time their mode is entered.
type ModeManager[M constraints.Integer] struct {
	mu sync.Mutex

	currMode  M
	count     M
	callbacks []callbackEvent[M]
}

// NewModeManager returns a manager over count modes, starting in startingMode.
func NewModeManager[M constraints.Integer](startingMode, count M) *ModeManager[M] {
	if count <= 0 {
		panic("mode: count must be positive")
	}
	if startingMode < 0 || startingMode >= count {
		panic("mode: starting mode out of range")
	}
	return &ModeManager[M]{
		currMode:  startingMode,
		count:     count,
		callbacks: make([]callbackEvent[M], 0),
	}
}

// CurrMode returns the active mode.
func (c *ModeManager[M]) CurrMode() M {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currMode
}

// Count returns the number of modes.
func (c *ModeManager[M]) Count() M {
	return c.count
}

// OnTransition registers a callback to run each time mode becomes active.
func (c *ModeManager[M]) OnTransition(mode M, callback func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.callbacks = append(c.callbacks, callbackEvent[M]{mode: mode, callback: callback})
}

// SetMode sets the currently active mode.
//
// If the new mode is not the same as the current mode, every callback registered for it runs after the switch.
// Callback errors are joined; they never prevent the switch.
func (c *ModeManager[M]) SetMode(newMode M) (errs error) {
	if newMode < 0 || newMode >= c.count {
		return errors.New("mode: out of range")
	}
	c.mu.Lock()
	if newMode == c.currMode {
		c.mu.Unlock()
		return nil
	}
	c.currMode = newMode
	var pending []func() error
	for _, cb := range c.callbacks {
		if cb.mode == newMode {
			pending = append(pending, cb.callback)
		}
	}
	c.mu.Unlock()

	for _, callback := range pending {
		if err := callback(); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return errs
}

// Cycle moves step modes forward (negative steps move backward), wrapping around in both directions,
// and returns the new mode.
func (c *ModeManager[M]) Cycle(step int) (M, error) {
	c.mu.Lock()
	n := int(c.count)
	next := M(((int(c.currMode)+step)%n + n) % n)
	c.mu.Unlock()
	return next, c.SetMode(next)
}

// Bind binds the callback to the binding site and adds a guard to ensure that the callback is only called for the specified mode
//
// The binder comes from whatever produces the values (a device endpoint, a dispatcher) and decides the argument type.
func Bind[A any, M constraints.Integer](mm *ModeManager[M], mode M, binder func(func(A) error), callback func(A) error) {
	binder(Guard(mm, mode, callback))
}

// Guard wraps callback so that it is a no-op unless mode is active.
func Guard[A any, M constraints.Integer](mm *ModeManager[M], mode M, callback func(A) error) func(A) error {
	return func(args A) error {
		if mm.CurrMode() == mode {
			return callback(args)
		}
		return nil
	}
}
