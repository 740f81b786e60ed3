package devicestesting

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// CallbackTracker helps track and verify callback invocations in tests
type CallbackTracker struct {
	mu   sync.Mutex
	args []any
	t    *testing.T
}

func NewCallbackTracker(t *testing.T) *CallbackTracker {
	return &CallbackTracker{t: t}
}

// WrapCallback wraps a callback function to track its invocations
// The wrapped function will have the same signature as the original
func WrapCallback[T any](ct *CallbackTracker, callback func(T) error) func(T) error {
	return func(arg T) error {
		ct.mu.Lock()
		ct.args = append(ct.args, arg)
		ct.mu.Unlock()

		if callback != nil {
			return callback(arg)
		}
		return nil
	}
}

func (ct *CallbackTracker) Calls() int {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	return len(ct.args)
}

// AssertCalled asserts that tracked callbacks ran exactly n times in total
func (ct *CallbackTracker) AssertCalled(expectedCalls int, msg ...any) bool {
	return assert.Equal(ct.t, expectedCalls, ct.Calls(), msg...)
}

// AssertEventuallyCalled waits for asynchronous dispatch to reach n calls
func (ct *CallbackTracker) AssertEventuallyCalled(expectedCalls int, msg ...any) bool {
	return assert.Eventually(ct.t, func() bool {
		return ct.Calls() == expectedCalls
	}, waitFor, tick, msg...)
}

// Args returns every argument seen so far, oldest first
func (ct *CallbackTracker) Args() []any {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	return append([]any(nil), ct.args...)
}

// LastArg returns the argument of the most recent invocation, or nil if never called
func (ct *CallbackTracker) LastArg() any {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	if len(ct.args) == 0 {
		return nil
	}
	return ct.args[len(ct.args)-1]
}

func (ct *CallbackTracker) Reset() {
	ct.mu.Lock()
	ct.args = nil
	ct.mu.Unlock()
}
