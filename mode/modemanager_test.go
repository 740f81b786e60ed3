package mode

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bank uint8

func TestCycleWrapsBothWays(t *testing.T) {
	assert := assert.New(t)

	mm := NewModeManager[bank](1, 3)
	next, err := mm.Cycle(1)
	assert.NoError(err)
	assert.Equal(bank(2), next)

	next, _ = mm.Cycle(1)
	assert.Equal(bank(0), next)

	next, _ = mm.Cycle(-1)
	assert.Equal(bank(2), next)
	assert.Equal(bank(2), mm.CurrMode())
}

func TestCycleInverse(t *testing.T) {
	for start := bank(0); start < 3; start++ {
		mm := NewModeManager[bank](start, 3)
		_, _ = mm.Cycle(1)
		_, _ = mm.Cycle(-1)
		assert.Equal(t, start, mm.CurrMode())

		_, _ = mm.Cycle(-1)
		_, _ = mm.Cycle(1)
		assert.Equal(t, start, mm.CurrMode())
	}
}

func TestOnTransition(t *testing.T) {
	require := require.New(t)

	mm := NewModeManager[bank](0, 3)
	var entered []bank
	for m := bank(0); m < 3; m++ {
		m := m
		mm.OnTransition(m, func() error {
			entered = append(entered, m)
			return nil
		})
	}
	boom := errors.New("boom")
	mm.OnTransition(2, func() error { return boom })

	require.NoError(mm.SetMode(1))
	require.NoError(mm.SetMode(1)) // unchanged: no callback
	require.ErrorIs(mm.SetMode(2), boom)
	require.Equal(bank(2), mm.CurrMode())
	require.Equal([]bank{1, 2}, entered)

	require.Error(mm.SetMode(3))
	require.Equal(bank(2), mm.CurrMode())
}

func TestBindGuardsByMode(t *testing.T) {
	assert := assert.New(t)

	mm := NewModeManager[bank](0, 3)
	var bound []func(int) error
	binder := func(cb func(int) error) { bound = append(bound, cb) }

	var got []int
	Bind(mm, 0, binder, func(v int) error { got = append(got, v); return nil })
	Bind(mm, 1, binder, func(v int) error { got = append(got, -v); return nil })

	fire := func(v int) {
		for _, cb := range bound {
			assert.NoError(cb(v))
		}
	}
	fire(5)
	assert.NoError(mm.SetMode(1))
	fire(7)
	assert.NoError(mm.SetMode(2))
	fire(9)

	assert.Equal([]int{5, -7}, got)
}

func TestNewModeManagerPanicsOutOfRange(t *testing.T) {
	assert.Panics(t, func() { NewModeManager[bank](3, 3) })
	assert.Panics(t, func() { NewModeManager[int](0, 0) })
}
