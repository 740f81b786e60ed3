package devices

import (
	"testing"

	"github.com/hypebeast/go-osc/osc"
	"github.com/stretchr/testify/assert"
)

func TestMatchAddr(t *testing.T) {
	tests := []struct {
		path           string
		addr           string
		expectMatch    bool
		expectCaptures []string
	}{
		{"/mixer/@/level", "/mixer/3/level", true, []string{"3"}},
		{"/mixer/@/solo", "/mixer/16/solo", true, []string{"16"}},
		{"/mixer/@/@", "/mixer/2/mute", true, []string{"2", "mute"}},
		{"/mixer/@/level", "/mixer/3/mute", false, nil},
		{"/mixer/@/level", "/mixer/3", false, nil},
		{"/mixer/@/level", "/mixer/3/level/extra", false, nil},
		{"/chains", "/chains", true, nil},
		{"/chains", "/chain", false, nil},

		{"/cuia/*", "/cuia", true, nil},
		{"/cuia/*", "/cuia/ZYNPOT", true, nil},
		{"/cuia/*", "/cuia/ZYNSWITCH/extra", true, nil},
		{"/meta/logging/@/level/*", "/meta/logging/app/level", true, []string{"app"}},
		{"/meta/logging/@/level/*", "/meta/logging/app", false, nil},
		{"/meta/logging/@/level/*", "/meta/logging/app/levelx", false, nil},
	}

	for _, tt := range tests {
		ok, caps := matchAddr(tt.path, tt.addr)
		assert.Equal(t, tt.expectMatch, ok, "match result mismatch for path=%q addr=%q", tt.path, tt.addr)
		if tt.expectMatch {
			assert.Equal(t, tt.expectCaptures, caps, "captures mismatch for path=%q addr=%q", tt.path, tt.addr)
		}
	}
}

func TestDispatcherRunsEveryMatchInOrder(t *testing.T) {
	assert := assert.New(t)
	d := NewDispatcher()

	var seen []string
	d.AddMsgHandler("/mixer/@/level", func(msg *osc.Message, captures []string) {
		seen = append(seen, "level:"+captures[0])
	})
	d.AddMsgHandler("/mixer/*", func(msg *osc.Message, captures []string) {
		seen = append(seen, "any")
	})

	d.Dispatch(osc.NewMessage("/mixer/4/level", float32(0.5)))
	assert.Equal([]string{"level:4", "any"}, seen)

	seen = nil
	d.Dispatch(&osc.Bundle{
		Messages: []*osc.Message{osc.NewMessage("/mixer/1/level"), osc.NewMessage("/other")},
	})
	assert.Equal([]string{"level:1", "any"}, seen)
}

func TestConvert(t *testing.T) {
	assert := assert.New(t)

	i, err := convert[int64](int32(42))
	assert.NoError(err)
	assert.Equal(int64(42), i)

	i, err = convert[int64]("17")
	assert.NoError(err)
	assert.Equal(int64(17), i)

	_, err = convert[int64]("nope")
	assert.Error(err)

	f, err := convert[float64](float32(0.5))
	assert.NoError(err)
	assert.InDelta(0.5, f, 1e-9)

	f, err = convert[float64](int32(3))
	assert.NoError(err)
	assert.Equal(3.0, f)

	_, err = convert[float64]([]byte{1})
	assert.Error(err)

	s, err := convert[string](nil)
	assert.NoError(err)
	assert.Equal("", s)

	s, _ = convert[string](int32(0))
	assert.Equal("0", s)

	b, err := convert[bool](int32(1))
	assert.NoError(err)
	assert.True(b)

	b, _ = convert[bool](float32(0))
	assert.False(b)

	b, _ = convert[bool]("true")
	assert.True(b)
}
