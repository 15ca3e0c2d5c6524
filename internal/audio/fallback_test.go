package audio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackDevice_UsesFirstThatOpens(t *testing.T) {
	broken := &RecordingDevice{OpenErr: ErrUnavailable}
	bell := &RecordingDevice{}
	d := NewFallbackDevice(broken, bell)

	require.NoError(t, d.Open())
	assert.Same(t, bell, d.Active())

	d.SetTone(300, 0.1)
	d.Beep(Beep{Frequency: 800})
	d.Halt()
	assert.Empty(t, broken.Tones())
	assert.Len(t, bell.Tones(), 1)
	assert.Len(t, bell.Beeps(), 1)
	assert.Equal(t, 1, bell.Halts())

	// already open
	require.NoError(t, d.Open())
	assert.Equal(t, 1, bell.Opens())

	require.NoError(t, d.Close())
	assert.True(t, bell.Closed())
	assert.Nil(t, d.Active())
}

func TestFallbackDevice_AllFail(t *testing.T) {
	other := errors.New("no sound card")
	d := NewFallbackDevice(&RecordingDevice{OpenErr: ErrUnavailable}, &RecordingDevice{OpenErr: other})

	err := d.Open()
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, other)
	assert.Nil(t, d.Active())
	assert.NotPanics(t, func() { d.SetTone(200, 0.1) })
	assert.NoError(t, d.Close())
}

func TestFallbackDevice_Empty(t *testing.T) {
	assert.ErrorIs(t, NewFallbackDevice().Open(), ErrUnavailable)
}
