package audio

import (
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRate = 8000

func readSamples(t *testing.T, m *mixer, n int) []float64 {
	t.Helper()
	buf := make([]byte, n*4)
	read, err := m.Read(buf)
	require.NoError(t, err)
	require.Equal(t, len(buf), read)

	samples := make([]float64, n)
	for i := range samples {
		samples[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:])))
	}
	return samples
}

func peak(samples []float64) float64 {
	var p float64
	for _, s := range samples {
		p = math.Max(p, math.Abs(s))
	}
	return p
}

func signChanges(samples []float64) int {
	changes := 0
	for i := 1; i < len(samples); i++ {
		if (samples[i-1] < 0) != (samples[i] < 0) {
			changes++
		}
	}
	return changes
}

func TestMixer_SilentWithoutTone(t *testing.T) {
	m := newMixer(testRate)
	assert.Zero(t, peak(readSamples(t, m, 400)))
}

func TestMixer_ReadWholeSamplesOnly(t *testing.T) {
	m := newMixer(testRate)
	n, err := m.Read(make([]byte, 7))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestMixer_ToneFollowsFrequencyAndGain(t *testing.T) {
	m := newMixer(testRate)
	m.setTone(500, 0.1)

	samples := readSamples(t, m, testRate)[testRate/2:]
	assert.InDelta(t, 0.1, peak(samples), 0.005)
	// two sign changes per cycle over half a second
	assert.InDelta(t, 500, signChanges(samples), 3)

	m.setTone(1000, 0.1)
	samples = readSamples(t, m, testRate/2)
	assert.InDelta(t, 1000, signChanges(samples), 3)
}

func TestMixer_HaltFadesToSilence(t *testing.T) {
	m := newMixer(testRate)
	m.setTone(440, 0.2)
	readSamples(t, m, testRate/10)

	m.halt()
	fade := readSamples(t, m, testRate/10)
	assert.Positive(t, peak(fade[:10]), "halt must not cut mid-cycle")
	assert.Zero(t, peak(fade[len(fade)-100:]))
}

func TestMixer_BeepDecaysAndEnds(t *testing.T) {
	m := newMixer(testRate)
	m.addBeep(Beep{Frequency: 800, Duration: 100 * time.Millisecond, StartGain: 0.3, EndGain: 0.01})

	samples := readSamples(t, m, testRate/5)
	beep := samples[:testRate/10]
	head, tail := beep[:testRate/100], beep[len(beep)-testRate/100:]
	assert.InDelta(t, 0.3, peak(head), 0.03)
	assert.Less(t, peak(tail), 0.02)
	assert.Zero(t, peak(samples[testRate/10:]))
	assert.Empty(t, m.beeps)
}

func TestMixer_BeepsMixWithTone(t *testing.T) {
	m := newMixer(testRate)
	m.setTone(200, 0.1)
	readSamples(t, m, testRate/10)
	m.addBeep(Beep{Frequency: 1000, Duration: 50 * time.Millisecond, StartGain: 0.3, EndGain: 0.3})

	assert.Greater(t, peak(readSamples(t, m, testRate/20)), 0.3)
}

func TestMixer_IgnoresEmptyBeep(t *testing.T) {
	m := newMixer(testRate)
	m.addBeep(Beep{Frequency: 800})
	m.addBeep(Beep{Duration: time.Second})
	assert.Empty(t, m.beeps)
}

// mixerDevice exposes a mixer as a Device without acquiring system audio
type mixerDevice struct {
	*mixer
}

func (mixerDevice) Open() error            { return nil }
func (mixerDevice) Close() error           { return nil }
func (d mixerDevice) SetTone(f, g float64) { d.setTone(f, g) }
func (d mixerDevice) Halt()                { d.halt() }
func (d mixerDevice) Beep(b Beep)          { d.addBeep(b) }

func TestSynthesizer_ToneIsAudibleOnMixer(t *testing.T) {
	logger, _ := test.NewNullLogger()
	m := newMixer(testRate)
	s := NewSynthesizer(mixerDevice{m}, logger)
	s.Init()
	s.StartTone(DefaultStartFrequency)
	for i := 0; i < 30; i++ {
		s.Advance(10 * time.Millisecond)
	}

	assert.InDelta(t, attackPeak, peak(readSamples(t, m, testRate/10)), 0.01)

	s.RestCompleteSignal()
	s.Advance(restPulseGap)
	assert.Len(t, m.beeps, 2)
}
