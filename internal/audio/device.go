package audio

import (
	"errors"
	"sync"
	"time"
)

// ErrUnavailable is returned by devices that cannot produce sound on this host
var ErrUnavailable = errors.New("audio output unavailable")

// Beep describes a one-shot tone with an exponential gain decay
type Beep struct {
	Frequency float64
	Duration  time.Duration
	StartGain float64
	EndGain   float64
}

// Device is the sound output driven by the Synthesizer. It has a single continuous
// oscillator plus fire-and-forget beeps.
type Device interface {
	// Open acquires the output; called once by Synthesizer.Init
	Open() error
	// Close releases the output
	Close() error
	// SetTone sets the continuous oscillator frequency (Hz) and gain, starting it if needed
	SetTone(frequency, gain float64)
	// Halt stops the continuous oscillator
	Halt()
	// Beep plays a one-shot tone
	Beep(b Beep)
}

// NopDevice is a device that is never available
type NopDevice struct{}

func (NopDevice) Open() error { return ErrUnavailable }
func (NopDevice) Close() error { return nil }
func (NopDevice) SetTone(_, _ float64) {}
func (NopDevice) Halt() {}
func (NopDevice) Beep(Beep) {}

// ToneSample is one SetTone call seen by a RecordingDevice
type ToneSample struct {
	Frequency float64
	Gain      float64
}

// RecordingDevice stores everything the synthesizer asks of it
type RecordingDevice struct {
	OpenErr error

	mu      sync.Mutex
	opens   int
	closed  bool
	playing bool
	tones   []ToneSample
	halts   int
	beeps   []Beep
}

func (d *RecordingDevice) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opens++
	return d.OpenErr
}

func (d *RecordingDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.playing = false
	return nil
}

func (d *RecordingDevice) SetTone(frequency, gain float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.playing = true
	d.tones = append(d.tones, ToneSample{Frequency: frequency, Gain: gain})
}

func (d *RecordingDevice) Halt() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.playing = false
	d.halts++
}

func (d *RecordingDevice) Beep(b Beep) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.beeps = append(d.beeps, b)
}

// Opens returns how many times Open was called
func (d *RecordingDevice) Opens() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opens
}

// Playing reports whether the continuous oscillator is running
func (d *RecordingDevice) Playing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.playing
}

// Closed reports whether Close was called
func (d *RecordingDevice) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// Halts returns how many times the oscillator was halted
func (d *RecordingDevice) Halts() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.halts
}

// Tones returns a copy of all SetTone calls
func (d *RecordingDevice) Tones() []ToneSample {
	d.mu.Lock()
	defer d.mu.Unlock()
	result := make([]ToneSample, len(d.tones))
	copy(result, d.tones)
	return result
}

// LastTone returns the most recent SetTone call
func (d *RecordingDevice) LastTone() (ToneSample, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.tones) == 0 {
		return ToneSample{}, false
	}
	return d.tones[len(d.tones)-1], true
}

// Beeps returns a copy of all beeps played
func (d *RecordingDevice) Beeps() []Beep {
	d.mu.Lock()
	defer d.mu.Unlock()
	result := make([]Beep, len(d.beeps))
	copy(result, d.beeps)
	return result
}
