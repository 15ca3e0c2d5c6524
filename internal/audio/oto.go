package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// DefaultSampleRate of the system output
const DefaultSampleRate = 44100

const (
	otoBufferSize = 40 * time.Millisecond

	// the synthesizer retargets ~60 times a second; the mixer glides between those steps
	gainGlide    = 5 * time.Millisecond
	silenceFloor = 1e-4
)

// OtoDevice renders the oscillator and the beeps through the system audio output
type OtoDevice struct {
	mu     sync.Mutex
	mixer  *mixer
	ctx    *oto.Context
	player *oto.Player
	open   bool
}

// NewOtoDevice creates a mono float32 device. Nothing is acquired until Open.
func NewOtoDevice(sampleRate int) *OtoDevice {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &OtoDevice{mixer: newMixer(sampleRate)}
}

// Open creates the audio context and starts pulling samples. oto allows one context per
// process, so it is kept across Close/Open.
func (d *OtoDevice) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.open {
		return nil
	}
	if d.ctx == nil {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   d.mixer.sampleRate,
			ChannelCount: 1,
			Format:       oto.FormatFloat32LE,
			BufferSize:   otoBufferSize,
		})
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		<-ready
		d.ctx = ctx
		d.player = ctx.NewPlayer(d.mixer)
	}
	d.mixer.reset()
	d.player.Play()
	d.open = true
	return nil
}

func (d *OtoDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return nil
	}
	d.open = false
	d.player.Pause()
	d.mixer.reset()
	return d.player.Err()
}

func (d *OtoDevice) SetTone(frequency, gain float64) { d.mixer.setTone(frequency, gain) }

func (d *OtoDevice) Halt() { d.mixer.halt() }

func (d *OtoDevice) Beep(b Beep) { d.mixer.addBeep(b) }

type beepVoice struct {
	frequency float64
	phase     float64
	pos       int
	length    int
	startGain float64
	endGain   float64
}

// mixer is the io.Reader oto pulls from: one sine oscillator plus decaying beeps, written as
// little-endian float32 mono samples.
type mixer struct {
	mu         sync.Mutex
	sampleRate int
	glide      float64

	toneOn     bool
	frequency  float64
	phase      float64
	gain       float64
	targetGain float64

	beeps []*beepVoice
}

func newMixer(sampleRate int) *mixer {
	return &mixer{
		sampleRate: sampleRate,
		glide:      1 - math.Exp(-1/(gainGlide.Seconds()*float64(sampleRate))),
	}
}

func (m *mixer) setTone(frequency, gain float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toneOn = true
	m.frequency = frequency
	m.targetGain = gain
}

// halt fades the oscillator out over the glide instead of cutting it mid-cycle
func (m *mixer) halt() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toneOn = false
	m.targetGain = 0
}

func (m *mixer) addBeep(b Beep) {
	length := int(b.Duration.Seconds() * float64(m.sampleRate))
	if length <= 0 || b.Frequency <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.beeps = append(m.beeps, &beepVoice{
		frequency: b.Frequency,
		length:    length,
		startGain: b.StartGain,
		endGain:   b.EndGain,
	})
}

func (m *mixer) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toneOn = false
	m.gain = 0
	m.targetGain = 0
	m.phase = 0
	m.beeps = nil
}

func (m *mixer) Read(p []byte) (int, error) {
	n := len(p) / 4
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(float32(m.nextLocked())))
	}
	return n * 4, nil
}

func (m *mixer) nextLocked() float64 {
	var sample float64

	m.gain += (m.targetGain - m.gain) * m.glide
	if !m.toneOn && m.gain < silenceFloor {
		m.gain = 0
		m.phase = 0
	} else {
		sample += m.gain * math.Sin(m.phase)
		m.phase = advancePhase(m.phase, m.frequency, m.sampleRate)
	}

	live := m.beeps[:0]
	for _, b := range m.beeps {
		gain := exponentialRamp(b.startGain, b.endGain, float64(b.pos)/float64(b.length))
		sample += gain * math.Sin(b.phase)
		b.phase = advancePhase(b.phase, b.frequency, m.sampleRate)
		b.pos++
		if b.pos < b.length {
			live = append(live, b)
		}
	}
	for i := len(live); i < len(m.beeps); i++ {
		m.beeps[i] = nil
	}
	m.beeps = live

	return math.Max(-1, math.Min(1, sample))
}

func advancePhase(phase, frequency float64, sampleRate int) float64 {
	return math.Mod(phase+2*math.Pi*frequency/float64(sampleRate), 2*math.Pi)
}
