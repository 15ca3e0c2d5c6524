// Package audio synthesizes the cadence feedback tone and the rest-interval beeps.
package audio

import (
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Envelope constants
const (
	DefaultStartFrequency = 200.0

	attackDuration  = 100 * time.Millisecond
	attackPeak      = 0.1
	releaseDuration = 100 * time.Millisecond
	releaseFloor    = 0.001

	frequencyTimeConstant = 50 * time.Millisecond
	volumeTimeConstant    = 100 * time.Millisecond

	beepGain      = 0.1
	beepFloor     = 0.001
	DefaultBeepHz = 800.0
	DefaultBeep   = 100 * time.Millisecond

	restPulseDuration = 500 * time.Millisecond
	restPulseGain     = 0.3
	restPulseFloor    = 0.01
	restFirstPulseHz  = 800.0
	restSecondPulseHz = 1000.0
	restPulseGap      = 300 * time.Millisecond
)

type voiceStage int

const (
	stageAttack voiceStage = iota
	stageSustain
	stageRelease
)

// voice is the single continuous oscillator
type voice struct {
	stage       voiceStage
	stageTime   time.Duration
	frequency   float64
	gain        float64
	releaseFrom float64
	targetFreq  float64
	targetGain  float64
}

type pendingBeep struct {
	delay time.Duration
	beep  Beep
}

// Synthesizer owns the audio device and the continuous feedback tone. All state
// changes are smoothed over time by Advance; none of the methods block.
type Synthesizer struct {
	mu          sync.Mutex
	device      Device
	logger      logrus.FieldLogger
	initialized bool
	available   bool
	muted       bool
	voice       *voice
	pending     []pendingBeep
}

// NewSynthesizer creates a Synthesizer for the given device. A nil device behaves as NopDevice.
func NewSynthesizer(device Device, logger logrus.FieldLogger) *Synthesizer {
	if logger == nil {
		panic("Synthesizer: logger cannot be nil")
	}
	if device == nil {
		device = NopDevice{}
	}
	return &Synthesizer{device: device, logger: logger}
}

// Init acquires the device once. A device that fails to open leaves the synthesizer
// silent; timing logic keeps working.
func (s *Synthesizer) Init() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return
	}
	s.initialized = true
	if err := s.device.Open(); err != nil {
		s.logger.Warnf("Synthesizer: audio disabled: %v", err)
		s.available = false
		return
	}
	s.available = true
	s.logger.Debugf("Synthesizer: audio device acquired")
}

// Release halts any output and closes the device
func (s *Synthesizer) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return nil
	}
	s.haltLocked()
	s.pending = nil
	s.initialized = false
	if !s.available {
		return nil
	}
	s.available = false
	return s.device.Close()
}

// Available reports whether the device was acquired
func (s *Synthesizer) Available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.available
}

// Muted reports whether output is muted
func (s *Synthesizer) Muted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted
}

// Playing reports whether a continuous tone exists (including its release tail)
func (s *Synthesizer) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voice != nil
}

// StartTone starts the continuous tone, ramping the volume up from silence. Any previous
// oscillator is torn down first.
func (s *Synthesizer) StartTone(frequency float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.available || s.muted {
		return
	}
	if s.voice != nil {
		s.haltLocked()
	}
	s.voice = &voice{
		stage:      stageAttack,
		frequency:  frequency,
		targetFreq: frequency,
		targetGain: attackPeak,
	}
	s.device.SetTone(frequency, 0)
}

// UpdateFrequency retargets the tone frequency
func (s *Synthesizer) UpdateFrequency(frequency float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.voice == nil || s.voice.stage == stageRelease {
		return
	}
	s.voice.targetFreq = frequency
}

// ModulateVolume retargets the tone volume
func (s *Synthesizer) ModulateVolume(volume float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.voice == nil || s.muted || s.voice.stage == stageRelease {
		return
	}
	s.voice.targetGain = volume
}

// Retarget applies a tone target in one call
func (s *Synthesizer) Retarget(target Target) {
	s.UpdateFrequency(target.Frequency)
	s.ModulateVolume(target.Volume)
}

// StopTone fades the tone out; the oscillator halts once the release completes
func (s *Synthesizer) StopTone() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.voice == nil || s.voice.stage == stageRelease {
		return
	}
	s.voice.stage = stageRelease
	s.voice.stageTime = 0
	s.voice.releaseFrom = s.voice.gain
}

// ToggleMute flips the mute flag and returns the new value. Muting silences at once.
func (s *Synthesizer) ToggleMute() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setMutedLocked(!s.muted)
	return s.muted
}

// SetMuted sets the mute flag
func (s *Synthesizer) SetMuted(muted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setMutedLocked(muted)
}

func (s *Synthesizer) setMutedLocked(muted bool) {
	s.muted = muted
	if muted {
		s.haltLocked()
		s.pending = nil
	}
}

// Beep plays a short one-shot tone with exponential decay
func (s *Synthesizer) Beep(frequency float64, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.available || s.muted {
		return
	}
	s.device.Beep(Beep{Frequency: frequency, Duration: duration, StartGain: beepGain, EndGain: beepFloor})
}

// RestCompleteSignal plays the two-pulse "rest over" pattern. The second, higher pulse is
// released by Advance once the gap has elapsed.
func (s *Synthesizer) RestCompleteSignal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.available || s.muted {
		return
	}
	s.device.Beep(Beep{
		Frequency: restFirstPulseHz,
		Duration:  restPulseDuration,
		StartGain: restPulseGain,
		EndGain:   restPulseFloor,
	})
	s.pending = append(s.pending, pendingBeep{
		delay: restPulseGap,
		beep: Beep{
			Frequency: restSecondPulseHz,
			Duration:  restPulseDuration,
			StartGain: restPulseGain,
			EndGain:   restPulseFloor,
		},
	})
}

// Advance moves the envelope and any scheduled beeps forward by dt
func (s *Synthesizer) Advance(dt time.Duration) {
	if dt <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.advancePendingLocked(dt)

	v := s.voice
	if v == nil {
		return
	}
	v.frequency = approach(v.frequency, v.targetFreq, dt, frequencyTimeConstant)

	switch v.stage {
	case stageAttack:
		v.stageTime += dt
		if v.stageTime < attackDuration {
			v.gain = attackPeak * float64(v.stageTime) / float64(attackDuration)
			break
		}
		overshoot := v.stageTime - attackDuration
		v.stage = stageSustain
		v.stageTime = 0
		v.gain = approach(attackPeak, v.targetGain, overshoot, volumeTimeConstant)
	case stageSustain:
		v.gain = approach(v.gain, v.targetGain, dt, volumeTimeConstant)
	case stageRelease:
		v.stageTime += dt
		if v.stageTime >= releaseDuration {
			s.haltLocked()
			return
		}
		v.gain = exponentialRamp(v.releaseFrom, releaseFloor, float64(v.stageTime)/float64(releaseDuration))
	}
	s.device.SetTone(v.frequency, v.gain)
}

func (s *Synthesizer) advancePendingLocked(dt time.Duration) {
	if len(s.pending) == 0 {
		return
	}
	remaining := s.pending[:0]
	for _, p := range s.pending {
		p.delay -= dt
		if p.delay <= 0 {
			if s.available && !s.muted {
				s.device.Beep(p.beep)
			}
			continue
		}
		remaining = append(remaining, p)
	}
	s.pending = remaining
}

// haltLocked stops the oscillator immediately
func (s *Synthesizer) haltLocked() {
	if s.voice == nil {
		return
	}
	s.voice = nil
	s.device.Halt()
}

// approach moves current towards target with time constant tau
func approach(current, target float64, dt, tau time.Duration) float64 {
	if tau <= 0 {
		return target
	}
	k := 1 - math.Exp(-float64(dt)/float64(tau))
	return current + (target-current)*k
}

// exponentialRamp interpolates from -> to on a log scale; t in [0, 1]
func exponentialRamp(from, to, t float64) float64 {
	if from <= to {
		return to
	}
	return from * math.Pow(to/from, t)
}
