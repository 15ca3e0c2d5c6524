package audio

import "fmt"

// Beeper rings the terminal bell. tcell.Screen satisfies it.
type Beeper interface {
	Beep() error
}

// TerminalDevice plays beeps through the terminal bell. It has no oscillator, so the
// continuous tone is silent.
type TerminalDevice struct {
	beeper Beeper
}

// NewTerminalDevice creates a device ringing the given bell
func NewTerminalDevice(beeper Beeper) *TerminalDevice {
	return &TerminalDevice{beeper: beeper}
}

func (d *TerminalDevice) Open() error {
	if d.beeper == nil {
		return fmt.Errorf("%w: no terminal bell", ErrUnavailable)
	}
	return nil
}

func (d *TerminalDevice) Close() error { return nil }

func (d *TerminalDevice) SetTone(_, _ float64) {}

func (d *TerminalDevice) Halt() {}

func (d *TerminalDevice) Beep(Beep) {
	if d.beeper == nil {
		return
	}
	// A lost bell is not worth surfacing
	_ = d.beeper.Beep()
}
