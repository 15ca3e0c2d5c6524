package audio

import (
	"sync"

	"go.uber.org/multierr"
)

// FallbackDevice opens the first of its devices that works and routes everything to it
type FallbackDevice struct {
	mu      sync.Mutex
	devices []Device
	active  Device
}

// NewFallbackDevice tries devices in order on Open
func NewFallbackDevice(devices ...Device) *FallbackDevice {
	return &FallbackDevice{devices: devices}
}

func (d *FallbackDevice) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active != nil {
		return nil
	}
	var errs error
	for _, device := range d.devices {
		err := device.Open()
		if err == nil {
			d.active = device
			return nil
		}
		errs = multierr.Append(errs, err)
	}
	if errs == nil {
		return ErrUnavailable
	}
	return errs
}

// Active returns the opened device, nil before a successful Open
func (d *FallbackDevice) Active() Device {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

func (d *FallbackDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active == nil {
		return nil
	}
	err := d.active.Close()
	d.active = nil
	return err
}

func (d *FallbackDevice) SetTone(frequency, gain float64) {
	if active := d.Active(); active != nil {
		active.SetTone(frequency, gain)
	}
}

func (d *FallbackDevice) Halt() {
	if active := d.Active(); active != nil {
		active.Halt()
	}
}

func (d *FallbackDevice) Beep(b Beep) {
	if active := d.Active(); active != nil {
		active.Beep(b)
	}
}
