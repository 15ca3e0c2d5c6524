// Package scheduler calls an Advance-style func at a fixed interval with the measured wall time
// between calls.
package scheduler

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/9rafa9-a/academia/internal/go_func_utils"
)

// FrameInterval is the ~60 Hz cadence used for the set clock
const FrameInterval = time.Second / 60

// Driver owns one goroutine that invokes a callback until Stop is called
type Driver struct {
	logger   logrus.FieldLogger
	name     string
	interval time.Duration
	fn       func(dt time.Duration)

	stopOnce sync.Once
	doneChan chan struct{}
	wg       sync.WaitGroup
}

// Start launches a driver calling fn every interval. dt is the wall time since the previous
// call, so a late tick reports the full gap.
func Start(logger logrus.FieldLogger, name string, interval time.Duration, fn func(dt time.Duration)) *Driver {
	if logger == nil {
		panic("Driver: logger cannot be nil")
	}
	if fn == nil {
		panic("Driver: callback cannot be nil")
	}
	if interval <= 0 {
		interval = FrameInterval
	}
	d := &Driver{
		logger:   logger,
		name:     name,
		interval: interval,
		fn:       fn,
		doneChan: make(chan struct{}),
	}
	go_func_utils.SafeGoWait(&d.wg, logger, name, d.loop)
	return d
}

func (d *Driver) loop() {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-d.doneChan:
			return
		case now := <-ticker.C:
			// a Stop racing with this tick wins
			select {
			case <-d.doneChan:
				return
			default:
			}
			dt := now.Sub(last)
			last = now
			if dt > 0 {
				d.fn(dt)
			}
		}
	}
}

// Stop cancels the driver without waiting. A callback already running keeps running; use
// StopAndWait to wait for it. Only the first call has an effect, and it is safe to call from
// inside the callback.
func (d *Driver) Stop() {
	first := false
	d.stopOnce.Do(func() {
		first = true
		close(d.doneChan)
	})
	if first {
		d.logger.Debugf("Driver: %s stopped", d.name)
	}
}

// StopAndWait stops the driver and waits for the goroutine to exit. Must not be called from
// the callback.
func (d *Driver) StopAndWait() {
	d.Stop()
	d.wg.Wait()
}
