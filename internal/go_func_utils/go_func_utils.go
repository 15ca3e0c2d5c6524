package go_func_utils

import (
	"runtime/debug"
	"sync"

	"github.com/sirupsen/logrus"
)

// SafeGo runs fn on a new goroutine. The curses UI owns stdout, so a panic is written to the
// log file first and then re-raised.
func SafeGo(logger logrus.FieldLogger, name string, fn func()) {
	go func() {
		defer logPanic(logger, name)
		fn()
	}()
}

// SafeGoWait is SafeGo that also tracks the goroutine on wg
func SafeGoWait(wg *sync.WaitGroup, logger logrus.FieldLogger, name string, fn func()) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer logPanic(logger, name)
		fn()
	}()
}

func logPanic(logger logrus.FieldLogger, name string) {
	if r := recover(); r != nil {
		logger.WithField("goroutine", name).Errorf("PANIC: %v\n%s", r, debug.Stack())
		panic(r)
	}
}
