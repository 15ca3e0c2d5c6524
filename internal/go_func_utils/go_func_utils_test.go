package go_func_utils

import (
	"sync"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestSafeGoWait_RunsAndTracks(t *testing.T) {
	defer goleak.VerifyNone(t)
	logger, hook := test.NewNullLogger()

	var wg sync.WaitGroup
	ran := make(chan struct{}, 1)
	SafeGoWait(&wg, logger, "worker", func() { ran <- struct{}{} })
	wg.Wait()

	assert.Len(t, ran, 1)
	assert.Empty(t, hook.AllEntries())
}

func TestLogPanic_LogsAndRepanics(t *testing.T) {
	logger, hook := test.NewNullLogger()

	assert.PanicsWithValue(t, "boom", func() {
		defer logPanic(logger, "worker")
		panic("boom")
	})
	entry := hook.LastEntry()
	if assert.NotNil(t, entry) {
		assert.Equal(t, "worker", entry.Data["goroutine"])
		assert.Contains(t, entry.Message, "PANIC: boom")
	}
}
