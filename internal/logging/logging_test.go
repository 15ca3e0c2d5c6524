package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, GetLevel("debug"))
	assert.Equal(t, logrus.InfoLevel, GetLevel("INFO"))
	assert.Equal(t, logrus.WarnLevel, GetLevel("warn"))
	assert.Equal(t, logrus.WarnLevel, GetLevel("warning"))
	assert.Equal(t, logrus.ErrorLevel, GetLevel("error"))
	assert.Equal(t, logrus.TraceLevel, GetLevel("whatever"))
}

func TestSetup_WritesToFile(t *testing.T) {
	dir := t.TempDir()
	logger, closer := Setup(Params{LogFileName: filepath.Join(dir, "logs", "academia"), LogLevel: "info"})
	logger.Info("Test: hello")
	logger.Debug("Test: filtered")
	require.NoError(t, closer.Close())

	raw, err := os.ReadFile(filepath.Join(dir, "logs", "academia.log"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Test: hello")
	assert.NotContains(t, string(raw), "Test: filtered")
}

func TestSetup_NoFileDiscards(t *testing.T) {
	logger, closer := Setup(Params{LogLevel: "debug"})
	assert.NotPanics(t, func() { logger.Info("Test: nowhere") })
	assert.NoError(t, closer.Close())
}

func TestUIHook_ForwardsAndNeverBlocks(t *testing.T) {
	lines := make(chan string, 1)
	logger, _ := Setup(Params{LogLevel: "debug", UILines: lines})

	logger.Warn("Test: first")
	logger.Warn("Test: dropped")
	logger.Debug("Test: below hook levels")

	require.Len(t, lines, 1)
	line := <-lines
	assert.Contains(t, line, "[yellow]Test: first[-]")
	assert.Empty(t, lines)
}

func TestFormatUILine(t *testing.T) {
	entry := &logrus.Entry{
		Level:   logrus.ErrorLevel,
		Message: "Coach: boom",
		Time:    time.Date(2024, 5, 1, 9, 30, 15, 0, time.UTC),
	}
	assert.Equal(t, "[gray]09:30:15[-] [red]Coach: boom[-]\n", FormatUILine(entry))
}

func TestNewUIHook_NilPanics(t *testing.T) {
	assert.Panics(t, func() { NewUIHook(nil) })
}
