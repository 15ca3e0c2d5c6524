package logging

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// UIHook forwards log entries to the in-app log pane. It never blocks the caller: when the
// pane falls behind, lines are dropped.
type UIHook struct {
	lines chan<- string
}

func NewUIHook(lines chan<- string) *UIHook {
	if lines == nil {
		panic("UIHook: lines channel cannot be nil")
	}
	return &UIHook{lines: lines}
}

func (h *UIHook) Levels() []logrus.Level {
	return []logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
		logrus.WarnLevel,
		logrus.InfoLevel,
	}
}

func (h *UIHook) Fire(entry *logrus.Entry) error {
	select {
	case h.lines <- FormatUILine(entry):
	default:
	}
	return nil
}

// FormatUILine renders an entry as a colored tview line
func FormatUILine(entry *logrus.Entry) string {
	color := "white"
	switch entry.Level {
	case logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel:
		color = "red"
	case logrus.WarnLevel:
		color = "yellow"
	}
	return fmt.Sprintf("[gray]%s[-] [%s]%s[-]\n", entry.Time.Format("15:04:05"), color, entry.Message)
}
