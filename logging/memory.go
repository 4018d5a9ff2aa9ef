package logging

import (
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

const maxMemoryLogs = 1000

// Keeps the most recent log lines so tests can check what was
// logged.
type memoryHook struct {
	mu    sync.Mutex
	lines []string
}

func (self *memoryHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (self *memoryHook) Fire(entry *logrus.Entry) error {
	component, _ := entry.Data["component"].(string)
	line := fmt.Sprintf("[%s] %s: %s",
		strings.ToUpper(entry.Level.String()), component, entry.Message)

	self.mu.Lock()
	defer self.mu.Unlock()

	self.lines = append(self.lines, line)
	if len(self.lines) > maxMemoryLogs {
		self.lines = self.lines[len(self.lines)-maxMemoryLogs:]
	}
	return nil
}

func GetMemoryLogs() []string {
	hook := Manager.memory
	hook.mu.Lock()
	defer hook.mu.Unlock()

	return append([]string{}, hook.lines...)
}

func ClearMemoryLogs() {
	hook := Manager.memory
	hook.mu.Lock()
	defer hook.mu.Unlock()

	hook.lines = nil
}
