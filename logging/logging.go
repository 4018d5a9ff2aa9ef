/*
   Velociraptor - Hunting Evil
   Copyright (C) 2019 Velocidex Innovations.

   This program is free software: you can redistribute it and/or modify
   it under the terms of the GNU Affero General Public License as published
   by the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   This program is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
   GNU Affero General Public License for more details.

   You should have received a copy of the GNU Affero General Public License
   along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package logging

import (
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"www.velocidex.com/golang/pstotal/config"
)

var (
	GenericComponent = "PSTotal"
	ToolComponent    = "PSTotal Tool"
	VQLComponent     = "PSTotal VQL"

	// Only show errors. Set from the command line when not verbose.
	SuppressLogging = false

	Manager = NewLogManager()
)

type LogContext struct {
	*logrus.Logger

	component string
}

func (self *LogContext) entry() *logrus.Entry {
	return self.Logger.WithField("component", self.component)
}

func (self *LogContext) Debug(format string, v ...interface{}) {
	self.entry().Debugf(format, v...)
}

func (self *LogContext) Info(format string, v ...interface{}) {
	self.entry().Infof(format, v...)
}

func (self *LogContext) Warn(format string, v ...interface{}) {
	self.entry().Warnf(format, v...)
}

func (self *LogContext) Error(format string, v ...interface{}) {
	self.entry().Errorf(format, v...)
}

// Holds one logger per component so they can be reconfigured
// together.
type LogManager struct {
	mu sync.Mutex

	contexts  map[*string]*LogContext
	level     logrus.Level
	out       io.Writer
	formatter logrus.Formatter
	memory    *memoryHook
}

func NewLogManager() *LogManager {
	return &LogManager{
		contexts:  make(map[*string]*LogContext),
		level:     logrus.InfoLevel,
		out:       os.Stderr,
		formatter: defaultFormatter(os.Stderr),
		memory:    &memoryHook{},
	}
}

func (self *LogManager) GetLogger(component *string) *LogContext {
	self.mu.Lock()
	defer self.mu.Unlock()

	ctx, pres := self.contexts[component]
	if pres {
		return ctx
	}

	ctx = &LogContext{
		Logger:    self.newLogger(),
		component: *component,
	}
	self.contexts[component] = ctx
	return ctx
}

func (self *LogManager) newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(self.out)
	logger.SetFormatter(self.formatter)
	logger.SetLevel(self.effectiveLevel())
	logger.AddHook(self.memory)
	return logger
}

func (self *LogManager) effectiveLevel() logrus.Level {
	if SuppressLogging && self.level > logrus.ErrorLevel {
		return logrus.ErrorLevel
	}
	return self.level
}

// Reset applies the current settings to all existing loggers.
func (self *LogManager) Reset() {
	self.mu.Lock()
	defer self.mu.Unlock()

	for _, ctx := range self.contexts {
		ctx.Logger.SetOutput(self.out)
		ctx.Logger.SetFormatter(self.formatter)
		ctx.Logger.SetLevel(self.effectiveLevel())
	}
}

func (self *LogManager) Configure(
	level logrus.Level, out io.Writer, formatter logrus.Formatter) {
	self.mu.Lock()
	self.level = level
	self.out = out
	self.formatter = formatter
	self.mu.Unlock()

	self.Reset()
}

func GetLogger(config_obj *config.Config, component *string) *LogContext {
	return Manager.GetLogger(component)
}

func InitLogging(config_obj *config.Config) error {
	if config_obj == nil || config_obj.Logging == nil {
		return nil
	}

	level := logrus.InfoLevel
	if config_obj.Logging.Level != "" {
		parsed, err := logrus.ParseLevel(config_obj.Logging.Level)
		if err != nil {
			return errors.Wrap(err, "InitLogging")
		}
		level = parsed
	}

	var out io.Writer = os.Stderr
	if config_obj.Logging.Filename != "" {
		fd, err := os.OpenFile(config_obj.Logging.Filename,
			os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return errors.Wrap(err, "InitLogging")
		}
		out = fd
	}

	var formatter logrus.Formatter = defaultFormatter(out)
	if config_obj.Logging.Json {
		formatter = &logrus.JSONFormatter{}
	}

	Manager.Configure(level, out, formatter)
	return nil
}

// Only colorize when writing to a terminal.
func defaultFormatter(out io.Writer) logrus.Formatter {
	colors := false
	fd, ok := out.(*os.File)
	if ok {
		colors = isatty.IsTerminal(fd.Fd()) || isatty.IsCygwinTerminal(fd.Fd())
	}

	return &logrus.TextFormatter{
		FullTimestamp: true,
		DisableColors: !colors,
		ForceColors:   colors,
	}
}

type logWriter struct {
	ctx *LogContext
}

func (self logWriter) Write(p []byte) (int, error) {
	self.ctx.Info("%s", strings.TrimSpace(string(p)))
	return len(p), nil
}

// StdLogger adapts the component logger to a standard library
// logger for libraries that want one.
func (self *LogContext) StdLogger() *log.Logger {
	return log.New(logWriter{ctx: self}, "", 0)
}
