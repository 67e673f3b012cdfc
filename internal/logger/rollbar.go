package logger

import (
	"log"
	"os"

	"github.com/rollbar/rollbar-go"

	"ClassroomBoard/internal/config"
)

// RollbarLogger mirrors warnings and errors to Rollbar on top of the
// standard logger.
type RollbarLogger struct {
	*StdLogger
}

var _ Logger = (*RollbarLogger)(nil)

func NewRollbar(std *log.Logger, conf *config.Config) *RollbarLogger {
	rollbar.SetToken(conf.Rollbar.Token)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetCodeVersion(conf.Build)
	if host, err := os.Hostname(); err == nil {
		rollbar.SetServerHost(host)
	}
	return &RollbarLogger{StdLogger: NewStd(std, conf.Debug)}
}

// New returns a RollbarLogger when a token is configured and a StdLogger
// otherwise.
func New(conf *config.Config) Logger {
	std := log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds)
	if conf.Rollbar.Token == "" {
		return NewStd(std, conf.Debug)
	}
	return NewRollbar(std, conf)
}

func (l *RollbarLogger) Warn(msg string, args ...interface{}) {
	rollbar.Warning(append([]interface{}{msg}, args...)...)
	l.StdLogger.Warn(msg, args...)
}

func (l *RollbarLogger) Error(msg string, args ...interface{}) {
	rollbar.Error(append([]interface{}{msg}, args...)...)
	l.StdLogger.Error(msg, args...)
}

// Flush waits for queued reports to be sent.
func (l *RollbarLogger) Flush() {
	rollbar.Wait()
}
