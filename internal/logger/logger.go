package logger

import (
	"io"
	"log"
	"os"
)

// Logger is the logging surface shared by every package.
// args are printed after msg, one per line.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

type StdLogger struct {
	std   *log.Logger
	debug bool
}

var _ Logger = (*StdLogger)(nil)

func NewStd(std *log.Logger, debug bool) *StdLogger {
	return &StdLogger{std: std, debug: debug}
}

// Default logs to stderr with the usual flags.
func Default(debug bool) *StdLogger {
	return NewStd(log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds), debug)
}

// Discard drops everything; handy in tests.
func Discard() *StdLogger {
	return NewStd(log.New(io.Discard, "", 0), false)
}

func (l *StdLogger) print(level, msg string, args []interface{}) {
	l.std.Printf("%s %s", level, msg)
	for _, arg := range args {
		l.std.Printf("%+v", arg)
	}
}

func (l *StdLogger) Debug(msg string, args ...interface{}) {
	if l.debug {
		l.print("DEBUG", msg, args)
	}
}

func (l *StdLogger) Info(msg string, args ...interface{}) {
	l.print("INFO", msg, args)
}

func (l *StdLogger) Warn(msg string, args ...interface{}) {
	l.print("WARN", msg, args)
}

func (l *StdLogger) Error(msg string, args ...interface{}) {
	l.print("ERROR", msg, args)
}
