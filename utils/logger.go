package utils

import (
	"log"
	"os"
	"time"
)

// Logger writes level-tagged lines, errors going to stderr
type Logger struct {
	out *log.Logger
	err *log.Logger
}

// NewLogger creates a new structured logger
func NewLogger() *Logger {
	flags := log.Lmsgprefix
	return &Logger{
		out: log.New(os.Stdout, "", flags),
		err: log.New(os.Stderr, "", flags),
	}
}

func (l *Logger) logf(dst *log.Logger, level, msg string, args ...interface{}) {
	dst.Printf("["+level+"] "+time.Now().Format("15:04:05")+" "+msg, args...)
}

func (l *Logger) Info(msg string, args ...interface{}) {
	l.logf(l.out, "INFO ", msg, args...)
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	l.logf(l.out, "WARN ", msg, args...)
}

func (l *Logger) Error(msg string, args ...interface{}) {
	l.logf(l.err, "ERROR", msg, args...)
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	l.logf(l.out, "DEBUG", msg, args...)
}
