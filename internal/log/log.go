// Package log provides a minimal leveled wrapper around the standard log
// package. The teacher never reaches for a structured logging library, so
// this stays on the standard library too, gated by LOG_LEVEL.
package log

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

// Level orders verbosity from most to least chatty.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps the LOG_LEVEL env var style strings ("debug", "info", ...)
// to a Level, defaulting to LevelInfo for anything unrecognized.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

var current atomic.Int32

func init() {
	current.Store(int32(LevelInfo))
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
}

// SetLevel changes the global verbosity gate.
func SetLevel(l Level) {
	current.Store(int32(l))
}

func enabled(l Level) bool {
	return int32(l) >= current.Load()
}

func Debugf(format string, args ...any) {
	if enabled(LevelDebug) {
		log.Output(2, "DEBUG "+fmt.Sprintf(format, args...))
	}
}

func Infof(format string, args ...any) {
	if enabled(LevelInfo) {
		log.Output(2, "INFO  "+fmt.Sprintf(format, args...))
	}
}

func Warnf(format string, args ...any) {
	if enabled(LevelWarn) {
		log.Output(2, "WARN  "+fmt.Sprintf(format, args...))
	}
}

func Errorf(format string, args ...any) {
	if enabled(LevelError) {
		log.Output(2, "ERROR "+fmt.Sprintf(format, args...))
	}
}

// Fatalf logs at error level and exits the process with a non-zero code,
// for unrecoverable startup failures.
func Fatalf(format string, args ...any) {
	log.Output(2, "ERROR "+fmt.Sprintf(format, args...))
	os.Exit(1)
}
