// Package monitoring holds the diagnostic logger used by the plotting code.
package monitoring

import (
	"log"
	"time"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Mute silences Logf and returns a func that restores the previous logger.
func Mute() (restore func()) {
	prev := Logf
	SetLogger(nil)
	return func() { Logf = prev }
}

// Timed logs how long the work labelled by what took once the returned
// func is called. Typical use is defer monitoring.Timed("render x")().
func Timed(what string) func() {
	start := time.Now()
	return func() {
		Logf("%s took %s", what, time.Since(start).Round(time.Millisecond))
	}
}
