// Package monitoring holds the diagnostic logger shared by the pipeline stages.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf and
// is muted by the CLI unless -verbose is given.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil sets a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
