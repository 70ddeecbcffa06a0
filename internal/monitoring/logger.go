// Package monitoring holds the diagnostic logger used by the library
// packages. Commands keep using the standard log package directly.
package monitoring

import (
	"fmt"
	"log"
)

// Logf reports data-quality notes (dropped pairs, truncated votes, applied
// migrations). It defaults to log.Printf.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces Logf. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Capture redirects Logf into the returned slice until restore is called.
func Capture() (lines *[]string, restore func()) {
	prev := Logf
	var got []string
	Logf = func(format string, v ...interface{}) {
		got = append(got, fmt.Sprintf(format, v...))
	}
	return &got, func() { Logf = prev }
}
