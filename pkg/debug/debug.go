// Package debug provides conditional debug logging for hv.
//
// Debug logging is enabled by setting the HV_DEBUG environment variable to a
// file path; messages are appended there with timestamps. Logging to a file
// rather than stderr keeps the alternate-screen TUI intact. When unset
// (default), all debug functions are no-ops.
package debug

import (
	"log"
	"os"
)

var (
	enabled bool
	logger  *log.Logger
)

func init() {
	path := os.Getenv("HV_DEBUG")
	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	enabled = true
	logger = log.New(f, "[HV] ", log.Ltime|log.Lmicroseconds)
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	return enabled
}

// Log writes a debug message if debug logging is enabled.
// Uses printf-style formatting.
func Log(format string, args ...any) {
	if !enabled {
		return
	}
	logger.Printf(format, args...)
}
