// Package audit provides a minimal structured-ish logger for plan, step,
// dispatch, and cost lifecycle events, in the `[AUDIT] key=value` format.
package audit

import "log"

// Log writes a formatted audit line prefixed with "[AUDIT] ".
func Log(format string, args ...interface{}) {
	log.Printf("[AUDIT] "+format, args...)
}
