// Package lifecycle holds shared timing constants for start and stop hooks.
package lifecycle

import "time"

// DefaultTimeout bounds OnStart pings and OnStop shutdowns.
const DefaultTimeout = 10 * time.Second
