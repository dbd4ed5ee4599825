package loop

import "time"

// Client rendering
const (
	targetFPS       = 60
	targetFrameTime = time.Second / targetFPS
)

// Max render resolution. Larger terminals get a centered canvas with a border.
const (
	MaxTermWidth  = 200
	MaxTermHeight = 80
)

// Inactivity: the warning appears after idleWarnFraction of the timeout.
const idleWarnFraction = 0.75

// DefaultIdleTimeout is used by shared servers to drop abandoned sessions.
const DefaultIdleTimeout = 2 * time.Minute
