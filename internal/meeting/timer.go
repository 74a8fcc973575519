// Package meeting implements the live meeting room: a per-speaker countdown,
// talk-time accounting, the transcript log, and the session state machine
// that drives a timed round-robin rotation over a scrum's attendees.
package meeting

// Countdown is a pausable per-speaker countdown clock. It holds a remaining
// value in whole seconds and a running flag; time advances only when the
// owner delivers ticks, so the clock itself never spawns goroutines and is
// safe to drive from a single writer.
type Countdown struct {
	allotment int
	remaining int
	running   bool
}

// NewCountdown creates a stopped countdown with both the allotment and the
// remaining value set to seconds.
func NewCountdown(seconds int) *Countdown {
	return &Countdown{allotment: seconds, remaining: seconds}
}

// Start begins the countdown. Starting while already running, or with
// nothing remaining, is a no-op.
func (c *Countdown) Start() {
	if !c.running && c.remaining > 0 {
		c.running = true
	}
}

// Pause stops the countdown without touching the remaining value. Idempotent.
func (c *Countdown) Pause() {
	c.running = false
}

// Reset stops the countdown and sets remaining to seconds.
func (c *Countdown) Reset(seconds int) {
	c.running = false
	c.remaining = seconds
}

// ResetToAllotment stops the countdown and restores the original allotment.
func (c *Countdown) ResetToAllotment() {
	c.Reset(c.allotment)
}

// AddTime adjusts remaining by delta seconds without affecting the running
// state. Negative deltas are the caller's responsibility.
func (c *Countdown) AddTime(delta int) {
	c.remaining += delta
}

// Tick consumes one wall-clock second. It reports true exactly once per
// expiry: the tick on which remaining reaches zero, at which point the
// countdown auto-stops.
func (c *Countdown) Tick() bool {
	if !c.running {
		return false
	}
	c.remaining--
	if c.remaining <= 0 {
		c.remaining = 0
		c.running = false
		return true
	}
	return false
}

// Remaining returns the seconds left on the clock.
func (c *Countdown) Remaining() int {
	return c.remaining
}

// Running reports whether the countdown is active.
func (c *Countdown) Running() bool {
	return c.running
}

// Allotment returns the original per-speaker allotment.
func (c *Countdown) Allotment() int {
	return c.allotment
}
