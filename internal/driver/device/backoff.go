// internal/driver/device/backoff.go
// Geometric backoff for the DeviceStatus poller (spec.md §4.3): starts at
// ~20ms, doubles, caps at ~200ms. Grounded in the teacher's own
// PollInterval/StatusInterval constants (controller.go), generalized
// into a reusable stepper instead of a single fixed interval.
package device

import "time"

const (
	pollInitialDelay = 20 * time.Millisecond
	pollMaxDelay     = 200 * time.Millisecond
	pollMaxAttempts  = 40 // ~7.5s of backoff sleep worst case (20+40+80+160ms, then 36×200ms)
)

type backoff struct {
	delay time.Duration
}

func newBackoff() *backoff {
	return &backoff{delay: pollInitialDelay}
}

// next returns the delay to sleep before the next attempt, and doubles
// the internal delay (capped) for the attempt after that.
func (b *backoff) next() time.Duration {
	d := b.delay
	b.delay *= 2
	if b.delay > pollMaxDelay {
		b.delay = pollMaxDelay
	}
	return d
}
