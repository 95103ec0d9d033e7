package app

import "time"

// pacer throttles the render loop to a target frame rate by sleeping
// away whatever remains of each frame interval. It never tries to catch
// up after a long frame; a slow frame simply starts the next interval
// immediately.
type pacer struct {
	interval time.Duration
	last     time.Time
}

func newPacer(targetFPS int) *pacer {
	if targetFPS < 1 {
		targetFPS = 1
	}
	return &pacer{interval: time.Second / time.Duration(targetFPS)}
}

// wait sleeps until the current frame interval has elapsed and marks the
// start of the next one.
func (p *pacer) wait() {
	now := time.Now()
	if d := sleepFor(now.Sub(p.last), p.interval); d > 0 {
		time.Sleep(d)
		// Sleep may overshoot; re-read the clock so the overshoot is
		// not carried into the next interval.
		now = time.Now()
	}
	p.last = now
}

// sleepFor returns how long to sleep given the time already spent in the
// current interval. It is zero when the frame overran.
func sleepFor(elapsed, interval time.Duration) time.Duration {
	if elapsed >= interval {
		return 0
	}
	return interval - elapsed
}
