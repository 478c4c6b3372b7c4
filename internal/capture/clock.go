package capture

import "time"

// Clock is the loop's time source, injectable for deterministic tests.
// time.Time values from Now carry Go's monotonic reading, so all deadline
// arithmetic is immune to wall-clock adjustments.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// RealClock returns the system clock.
func RealClock() Clock { return realClock{} }

// maxSubSleep bounds each individual sleep so long waits stay observable
// and re-check their deadline instead of drifting.
const maxSubSleep = time.Second

// SleepMonotonic waits out d against the clock's monotonic reading, as a
// loop of bounded sub-sleeps re-checking the deadline.
func SleepMonotonic(c Clock, d time.Duration) {
	if d <= 0 {
		return
	}
	deadline := c.Now().Add(d)
	for {
		remain := deadline.Sub(c.Now())
		if remain <= 0 {
			return
		}
		if remain > maxSubSleep {
			remain = maxSubSleep
		}
		c.Sleep(remain)
	}
}
