// Package capture drives the real-time paced acquisition loop: one long
// delay while bottom and transition layers print, then frames at a fixed
// interval against a monotonic clock.
package capture

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ivlev/printlapse/internal/camera"
	"github.com/ivlev/printlapse/internal/plan"
	"github.com/ivlev/printlapse/internal/session"
)

// State of the capture loop. Transitions are strictly forward:
// Idle -> Delaying -> Capturing -> Draining -> Done.
type State int

const (
	Idle State = iota
	Delaying
	Capturing
	Draining
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Delaying:
		return "delaying"
	case Capturing:
		return "capturing"
	case Draining:
		return "draining"
	case Done:
		return "done"
	}
	return "unknown"
}

// retryWait is how long the loop pauses after a failed frame read before
// retrying the same index.
const retryWait = time.Second

// Loop captures one session's frames. Strictly sequential; the device is
// exclusively owned by the loop and released exactly once.
type Loop struct {
	Device      camera.Device
	Session     *session.Session
	Plan        *plan.Plan
	Clock       Clock
	JPEGQuality int

	// OnFrame, when set, observes each persisted frame. Used by tests to
	// check pacing; the loop itself prints progress.
	OnFrame func(index int, path string, at time.Time)

	state State
}

// State reports the loop's current stage.
func (l *Loop) State() State { return l.state }

// Run sleeps out the plan's start delay, then captures Plan.TotalFrames
// frames paced at absolute targets start + (i+1)*interval. A failed read
// does not consume the frame budget: the same index is retried after a
// short wait. Being behind schedule is not compensated beyond the
// absolute-target scheme itself.
func (l *Loop) Run() error {
	if l.Clock == nil {
		l.Clock = RealClock()
	}

	delay := time.Duration(l.Plan.DelayStart * float64(time.Second))
	interval := time.Duration(l.Plan.Interval * float64(time.Second))

	l.state = Delaying
	fmt.Printf("[*] Waiting %ds for bottom + transition layers...\n", int(delay.Seconds()))
	SleepMonotonic(l.Clock, delay)

	l.state = Capturing
	fmt.Println("[*] Starting interval capture. Ctrl+C to stop early.")

	// The pacing reference is taken AFTER the delay; frame targets never
	// include the delay again.
	start := l.Clock.Now()

	for i := 0; i < l.Plan.TotalFrames; i++ {
		path, err := l.captureOne(i)
		if err != nil {
			// Only the frame write can end up here; reads retry forever.
			l.state = Draining
			closeErr := l.Device.Close()
			l.state = Done
			if closeErr != nil {
				logrus.Warnf("camera close: %v", closeErr)
			}
			return err
		}
		fmt.Printf("[>] [%d/%d] Saved %s\n", i+1, l.Plan.TotalFrames, path)

		next := start.Add(time.Duration(i+1) * interval)
		if wait := next.Sub(l.Clock.Now()); wait > 0 {
			SleepMonotonic(l.Clock, wait)
		}
	}

	l.state = Draining
	err := l.Device.Close()
	l.state = Done
	return errors.Wrap(err, "release camera")
}

// captureOne acquires and persists frame i, retrying failed reads without
// counting them against the budget.
func (l *Loop) captureOne(i int) (string, error) {
	for {
		img, err := l.Device.Read()
		if err != nil {
			logrus.Warnf("camera read failed (frame %d): %v; retrying in %s", i, err, retryWait)
			SleepMonotonic(l.Clock, retryWait)
			continue
		}

		path := l.Session.FramePath(i)
		if err := camera.WriteJPEG(path, img, l.JPEGQuality); err != nil {
			return "", errors.Wrapf(err, "persist frame %d", i)
		}
		if l.OnFrame != nil {
			l.OnFrame(i, path, l.Clock.Now())
		}
		return path, nil
	}
}
