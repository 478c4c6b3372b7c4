// Package plan turns layer timings and the desired video shape into a
// concrete capture schedule: how long to wait before the first frame, how
// far apart frames are, and how many frames to take.
package plan

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrVoidPlan means there is nothing to capture: either no frames were
	// requested or the print has no normal layers. The run ends cleanly
	// before any directory or camera access.
	ErrVoidPlan = errors.New("nothing to capture: need frames_needed > 0 and some normal layers")

	// ErrIntervalTooShort rejects plans whose frame interval falls below
	// MinInterval. A one-shot camera grab plus a JPEG write cannot keep up
	// with such pacing, so the plan is refused up front.
	ErrIntervalTooShort = errors.New("frame interval below minimum")
)

// MinInterval is the smallest supported frame interval in seconds.
const MinInterval = 0.05

// Input collects everything the builder needs. Durations come from the
// timing report (measured overrides already applied).
type Input struct {
	TotalLayers      int
	BottomLayers     int
	TransitionLayers int

	BottomDuration      float64
	NormalDuration      float64
	TransitionDurations []float64

	FPS             int
	TargetSec       float64
	ExtraCaptureSec float64
}

// Plan is the immutable capture schedule. All durations are seconds.
type Plan struct {
	TotalLayers      int
	BottomLayers     int
	TransitionLayers int
	NormalLayers     int

	FramesNeeded int
	ExtraFrames  int
	TotalFrames  int

	Interval         float64
	DelayBottoms     float64
	DelayTransitions float64
	DelayStart       float64

	FPS            int
	BottomDuration float64
	NormalDuration float64
}

// Build computes the capture plan.
//
// FramesNeeded = round(fps * target_sec), rounding halves away from zero.
// The interval spreads those frames evenly across the wall-clock time the
// printer spends on normal layers, so one frame may span several layers or
// a fraction of one.
func Build(in Input) (*Plan, error) {
	normalLayers := in.TotalLayers - in.BottomLayers - in.TransitionLayers
	if normalLayers < 0 {
		normalLayers = 0
	}

	framesNeeded := int(math.Round(float64(in.FPS) * in.TargetSec))

	delayBottoms := float64(in.BottomLayers) * in.BottomDuration
	delayTransitions := 0.0
	for _, d := range in.TransitionDurations {
		delayTransitions += d
	}

	if framesNeeded <= 0 || normalLayers == 0 {
		return nil, ErrVoidPlan
	}

	interval := float64(normalLayers) * in.NormalDuration / float64(framesNeeded)
	if interval < MinInterval {
		return nil, errors.Wrapf(ErrIntervalTooShort, "%.4fs < %.2fs", interval, MinInterval)
	}

	extra := int(math.Ceil(math.Max(0, in.ExtraCaptureSec) / interval))

	return &Plan{
		TotalLayers:      in.TotalLayers,
		BottomLayers:     in.BottomLayers,
		TransitionLayers: in.TransitionLayers,
		NormalLayers:     normalLayers,
		FramesNeeded:     framesNeeded,
		ExtraFrames:      extra,
		TotalFrames:      framesNeeded + extra,
		Interval:         interval,
		DelayBottoms:     delayBottoms,
		DelayTransitions: delayTransitions,
		DelayStart:       delayBottoms + delayTransitions,
		FPS:              in.FPS,
		BottomDuration:   in.BottomDuration,
		NormalDuration:   in.NormalDuration,
	}, nil
}

// TotalRuntime is the expected wall-clock time of the whole capture:
// initial delay plus all paced frames.
func (p *Plan) TotalRuntime() float64 {
	return p.DelayStart + float64(p.TotalFrames)*p.Interval
}

// ETA returns when the capture is expected to finish, counted from now.
func (p *Plan) ETA(now time.Time) time.Time {
	return now.Add(time.Duration(p.TotalRuntime() * float64(time.Second)))
}

// Summary renders the pre-capture report. The caller prints it before any
// stateful stage runs, so the user can still abort.
func (p *Plan) Summary(now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  Skip bottoms: ~%.1f min (= %d x %.2fs)\n",
		p.DelayBottoms/60.0, p.BottomLayers, p.BottomDuration)
	if p.TransitionLayers > 0 {
		fmt.Fprintf(&b, "  Skip transitions: ~%.1f min (= sum of %d transition layers)\n",
			p.DelayTransitions/60.0, p.TransitionLayers)
	}
	fmt.Fprintf(&b, "  Capture %d frames for the main window + %d extra tail frames\n",
		p.FramesNeeded, p.ExtraFrames)
	layersPerFrame := 0.0
	if p.NormalDuration > 0 {
		layersPerFrame = p.Interval / p.NormalDuration
	}
	fmt.Fprintf(&b, "  Interval: %.1fs (~ every %.1f layers)\n", p.Interval, layersPerFrame)
	fmt.Fprintf(&b, "  Estimated runtime: %.2fh (ETA ~ %s)\n",
		p.TotalRuntime()/3600.0, p.ETA(now).Format("2006-01-02 15:04"))
	return b.String()
}
