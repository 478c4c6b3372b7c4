// Package timing models the per-layer time budget of an MSLA resin printer:
// exposure, rest periods, two-stage lift/retract motion and a fixed firmware
// overhead. All values are seconds unless noted otherwise.
package timing

import (
	"github.com/pkg/errors"
)

// ErrInvalidSpeed is returned when a motion stage has a non-positive speed.
var ErrInvalidSpeed = errors.New("motion speed must be > 0 mm/min")

// MotionProfile describes one two-stage motion phase (lift or retract).
// Distances are millimeters, speeds are millimeters per minute, matching
// how slicers like ChiTuBox expose them.
type MotionProfile struct {
	Dist1  float64 `yaml:"dist1_mm"`
	Speed1 float64 `yaml:"speed1_mm_min"`
	Dist2  float64 `yaml:"dist2_mm"`
	Speed2 float64 `yaml:"speed2_mm_min"`
}

// Seconds returns the elapsed time of the two-stage motion:
// 60*(d1/v1 + d2/v2).
func (m MotionProfile) Seconds() (float64, error) {
	if m.Speed1 <= 0 || m.Speed2 <= 0 {
		return 0, errors.Wrapf(ErrInvalidSpeed, "stage speeds %.1f/%.1f", m.Speed1, m.Speed2)
	}
	return 60.0 * (m.Dist1/m.Speed1 + m.Dist2/m.Speed2), nil
}

// LayerProfile holds everything that contributes to the duration of one
// printed layer.
type LayerProfile struct {
	Exposure         float64
	RestBeforeLift   float64
	RestAfterLift    float64
	RestAfterRetract float64
	Lift             MotionProfile
	Retract          MotionProfile
	Overhead         float64
}

// Duration returns the total time of one layer:
// exposure + rests + lift + retract + firmware overhead.
func (l LayerProfile) Duration() (float64, error) {
	lift, err := l.Lift.Seconds()
	if err != nil {
		return 0, errors.Wrap(err, "lift")
	}
	retract, err := l.Retract.Seconds()
	if err != nil {
		return 0, errors.Wrap(err, "retract")
	}
	return l.Exposure +
		l.RestBeforeLift +
		lift +
		l.RestAfterLift +
		retract +
		l.RestAfterRetract +
		l.Overhead, nil
}

// TransitionStep returns the linear exposure step between consecutive
// transition layers: (bottom - normal) / (n + 1). Zero when there are no
// transition layers.
func TransitionStep(bottomExposure, normalExposure float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	return (bottomExposure - normalExposure) / (float64(n) + 1.0)
}

// TransitionExposures returns the exposure of each of the n transition
// layers, linearly ramped from just below the bottom exposure toward the
// normal exposure (both endpoints excluded). Empty for n <= 0; constant
// when the two exposures coincide.
func TransitionExposures(bottomExposure, normalExposure float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	step := TransitionStep(bottomExposure, normalExposure, n)
	exposures := make([]float64, n)
	for i := 1; i <= n; i++ {
		exposures[i-1] = bottomExposure - float64(i)*step
	}
	return exposures
}
