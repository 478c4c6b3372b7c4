package timing

import (
	"github.com/pkg/errors"
)

// Printer is the full exposure/motion profile of one printer + resin combo,
// the values a slicer shows for the print job. Rest periods and the firmware
// overhead are shared by both layer kinds; exposures and motion are per kind.
type Printer struct {
	BottomLayers     int `yaml:"bottom_layers"`
	TransitionLayers int `yaml:"transition_layers"`

	BottomExposure float64 `yaml:"bottom_exposure_s"`
	NormalExposure float64 `yaml:"normal_exposure_s"`

	RestBeforeLift   float64 `yaml:"rest_before_lift_s"`
	RestAfterLift    float64 `yaml:"rest_after_lift_s"`
	RestAfterRetract float64 `yaml:"rest_after_retract_s"`

	BottomLift    MotionProfile `yaml:"bottom_lift"`
	BottomRetract MotionProfile `yaml:"bottom_retract"`
	NormalLift    MotionProfile `yaml:"normal_lift"`
	NormalRetract MotionProfile `yaml:"normal_retract"`

	// Controller/accel/settle latencies that the motion math cannot see.
	FirmwareOverhead float64 `yaml:"firmware_overhead_s"`

	// Measured overrides. When enabled the measured value replaces the
	// theoretical one for planning; the theoretical value is still reported.
	UseMeasuredBottom bool    `yaml:"use_measured_bottom"`
	MeasuredBottom    float64 `yaml:"measured_bottom_s"`
	UseMeasuredNormal bool    `yaml:"use_measured_normal"`
	MeasuredNormal    float64 `yaml:"measured_normal_s"`
}

func (p Printer) bottomLayer() LayerProfile {
	return LayerProfile{
		Exposure:         p.BottomExposure,
		RestBeforeLift:   p.RestBeforeLift,
		RestAfterLift:    p.RestAfterLift,
		RestAfterRetract: p.RestAfterRetract,
		Lift:             p.BottomLift,
		Retract:          p.BottomRetract,
		Overhead:         p.FirmwareOverhead,
	}
}

func (p Printer) normalLayer(exposure float64) LayerProfile {
	return LayerProfile{
		Exposure:         exposure,
		RestBeforeLift:   p.RestBeforeLift,
		RestAfterLift:    p.RestAfterLift,
		RestAfterRetract: p.RestAfterRetract,
		Lift:             p.NormalLift,
		Retract:          p.NormalRetract,
		Overhead:         p.FirmwareOverhead,
	}
}

// Report is the computed per-layer timing picture for one Printer.
type Report struct {
	// Theoretical durations are always computed, even when a measured
	// override wins, so both can be shown side by side.
	BottomTheoretical float64
	NormalTheoretical float64

	// Chosen durations feed the capture plan.
	BottomChosen   float64
	NormalChosen   float64
	BottomMeasured bool
	NormalMeasured bool

	// Transition layers always use the normal motion profile with ramped
	// exposures; measured overrides do not apply to them.
	TransitionStep      float64
	TransitionExposures []float64
	TransitionDurations []float64
}

// Compute derives the timing report for one printer profile. Fails only on
// invalid motion speeds.
func Compute(p Printer) (*Report, error) {
	bottomTheo, err := p.bottomLayer().Duration()
	if err != nil {
		return nil, errors.Wrap(err, "bottom layer")
	}
	normalTheo, err := p.normalLayer(p.NormalExposure).Duration()
	if err != nil {
		return nil, errors.Wrap(err, "normal layer")
	}

	rep := &Report{
		BottomTheoretical: bottomTheo,
		NormalTheoretical: normalTheo,
		BottomChosen:      bottomTheo,
		NormalChosen:      normalTheo,
		BottomMeasured:    p.UseMeasuredBottom,
		NormalMeasured:    p.UseMeasuredNormal,
	}
	if p.UseMeasuredBottom {
		rep.BottomChosen = p.MeasuredBottom
	}
	if p.UseMeasuredNormal {
		rep.NormalChosen = p.MeasuredNormal
	}

	rep.TransitionStep = TransitionStep(p.BottomExposure, p.NormalExposure, p.TransitionLayers)
	rep.TransitionExposures = TransitionExposures(p.BottomExposure, p.NormalExposure, p.TransitionLayers)
	rep.TransitionDurations = make([]float64, 0, len(rep.TransitionExposures))
	for _, exp := range rep.TransitionExposures {
		d, err := p.normalLayer(exp).Duration()
		if err != nil {
			return nil, errors.Wrap(err, "transition layer")
		}
		rep.TransitionDurations = append(rep.TransitionDurations, d)
	}

	return rep, nil
}

// TransitionTotal is the summed duration of all transition layers.
func (r *Report) TransitionTotal() float64 {
	total := 0.0
	for _, d := range r.TransitionDurations {
		total += d
	}
	return total
}
