package plan

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestBuildVoidPlans(t *testing.T) {
	tests := []struct {
		name string
		in   Input
	}{
		{"zero fps", Input{TotalLayers: 100, BottomLayers: 10, NormalDuration: 9, FPS: 0, TargetSec: 8}},
		{"zero target", Input{TotalLayers: 100, BottomLayers: 10, NormalDuration: 9, FPS: 30, TargetSec: 0}},
		{"no normal layers", Input{TotalLayers: 17, BottomLayers: 10, TransitionLayers: 7,
			NormalDuration: 9, FPS: 30, TargetSec: 8}},
		{"more bottoms than layers", Input{TotalLayers: 5, BottomLayers: 10,
			NormalDuration: 9, FPS: 30, TargetSec: 8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Build(tt.in); !errors.Is(err, ErrVoidPlan) {
				t.Errorf("expected ErrVoidPlan, got %v", err)
			}
		})
	}
}

func TestBuildScenario(t *testing.T) {
	// total=100, bottom=10, transition=7, fps=30, target=2.0
	transitions := []float64{10, 10, 10, 10, 10, 10, 10}
	in := Input{
		TotalLayers:         100,
		BottomLayers:        10,
		TransitionLayers:    7,
		BottomDuration:      126.9,
		NormalDuration:      9.0,
		TransitionDurations: transitions,
		FPS:                 30,
		TargetSec:           2.0,
		ExtraCaptureSec:     600,
	}

	p, err := Build(in)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if p.NormalLayers != 83 {
		t.Errorf("expected 83 normal layers, got %d", p.NormalLayers)
	}
	if p.FramesNeeded != 60 {
		t.Errorf("expected 60 frames, got %d", p.FramesNeeded)
	}

	wantInterval := 83.0 * 9.0 / 60.0 // 12.45
	if math.Abs(p.Interval-wantInterval) > 1e-9 {
		t.Errorf("expected interval %.4f, got %.4f", wantInterval, p.Interval)
	}

	wantExtra := int(math.Ceil(600.0 / wantInterval)) // 49
	if p.ExtraFrames != wantExtra {
		t.Errorf("expected %d extra frames, got %d", wantExtra, p.ExtraFrames)
	}
	if p.TotalFrames != p.FramesNeeded+p.ExtraFrames {
		t.Errorf("total frames %d != %d + %d", p.TotalFrames, p.FramesNeeded, p.ExtraFrames)
	}

	wantDelay := 10*126.9 + 70.0
	if math.Abs(p.DelayStart-wantDelay) > 1e-9 {
		t.Errorf("expected delay %.1fs, got %.1fs", wantDelay, p.DelayStart)
	}

	wantRuntime := wantDelay + float64(p.TotalFrames)*wantInterval
	if math.Abs(p.TotalRuntime()-wantRuntime) > 1e-6 {
		t.Errorf("expected runtime %.1fs, got %.1fs", wantRuntime, p.TotalRuntime())
	}

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	eta := p.ETA(now)
	if got := eta.Sub(now).Seconds(); math.Abs(got-wantRuntime) > 1 {
		t.Errorf("ETA offset %.1fs, want %.1fs", got, wantRuntime)
	}

	t.Logf("plan: %d+%d frames @ %.2fs after %.0fs delay", p.FramesNeeded, p.ExtraFrames, p.Interval, p.DelayStart)
}

func TestBuildRounding(t *testing.T) {
	base := Input{
		TotalLayers:    100,
		NormalDuration: 9.0,
	}

	// Halves round away from zero: 3 * 0.5 = 1.5 -> 2.
	in := base
	in.FPS = 3
	in.TargetSec = 0.5
	p, err := Build(in)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if p.FramesNeeded != 2 {
		t.Errorf("1.5 frames: expected 2 after rounding, got %d", p.FramesNeeded)
	}

	// 1 * 2.5 = 2.5 -> 3 (not banker's 2).
	in = base
	in.FPS = 1
	in.TargetSec = 2.5
	p, err = Build(in)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if p.FramesNeeded != 3 {
		t.Errorf("2.5 frames: expected 3 after rounding, got %d", p.FramesNeeded)
	}
}

func TestBuildIntervalTooShort(t *testing.T) {
	in := Input{
		TotalLayers:    2,
		BottomLayers:   1,
		NormalDuration: 0.01,
		FPS:            60,
		TargetSec:      10,
	}
	// interval = 1 * 0.01 / 600 << MinInterval
	if _, err := Build(in); !errors.Is(err, ErrIntervalTooShort) {
		t.Errorf("expected ErrIntervalTooShort, got %v", err)
	}
}

func TestBuildNoExtraCapture(t *testing.T) {
	in := Input{
		TotalLayers:     100,
		NormalDuration:  9.0,
		FPS:             30,
		TargetSec:       2.0,
		ExtraCaptureSec: 0,
	}
	p, err := Build(in)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if p.ExtraFrames != 0 {
		t.Errorf("expected no tail frames, got %d", p.ExtraFrames)
	}
	if p.TotalFrames != p.FramesNeeded {
		t.Errorf("total %d should equal main window %d", p.TotalFrames, p.FramesNeeded)
	}
}

func TestSummaryMentionsKeyNumbers(t *testing.T) {
	in := Input{
		TotalLayers:         100,
		BottomLayers:        10,
		TransitionLayers:    7,
		BottomDuration:      126.9,
		NormalDuration:      9.0,
		TransitionDurations: []float64{10, 10, 10, 10, 10, 10, 10},
		FPS:                 30,
		TargetSec:           2.0,
		ExtraCaptureSec:     600,
	}
	p, err := Build(in)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	s := p.Summary(time.Now())
	for _, want := range []string{"60 frames", "Interval: 12.4", "extra tail"} {
		if !contains(s, want) {
			t.Errorf("summary missing %q:\n%s", want, s)
		}
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
