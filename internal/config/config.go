// Package config holds the immutable run configuration: the printer's
// timing profile plus capture and video settings. A Config is built once at
// startup and passed explicitly to each stage; nothing mutates it afterward.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/ivlev/printlapse/internal/timing"
)

// CaptureSettings cover the camera and the on-disk session.
type CaptureSettings struct {
	Source      string `yaml:"source"` // "camera" or "screen"
	CameraIndex int    `yaml:"camera_index"`
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	JPEGQuality int    `yaml:"jpeg_quality"`

	RootDir            string  `yaml:"root_dir"`
	KeepFrames         bool    `yaml:"keep_frames"`
	ExtraCaptureSec    float64 `yaml:"extra_capture_sec"`
	OpenFolderOnFinish bool    `yaml:"open_folder_on_finish"`
	WriteInfoCard      bool    `yaml:"write_info_card"`
}

// VideoSettings cover the final encode.
type VideoSettings struct {
	// Encoder overrides auto-probing when set.
	Encoder string `yaml:"encoder"`
	// Quality 0 means auto (per-encoder default).
	Quality int `yaml:"quality"`
}

type Config struct {
	Printer timing.Printer  `yaml:"printer"`
	Capture CaptureSettings `yaml:"capture"`
	Video   VideoSettings   `yaml:"video"`
}

// Default returns the compiled-in profile: a GKTwo-class printer with
// ChiTuBox-style two-stage motion, and 1080p webcam capture.
func Default() *Config {
	return &Config{
		Printer: timing.Printer{
			BottomLayers:     10,
			TransitionLayers: 7,
			BottomExposure:   50.0,
			NormalExposure:   1.7,
			RestBeforeLift:   0.5,
			RestAfterLift:    0.0,
			RestAfterRetract: 2.0,
			BottomLift:       timing.MotionProfile{Dist1: 5.0, Speed1: 50.0, Dist2: 5.0, Speed2: 100.0},
			BottomRetract:    timing.MotionProfile{Dist1: 9.0, Speed1: 100.0, Dist2: 1.0, Speed2: 50.0},
			NormalLift:       timing.MotionProfile{Dist1: 1.8, Speed1: 135.0, Dist2: 2.4, Speed2: 230.0},
			NormalRetract:    timing.MotionProfile{Dist1: 2.2, Speed1: 230.0, Dist2: 2.0, Speed2: 90.0},
			FirmwareOverhead: 1.4,
			MeasuredBottom:   126.9,
			MeasuredNormal:   9.03,
		},
		Capture: CaptureSettings{
			Source:             "camera",
			CameraIndex:        0,
			Width:              1920,
			Height:             1080,
			JPEGQuality:        90,
			RootDir:            "captures",
			KeepFrames:         false,
			ExtraCaptureSec:    600,
			OpenFolderOnFinish: true,
			WriteInfoCard:      true,
		},
		Video: VideoSettings{Quality: 0},
	}
}

// Load reads a YAML profile over the defaults, so partial files work.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read profile %s", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse profile %s", path)
	}
	return cfg, nil
}

// Save writes the config as a YAML profile.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects configurations no run could use. Motion speeds are
// checked through the timing package so the error kind matches what the
// calculator itself would report.
func (c *Config) Validate() error {
	for _, m := range []struct {
		name string
		mp   timing.MotionProfile
	}{
		{"bottom lift", c.Printer.BottomLift},
		{"bottom retract", c.Printer.BottomRetract},
		{"normal lift", c.Printer.NormalLift},
		{"normal retract", c.Printer.NormalRetract},
	} {
		if _, err := m.mp.Seconds(); err != nil {
			return errors.Wrap(err, m.name)
		}
	}

	if c.Printer.BottomLayers < 0 || c.Printer.TransitionLayers < 0 {
		return errors.New("layer counts must not be negative")
	}
	if c.Capture.Source != "camera" && c.Capture.Source != "screen" {
		return errors.Errorf("unknown capture source %q (want camera or screen)", c.Capture.Source)
	}
	if c.Capture.Width <= 0 || c.Capture.Height <= 0 {
		return errors.New("capture resolution must be positive")
	}
	if c.Capture.JPEGQuality < 1 || c.Capture.JPEGQuality > 100 {
		return errors.New("jpeg quality must be in 1..100")
	}
	if c.Capture.RootDir == "" {
		return errors.New("output root dir must not be empty")
	}
	return nil
}
