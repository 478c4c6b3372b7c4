package camera

import (
	"image"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vova616/screenshot"
	"golang.org/x/image/draw"
)

// ScreenDevice captures a screen region instead of a webcam: useful when
// the printer is watched through a vendor preview window on a monitor.
// Frames are rescaled to the configured capture resolution.
type ScreenDevice struct {
	// Region to capture. The zero rectangle means the whole screen.
	Region image.Rectangle
	Width  int
	Height int
}

func (d *ScreenDevice) Open() error {
	if _, err := d.Read(); err != nil {
		return errors.Wrapf(ErrOpen, "screen: %v", err)
	}
	logrus.Debugf("screen capture opened, target %dx%d", d.Width, d.Height)
	return nil
}

func (d *ScreenDevice) Read() (image.Image, error) {
	var (
		img *image.RGBA
		err error
	)
	if d.Region.Empty() {
		img, err = screenshot.CaptureScreen()
	} else {
		img, err = screenshot.CaptureRect(d.Region)
	}
	if err != nil {
		return nil, errors.Wrap(err, "capture screen")
	}

	if img.Bounds().Dx() == d.Width && img.Bounds().Dy() == d.Height {
		return img, nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, d.Width, d.Height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst, nil
}

func (d *ScreenDevice) Close() error {
	return nil
}
