// Package camera abstracts the frame source of a timelapse run. A Device
// may fail transiently on Read (the capture loop retries) and fatally on
// Open (the run aborts before any waiting starts).
package camera

import (
	"image"
	"image/jpeg"
	"os"

	"github.com/pkg/errors"
)

// ErrOpen marks a camera that could not be opened at all.
var ErrOpen = errors.New("cannot open camera")

// Device is a frame source. Open probes the device once; Read acquires one
// frame; Close releases the device and is called exactly once after the
// capture loop.
type Device interface {
	Open() error
	Read() (image.Image, error)
	Close() error
}

// WriteJPEG persists one frame with the configured JPEG quality.
func WriteJPEG(path string, img image.Image, quality int) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: quality}); err != nil {
		f.Close()
		return errors.Wrapf(err, "encode %s", path)
	}
	return f.Close()
}
