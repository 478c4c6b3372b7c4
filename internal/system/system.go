// Package system is thin glue around the host: ffmpeg discovery, hardware
// encoder probing, disk space and the best-effort file-manager reveal.
package system

import (
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/sirupsen/logrus"
)

// CheckFFmpeg verifies ffmpeg is reachable before any timing work starts.
func CheckFFmpeg() error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return errors.Wrap(err, "ffmpeg not found in PATH")
	}
	return nil
}

// BestH264Encoder probes ffmpeg for hardware H.264 encoders and falls back
// to software x264. Priorities: VideoToolbox (macOS), NVENC (NVIDIA),
// then libx264.
func BestH264Encoder() string {
	out, err := exec.Command("ffmpeg", "-hide_banner", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}
	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(string(out), name) {
			return name
		}
	}
	return "libx264"
}

// FreeDiskSpace reports the free bytes on the volume holding path.
func FreeDiskSpace(path string) (uint64, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return 0, err
	}
	usage, err := disk.Usage(abs)
	if err != nil {
		return 0, errors.Wrapf(err, "disk usage for %s", abs)
	}
	return usage.Free, nil
}

// Reveal shows the target in the OS file manager: Explorer with the file
// pre-selected, Finder reveal, or the containing folder via xdg-open.
// Always best-effort; callers only log the returned error.
func Reveal(target string) error {
	abs, err := filepath.Abs(target)
	if err != nil {
		return err
	}
	folder := filepath.Dir(abs)

	switch runtime.GOOS {
	case "windows":
		if err := exec.Command("explorer", "/select,", abs).Run(); err == nil {
			return nil
		}
		return exec.Command("explorer", folder).Run()
	case "darwin":
		if err := exec.Command("open", "-R", abs).Run(); err == nil {
			return nil
		}
		return exec.Command("open", folder).Run()
	default:
		return exec.Command("xdg-open", folder).Run()
	}
}

// WarnIfLowDisk compares the free space under root against an estimate of
// the frame bytes a session will write. Never fatal: a warning is enough
// to let the user pick a different volume.
func WarnIfLowDisk(root string, estimatedBytes uint64) {
	free, err := FreeDiskSpace(root)
	if err != nil {
		logrus.Debugf("disk preflight skipped: %v", err)
		return
	}
	if free < estimatedBytes {
		logrus.Warnf("low disk space: ~%dMB needed, %dMB free under %s",
			estimatedBytes/(1<<20), free/(1<<20), root)
	}
}
