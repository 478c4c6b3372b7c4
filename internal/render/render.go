// Package render turns a session's frame sequence into one video file via
// out-of-process ffmpeg. An encode failure is terminal for the run and
// leaves every captured frame in place.
package render

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Options describe one encode invocation.
type Options struct {
	FPS     int
	Pattern string // sequential zero-padded input pattern, e.g. dir/seq_%05d.jpg
	Output  string
	Encoder string // h264_videotoolbox, h264_nvenc or libx264
	Quality int    // CRF for x264/nvenc, bitrate units for VideoToolbox
}

// DefaultQuality picks a sane quality for an encoder when the user left it
// on auto.
func DefaultQuality(encoder string) int {
	switch encoder {
	case "h264_videotoolbox":
		return 75 // bitrate = quality*100 kbit/s
	case "h264_nvenc":
		return 28
	default:
		return 20
	}
}

// BuildArgs assembles the ffmpeg argument list for one encode.
func BuildArgs(o Options) []string {
	args := []string{
		"-y",
		"-framerate", fmt.Sprintf("%d", o.FPS),
		"-i", o.Pattern,
		"-c:v", o.Encoder,
	}

	switch o.Encoder {
	case "h264_videotoolbox":
		args = append(args, "-b:v", fmt.Sprintf("%dk", o.Quality*100))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", o.Quality))
	default: // libx264
		args = append(args, "-preset", "slow", "-crf", fmt.Sprintf("%d", o.Quality))
	}

	args = append(args, "-pix_fmt", "yuv420p", o.Output)
	return args
}

// Render runs ffmpeg over the frame sequence, streaming its progress lines
// while waiting. On failure the stderr tail is folded into the error.
func Render(ctx context.Context, o Options) error {
	args := BuildArgs(o)
	logrus.Debugf("ffmpeg %s", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return errors.Wrap(err, "stderr pipe")
	}
	if err := cmd.Start(); err != nil {
		return errors.Wrap(err, "start ffmpeg")
	}

	// ffmpeg writes both progress and diagnostics to stderr; keep a tail
	// for the error message and surface progress lines as they come.
	var tail []string
	var g errgroup.Group
	g.Go(func() error {
		sc := bufio.NewScanner(stderr)
		sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for sc.Scan() {
			line := sc.Text()
			if strings.HasPrefix(line, "frame=") {
				fmt.Printf("\r[>] %s", strings.TrimSpace(line))
				continue
			}
			logrus.Debug(line)
			tail = append(tail, line)
			if len(tail) > 20 {
				tail = tail[1:]
			}
		}
		return sc.Err()
	})

	readErr := g.Wait()
	waitErr := cmd.Wait()
	fmt.Println()

	if waitErr != nil {
		return errors.Wrapf(waitErr, "ffmpeg encode failed:\n%s", strings.Join(tail, "\n"))
	}
	if readErr != nil {
		logrus.Debugf("ffmpeg stderr read: %v", readErr)
	}
	return nil
}
