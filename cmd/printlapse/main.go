package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ivlev/printlapse/internal/camera"
	"github.com/ivlev/printlapse/internal/capture"
	"github.com/ivlev/printlapse/internal/config"
	"github.com/ivlev/printlapse/internal/plan"
	"github.com/ivlev/printlapse/internal/render"
	"github.com/ivlev/printlapse/internal/session"
	"github.com/ivlev/printlapse/internal/system"
	"github.com/ivlev/printlapse/internal/timing"
)

var (
	logLevel    string
	profilePath string

	sessionName string
	totalLayers int
	fps         int
	targetSec   float64

	cameraSource string
	cameraIndex  int
	outputRoot   string
	keepFrames   bool
	noReveal     bool
	assumeYes    bool
)

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}
	return nil
}

func newCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "printlapse",
		Short:         "Capture a paced photo timelapse of a resin 3D print and render it to video",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setupLogger()
		},
		RunE: run,
	}

	fl := cmd.Flags()
	fl.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace|debug|info|warn|error)")
	fl.StringVar(&profilePath, "profile", "", "YAML printer profile (defaults compiled in)")
	fl.StringVarP(&sessionName, "session", "s", "", "session/folder name")
	fl.IntVar(&totalLayers, "layers", 0, "total layer count from the slicer")
	fl.IntVar(&fps, "fps", 0, "output video FPS")
	fl.Float64Var(&targetSec, "duration", 0, "desired video length in seconds")
	fl.StringVar(&cameraSource, "camera", "", "frame source: camera or screen")
	fl.IntVar(&cameraIndex, "camera-index", -1, "camera device index")
	fl.StringVarP(&outputRoot, "out", "o", "", "output root directory")
	fl.BoolVar(&keepFrames, "keep-frames", false, "keep frame files after the video is rendered")
	fl.BoolVar(&noReveal, "no-reveal", false, "do not open the file manager when finished")
	fl.BoolVarP(&assumeYes, "yes", "y", false, "accept all defaults, no prompts")

	return cmd
}

func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if profilePath != "" {
		cfg, err = config.Load(profilePath)
		if err != nil {
			return nil, err
		}
		fmt.Printf("[*] Profile: %s\n", profilePath)
	} else {
		cfg = config.Default()
	}

	if cmd.Flags().Changed("camera") {
		cfg.Capture.Source = cameraSource
	}
	if cmd.Flags().Changed("camera-index") {
		cfg.Capture.CameraIndex = cameraIndex
	}
	if cmd.Flags().Changed("out") {
		cfg.Capture.RootDir = outputRoot
	}
	if cmd.Flags().Changed("keep-frames") {
		cfg.Capture.KeepFrames = keepFrames
	}
	if cmd.Flags().Changed("no-reveal") {
		cfg.Capture.OpenFolderOnFinish = !noReveal
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

func printTimingReport(cfg *config.Config, rep *timing.Report) {
	heading := color.New(color.Bold)
	heading.Println("\nTiming (per layer):")
	fmt.Printf("  Bottom (theoretical): %.3fs | Using: %.3fs (%s)\n",
		rep.BottomTheoretical, rep.BottomChosen, chosenKind(rep.BottomMeasured))
	fmt.Printf("  Normal (theoretical): %.3fs | Using: %.3fs (%s)\n",
		rep.NormalTheoretical, rep.NormalChosen, chosenKind(rep.NormalMeasured))
	if cfg.Printer.TransitionLayers > 0 {
		fmt.Printf("  Transition interval (exposure step): %.4fs\n", rep.TransitionStep)
		fmt.Print("  Transition layer times:")
		for _, d := range rep.TransitionDurations {
			fmt.Printf(" %.3fs", d)
		}
		fmt.Println()
	}
	fmt.Println()
}

func chosenKind(measured bool) string {
	if measured {
		return "measured"
	}
	return "theoretical"
}

// estimateFrameBytes is a rough JPEG size guess for the disk preflight:
// about a quarter byte per pixel at quality ~90.
func estimateFrameBytes(w, h, frames int) uint64 {
	return uint64(w) * uint64(h) / 4 * uint64(frames)
}

func run(cmd *cobra.Command, _ []string) error {
	if err := system.CheckFFmpeg(); err != nil {
		return err
	}

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	rep, err := timing.Compute(cfg.Printer)
	if err != nil {
		return errors.Wrap(err, "compute layer timings")
	}
	printTimingReport(cfg, rep)

	// Configuration-resolution step: every prompted value has a default and
	// a flag; --yes takes all defaults.
	p := &prompter{in: bufio.NewReader(os.Stdin)}
	name := sessionName
	if name == "" {
		def := time.Now().Format("print_20060102")
		if assumeYes {
			name = def
		} else {
			name = p.askString("Session/folder name", def)
		}
	}
	if !cmd.Flags().Changed("layers") {
		totalLayers = 5000
		if !assumeYes {
			totalLayers = p.askInt("Total layers (from slicer)", totalLayers)
		}
	}
	if !cmd.Flags().Changed("fps") {
		fps = 30
		if !assumeYes {
			fps = p.askInt("Output video FPS", fps)
		}
	}
	if !cmd.Flags().Changed("duration") {
		targetSec = 8.0
		if !assumeYes {
			targetSec = p.askFloat("Desired video length (seconds)", targetSec)
		}
	}

	pl, err := plan.Build(plan.Input{
		TotalLayers:         totalLayers,
		BottomLayers:        cfg.Printer.BottomLayers,
		TransitionLayers:    cfg.Printer.TransitionLayers,
		BottomDuration:      rep.BottomChosen,
		NormalDuration:      rep.NormalChosen,
		TransitionDurations: rep.TransitionDurations,
		FPS:                 fps,
		TargetSec:           targetSec,
		ExtraCaptureSec:     cfg.Capture.ExtraCaptureSec,
	})
	if errors.Is(err, plan.ErrVoidPlan) || errors.Is(err, plan.ErrIntervalTooShort) {
		// Clean end, nothing captured, no directory or camera touched.
		fmt.Printf("[!] %v\n", err)
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "build capture plan")
	}

	color.New(color.Bold).Println("Plan:")
	fmt.Print(pl.Summary(time.Now()))
	fmt.Printf("  keep_frames=%v | extra_capture=%.0fs\n\n",
		cfg.Capture.KeepFrames, cfg.Capture.ExtraCaptureSec)

	if !assumeYes && !p.confirm("Start capture?") {
		fmt.Println("[!] Aborted.")
		return nil
	}

	sess, err := session.Allocate(cfg.Capture.RootDir, name)
	if err != nil {
		return errors.Wrap(err, "allocate session directory")
	}
	fmt.Printf("[*] Session folder: %s\n", sess.Dir)

	system.WarnIfLowDisk(cfg.Capture.RootDir,
		estimateFrameBytes(cfg.Capture.Width, cfg.Capture.Height, pl.TotalFrames))

	var dev camera.Device
	switch cfg.Capture.Source {
	case "screen":
		dev = &camera.ScreenDevice{Width: cfg.Capture.Width, Height: cfg.Capture.Height}
	default:
		dev = &camera.FFmpegDevice{
			Index:  cfg.Capture.CameraIndex,
			Width:  cfg.Capture.Width,
			Height: cfg.Capture.Height,
		}
	}
	// Open before the long wait so a dead camera aborts the run immediately.
	if err := dev.Open(); err != nil {
		return err
	}

	loop := &capture.Loop{
		Device:      dev,
		Session:     sess,
		Plan:        pl,
		Clock:       capture.RealClock(),
		JPEGQuality: cfg.Capture.JPEGQuality,
	}
	if err := loop.Run(); err != nil {
		return errors.Wrap(err, "capture loop")
	}

	encoder := cfg.Video.Encoder
	if encoder == "" {
		encoder = system.BestH264Encoder()
	}
	if encoder != "libx264" {
		fmt.Printf("[*] Hardware encoder: %s\n", encoder)
	}
	quality := cfg.Video.Quality
	if quality == 0 {
		quality = render.DefaultQuality(encoder)
	}

	fmt.Println("[*] Running ffmpeg to render the video...")
	err = render.Render(context.Background(), render.Options{
		FPS:     fps,
		Pattern: sess.FramePattern(),
		Output:  sess.VideoPath(),
		Encoder: encoder,
		Quality: quality,
	})
	if err != nil {
		// Frames stay on disk so the encode can be retried by hand.
		fmt.Printf("[!] Encode failed; %d frames preserved in %s\n", pl.TotalFrames, sess.Dir)
		return err
	}
	fmt.Printf("[+] Rendered %s\n", sess.VideoPath())

	if cfg.Capture.WriteInfoCard {
		if err := sess.WriteInfoCard(session.CardMeta{
			Session:     sess.Name,
			TotalLayers: totalLayers,
			Frames:      pl.TotalFrames,
			IntervalSec: pl.Interval,
			Video:       sess.VideoPath(),
		}); err != nil {
			logrus.Warnf("info card: %v", err)
		}
	}

	if cfg.Capture.KeepFrames {
		fmt.Println("[*] keep_frames=true: frames preserved alongside the video.")
	} else {
		deleted, err := sess.CleanupFrames()
		if err != nil {
			logrus.Warnf("frame cleanup: %v", err)
		} else {
			fmt.Printf("[*] Deleted %d frame files, kept %s\n", deleted, sess.VideoPath())
		}
	}

	if cfg.Capture.OpenFolderOnFinish {
		if err := system.Reveal(sess.VideoPath()); err != nil {
			logrus.Warnf("could not open folder: %v", err)
		}
	}

	fmt.Printf("[+++] Done! Result: %s\n", sess.VideoPath())
	return nil
}

func main() {
	cmd := newCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[-] Error: %v\n", err)
		os.Exit(1)
	}
}
