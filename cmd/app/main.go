package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/urfave/cli"

	"github.com/1F47E/go-framereel/pkg/config"
	"github.com/1F47E/go-framereel/pkg/core"
	"github.com/1F47E/go-framereel/pkg/core/progress"
	"github.com/1F47E/go-framereel/pkg/frames"
	"github.com/1F47E/go-framereel/pkg/imaging"
	"github.com/1F47E/go-framereel/pkg/logger"
	"github.com/1F47E/go-framereel/pkg/metrics"
	"github.com/1F47E/go-framereel/pkg/scan"
	"github.com/1F47E/go-framereel/pkg/storage"
	"github.com/1F47E/go-framereel/pkg/tracing"
	"github.com/1F47E/go-framereel/pkg/tui"
	"github.com/1F47E/go-framereel/pkg/video"
)

var app = cli.NewApp()
var log = logger.Log

// log file used while the tui owns the terminal
const tuiLogFile = "framereel.log"

func init() {
	app.Name = "framereel"
	app.Usage = "Compile rendered frame sequences into videos"
	app.UsageText = "framereel [global options] command [arguments]"
	app.HideVersion = true
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "config, c", Usage: "YAML config file", EnvVar: "FRAMEREEL_CONFIG"},
		cli.StringFlag{Name: "parent", Usage: "directory holding the subject frame dirs"},
		cli.StringFlag{Name: "output, o", Usage: "directory for the videos"},
		cli.StringFlag{Name: "ext", Usage: "frame file extension"},
		cli.IntFlag{Name: "repeat", Usage: "times each next frame is held"},
		cli.IntFlag{Name: "interp", Usage: "blended frames between two frames"},
		cli.IntFlag{Name: "fps", Usage: "output frame rate"},
		cli.StringFlag{Name: "codec", Usage: "ffmpeg video codec"},
		cli.StringFlag{Name: "container", Usage: "output file extension"},
		cli.StringFlag{Name: "crop", Usage: "x,y,w,h or none"},
		cli.IntFlag{Name: "start", Usage: "first frame index"},
		cli.IntFlag{Name: "end", Usage: "last frame index"},
		cli.IntFlag{Name: "workers, w", Usage: "subjects compiled at once"},
		cli.StringFlag{Name: "metrics-addr", Usage: "serve prometheus metrics on this address"},
		cli.BoolFlag{Name: "tui", Usage: "interactive progress view"},
	}
	app.Commands = []cli.Command{
		{
			Name:    "compile",
			Aliases: []string{"c"},
			Usage:   "Compile every subject into a video",
			Action:  compile,
		},
		{
			Name:    "scan",
			Aliases: []string{"s"},
			Usage:   "List subjects and their frame counts",
			Action:  survey,
		},
		{
			Name:      "frame",
			Aliases:   []string{"f"},
			Usage:     "Load one frame, crop it and save it as PNG",
			ArgsUsage: "frame_file",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "out", Value: "frame_debug.png", Usage: "where to save the result"},
			},
			Action: debugFrame,
		},
		{
			Name:      "index",
			Aliases:   []string{"i"},
			Usage:     "Show the frame index read from file names",
			ArgsUsage: "name [name...]",
			Action:    index,
		},
	}
}

// loadConfig applies defaults, file, env and then command line flags.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.GlobalString("config"))
	if err != nil {
		return cfg, err
	}

	if c.GlobalIsSet("parent") {
		cfg.ParentDir = c.GlobalString("parent")
	}
	if c.GlobalIsSet("output") {
		cfg.OutputDir = c.GlobalString("output")
	}
	if c.GlobalIsSet("ext") {
		cfg.FrameExt = c.GlobalString("ext")
	}
	if c.GlobalIsSet("repeat") {
		cfg.RepeatCount = c.GlobalInt("repeat")
	}
	if c.GlobalIsSet("interp") {
		cfg.InterpolationFrames = c.GlobalInt("interp")
	}
	if c.GlobalIsSet("fps") {
		cfg.OutputFPS = c.GlobalInt("fps")
	}
	if c.GlobalIsSet("codec") {
		cfg.Codec = c.GlobalString("codec")
	}
	if c.GlobalIsSet("container") {
		cfg.Container = c.GlobalString("container")
	}
	if c.GlobalIsSet("crop") {
		cfg.Crop = c.GlobalString("crop")
	}
	if c.GlobalIsSet("start") {
		cfg.Start = c.GlobalInt("start")
	}
	if c.GlobalIsSet("end") {
		cfg.End = c.GlobalInt("end")
	}
	if c.GlobalIsSet("workers") {
		cfg.Workers = c.GlobalInt("workers")
	}
	if c.GlobalIsSet("metrics-addr") {
		cfg.MetricsAddr = c.GlobalString("metrics-addr")
	}

	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func compile(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.MetricsAddr != "" {
		srv := metrics.StartServer(cfg.MetricsAddr)
		defer func() { _ = srv.Shutdown(context.Background()) }()
	}

	if cfg.TraceEndpoint != "" {
		tp, err := tracing.Init(ctx, cfg.TraceEndpoint)
		if err != nil {
			return err
		}
		defer func() { _ = tp.Shutdown(context.Background()) }()
	}

	var opts []core.Option
	if cfg.Upload.Enabled() {
		st, err := storage.NewStorage(cfg.Upload)
		if err != nil {
			return err
		}
		if err := st.EnsureBucket(ctx); err != nil {
			return err
		}
		opts = append(opts, core.WithPublisher(st))
	}

	eventsCh := make(chan tui.Event)
	done := make(chan struct{})
	if c.GlobalBool("tui") {
		restore, err := logger.ToFile(tuiLogFile)
		if err != nil {
			return err
		}
		defer restore()
		go func() {
			if err := tui.New(ctx, eventsCh, cancel).Run(); err != nil {
				log.Error(err)
			}
			close(done)
			// keep the core unblocked if the tui went away early
			for range eventsCh {
			}
		}()
	} else {
		go func() {
			progress.Run(ctx, eventsCh)
			close(done)
			for range eventsCh {
			}
		}()
	}

	cr := core.NewCore(ctx, cfg, video.NewFFmpeg(cfg.FFmpeg), eventsCh, opts...)
	log.WithField("run", cr.RunID()).Infof("compiling %s into %s", cfg.ParentDir, cfg.OutputDir)

	report, err := cr.Compile()
	close(eventsCh)
	<-done

	for _, res := range report.Results {
		if res.Ok() {
			log.Info(res.Print())
		} else {
			log.Error(res.Print())
		}
	}

	if errors.Is(err, scan.ErrRootNotFound) {
		log.Warn(err)
		return nil
	}
	if err != nil {
		return err
	}
	if n := report.Failed(); n > 0 {
		return fmt.Errorf("%d of %d subjects failed", n, len(report.Results))
	}
	log.Infof("%d videos written", report.Succeeded())
	return nil
}

func survey(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	cr := core.NewCore(context.Background(), cfg, video.NewFFmpeg(cfg.FFmpeg), nil)
	infos, err := cr.Survey()
	if errors.Is(err, scan.ErrRootNotFound) {
		log.Warn(err)
		return nil
	}
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SUBJECT\tFRAMES\tDROPPED\tOUT OF RANGE\tRANGE\tDIR")
	for _, i := range infos {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d-%d\t%s\n", i.Subject, i.Frames, i.Dropped, i.OutOfRange, i.Start, i.End, i.Dir)
	}
	return w.Flush()
}

func debugFrame(c *cli.Context) error {
	path := c.Args().Get(0)
	if path == "" {
		return fmt.Errorf("frame file is required")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	crop, err := imaging.ParseCrop(cfg.Crop)
	if err != nil {
		return err
	}

	out := c.String("out")
	before, after, err := core.DebugFrame(path, crop, out)
	if err != nil {
		return err
	}
	log.Infof("%s: %dx%d -> %dx%d, saved to %s", path, before.Dx(), before.Dy(), after.Dx(), after.Dy(), out)
	return nil
}

func index(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one file name is required")
	}
	for _, name := range c.Args() {
		if idx, rule, ok := frames.Explain(name); ok {
			fmt.Printf("%s\t%d\t(%s)\n", name, idx, rule)
		} else {
			fmt.Printf("%s\t-\t(dropped)\n", name)
		}
	}
	return nil
}

func main() {
	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}
