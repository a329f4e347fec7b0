package core

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/1F47E/go-framereel/pkg/frames"
	"github.com/1F47E/go-framereel/pkg/imaging"
	"github.com/1F47E/go-framereel/pkg/job"
	"github.com/1F47E/go-framereel/pkg/meta"
	"github.com/1F47E/go-framereel/pkg/metrics"
	"github.com/1F47E/go-framereel/pkg/tui"
	"github.com/1F47E/go-framereel/pkg/video"
)

const (
	kindReal  = "real"
	kindHold  = "hold"
	kindBlend = "blend"
)

// assembly is the mutable state of one Assemble call.
type assembly struct {
	log    *logrus.Entry
	res    *job.Result
	state  State
	sink   video.Sink
	closed bool
	proc   imaging.Processor
	width  int
	height int

	// last frame loaded, reused as the head of the next pair
	cached    *image.RGBA
	cachedIdx int
}

// Assemble turns one subject directory into one video.
//
// For every consecutive pair (a, b) it writes a once, holds b for
// RepeatCount frames and then writes InterpolationFrames blends of a and b.
// The last frame is held RepeatCount more times before the sink is closed.
func (c *Core) Assemble(j job.Job) job.Result {
	ctx, span := otel.Tracer("core").Start(c.ctx, "Core.Assemble", trace.WithAttributes(
		attribute.String("subject", j.Subject),
		attribute.String("run_id", c.runID),
	))
	defer span.End()

	metrics.ActiveWorkers.Inc()
	defer metrics.ActiveWorkers.Dec()
	started := time.Now()

	a := &assembly{
		log: log.WithFields(logrus.Fields{
			"scope":   "core assemble",
			"subject": j.Subject,
			"run":     c.runID,
		}),
		res:   &job.Result{Subject: j.Subject},
		state: StateInit,
	}
	defer a.closeSink()

	err := c.assemble(ctx, j, a)
	if err != nil {
		a.state = StateError
		a.res.Err = err
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.SubjectsTotal.WithLabelValues("failed").Inc()
		a.log.Errorf("failed: %v", err)
		c.emit(tui.NewEventText(fmt.Sprintf("✗ %s: %v", j.Subject, err)))
	} else {
		metrics.SubjectsTotal.WithLabelValues("ok").Inc()
		a.log.Info(a.res.Meta.Print())
		c.emit(tui.NewEventText(fmt.Sprintf("✓ %s: %d frames -> %s", j.Subject, a.res.Written, a.res.Output)))
	}
	a.res.State = a.state.String()
	metrics.AssemblyDuration.WithLabelValues("total").Observe(time.Since(started).Seconds())
	span.SetAttributes(attribute.Int("frames_written", a.res.Written))

	return *a.res
}

func (c *Core) assemble(ctx context.Context, j job.Job, a *assembly) error {
	// INIT
	sel, err := frames.Select(j.Dir, c.cfg.FrameExt, j.Start, j.End)
	if err != nil {
		return fmt.Errorf("select frames: %w", err)
	}
	a.res.Selected = len(sel.Frames)
	a.res.Dropped = sel.Dropped
	metrics.FramesDroppedTotal.Add(float64(sel.Dropped))
	if len(sel.Frames) == 0 {
		return fmt.Errorf("%w: %s [%d-%d]", ErrNoFrames, j.Dir, j.Start, j.End)
	}
	a.log.Debugf("%d frames selected, %d dropped, %d out of range", len(sel.Frames), sel.Dropped, sel.OutOfRange)

	// DIMENSIONING
	a.state = StateDimensioning
	now := time.Now()
	first, err := c.dimension(ctx, j, a, sel.Frames[0].Path)
	if err != nil {
		return err
	}
	metrics.AssemblyDuration.WithLabelValues("dimension").Observe(time.Since(now).Seconds())

	// STREAMING
	a.state = StateStreaming
	now = time.Now()
	a.cached, a.cachedIdx = first, 0
	if err := c.stream(ctx, j, a, sel.Frames); err != nil {
		return err
	}

	// CLOSED
	if err := a.closeSink(); err != nil {
		return fmt.Errorf("%w: %w", ErrSinkWrite, err)
	}
	a.state = StateClosed
	metrics.AssemblyDuration.WithLabelValues("stream").Observe(time.Since(now).Seconds())

	m := meta.New(j.Subject, j.Start, j.End)
	m.Frames = a.res.Written
	m.Width = a.width
	m.Height = a.height
	m.Codec = c.cfg.Codec
	m.RunID = c.runID
	if err := m.Stat(a.res.Output); err != nil {
		a.log.Warnf("video stats unavailable: %v", err)
	}
	a.res.Meta = m

	if c.publisher != nil {
		c.publish(ctx, a)
	}
	return nil
}

// dimension loads the first frame, fixes the crop and the video geometry
// and opens the sink.
func (c *Core) dimension(ctx context.Context, j job.Job, a *assembly, path string) (*image.RGBA, error) {
	ctx, span := otel.Tracer("core").Start(ctx, "dimension")
	defer span.End()

	img, err := imaging.Load(path)
	if err != nil {
		return nil, fmt.Errorf("first frame: %w", err)
	}

	if j.Crop != nil {
		crop, err := j.Crop.Validate(img.Bounds())
		if err != nil {
			return nil, err
		}
		a.proc = imaging.Processor{Crop: &crop}
		img = crop.Apply(img)
	}

	b := img.Bounds()
	a.width, a.height = b.Dx(), b.Dy()
	span.SetAttributes(attribute.Int("width", a.width), attribute.Int("height", a.height))

	if err := os.MkdirAll(c.cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: output dir: %w", ErrSinkUnavailable, err)
	}
	a.res.Output = filepath.Join(c.cfg.OutputDir, meta.Filename(j.Subject, j.Start, j.End, c.cfg.Container))

	sink, err := c.opener.Open(ctx, video.Params{
		Path:        a.res.Output,
		Width:       a.width,
		Height:      a.height,
		FPS:         c.cfg.OutputFPS,
		Codec:       c.cfg.Codec,
		PixelFormat: c.cfg.PixelFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSinkUnavailable, err)
	}
	a.sink = sink
	a.log.Debugf("writing %dx%d at %d fps to %s", a.width, a.height, c.cfg.OutputFPS, a.res.Output)
	return img, nil
}

func (c *Core) stream(ctx context.Context, j job.Job, a *assembly, recs []frames.Record) error {
	_, span := otel.Tracer("core").Start(ctx, "stream")
	defer span.End()

	repeat := c.cfg.RepeatCount
	interp := c.cfg.InterpolationFrames
	pairs := len(recs) - 1

	if pairs == 0 {
		if err := a.write(a.cached, kindReal); err != nil {
			return err
		}
		return c.closingHold(a, recs, repeat)
	}

	for i := 0; i < pairs; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cancelled at frame %d: %w", recs[i].Index, err)
		}

		cur, err := a.frame(recs, i)
		if err != nil {
			a.skipPair(recs, i, err)
			continue
		}
		if err := a.write(cur, kindReal); err != nil {
			return err
		}

		next, err := a.frame(recs, i+1)
		if err != nil {
			a.skipPair(recs, i, err)
			continue
		}
		for r := 0; r < repeat; r++ {
			if err := a.write(next, kindHold); err != nil {
				return err
			}
		}

		blends, err := imaging.Blend(cur, next, interp)
		if err != nil {
			a.log.Warnf("no blend between %d and %d: %v", recs[i].Index, recs[i+1].Index, err)
			metrics.PairsSkippedTotal.WithLabelValues("shape").Inc()
		}
		for _, b := range blends {
			if err := a.write(b, kindBlend); err != nil {
				return err
			}
		}

		c.emit(tui.NewEventBar(
			fmt.Sprintf("%s: frame %d/%d", j.Subject, i+2, len(recs)),
			float64(i+1)/float64(pairs),
		))
	}

	return c.closingHold(a, recs, repeat)
}

// closingHold holds the last frame. Without repeats the last frame of a
// longer sequence would never be written, so it goes out once as real.
func (c *Core) closingHold(a *assembly, recs []frames.Record, repeat int) error {
	kind := kindHold
	if repeat == 0 {
		if len(recs) == 1 {
			return nil
		}
		kind, repeat = kindReal, 1
	}
	last, err := a.frame(recs, len(recs)-1)
	if err != nil {
		a.log.Warnf("no closing hold: %v", err)
		return nil
	}
	for r := 0; r < repeat; r++ {
		if err := a.write(last, kind); err != nil {
			return err
		}
	}
	return nil
}

func (c *Core) publish(ctx context.Context, a *assembly) {
	ctx, span := otel.Tracer("core").Start(ctx, "publish")
	defer span.End()

	now := time.Now()
	key, err := c.publisher.Publish(ctx, a.res.Output, a.res.Meta)
	if err != nil {
		span.RecordError(err)
		metrics.SubjectsTotal.WithLabelValues("upload_failed").Inc()
		a.log.Errorf("upload failed, video kept locally: %v", err)
		return
	}
	metrics.AssemblyDuration.WithLabelValues("publish").Observe(time.Since(now).Seconds())
	a.res.Remote = key
	a.log.Infof("uploaded to %s", key)
}

// frame returns recs[i] cropped and checked against the video geometry.
func (a *assembly) frame(recs []frames.Record, i int) (*image.RGBA, error) {
	if a.cached != nil && a.cachedIdx == i {
		return a.cached, nil
	}
	img, err := a.proc.LoadFrame(recs[i].Path)
	if err != nil {
		return nil, err
	}
	if err := video.CheckGeometry(img, a.width, a.height); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFrameGeometry, recs[i].Name, err)
	}
	a.cached, a.cachedIdx = img, i
	return img, nil
}

func (a *assembly) skipPair(recs []frames.Record, i int, err error) {
	a.res.SkippedPairs++
	reason := "decode"
	if errors.Is(err, ErrFrameGeometry) {
		reason = "geometry"
	}
	metrics.PairsSkippedTotal.WithLabelValues(reason).Inc()
	a.log.Warnf("skip pair %d-%d: %v", recs[i].Index, recs[i+1].Index, err)
}

func (a *assembly) write(img *image.RGBA, kind string) error {
	if err := a.sink.Write(img); err != nil {
		return fmt.Errorf("%w: frame %d: %w", ErrSinkWrite, a.res.Written, err)
	}
	a.res.Written++
	switch kind {
	case kindReal:
		a.res.Real++
	case kindHold:
		a.res.Holds++
	case kindBlend:
		a.res.Blends++
	}
	metrics.FramesWrittenTotal.WithLabelValues(kind).Inc()
	return nil
}

// closeSink closes the sink once, whatever path the assembly took.
func (a *assembly) closeSink() error {
	if a.sink == nil || a.closed {
		return nil
	}
	a.closed = true
	return a.sink.Close()
}
