package core

import (
	"fmt"
	"sync"

	"github.com/1F47E/go-framereel/pkg/frames"
	"github.com/1F47E/go-framereel/pkg/job"
	"github.com/1F47E/go-framereel/pkg/logger"
	"github.com/1F47E/go-framereel/pkg/scan"
	"github.com/1F47E/go-framereel/pkg/tui"
	"github.com/1F47E/go-framereel/pkg/workers"
)

// Jobs discovers subject directories and turns the wanted ones into jobs.
// Subjects with a bad crop come back as failed results instead.
func (c *Core) Jobs() ([]job.Job, []job.Result, error) {
	log := logger.Scope("core jobs")

	dirs, err := scan.Dirs(c.cfg.ParentDir, c.cfg.FrameExt)
	if err != nil {
		return nil, nil, err
	}

	var jobs []job.Job
	var failed []job.Result
	seen := make(map[string]string)
	for _, dir := range dirs {
		name := scan.SubjectName(dir)
		if !c.cfg.Wants(name) {
			log.Debugf("skip %s, subject %s not selected", dir, name)
			continue
		}
		// same subject in two dirs writes the same output file
		if prev, ok := seen[name]; ok {
			log.Warnf("subject %s found in %s and %s, the later video overwrites the earlier", name, prev, dir)
		}
		seen[name] = dir

		crop, err := c.cfg.CropFor(name)
		if err != nil {
			failed = append(failed, job.Result{
				Subject: name,
				State:   StateError.String(),
				Err:     fmt.Errorf("crop for %s: %w", name, err),
			})
			continue
		}
		start, end := c.cfg.RangeFor(name)
		jobs = append(jobs, job.Job{
			Subject: name,
			Dir:     dir,
			Start:   start,
			End:     end,
			Crop:    crop,
		})
	}
	return jobs, failed, nil
}

// Compile runs every subject under the parent directory. A failing subject
// is reported and the batch moves on.
func (c *Core) Compile() (job.Report, error) {
	log := logger.Scope("core compile").WithField("run", c.runID)
	report := job.Report{RunID: c.runID}

	c.emit(tui.NewEventSpin(fmt.Sprintf("Scanning %s...", c.cfg.ParentDir)))
	jobs, failed, err := c.Jobs()
	if err != nil {
		return report, err
	}
	for _, f := range failed {
		report.Add(f)
	}
	if len(jobs) == 0 {
		log.Warnf("no subjects with %s frames under %s", c.cfg.FrameExt, c.cfg.ParentDir)
		return report, nil
	}
	log.Infof("%d subjects to compile", len(jobs))

	n := c.cfg.Workers
	if n < 1 {
		n = 1
	}
	if n > len(jobs) {
		n = len(jobs)
	}

	jobsCh := make(chan job.Job, len(jobs))
	resultsCh := make(chan job.Result, len(jobs))

	worker := workers.NewWorker(c.ctx, c.Assemble)
	var wg sync.WaitGroup
	log.Debugf("Starting %d workers", n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			worker.WorkerAssemble(i+1, jobsCh, resultsCh)
		}(i)
	}

	for _, j := range jobs {
		jobsCh <- j
	}
	close(jobsCh)

	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	for res := range resultsCh {
		report.Add(res)
	}
	report.Sort()

	if err := c.ctx.Err(); err != nil {
		return report, fmt.Errorf("batch interrupted after %d of %d subjects: %w", len(report.Results)-len(failed), len(jobs), err)
	}
	return report, nil
}

// SubjectInfo is what Survey knows about a subject without decoding frames.
type SubjectInfo struct {
	Subject string
	Dir     string
	Start   int
	End     int
	Frames  int
	Dropped int
	// frames outside [Start, End]
	OutOfRange int
}

// Survey lists the subjects a compile would run, with their frame counts.
func (c *Core) Survey() ([]SubjectInfo, error) {
	jobs, _, err := c.Jobs()
	if err != nil {
		return nil, err
	}
	infos := make([]SubjectInfo, 0, len(jobs))
	for _, j := range jobs {
		sel, err := frames.Select(j.Dir, c.cfg.FrameExt, j.Start, j.End)
		if err != nil {
			return nil, fmt.Errorf("survey %s: %w", j.Dir, err)
		}
		infos = append(infos, SubjectInfo{
			Subject:    j.Subject,
			Dir:        j.Dir,
			Start:      j.Start,
			End:        j.End,
			Frames:     len(sel.Frames),
			Dropped:    sel.Dropped,
			OutOfRange: sel.OutOfRange,
		})
	}
	return infos, nil
}
