package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/1F47E/go-framereel/pkg/job"
	"github.com/1F47E/go-framereel/pkg/logger"
)

var log = logger.Log

// AssembleFunc turns one job into a video.
type AssembleFunc func(j job.Job) job.Result

type Worker struct {
	ctx      context.Context
	assemble AssembleFunc
}

func NewWorker(ctx context.Context, fn AssembleFunc) *Worker {
	return &Worker{
		ctx:      ctx,
		assemble: fn,
	}
}

// WorkerAssemble runs jobs until the channel closes or the context is done.
// Every received job produces exactly one result.
func (w *Worker) WorkerAssemble(i int, jobs <-chan job.Job, results chan<- job.Result) {
	name := fmt.Sprintf("WorkerAssemble #%d", i)
	log.Debugf("%s started\n", name)
	defer log.Debugf("%s finished\n", name)

	for {
		select {
		case <-w.ctx.Done():
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			log.Debugf("%s got %s\n", name, j.Print())

			now := time.Now()
			res := w.assemble(j)
			log.Debugf("%s %s done. Took time: %s\n", name, j.Subject, time.Since(now))

			results <- res
		}
	}
}
