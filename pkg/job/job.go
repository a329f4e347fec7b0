package job

import (
	"fmt"
	"sort"

	"github.com/1F47E/go-framereel/pkg/imaging"
	"github.com/1F47E/go-framereel/pkg/meta"
)

// Job is one subject's video assembly.
type Job struct {
	Subject string
	Dir     string
	Start   int
	End     int
	Crop    *imaging.Crop
}

func (j *Job) Print() string {
	crop := "none"
	if j.Crop != nil {
		crop = j.Crop.String()
	}
	return fmt.Sprintf("Job: %s [%d-%d] from %s, crop %s", j.Subject, j.Start, j.End, j.Dir, crop)
}

// Result of one assembly run.
type Result struct {
	Subject string
	Output  string
	State   string

	// Written = Real + Holds + Blends
	Written int
	Real    int
	Holds   int
	Blends  int

	Selected     int
	Dropped      int
	SkippedPairs int

	Meta meta.Metadata
	// object key after upload, empty when not published
	Remote string
	Err    error
}

func (r *Result) Ok() bool {
	return r.Err == nil
}

func (r *Result) Print() string {
	if r.Err != nil {
		return fmt.Sprintf("%s: failed in %s: %v", r.Subject, r.State, r.Err)
	}
	return fmt.Sprintf("%s: %d frames written (%d real, %d held, %d blended, %d pairs skipped) -> %s",
		r.Subject, r.Written, r.Real, r.Holds, r.Blends, r.SkippedPairs, r.Output)
}

// Report is the outcome of a batch.
type Report struct {
	RunID   string
	Results []Result
}

func (r *Report) Add(res Result) {
	r.Results = append(r.Results, res)
}

// Sort orders results by subject, then output, so reports do not depend on worker timing.
func (r *Report) Sort() {
	sort.SliceStable(r.Results, func(i, j int) bool {
		if r.Results[i].Subject != r.Results[j].Subject {
			return r.Results[i].Subject < r.Results[j].Subject
		}
		return r.Results[i].Output < r.Results[j].Output
	})
}

func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if !res.Ok() {
			n++
		}
	}
	return n
}

func (r *Report) Succeeded() int {
	return len(r.Results) - r.Failed()
}
