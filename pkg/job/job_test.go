package job

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/1F47E/go-framereel/pkg/imaging"
)

func TestReport(t *testing.T) {
	var r Report
	r.Add(Result{Subject: "Fish03"})
	r.Add(Result{Subject: "Fish01", Err: errors.New("boom"), State: "ERROR"})
	r.Add(Result{Subject: "Fish02"})
	r.Sort()

	var subjects []string
	for _, res := range r.Results {
		subjects = append(subjects, res.Subject)
	}
	assert.Equal(t, []string{"Fish01", "Fish02", "Fish03"}, subjects)
	assert.Equal(t, 1, r.Failed())
	assert.Equal(t, 2, r.Succeeded())
	assert.Contains(t, r.Results[0].Print(), "failed in ERROR")
}

func TestPrint(t *testing.T) {
	j := Job{Subject: "Fish01", Dir: "/frames/Run_Fish01", Start: 1, End: 9}
	assert.Contains(t, j.Print(), "crop none")

	j.Crop = &imaging.Crop{X: 1, Y: 2, Width: 3, Height: 4}
	assert.Contains(t, j.Print(), "Crop(1,2,3x4)")

	res := Result{Subject: "Fish01", Written: 7, Real: 2, Holds: 3, Blends: 2, Output: "out.mp4"}
	assert.Equal(t, "Fish01: 7 frames written (2 real, 3 held, 2 blended, 0 pairs skipped) -> out.mp4", res.Print())
}
