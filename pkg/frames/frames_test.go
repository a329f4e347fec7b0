package frames

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex(t *testing.T) {
	testCases := []struct {
		name   string
		file   string
		want   int
		wantOk bool
		rule   string
	}{
		{name: "frame prefix", file: "frame_0042.png", want: 42, wantOk: true, rule: "frame_N"},
		{name: "frame prefix wins over trailing", file: "fish07_frame_12_cam3.png", want: 12, wantOk: true, rule: "frame_N"},
		{name: "frame prefix wins over leading", file: "99_Frame_7.PNG", want: 7, wantOk: true, rule: "frame_N"},
		{name: "suffix frame", file: "00123_frame.png", want: 123, wantOk: true, rule: "N_frame"},
		{name: "trailing digits", file: "fish07_left_0005.png", want: 5, wantOk: true, rule: "trailing"},
		{name: "underscored digits", file: "fish_12_left.png", want: 12, wantOk: true, rule: "_N_"},
		{name: "first digits", file: "fish07left.png", want: 7, wantOk: true, rule: "any"},
		{name: "no digits", file: "thumbnail.png", wantOk: false},
		{name: "overflow falls through", file: "frame_99999999999999999999999_x7.png", want: 7, wantOk: true, rule: "trailing"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, rule, ok := Explain(tc.file)
			assert.Equal(t, tc.wantOk, ok)
			if !tc.wantOk {
				return
			}
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.rule, rule)

			idx, ok := Index(tc.file)
			assert.True(t, ok)
			assert.Equal(t, tc.want, idx)
		})
	}
}

func TestIndexFramePrefixNeverFallsThrough(t *testing.T) {
	for _, d := range []int{0, 1, 7, 10, 123, 5000} {
		// the same digits also appear at the end and between underscores
		name := filepath.Join("x", "cam_9_frame_"+strconv.Itoa(d)+"_take_"+strconv.Itoa(d+1)+".png")
		got, rule, ok := Explain(name)
		require.True(t, ok)
		assert.Equal(t, d, got)
		assert.Equal(t, "frame_N", rule)
	}
}

func TestRulesOrder(t *testing.T) {
	var names []string
	for _, r := range Rules() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"frame_N", "N_frame", "trailing", "_N_", "any"}, names)
}

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), nil, 0o644))
	}
}

func TestSelect(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir,
		"frame_12.png", "frame_3.PNG", "frame_10.png", "frame_11.png",
		"frame_40.png", // out of range
		"cover.png",    // no index
		"notes.txt",    // wrong extension
	)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "frame_5.png"), 0o755))

	sel, err := Select(dir, ".png", 3, 12)
	require.NoError(t, err)

	var got []int
	for _, f := range sel.Frames {
		got = append(got, f.Index)
		assert.Equal(t, filepath.Join(dir, f.Name), f.Path)
	}
	assert.Equal(t, []int{3, 10, 11, 12}, got)
	assert.Equal(t, 1, sel.Dropped)
	assert.Equal(t, 1, sel.OutOfRange)
}

func TestSelectOrderedAndInRange(t *testing.T) {
	dir := t.TempDir()
	for i := 30; i >= 0; i-- {
		touch(t, dir, "f_"+strconv.Itoa(i)+"_x.png")
	}
	testCases := []struct{ start, end int }{{0, 30}, {5, 9}, {17, 17}, {25, 100}}
	for _, tc := range testCases {
		sel, err := Select(dir, ".png", tc.start, tc.end)
		require.NoError(t, err)
		require.NotEmpty(t, sel.Frames)
		for i, f := range sel.Frames {
			assert.GreaterOrEqual(t, f.Index, tc.start)
			assert.LessOrEqual(t, f.Index, tc.end)
			if i > 0 {
				assert.LessOrEqual(t, sel.Frames[i-1].Index, f.Index)
			}
		}
	}
}

// Two files mapping to one index are both kept. Their relative order is not
// part of the contract, so only membership is checked.
func TestSelectDuplicateIndices(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "frame_1.png", "a_frame_2.png", "frame_2_b.png", "frame_3.png")

	sel, err := Select(dir, ".png", 0, 10)
	require.NoError(t, err)
	require.Len(t, sel.Frames, 4)
	assert.Equal(t, 1, sel.Frames[0].Index)
	assert.Equal(t, 2, sel.Frames[1].Index)
	assert.Equal(t, 2, sel.Frames[2].Index)
	assert.Equal(t, 3, sel.Frames[3].Index)
	assert.ElementsMatch(t, []string{"a_frame_2.png", "frame_2_b.png"},
		[]string{sel.Frames[1].Name, sel.Frames[2].Name})
}

func TestSelectEmptyAndMissing(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "frame_1.png")

	sel, err := Select(dir, ".png", 50, 60)
	require.NoError(t, err)
	assert.Empty(t, sel.Frames)
	assert.Equal(t, 1, sel.OutOfRange)

	_, err = Select(filepath.Join(dir, "nope"), ".png", 0, 1)
	assert.Error(t, err)
}
