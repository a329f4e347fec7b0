package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

func TestDirs(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "Signal_Fish42", "frame_1.png"))
	write(t, filepath.Join(root, "Signal_Fish07", "frame_1.PNG"))
	write(t, filepath.Join(root, "batch2", "Signal_Fish01", "a_3.png"))
	write(t, filepath.Join(root, "notes", "readme.txt"))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0o755))
	// frames in the root itself do not make it a subject
	write(t, filepath.Join(root, "frame_9.png"))

	dirs, err := Dirs(root, ".png")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "Signal_Fish07"),
		filepath.Join(root, "Signal_Fish42"),
		filepath.Join(root, "batch2", "Signal_Fish01"),
	}, dirs)
}

func TestDirsMissingRoot(t *testing.T) {
	dirs, err := Dirs(filepath.Join(t.TempDir(), "missing"), ".png")
	assert.ErrorIs(t, err, ErrRootNotFound)
	assert.NotNil(t, dirs)
	assert.Empty(t, dirs)
}

func TestSubjectName(t *testing.T) {
	testCases := []struct {
		dir  string
		want string
	}{
		{dir: "/data/Signal_Fish07", want: "Fish07"},
		{dir: "/data/Signal_Fish07Left_v2", want: "Fish07"},
		{dir: "Signal_Fi", want: "Fi"},
		{dir: "/data/Fish07/", want: "Fish07"},
		{dir: "Signal_", want: "Signal_"},
	}
	for _, tc := range testCases {
		t.Run(tc.dir, func(t *testing.T) {
			assert.Equal(t, tc.want, SubjectName(tc.dir))
		})
	}
}
