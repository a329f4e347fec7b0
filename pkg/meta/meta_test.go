package meta

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertUint64ToBytes(t *testing.T) {
	testCases := []struct {
		name string
		num  uint64
		want []byte
	}{
		{
			name: "Test 1",
			num:  1234567890,
			want: []byte{0, 0, 0, 0, 73, 150, 2, 210},
		},
		{
			name: "Test 2",
			num:  9876543210,
			want: []byte{0, 0, 0, 2, 76, 176, 22, 234},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := convertUint64ToBytes(tc.num)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "Fish07.10.250.mp4", Filename("Fish07", 10, 250, "mp4"))
}

func TestStatAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Fish07.0.1.mp4")
	data := []byte("not really a video")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	m := New("Fish07", 0, 1)
	m.Frames = 3
	require.NoError(t, m.Stat(path))
	assert.True(t, m.IsOk())
	assert.NotZero(t, m.Checksum())
	assert.Len(t, m.ChecksumHex(), 16)
	assert.InDelta(t, float64(len(data))/(1024*1024), m.SizeMB(), 1e-9)

	ok, err := m.Validate(bytes.NewReader(data))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.Validate(bytes.NewReader([]byte("tampered")))
	require.NoError(t, err)
	assert.False(t, ok)

	tags := m.Tags()
	assert.Equal(t, "Fish07", tags["subject"])
	assert.Equal(t, "3", tags["frames"])
	assert.Equal(t, m.ChecksumHex(), tags["checksum"])

	assert.Error(t, m.Stat(filepath.Join(t.TempDir(), "missing.mp4")))
}
