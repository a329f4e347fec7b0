package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1F47E/go-framereel/pkg/config"
)

func TestObjectKey(t *testing.T) {
	tests := []struct {
		prefix, run, path string
		want              string
	}{
		{"videos", "run1", "/tmp/out/Fish01.0.10.mp4", "videos/run1/Fish01.0.10.mp4"},
		{"", "run1", "Fish01.0.10.mp4", "run1/Fish01.0.10.mp4"},
		{"", "", "out/Fish01.0.10.mp4", "Fish01.0.10.mp4"},
		{"a/b/", "r", "x.mkv", "a/b/r/x.mkv"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ObjectKey(tt.prefix, tt.run, tt.path))
	}
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/octet-stream", ContentType("video.unknownext"))
	assert.NotEmpty(t, ContentType("video.mp4"))
}

func TestNewStorage(t *testing.T) {
	s, err := NewStorage(config.Upload{
		Endpoint:  "localhost:9000",
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "videos",
		Prefix:    "reels",
	})
	require.NoError(t, err)
	assert.Equal(t, "videos", s.bucket)
	assert.Equal(t, "reels", s.prefix)
}
