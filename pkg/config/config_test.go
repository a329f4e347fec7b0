package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "framereel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())

	assert.Equal(t, 5, cfg.RepeatCount)
	assert.Equal(t, 2, cfg.InterpolationFrames)
	assert.Equal(t, 60, cfg.OutputFPS)
	assert.Equal(t, ".png", cfg.FrameExt)
}

func TestLoadPrecedence(t *testing.T) {
	path := writeYAML(t, `
parent_directory: /data/frames
frame_repeat_count: 3
interpolation_frames: 4
output_fps: 30
frame_extension: PNG
container: .mkv
subjects:
  - name: Fish01
    start: 100
    crop: 0,0,10,10
  - name: Fish02
upload:
  endpoint: localhost:9000
  bucket: reels
`)
	t.Setenv("FRAMEREEL_OUTPUT_FPS", "24")
	t.Setenv("FRAMEREEL_UPLOAD_BUCKET", "other")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/frames", cfg.ParentDir)
	assert.Equal(t, PathOutputDir, cfg.OutputDir)
	assert.Equal(t, 3, cfg.RepeatCount)
	assert.Equal(t, 4, cfg.InterpolationFrames)
	// env wins over file
	assert.Equal(t, 24, cfg.OutputFPS)
	assert.Equal(t, "other", cfg.Upload.Bucket)
	assert.Equal(t, "localhost:9000", cfg.Upload.Endpoint)
	assert.True(t, cfg.Upload.Enabled())

	assert.Equal(t, ".png", cfg.FrameExt)
	assert.Equal(t, "mkv", cfg.Container)
	require.Len(t, cfg.Subjects, 2)
	assert.NoError(t, cfg.Validate())
}

func TestLoadSubjectRanges(t *testing.T) {
	path := writeYAML(t, `
subjects:
  - name: Fish07
    start: 100
  - name: Fish08
    end: 200
  - name: Fish09
    start: 5
    end: 50
`)
	t.Setenv("FRAMEREEL_START", "1")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Subjects, 3)
	require.NoError(t, cfg.Validate())

	s, e := cfg.RangeFor("Fish07")
	assert.Equal(t, 100, s)
	assert.Equal(t, DefaultEnd, e)
	s, e = cfg.RangeFor("Fish08")
	assert.Equal(t, 1, s)
	assert.Equal(t, 200, e)
	s, e = cfg.RangeFor("Fish09")
	assert.Equal(t, 5, s)
	assert.Equal(t, 50, e)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeYAML(t, "output_fps: [1, 2"))
	assert.Error(t, err)

	t.Setenv("FRAMEREEL_WORKERS", "many")
	_, err = Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"zero repeat and interp", func(c *Config) { c.RepeatCount = 0; c.InterpolationFrames = 0 }, true},
		{"negative repeat", func(c *Config) { c.RepeatCount = -1 }, false},
		{"negative interp", func(c *Config) { c.InterpolationFrames = -2 }, false},
		{"zero fps", func(c *Config) { c.OutputFPS = 0 }, false},
		{"no codec", func(c *Config) { c.Codec = "" }, false},
		{"no workers", func(c *Config) { c.Workers = 0 }, false},
		{"end before start", func(c *Config) { c.Start = 10; c.End = 5 }, false},
		{"negative start", func(c *Config) { c.Start = -1 }, false},
		{"bad crop", func(c *Config) { c.Crop = "1,2,3" }, false},
		{"crop", func(c *Config) { c.Crop = "10,20,300,200" }, true},
		{"subject without name", func(c *Config) { c.Subjects = []Subject{{}} }, false},
		{"subject bad crop", func(c *Config) { c.Subjects = []Subject{{Name: "Fish01", Crop: "x"}} }, false},
		{"subject bad range", func(c *Config) {
			end := -5
			c.Subjects = []Subject{{Name: "Fish01", End: &end}}
		}, false},
		{"no parent", func(c *Config) { c.ParentDir = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestSubjectOverrides(t *testing.T) {
	start, end := 100, 200
	cfg := Default()
	cfg.Crop = "1,1,5,5"
	cfg.Subjects = []Subject{
		{Name: "Fish01", Start: &start, End: &end, Crop: "0,0,10,10"},
		{Name: "Fish02"},
	}

	assert.True(t, cfg.Wants("Fish01"))
	assert.True(t, cfg.Wants("Fish02"))
	assert.False(t, cfg.Wants("Fish03"))

	s, e := cfg.RangeFor("Fish01")
	assert.Equal(t, 100, s)
	assert.Equal(t, 200, e)
	s, e = cfg.RangeFor("Fish02")
	assert.Equal(t, DefaultStart, s)
	assert.Equal(t, DefaultEnd, e)

	crop, err := cfg.CropFor("Fish01")
	require.NoError(t, err)
	assert.Equal(t, 10, crop.Width)
	crop, err = cfg.CropFor("Fish02")
	require.NoError(t, err)
	assert.Equal(t, 5, crop.Width)

	all := Default()
	assert.True(t, all.Wants("anything"))
	crop, err = all.CropFor("anything")
	require.NoError(t, err)
	assert.Nil(t, crop)
}

func TestNormalize(t *testing.T) {
	cfg := Default()
	cfg.FrameExt = " JPG"
	cfg.Container = ".mov"
	cfg = cfg.Normalize()
	assert.Equal(t, ".jpg", cfg.FrameExt)
	assert.Equal(t, "mov", cfg.Container)
}
