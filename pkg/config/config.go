package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/1F47E/go-framereel/pkg/imaging"
)

// defaults match the lab render batches: 60fps output, 5x hold, 2 blend steps
const (
	DefaultRepeatCount         = 5
	DefaultInterpolationFrames = 2
	DefaultOutputFPS           = 60
	DefaultCodec               = "mpeg4" // mp4v fourcc
	DefaultContainer           = "mp4"
	DefaultPixelFormat         = "yuv420p"
	DefaultFrameExt            = ".png"
	DefaultFFmpeg              = "ffmpeg"
	DefaultWorkers             = 1

	// frame counters from the renderer are five digits
	DefaultStart = 0
	DefaultEnd   = 99999

	// Path
	PathParentDir = "SignalDataFrames"
	PathOutputDir = "Videos"
)

// Subject narrows a batch to one subject and optionally overrides its range and crop.
type Subject struct {
	Name  string `yaml:"name"`
	Start *int   `yaml:"start"`
	End   *int   `yaml:"end"`
	Crop  string `yaml:"crop"`
}

type Upload struct {
	Endpoint  string `yaml:"endpoint"   env:"ENDPOINT"`
	AccessKey string `yaml:"access_key" env:"ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"SECRET_KEY"`
	UseSSL    bool   `yaml:"use_ssl"    env:"USE_SSL"`
	Bucket    string `yaml:"bucket"     env:"BUCKET"`
	Prefix    string `yaml:"prefix"     env:"PREFIX"`
}

func (u Upload) Enabled() bool {
	return u.Endpoint != "" && u.Bucket != ""
}

// Config is built once per run and passed by value.
type Config struct {
	ParentDir string `yaml:"parent_directory" env:"FRAMEREEL_PARENT_DIR"`
	OutputDir string `yaml:"output_directory" env:"FRAMEREEL_OUTPUT_DIR"`
	FrameExt  string `yaml:"frame_extension"  env:"FRAMEREEL_FRAME_EXT"`

	RepeatCount         int    `yaml:"frame_repeat_count"   env:"FRAMEREEL_REPEAT_COUNT"`
	InterpolationFrames int    `yaml:"interpolation_frames" env:"FRAMEREEL_INTERPOLATION_FRAMES"`
	OutputFPS           int    `yaml:"output_fps"           env:"FRAMEREEL_OUTPUT_FPS"`
	Codec               string `yaml:"codec"                env:"FRAMEREEL_CODEC"`
	Container           string `yaml:"container"            env:"FRAMEREEL_CONTAINER"`
	PixelFormat         string `yaml:"pixel_format"         env:"FRAMEREEL_PIXEL_FORMAT"`

	// "x,y,w,h" or "none"
	Crop  string `yaml:"crop"  env:"FRAMEREEL_CROP"`
	Start int    `yaml:"start" env:"FRAMEREEL_START"`
	End   int    `yaml:"end"   env:"FRAMEREEL_END"`

	Subjects []Subject `yaml:"subjects" env:"-"`

	Workers       int    `yaml:"workers"        env:"FRAMEREEL_WORKERS"`
	FFmpeg        string `yaml:"ffmpeg"         env:"FRAMEREEL_FFMPEG"`
	MetricsAddr   string `yaml:"metrics_addr"   env:"FRAMEREEL_METRICS_ADDR"`
	TraceEndpoint string `yaml:"trace_endpoint" env:"FRAMEREEL_TRACE_ENDPOINT"`

	Upload Upload `yaml:"upload" envPrefix:"FRAMEREEL_UPLOAD_"`
}

func Default() Config {
	return Config{
		ParentDir:           PathParentDir,
		OutputDir:           PathOutputDir,
		FrameExt:            DefaultFrameExt,
		RepeatCount:         DefaultRepeatCount,
		InterpolationFrames: DefaultInterpolationFrames,
		OutputFPS:           DefaultOutputFPS,
		Codec:               DefaultCodec,
		Container:           DefaultContainer,
		PixelFormat:         DefaultPixelFormat,
		Crop:                "none",
		Start:               DefaultStart,
		End:                 DefaultEnd,
		Workers:             DefaultWorkers,
		FFmpeg:              DefaultFFmpeg,
	}
}

// Load applies defaults, then the YAML file at path (if any), then the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg.Normalize(), nil
}

// Normalize lowercases the frame extension with a leading dot and strips the
// dot from the container. Call again after overriding either field.
func (c Config) Normalize() Config {
	c.FrameExt = normalizeExt(c.FrameExt)
	c.Container = strings.TrimPrefix(strings.TrimSpace(c.Container), ".")
	return c
}

func (c Config) Validate() error {
	var errs []error
	if c.ParentDir == "" {
		errs = append(errs, errors.New("parent_directory is required"))
	}
	if c.OutputDir == "" {
		errs = append(errs, errors.New("output_directory is required"))
	}
	if c.RepeatCount < 0 {
		errs = append(errs, fmt.Errorf("frame_repeat_count must be >= 0, got %d", c.RepeatCount))
	}
	if c.InterpolationFrames < 0 {
		errs = append(errs, fmt.Errorf("interpolation_frames must be >= 0, got %d", c.InterpolationFrames))
	}
	if c.OutputFPS <= 0 {
		errs = append(errs, fmt.Errorf("output_fps must be > 0, got %d", c.OutputFPS))
	}
	if c.Codec == "" {
		errs = append(errs, errors.New("codec is required"))
	}
	if c.Container == "" {
		errs = append(errs, errors.New("container is required"))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be >= 1, got %d", c.Workers))
	}
	if err := validRange(c.Start, c.End); err != nil {
		errs = append(errs, err)
	}
	if _, err := imaging.ParseCrop(c.Crop); err != nil {
		errs = append(errs, err)
	}
	for _, s := range c.Subjects {
		if s.Name == "" {
			errs = append(errs, errors.New("subject without name"))
			continue
		}
		start, end := c.RangeFor(s.Name)
		if err := validRange(start, end); err != nil {
			errs = append(errs, fmt.Errorf("subject %s: %w", s.Name, err))
		}
		if _, err := imaging.ParseCrop(s.Crop); err != nil {
			errs = append(errs, fmt.Errorf("subject %s: %w", s.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Wants reports whether a discovered subject is part of this run.
// An empty subject list selects everything.
func (c Config) Wants(name string) bool {
	if len(c.Subjects) == 0 {
		return true
	}
	_, ok := c.subject(name)
	return ok
}

// RangeFor returns the inclusive frame range for a subject.
func (c Config) RangeFor(name string) (int, int) {
	start, end := c.Start, c.End
	if s, ok := c.subject(name); ok {
		if s.Start != nil {
			start = *s.Start
		}
		if s.End != nil {
			end = *s.End
		}
	}
	return start, end
}

// CropFor returns the crop for a subject, nil when frames are used whole.
func (c Config) CropFor(name string) (*imaging.Crop, error) {
	if s, ok := c.subject(name); ok && s.Crop != "" {
		return imaging.ParseCrop(s.Crop)
	}
	return imaging.ParseCrop(c.Crop)
}

func (c Config) subject(name string) (Subject, bool) {
	for _, s := range c.Subjects {
		if s.Name == name {
			return s, true
		}
	}
	return Subject{}, false
}

func validRange(start, end int) error {
	if start < 0 {
		return fmt.Errorf("start must be >= 0, got %d", start)
	}
	if end < start {
		return fmt.Errorf("end (%d) before start (%d)", end, start)
	}
	return nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return DefaultFrameExt
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
