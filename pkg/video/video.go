package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/1F47E/go-framereel/pkg/logger"
)

var ErrGeometry = errors.New("frame size differs from video size")

// Params fix the geometry and encoding of one output video.
type Params struct {
	Path        string
	Width       int
	Height      int
	FPS         int
	Codec       string
	PixelFormat string
}

// Sink accepts frames of one fixed size, in order.
type Sink interface {
	Write(img *image.RGBA) error
	// Close finalizes the file. Only the first call does work.
	Close() error
}

type Opener interface {
	Open(ctx context.Context, p Params) (Sink, error)
}

// FFmpeg streams raw rgb24 frames into an ffmpeg process.
type FFmpeg struct {
	Bin string
}

func NewFFmpeg(bin string) *FFmpeg {
	if bin == "" {
		bin = "ffmpeg"
	}
	return &FFmpeg{Bin: bin}
}

// Args builds the ffmpeg command line for p.
func Args(p Params) []string {
	out := ffmpeg.KwArgs{
		"c:v": p.Codec,
		// yuv420p needs even sizes, crops often are not
		"vf": "pad=ceil(iw/2)*2:ceil(ih/2)*2",
	}
	if p.PixelFormat != "" {
		out["pix_fmt"] = p.PixelFormat
	}
	return ffmpeg.Input("pipe:", ffmpeg.KwArgs{
		"format":  "rawvideo",
		"pix_fmt": "rgb24",
		"s":       fmt.Sprintf("%dx%d", p.Width, p.Height),
		"r":       p.FPS,
	}).
		Output(p.Path, out).
		OverWriteOutput().
		GetArgs()
}

func (f *FFmpeg) Open(ctx context.Context, p Params) (Sink, error) {
	log := logger.Scope("video")

	if p.Width <= 0 || p.Height <= 0 {
		return nil, fmt.Errorf("bad video size %dx%d", p.Width, p.Height)
	}
	if err := os.MkdirAll(filepath.Dir(p.Path), os.ModePerm); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	args := Args(p)
	log.Debugf("Running ffmpeg command: %s %s", f.Bin, strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, f.Bin, args...)
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdin: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	return &pipeSink{
		cmd:    cmd,
		stdin:  stdin,
		stderr: stderr,
		width:  p.Width,
		height: p.Height,
		buf:    make([]byte, p.Width*p.Height*3),
	}, nil
}

type pipeSink struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *bytes.Buffer
	width  int
	height int
	buf    []byte

	once     sync.Once
	closeErr error
}

func (s *pipeSink) Write(img *image.RGBA) error {
	if err := CheckGeometry(img, s.width, s.height); err != nil {
		return err
	}
	PackRGB(s.buf, img)
	if _, err := s.stdin.Write(s.buf); err != nil {
		return fmt.Errorf("write frame to ffmpeg: %w", err)
	}
	return nil
}

func (s *pipeSink) Close() error {
	s.once.Do(func() {
		_ = s.stdin.Close()
		if err := s.cmd.Wait(); err != nil {
			s.closeErr = fmt.Errorf("ffmpeg: %w: %s", err, lastLine(s.stderr.String()))
		}
	})
	return s.closeErr
}

// CheckGeometry fails with ErrGeometry if img is not w x h.
func CheckGeometry(img *image.RGBA, w, h int) error {
	b := img.Bounds()
	if b.Dx() != w || b.Dy() != h {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrGeometry, b.Dx(), b.Dy(), w, h)
	}
	return nil
}

// PackRGB copies the rgb channels of img into dst, row by row.
func PackRGB(dst []byte, img *image.RGBA) {
	b := img.Bounds()
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx()*4; x += 4 {
			dst[i] = row[x]
			dst[i+1] = row[x+1]
			dst[i+2] = row[x+2]
			i += 3
		}
	}
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
