package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"strconv"
	"strings"

	"github.com/1F47E/go-framereel/pkg/logger"
)

var ErrCropOrigin = errors.New("crop origin outside image")

// Crop is a rectangle in pixel coordinates of the source frame.
type Crop struct {
	X      int
	Y      int
	Width  int
	Height int
}

// ParseCrop reads "x,y,w,h". Empty or "none" means no crop and returns nil.
func ParseCrop(s string) (*Crop, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("bad crop %q; expected x,y,w,h or none", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("bad crop %q: %w", s, err)
		}
		if n < 0 {
			return nil, fmt.Errorf("bad crop %q: negative value", s)
		}
		v[i] = n
	}
	if v[2] == 0 || v[3] == 0 {
		return nil, fmt.Errorf("bad crop %q: zero size", s)
	}
	return &Crop{X: v[0], Y: v[1], Width: v[2], Height: v[3]}, nil
}

func (c Crop) String() string {
	return fmt.Sprintf("Crop(%d,%d,%dx%d)", c.X, c.Y, c.Width, c.Height)
}

// Validate checks the crop against a frame of the given bounds.
// An origin outside the frame is an error; an oversized box is shrunk to fit.
func (c Crop) Validate(bounds image.Rectangle) (Crop, error) {
	w, h := bounds.Dx(), bounds.Dy()
	if c.X >= w || c.Y >= h {
		return c, fmt.Errorf("%w: (%d,%d) not in %dx%d", ErrCropOrigin, c.X, c.Y, w, h)
	}
	if c.X+c.Width > w || c.Y+c.Height > h {
		out := c
		out.Width = min(c.Width, w-c.X)
		out.Height = min(c.Height, h-c.Y)
		logger.Scope("crop").Warnf("%s adjusted to fit %dx%d: %s", c, w, h, out)
		return out, nil
	}
	return c, nil
}

// Apply cuts the crop out of img. Coordinates are clamped to this frame,
// since frames of one batch are not always the same size.
func (c Crop) Apply(img *image.RGBA) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	x := clamp(c.X, 0, w-1)
	y := clamp(c.Y, 0, h-1)
	cw := min(c.Width, w-x)
	ch := min(c.Height, h-y)

	dst := image.NewRGBA(image.Rect(0, 0, cw, ch))
	draw.Draw(dst, dst.Bounds(), img, b.Min.Add(image.Pt(x, y)), draw.Src)
	return dst
}

// Processor loads frames and applies the optional crop to each one.
type Processor struct {
	Crop *Crop
}

func (p Processor) LoadFrame(path string) (*image.RGBA, error) {
	img, err := Load(path)
	if err != nil {
		return nil, err
	}
	if p.Crop != nil {
		img = p.Crop.Apply(img)
	}
	return img, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
