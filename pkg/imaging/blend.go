package imaging

import (
	"errors"
	"fmt"
	"image"
	"math"
)

var ErrShapeMismatch = errors.New("frame size mismatch")

// Blend returns n frames between a and b. The i-th frame (1-indexed) is
// (1-α)·a + α·b with α = i/(n+1).
func Blend(a, b *image.RGBA, n int) ([]*image.RGBA, error) {
	if a.Bounds().Size() != b.Bounds().Size() {
		return nil, fmt.Errorf("%w: %v vs %v", ErrShapeMismatch, a.Bounds().Size(), b.Bounds().Size())
	}
	if n <= 0 {
		return []*image.RGBA{}, nil
	}

	out := make([]*image.RGBA, 0, n)
	for i := 1; i <= n; i++ {
		alpha := float64(i) / float64(n+1)
		out = append(out, blendOne(a, b, alpha))
	}
	return out, nil
}

func blendOne(a, b *image.RGBA, alpha float64) *image.RGBA {
	size := a.Bounds().Size()
	dst := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	ab, bb := a.Bounds(), b.Bounds()
	for y := 0; y < size.Y; y++ {
		ra := a.PixOffset(ab.Min.X, ab.Min.Y+y)
		rb := b.PixOffset(bb.Min.X, bb.Min.Y+y)
		rd := dst.PixOffset(0, y)
		for x := 0; x < size.X*4; x += 4 {
			// rgb only, output is always opaque
			for c := 0; c < 3; c++ {
				v := (1-alpha)*float64(a.Pix[ra+x+c]) + alpha*float64(b.Pix[rb+x+c])
				dst.Pix[rd+x+c] = uint8(math.Max(0, math.Min(255, math.Round(v))))
			}
			dst.Pix[rd+x+3] = 255
		}
	}
	return dst
}
