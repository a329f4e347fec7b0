package core

import (
	"fmt"
	"image"

	"github.com/1F47E/go-framereel/pkg/imaging"
	"github.com/1F47E/go-framereel/pkg/logger"
)

// DebugFrame loads one frame, crops it the way Assemble would and saves the
// result as PNG to out. It returns the bounds before and after the crop.
func DebugFrame(path string, crop *imaging.Crop, out string) (image.Rectangle, image.Rectangle, error) {
	log := logger.Scope("core debug")

	img, err := imaging.Load(path)
	if err != nil {
		return image.Rectangle{}, image.Rectangle{}, err
	}
	orig := img.Bounds()

	if crop != nil {
		c, err := crop.Validate(orig)
		if err != nil {
			return orig, image.Rectangle{}, err
		}
		img = c.Apply(img)
		log.Debugf("crop %s applied", c.String())
	}

	if err := imaging.Save(out, img); err != nil {
		return orig, img.Bounds(), fmt.Errorf("save %s: %w", out, err)
	}
	return orig, img.Bounds(), nil
}
