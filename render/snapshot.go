package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/emwave/emwave/output"
)

// SnapshotSlice renders one z slice of a snapshot component as a bitmap.
// Values are colour mapped on a diverging blue-white-red scale, symmetric
// around zero and normalised to the slice's peak magnitude.
func SnapshotSlice(vol *output.SnapshotVolume, component string, slice int) (image.Image, error) {
	comp := -1
	for i, name := range vol.Header.Components {
		if name == component {
			comp = i
			break
		}
	}
	if comp < 0 {
		return nil, fmt.Errorf("snapshot has no component %s", component)
	}
	if slice < 0 || slice >= vol.NZ {
		return nil, fmt.Errorf("slice %d outside snapshot extent (0..%d)", slice, vol.NZ-1)
	}

	data := vol.Data[comp]
	at := func(i, j int) float64 {
		return data[(i*vol.NY+j)*vol.NZ+slice]
	}

	peak := 0.0
	for i := 0; i < vol.NX; i++ {
		for j := 0; j < vol.NY; j++ {
			if a := math.Abs(at(i, j)); a > peak {
				peak = a
			}
		}
	}
	if peak == 0 {
		peak = 1
	}

	img := image.NewRGBA(image.Rect(0, 0, vol.NX, vol.NY))
	for i := 0; i < vol.NX; i++ {
		for j := 0; j < vol.NY; j++ {
			// Image y runs downwards, grid y upwards.
			img.SetRGBA(i, vol.NY-1-j, divergingColor(at(i, j)/peak))
		}
	}

	return img, nil
}

// divergingColor maps v in [-1, 1] onto blue through white to red.
func divergingColor(v float64) color.RGBA {
	if v < -1 {
		v = -1
	} else if v > 1 {
		v = 1
	}

	if v < 0 {
		t := uint8(255 * (1 + v))
		return color.RGBA{t, t, 255, 255}
	}
	t := uint8(255 * (1 - v))
	return color.RGBA{255, t, t, 255}
}
