package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/emwave/emwave/output"
)

const (
	plotWidth  = 1200
	plotHeight = 600
	plotMargin = 40
)

var (
	plotBackground = color.RGBA{255, 255, 255, 255}
	plotAxis       = color.RGBA{120, 120, 120, 255}
	plotLine       = color.RGBA{31, 119, 180, 255}
)

// TracePlot renders one receiver component as a line plot over the run's
// timesteps.
func TracePlot(trace *output.Trace, rxID, component string) (image.Image, error) {
	values, err := trace.RxTrace(rxID, component)
	if err != nil {
		return nil, err
	}
	if len(values) < 2 {
		return nil, fmt.Errorf("trace for %s %s is too short to plot", rxID, component)
	}

	img := image.NewRGBA(image.Rect(0, 0, plotWidth, plotHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(plotBackground), image.Point{}, draw.Src)

	// Symmetric value range around zero so the zero line sits mid-plot.
	peak := 0.0
	for _, v := range values {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	if peak == 0 {
		peak = 1
	}

	x0, y0 := plotMargin, plotMargin
	x1, y1 := plotWidth-plotMargin, plotHeight-plotMargin
	midY := (y0 + y1) / 2

	drawLine(img, x0, y0, x0, y1, plotAxis)
	drawLine(img, x0, midY, x1, midY, plotAxis)

	toX := func(i int) int {
		return x0 + i*(x1-x0)/(len(values)-1)
	}
	toY := func(v float64) int {
		return midY - int(v/peak*float64(midY-y0))
	}

	for i := 1; i < len(values); i++ {
		drawLine(img, toX(i-1), toY(values[i-1]), toX(i), toY(values[i]), plotLine)
	}

	return img, nil
}

// drawLine draws a straight segment with integer stepping along the longer
// axis.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx, dy := x1-x0, y1-y0
	steps := absInt(dx)
	if absInt(dy) > steps {
		steps = absInt(dy)
	}
	if steps == 0 {
		img.SetRGBA(x0, y0, c)
		return
	}
	for s := 0; s <= steps; s++ {
		x := x0 + dx*s/steps
		y := y0 + dy*s/steps
		img.SetRGBA(x, y, c)
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
