// Package render turns trace and snapshot files into images: time series as
// line plots, snapshot slices as colour-mapped bitmaps, with png, bmp, jpeg,
// tiff and pdf output.
package render

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"github.com/signintech/gopdf"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

const (
	FormatBmp  = "bmp"
	FormatJpeg = "jpeg"
	FormatPdf  = "pdf"
	FormatPng  = "png"
	FormatTiff = "tiff"
)

var AllFormats = []string{
	FormatBmp,
	FormatJpeg,
	FormatPdf,
	FormatPng,
	FormatTiff,
}

func IsKnownFormat(format string) bool {
	for _, f := range AllFormats {
		if f == format {
			return true
		}
	}
	return false
}

// EncodeImage writes img in the given raster format.
func EncodeImage(output io.Writer, img image.Image, format string) error {
	var err error
	switch format {
	case FormatBmp:
		err = bmp.Encode(output, img)
	case FormatJpeg:
		err = jpeg.Encode(output, img, nil)
	case FormatTiff:
		err = tiff.Encode(output, img, nil)
	default:
		err = png.Encode(output, img)
	}
	if err != nil {
		return fmt.Errorf("failed to encode image as %s: %s", format, err)
	}
	return nil
}

// WriteImage saves img to path in the given format. Pdf output gets a
// single page sized to the image.
func WriteImage(img image.Image, path, format string) error {
	if format == FormatPdf {
		return writePdf(img, path)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file %s: %s", path, err)
	}
	defer out.Close()

	return EncodeImage(out, img, format)
}

func writePdf(img image.Image, path string) error {
	bounds := img.Bounds()
	rect := &gopdf.Rect{W: float64(bounds.Dx()), H: float64(bounds.Dy())}

	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *rect})
	pdf.AddPage()
	if err := pdf.ImageFrom(img, 0, 0, rect); err != nil {
		return fmt.Errorf("failed to place image on pdf page: %s", err)
	}
	if err := pdf.WritePdf(path); err != nil {
		return fmt.Errorf("failed to write file %s: %s", path, err)
	}
	return nil
}
