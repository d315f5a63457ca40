package imageprocessing

import (
	"image"
	"image/color"

	"github.com/rmitchellscott/halftone/internal/bitmap"
)

// ToGrayscale converts an image to 8-bit gray with color.GrayModel, which
// weights 16-bit channels by 19595, 38470 and 7471 out of 65536
func ToGrayscale(img image.Image) image.Image {
	if img == nil {
		return nil
	}

	bounds := img.Bounds()
	gray := image.NewGray(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
		}
	}

	return gray
}

// GridFromImage copies any image into a pixel grid. Alpha is dropped by
// compositing over black, as the premultiplied RGBA values already are.
func GridFromImage(img image.Image) *bitmap.Grid {
	bounds := img.Bounds()
	grid := bitmap.NewGrid(bounds.Dx(), bounds.Dy())

	if rgba, ok := img.(*image.RGBA); ok {
		for y := 0; y < grid.Height(); y++ {
			row := grid.Row(y)
			for x := range row {
				i := rgba.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
				row[x] = bitmap.Pixel{R: rgba.Pix[i], G: rgba.Pix[i+1], B: rgba.Pix[i+2]}
			}
		}
		return grid
	}

	for y := 0; y < grid.Height(); y++ {
		row := grid.Row(y)
		for x := range row {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			row[x] = bitmap.Pixel{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
		}
	}
	return grid
}

// GridToRGBA copies a grid into an opaque RGBA image anchored at (0, 0)
func GridToRGBA(grid *bitmap.Grid) *image.RGBA {
	rgba := image.NewRGBA(image.Rect(0, 0, grid.Width(), grid.Height()))
	for y := 0; y < grid.Height(); y++ {
		for x, p := range grid.Row(y) {
			i := rgba.PixOffset(x, y)
			rgba.Pix[i] = p.R
			rgba.Pix[i+1] = p.G
			rgba.Pix[i+2] = p.B
			rgba.Pix[i+3] = 0xff
		}
	}
	return rgba
}

// IsBilevel reports whether every pixel is pure black or pure white
func IsBilevel(grid *bitmap.Grid) bool {
	for y := 0; y < grid.Height(); y++ {
		for _, p := range grid.Row(y) {
			if p != bitmap.Black && p != bitmap.White {
				return false
			}
		}
	}
	return true
}
