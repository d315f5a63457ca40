package imageprocessing

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

var background = &image.Uniform{C: color.White}

// Placement returns where a src sized image lands on a width x height
// canvas, centered and aspect preserving. With fit the result lies inside
// the canvas; otherwise it covers the canvas and overhangs on one axis.
func Placement(src image.Rectangle, width, height int, fit bool) image.Rectangle {
	sw, sh := src.Dx(), src.Dy()
	if sw <= 0 || sh <= 0 || width <= 0 || height <= 0 {
		return image.Rectangle{}
	}

	scaleX := float64(width) / float64(sw)
	scaleY := float64(height) / float64(sh)
	scale := max(scaleX, scaleY)
	if fit {
		scale = min(scaleX, scaleY)
	}

	w := int(float64(sw)*scale + 0.5)
	h := int(float64(sh)*scale + 0.5)
	if fit {
		w, h = min(w, width), min(h, height)
	} else {
		w, h = max(w, width), max(h, height)
	}

	x := (width - w) / 2
	y := (height - h) / 2
	return image.Rect(x, y, x+w, y+h)
}

// Resize scales img onto a white width x height canvas. Fill crops the
// overhang, fit letterboxes. Transparent areas come out white.
func Resize(img image.Image, width, height int, fit bool) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), background, image.Point{}, draw.Src)

	dr := Placement(img.Bounds(), width, height, fit)
	xdraw.CatmullRom.Scale(canvas, dr, img, img.Bounds(), xdraw.Over, nil)
	return canvas
}
