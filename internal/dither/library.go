package dither

import (
	"context"
	"fmt"
	"image"
	"image/color"

	ditherlib "github.com/makeworld-the-better-one/dither/v2"

	"github.com/rmitchellscott/halftone/internal/bitmap"
	"github.com/rmitchellscott/halftone/internal/imageprocessing"
)

// extended is a mode delegated to the dither library. Exactly one of matrix
// and mapper is set.
type extended struct {
	name   string
	matrix ditherlib.ErrorDiffusionMatrix
	mapper ditherlib.PixelMapper
}

var extendedModes = []*extended{
	{name: "x-simple2d", matrix: ditherlib.Simple2D},
	{name: "x-sierra2-4a", matrix: ditherlib.Sierra2_4A},
	{name: "x-stevenpigeon", matrix: ditherlib.StevenPigeon},
	{name: "x-sierra3", matrix: ditherlib.Sierra3},
	{name: "x-tworowsierra", matrix: ditherlib.TwoRowSierra},
	{name: "x-clustered4x4", mapper: ditherlib.PixelMapperFromMatrix(ditherlib.ClusteredDot4x4, 1.0)},
	{name: "x-clustered8x8", mapper: ditherlib.PixelMapperFromMatrix(ditherlib.ClusteredDot8x8, 1.0)},
	{name: "x-spiral5x5", mapper: ditherlib.PixelMapperFromMatrix(ditherlib.ClusteredDotSpiral5x5, 1.0)},
	{name: "x-horizontal3x5", mapper: ditherlib.PixelMapperFromMatrix(ditherlib.Horizontal3x5, 1.0)},
	{name: "x-bayer16", mapper: ditherlib.Bayer(16, 16, 1.0)},
}

func (e *extended) apply(ctx context.Context, grid *bitmap.Grid, q Quantizer) error {
	pq, ok := q.(*PaletteQuantizer)
	if !ok {
		return &ConfigError{Field: "mode", Value: e.name, Err: ErrReducerNotAllowed}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if grid.Width() == 0 || grid.Height() == 0 {
		return nil
	}

	colors := make([]color.Color, len(pq.Palette))
	for i, p := range pq.Palette {
		colors[i] = color.RGBA{R: p.R, G: p.G, B: p.B, A: 255}
	}
	d := ditherlib.NewDitherer(colors)
	if d == nil {
		return fmt.Errorf("mode %s: ditherer rejected palette", e.name)
	}
	d.Matrix = e.matrix
	d.Mapper = e.mapper

	src := imageprocessing.GridToRGBA(grid)
	dst := image.NewRGBA(src.Bounds())
	d.Draw(dst, dst.Bounds(), src, image.Point{})

	if err := ctx.Err(); err != nil {
		return err
	}

	// snap back onto the palette
	for y := 0; y < grid.Height(); y++ {
		row := grid.Row(y)
		for x := range row {
			i := dst.PixOffset(x, y)
			c := bitmap.RGB{R: int(dst.Pix[i]), G: int(dst.Pix[i+1]), B: int(dst.Pix[i+2])}
			row[x] = pq.Palette.Closest(c)
		}
	}
	return nil
}
