package dither

import (
	"context"

	"github.com/rmitchellscott/halftone/internal/bitmap"
)

// Diffuse quantizes grid in place, scanning rows top to bottom and columns
// left to right, carrying each pixel's quantization error forward with k.
//
// Three row buffers hold pending error: the row being processed and the two
// rows below it. They rotate at the start of every row. Error headed right on
// the current row is kept in two scalar carries instead. Contributions that
// fall outside the grid are dropped.
func Diffuse(ctx context.Context, grid *bitmap.Grid, k Kernel, q Quantizer) error {
	width, height := grid.Width(), grid.Height()
	divisor := k.Divisor
	if divisor == 0 {
		divisor = 1
	}

	cur := make([]bitmap.RGB, width)
	next1 := make([]bitmap.RGB, width)
	next2 := make([]bitmap.RGB, width)

	for y := 0; y < height; y++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		cur, next1, next2 = next1, next2, cur
		clear(next2)
		var carry1, carry2 bitmap.RGB

		row := grid.Row(y)
		for x := 0; x < width; x++ {
			adjusted := row[x].RGB().Add(carry1).Add(cur[x])

			out, pixelErr := q.Quantize(adjusted)
			e := pixelErr.Div(divisor)

			carry1 = e.Mul(k.Right1).Add(carry2)
			carry2 = e.Mul(k.Right2)

			for i := 0; i < 5; i++ {
				nx := x + i - 2
				if nx < 0 || nx >= width {
					continue
				}
				if w := k.Below1[i]; w != 0 {
					next1[nx] = next1[nx].Add(e.Mul(w))
				}
				if w := k.Below2[i]; w != 0 {
					next2[nx] = next2[nx].Add(e.Mul(w))
				}
			}

			row[x] = out
		}
	}
	return nil
}
